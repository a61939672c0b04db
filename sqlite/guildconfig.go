package sqlite

import (
	"context"

	txStdLib "github.com/Thiht/transactor/stdlib"
	"github.com/charmbracelet/log"

	"github.com/hywlin/studybot-go"
)

// guildConfigRepo holds per-guild settings and the monitored channel set.
type guildConfigRepo struct {
	dbGetter txStdLib.DBGetter
	l        log.Logger
}

func NewGuildConfigRepo(dbGetter txStdLib.DBGetter, logger log.Logger) *guildConfigRepo {
	return &guildConfigRepo{
		dbGetter: dbGetter,
		l:        logger,
	}
}

func (r *guildConfigRepo) SetAnnounceChannel(ctx context.Context, guildID studybot.GuildID, channelID studybot.ChannelID) error {
	db := r.dbGetter(ctx)
	query := `INSERT INTO guild_config (guild_id, announce_channel_id) VALUES (?, ?)
		ON CONFLICT (guild_id) DO UPDATE SET announce_channel_id = excluded.announce_channel_id`
	r.l.Debug("setting announce channel", "query", query, "guildID", guildID, "channelID", channelID)
	_, err := db.ExecContext(ctx, query, string(guildID), string(channelID))
	return err
}

func (r *guildConfigRepo) ListAnnounceChannels(ctx context.Context) ([]studybot.GuildConfig, error) {
	db := r.dbGetter(ctx)
	query := "SELECT guild_id, announce_channel_id FROM guild_config WHERE announce_channel_id != ''"
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint

	var configs []studybot.GuildConfig
	for rows.Next() {
		var guildID, channelID string
		if err := rows.Scan(&guildID, &channelID); err != nil {
			return nil, err
		}
		configs = append(configs, studybot.GuildConfig{
			GuildID:           studybot.GuildID(guildID),
			AnnounceChannelID: studybot.ChannelID(channelID),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return configs, nil
}

func (r *guildConfigRepo) AddMonitorChannel(ctx context.Context, guildID studybot.GuildID, channelID studybot.ChannelID) error {
	db := r.dbGetter(ctx)
	query := "INSERT INTO monitor_channels (guild_id, channel_id) VALUES (?, ?) ON CONFLICT DO NOTHING"
	r.l.Debug("adding monitor channel", "query", query, "guildID", guildID, "channelID", channelID)
	_, err := db.ExecContext(ctx, query, string(guildID), string(channelID))
	return err
}

func (r *guildConfigRepo) RemoveMonitorChannel(ctx context.Context, guildID studybot.GuildID, channelID studybot.ChannelID) error {
	db := r.dbGetter(ctx)
	query := "DELETE FROM monitor_channels WHERE guild_id = ? AND channel_id = ?"
	r.l.Debug("removing monitor channel", "query", query, "guildID", guildID, "channelID", channelID)
	_, err := db.ExecContext(ctx, query, string(guildID), string(channelID))
	return err
}

func (r *guildConfigRepo) ListMonitorChannels(ctx context.Context, guildID studybot.GuildID) ([]studybot.ChannelID, error) {
	db := r.dbGetter(ctx)
	query := "SELECT channel_id FROM monitor_channels WHERE guild_id = ?"
	rows, err := db.QueryContext(ctx, query, string(guildID))
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint

	var channels []studybot.ChannelID
	for rows.Next() {
		var channelID string
		if err := rows.Scan(&channelID); err != nil {
			return nil, err
		}
		channels = append(channels, studybot.ChannelID(channelID))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return channels, nil
}

func (r *guildConfigRepo) IsMonitorChannel(ctx context.Context, guildID studybot.GuildID, channelID studybot.ChannelID) (bool, error) {
	db := r.dbGetter(ctx)
	query := "SELECT COUNT(*) FROM monitor_channels WHERE guild_id = ? AND channel_id = ?"
	var count int
	if err := db.QueryRowContext(ctx, query, string(guildID), string(channelID)).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
