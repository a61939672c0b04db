package studybot

import (
	"context"
	"time"
)

// TimeLogRepo accumulates per-(guild, member, study day) seconds. AddSeconds
// is an additive merge: entries are created on first contribution and only
// ever incremented afterwards.
type TimeLogRepo interface {
	AddSeconds(ctx context.Context, guildID GuildID, userID UserID, day StudyDay, seconds int) error

	// TotalsForDay and TotalsForRange return rows ordered by seconds
	// descending, ready for dense ranking.
	TotalsForDay(ctx context.Context, guildID GuildID, day StudyDay) ([]MemberTotal, error)
	TotalsForRange(ctx context.Context, guildID GuildID, start, end StudyDay) ([]MemberTotal, error)

	MemberTotalForDay(ctx context.Context, guildID GuildID, userID UserID, day StudyDay) (int, error)
	MemberTotalForRange(ctx context.Context, guildID GuildID, userID UserID, start, end StudyDay) (int, error)
}

// SessionRepo durably mirrors open and paused sessions so a restart can
// reconstruct exactly the sessions that were open at shutdown.
type SessionRepo interface {
	SaveActive(ctx context.Context, rec ActiveSessionRecord) error
	DeleteActive(ctx context.Context, key SessionKey) error
	ListActive(ctx context.Context) ([]ActiveSessionRecord, error)

	SavePaused(ctx context.Context, rec PausedSessionRecord) error
	DeletePaused(ctx context.Context, key SessionKey) error
	ListPaused(ctx context.Context) ([]PausedSessionRecord, error)
}

// GuildConfigRepo holds per-guild settings and the monitored text channel
// set. Monitor membership is a plain set: adds are idempotent, removing an
// absent channel is a no-op.
type GuildConfigRepo interface {
	SetAnnounceChannel(ctx context.Context, guildID GuildID, channelID ChannelID) error
	// ListAnnounceChannels returns every guild with a configured announce
	// channel; the scheduler iterates this once per cutover.
	ListAnnounceChannels(ctx context.Context) ([]GuildConfig, error)

	AddMonitorChannel(ctx context.Context, guildID GuildID, channelID ChannelID) error
	RemoveMonitorChannel(ctx context.Context, guildID GuildID, channelID ChannelID) error
	ListMonitorChannels(ctx context.Context, guildID GuildID) ([]ChannelID, error)
	IsMonitorChannel(ctx context.Context, guildID GuildID, channelID ChannelID) (bool, error)
}

// CutoverStateRepo persists the last boundary the scheduler has processed,
// so boundaries missed while the process was down are caught up instead of
// skipped.
type CutoverStateRepo interface {
	// LastBoundary returns the zero time when no cutover has run yet.
	LastBoundary(ctx context.Context) (time.Time, error)
	SetLastBoundary(ctx context.Context, boundary time.Time) error
}
