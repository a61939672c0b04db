// Package sqlite implements the studybot repo interfaces
package sqlite

import (
	"context"
	"database/sql"
	"errors"

	txStdLib "github.com/Thiht/transactor/stdlib"
	"github.com/charmbracelet/log"

	"github.com/hywlin/studybot-go"
)

// timeLogRepo accumulates per-(guild, user, study_day) seconds. Rows are
// only ever inserted or incremented.
type timeLogRepo struct {
	dbGetter txStdLib.DBGetter
	l        log.Logger
}

func NewTimeLogRepo(dbGetter txStdLib.DBGetter, logger log.Logger) *timeLogRepo {
	return &timeLogRepo{
		dbGetter: dbGetter,
		l:        logger,
	}
}

func (r *timeLogRepo) AddSeconds(ctx context.Context, guildID studybot.GuildID, userID studybot.UserID, day studybot.StudyDay, seconds int) error {
	db := r.dbGetter(ctx)
	query := `INSERT INTO time_log (guild_id, user_id, study_day, seconds) VALUES (?, ?, ?, ?)
		ON CONFLICT (guild_id, user_id, study_day) DO UPDATE SET seconds = seconds + excluded.seconds`
	args := []any{string(guildID), string(userID), string(day), seconds}
	r.l.Debug("adding seconds", "query", query, "args", args)
	_, err := db.ExecContext(ctx, query, args...)
	return err
}

func (r *timeLogRepo) TotalsForDay(ctx context.Context, guildID studybot.GuildID, day studybot.StudyDay) ([]studybot.MemberTotal, error) {
	db := r.dbGetter(ctx)
	query := "SELECT user_id, seconds FROM time_log WHERE guild_id = ? AND study_day = ? ORDER BY seconds DESC, user_id ASC"
	rows, err := db.QueryContext(ctx, query, string(guildID), string(day))
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint

	return extractTotals(rows)
}

func (r *timeLogRepo) TotalsForRange(ctx context.Context, guildID studybot.GuildID, start, end studybot.StudyDay) ([]studybot.MemberTotal, error) {
	db := r.dbGetter(ctx)
	query := `SELECT user_id, SUM(seconds) AS total FROM time_log
		WHERE guild_id = ? AND study_day BETWEEN ? AND ?
		GROUP BY user_id ORDER BY total DESC, user_id ASC`
	rows, err := db.QueryContext(ctx, query, string(guildID), string(start), string(end))
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint

	return extractTotals(rows)
}

func (r *timeLogRepo) MemberTotalForDay(ctx context.Context, guildID studybot.GuildID, userID studybot.UserID, day studybot.StudyDay) (int, error) {
	db := r.dbGetter(ctx)
	query := "SELECT COALESCE(SUM(seconds), 0) FROM time_log WHERE guild_id = ? AND user_id = ? AND study_day = ?"
	var total int
	err := db.QueryRowContext(ctx, query, string(guildID), string(userID), string(day)).Scan(&total)
	return total, err
}

func (r *timeLogRepo) MemberTotalForRange(ctx context.Context, guildID studybot.GuildID, userID studybot.UserID, start, end studybot.StudyDay) (int, error) {
	db := r.dbGetter(ctx)
	query := "SELECT COALESCE(SUM(seconds), 0) FROM time_log WHERE guild_id = ? AND user_id = ? AND study_day BETWEEN ? AND ?"
	var total int
	err := db.QueryRowContext(ctx, query, string(guildID), string(userID), string(start), string(end)).Scan(&total)
	return total, err
}

func extractTotals(rows *sql.Rows) ([]studybot.MemberTotal, error) {
	var totals []studybot.MemberTotal
	for rows.Next() {
		var t studybot.MemberTotal
		var userID string
		if err := rows.Scan(&userID, &t.Seconds); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		t.UserID = studybot.UserID(userID)
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return totals, nil
}
