package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	txStdLib "github.com/Thiht/transactor/stdlib"
	"github.com/charmbracelet/log"

	"github.com/hywlin/studybot-go"
)

const (
	selectAllActive = "SELECT guild_id, user_id, kind, started_at, accumulated_seconds FROM active_sessions"
	selectAllPaused = "SELECT guild_id, user_id, kind, paused_at, accumulated_seconds FROM paused_sessions"
)

// Instants are stored as unix seconds; sub-second precision is below the
// accounting granularity.
type activeSessionEntity struct {
	GuildID            string
	UserID             string
	Kind               string
	StartedAt          int64
	AccumulatedSeconds int
}

type pausedSessionEntity struct {
	GuildID            string
	UserID             string
	Kind               string
	PausedAt           int64
	AccumulatedSeconds int
}

// sessionRepo mirrors open and paused sessions for crash recovery.
type sessionRepo struct {
	dbGetter txStdLib.DBGetter
	l        log.Logger
}

func NewSessionRepo(dbGetter txStdLib.DBGetter, logger log.Logger) *sessionRepo {
	return &sessionRepo{
		dbGetter: dbGetter,
		l:        logger,
	}
}

func (r *sessionRepo) SaveActive(ctx context.Context, rec studybot.ActiveSessionRecord) error {
	db := r.dbGetter(ctx)
	e := mapToActiveEntity(rec)
	args := []any{e.GuildID, e.UserID, e.Kind, e.StartedAt, e.AccumulatedSeconds}
	query := `INSERT INTO active_sessions (guild_id, user_id, kind, started_at, accumulated_seconds) VALUES ` +
		generateParameters(len(args)) +
		` ON CONFLICT (guild_id, user_id, kind) DO UPDATE SET started_at = excluded.started_at, accumulated_seconds = excluded.accumulated_seconds`
	r.l.Debug("saving active session", "query", query, "args", args)
	_, err := db.ExecContext(ctx, query, args...)
	return err
}

func (r *sessionRepo) DeleteActive(ctx context.Context, key studybot.SessionKey) error {
	db := r.dbGetter(ctx)
	query := "DELETE FROM active_sessions WHERE guild_id = ? AND user_id = ? AND kind = ?"
	r.l.Debug("deleting active session", "query", query, "key", key)
	_, err := db.ExecContext(ctx, query, string(key.GuildID), string(key.UserID), string(key.Kind))
	return err
}

func (r *sessionRepo) ListActive(ctx context.Context) ([]studybot.ActiveSessionRecord, error) {
	db := r.dbGetter(ctx)
	rows, err := db.QueryContext(ctx, selectAllActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint

	var recs []studybot.ActiveSessionRecord
	for rows.Next() {
		rec, err := extractActive(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *sessionRepo) SavePaused(ctx context.Context, rec studybot.PausedSessionRecord) error {
	db := r.dbGetter(ctx)
	e := mapToPausedEntity(rec)
	args := []any{e.GuildID, e.UserID, e.Kind, e.PausedAt, e.AccumulatedSeconds}
	query := `INSERT INTO paused_sessions (guild_id, user_id, kind, paused_at, accumulated_seconds) VALUES ` +
		generateParameters(len(args)) +
		` ON CONFLICT (guild_id, user_id, kind) DO UPDATE SET paused_at = excluded.paused_at, accumulated_seconds = excluded.accumulated_seconds`
	r.l.Debug("saving paused session", "query", query, "args", args)
	_, err := db.ExecContext(ctx, query, args...)
	return err
}

func (r *sessionRepo) DeletePaused(ctx context.Context, key studybot.SessionKey) error {
	db := r.dbGetter(ctx)
	query := "DELETE FROM paused_sessions WHERE guild_id = ? AND user_id = ? AND kind = ?"
	r.l.Debug("deleting paused session", "query", query, "key", key)
	_, err := db.ExecContext(ctx, query, string(key.GuildID), string(key.UserID), string(key.Kind))
	return err
}

func (r *sessionRepo) ListPaused(ctx context.Context) ([]studybot.PausedSessionRecord, error) {
	db := r.dbGetter(ctx)
	rows, err := db.QueryContext(ctx, selectAllPaused)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint

	var recs []studybot.PausedSessionRecord
	for rows.Next() {
		rec, err := extractPaused(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

func extractActive(s Scannable) (studybot.ActiveSessionRecord, error) {
	var e activeSessionEntity
	if err := s.Scan(&e.GuildID, &e.UserID, &e.Kind, &e.StartedAt, &e.AccumulatedSeconds); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return studybot.ActiveSessionRecord{}, ErrNotFound
		}
		return studybot.ActiveSessionRecord{}, err
	}
	return mapToActiveRecord(e), nil
}

func extractPaused(s Scannable) (studybot.PausedSessionRecord, error) {
	var e pausedSessionEntity
	if err := s.Scan(&e.GuildID, &e.UserID, &e.Kind, &e.PausedAt, &e.AccumulatedSeconds); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return studybot.PausedSessionRecord{}, ErrNotFound
		}
		return studybot.PausedSessionRecord{}, err
	}
	return mapToPausedRecord(e), nil
}

func mapToActiveEntity(rec studybot.ActiveSessionRecord) activeSessionEntity {
	return activeSessionEntity{
		GuildID:            string(rec.GuildID),
		UserID:             string(rec.UserID),
		Kind:               string(rec.Kind),
		StartedAt:          rec.StartedAt.Unix(),
		AccumulatedSeconds: rec.AccumulatedSeconds,
	}
}

func mapToPausedEntity(rec studybot.PausedSessionRecord) pausedSessionEntity {
	return pausedSessionEntity{
		GuildID:            string(rec.GuildID),
		UserID:             string(rec.UserID),
		Kind:               string(rec.Kind),
		PausedAt:           rec.PausedAt.Unix(),
		AccumulatedSeconds: rec.AccumulatedSeconds,
	}
}

func mapToActiveRecord(e activeSessionEntity) studybot.ActiveSessionRecord {
	return studybot.ActiveSessionRecord{
		SessionKey: studybot.SessionKey{
			GuildID: studybot.GuildID(e.GuildID),
			UserID:  studybot.UserID(e.UserID),
			Kind:    studybot.SessionKind(e.Kind),
		},
		StartedAt:          time.Unix(e.StartedAt, 0).UTC(),
		AccumulatedSeconds: e.AccumulatedSeconds,
	}
}

func mapToPausedRecord(e pausedSessionEntity) studybot.PausedSessionRecord {
	return studybot.PausedSessionRecord{
		SessionKey: studybot.SessionKey{
			GuildID: studybot.GuildID(e.GuildID),
			UserID:  studybot.UserID(e.UserID),
			Kind:    studybot.SessionKind(e.Kind),
		},
		PausedAt:           time.Unix(e.PausedAt, 0).UTC(),
		AccumulatedSeconds: e.AccumulatedSeconds,
	}
}
