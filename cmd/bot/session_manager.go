package main

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Thiht/transactor"
	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-multierror"

	"github.com/hywlin/studybot-go"
)

// SessionManager owns the table of currently open study timers. Every state
// transition writes the durable mirror before the in-memory table, inside
// one critical section, so a crash can never leave memory ahead of the
// store. Voice presence events, keyword events, and the scheduler's cutover
// all serialize through the same lock.
type SessionManager interface {
	Start(ctx context.Context, key studybot.SessionKey, at time.Time) error
	Stop(ctx context.Context, key studybot.SessionKey, at time.Time) (int, error)
	Pause(ctx context.Context, key studybot.SessionKey, at time.Time) (int, error)
	Resume(ctx context.Context, key studybot.SessionKey, at time.Time) error

	HasPaused(key studybot.SessionKey) bool
	ListActive(guildID studybot.GuildID) []studybot.ActiveSessionRecord

	// RestoreAll repopulates the in-memory table from the durable mirror.
	// Called once at process start; startedAt instants are preserved so
	// accounted time survives restarts.
	RestoreAll(ctx context.Context) error

	// TruncateAtBoundary applies the pre-boundary portion of every session
	// running across the boundary to its closing study day, then moves
	// startedAt forward to the boundary. Sessions keep running into the new
	// study day.
	TruncateAtBoundary(ctx context.Context, boundary, now time.Time) error
}

// sessionManager guards both maps and every durable write with one mutex.
// Sessions for different members are independent, but a global lock keeps
// the store-write-in-critical-section rule trivially correct and the table
// is small.
type sessionManager struct {
	mu       sync.Mutex
	active   map[studybot.SessionKey]studybot.ActiveSessionRecord
	paused   map[studybot.SessionKey]studybot.PausedSessionRecord
	repo     studybot.SessionRepo
	splitter *intervalSplitter
	tx       transactor.Transactor
}

func NewSessionManager(repo studybot.SessionRepo, splitter *intervalSplitter, tx transactor.Transactor) SessionManager {
	return &sessionManager{
		active:   make(map[studybot.SessionKey]studybot.ActiveSessionRecord),
		paused:   make(map[studybot.SessionKey]studybot.PausedSessionRecord),
		repo:     repo,
		splitter: splitter,
		tx:       tx,
	}
}

func (m *sessionManager) RestoreAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	actives, err := m.repo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore active sessions: %w", err)
	}
	pauses, err := m.repo.ListPaused(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore paused sessions: %w", err)
	}

	for _, rec := range actives {
		m.active[rec.SessionKey] = rec
	}
	for _, rec := range pauses {
		m.paused[rec.SessionKey] = rec
	}
	log.Info("restored sessions", "active", len(actives), "paused", len(pauses))
	return nil
}

func (m *sessionManager) Start(ctx context.Context, key studybot.SessionKey, at time.Time) error {
	if !key.Kind.Valid() || key.GuildID == "" || key.UserID == "" {
		return fmt.Errorf("%w: incomplete session key %+v", studybot.ErrInvalidArgument, key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// a paused session must go through Resume; callers check HasPaused
	// before routing here
	if _, ok := m.active[key]; ok {
		return fmt.Errorf("%w: %s/%s/%s", studybot.ErrAlreadyRunning, key.GuildID, key.UserID, key.Kind)
	}
	if _, ok := m.paused[key]; ok {
		return fmt.Errorf("%w: %s/%s/%s is paused", studybot.ErrAlreadyRunning, key.GuildID, key.UserID, key.Kind)
	}

	rec := studybot.ActiveSessionRecord{
		SessionKey: key,
		StartedAt:  at.UTC(),
	}
	err := m.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return m.repo.SaveActive(ctx, rec)
	})
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	m.active[key] = rec
	return nil
}

// Stop closes a session and returns the total elapsed seconds, including
// time banked by earlier pause/resume cycles. Stopping a paused text session
// finalizes its accumulated total without counting the time spent paused.
func (m *sessionManager) Stop(ctx context.Context, key studybot.SessionKey, at time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec, ok := m.active[key]; ok {
		elapsed := int(at.Sub(rec.StartedAt).Seconds())
		if elapsed < 0 {
			elapsed = 0
		}
		total := rec.AccumulatedSeconds + elapsed

		err := m.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := m.splitter.Apply(ctx, key.GuildID, key.UserID, rec.StartedAt, at); err != nil {
				return err
			}
			if err := m.repo.DeleteActive(ctx, key); err != nil {
				return err
			}
			return m.repo.DeletePaused(ctx, key)
		})
		if err != nil {
			return 0, fmt.Errorf("failed to stop session: %w", err)
		}

		delete(m.active, key)
		return total, nil
	}

	if rec, ok := m.paused[key]; ok {
		err := m.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			return m.repo.DeletePaused(ctx, key)
		})
		if err != nil {
			return 0, fmt.Errorf("failed to stop paused session: %w", err)
		}
		delete(m.paused, key)
		return rec.AccumulatedSeconds, nil
	}

	return 0, fmt.Errorf("%w: %s/%s/%s", studybot.ErrNotRunning, key.GuildID, key.UserID, key.Kind)
}

// Pause banks the running segment and converts the session into a paused
// record. Returns the accumulated total so far.
func (m *sessionManager) Pause(ctx context.Context, key studybot.SessionKey, at time.Time) (int, error) {
	if !key.Kind.CanPause() {
		return 0, fmt.Errorf("%w: %s sessions cannot pause", studybot.ErrInvalidArgument, key.Kind)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.active[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s/%s/%s", studybot.ErrNotRunning, key.GuildID, key.UserID, key.Kind)
	}

	elapsed := int(at.Sub(rec.StartedAt).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}
	pausedRec := studybot.PausedSessionRecord{
		SessionKey:         key,
		PausedAt:           at.UTC(),
		AccumulatedSeconds: rec.AccumulatedSeconds + elapsed,
	}

	err := m.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := m.splitter.Apply(ctx, key.GuildID, key.UserID, rec.StartedAt, at); err != nil {
			return err
		}
		if err := m.repo.SavePaused(ctx, pausedRec); err != nil {
			return err
		}
		return m.repo.DeleteActive(ctx, key)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to pause session: %w", err)
	}

	delete(m.active, key)
	m.paused[key] = pausedRec
	return pausedRec.AccumulatedSeconds, nil
}

// Resume reopens a paused session at the given instant, carrying the banked
// total forward for later reporting.
func (m *sessionManager) Resume(ctx context.Context, key studybot.SessionKey, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	pausedRec, ok := m.paused[key]
	if !ok {
		return fmt.Errorf("%w: %s/%s/%s", studybot.ErrNoPausedSession, key.GuildID, key.UserID, key.Kind)
	}

	rec := studybot.ActiveSessionRecord{
		SessionKey:         key,
		StartedAt:          at.UTC(),
		AccumulatedSeconds: pausedRec.AccumulatedSeconds,
	}
	err := m.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := m.repo.SaveActive(ctx, rec); err != nil {
			return err
		}
		return m.repo.DeletePaused(ctx, key)
	})
	if err != nil {
		return fmt.Errorf("failed to resume session: %w", err)
	}

	delete(m.paused, key)
	m.active[key] = rec
	return nil
}

func (m *sessionManager) HasPaused(key studybot.SessionKey) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.paused[key]
	return ok
}

// ListActive returns a fresh snapshot each call, ordered oldest first.
func (m *sessionManager) ListActive(guildID studybot.GuildID) []studybot.ActiveSessionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	var recs []studybot.ActiveSessionRecord
	for _, rec := range m.active {
		if rec.GuildID == guildID {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].StartedAt.Equal(recs[j].StartedAt) {
			return recs[i].StartedAt.Before(recs[j].StartedAt)
		}
		return recs[i].UserID < recs[j].UserID
	})
	return recs
}

func (m *sessionManager) TruncateAtBoundary(ctx context.Context, boundary, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs error
	for key, rec := range m.active {
		if !rec.StartedAt.Before(boundary) || !boundary.Before(now) {
			continue
		}

		moved := rec
		moved.StartedAt = boundary.UTC()
		err := m.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := m.splitter.Apply(ctx, key.GuildID, key.UserID, rec.StartedAt, boundary); err != nil {
				return err
			}
			return m.repo.SaveActive(ctx, moved)
		})
		if err != nil {
			// one session's failure must not block the rest of the cutover
			log.Error("failed boundary truncation", "guildID", key.GuildID, "userID", key.UserID, "kind", key.Kind, "err", err)
			errs = multierror.Append(errs, err)
			continue
		}
		m.active[key] = moved
	}
	return errs
}
