package main

import (
	"context"
	"sync"
	"time"

	"github.com/Thiht/transactor"

	"github.com/hywlin/studybot-go"
)

// mockTransactor runs the function inline unless overridden.
type mockTransactor struct {
	withinTransactionFunc func(context.Context, func(context.Context) error) error
}

func (m *mockTransactor) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	if m.withinTransactionFunc != nil {
		return m.withinTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

var _ transactor.Transactor = (*mockTransactor)(nil)

// addCall is one recorded AddSeconds invocation.
type addCall struct {
	GuildID studybot.GuildID
	UserID  studybot.UserID
	Day     studybot.StudyDay
	Seconds int
}

// mockTimeLogRepo records additive merges and serves canned ranking rows.
type mockTimeLogRepo struct {
	mu    sync.Mutex
	calls []addCall

	addSecondsErr error
	totalsByDay   map[studybot.StudyDay][]studybot.MemberTotal
	totalsRange   []studybot.MemberTotal
}

func (m *mockTimeLogRepo) AddSeconds(ctx context.Context, guildID studybot.GuildID, userID studybot.UserID, day studybot.StudyDay, seconds int) error {
	if m.addSecondsErr != nil {
		return m.addSecondsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, addCall{GuildID: guildID, UserID: userID, Day: day, Seconds: seconds})
	return nil
}

func (m *mockTimeLogRepo) TotalsForDay(ctx context.Context, guildID studybot.GuildID, day studybot.StudyDay) ([]studybot.MemberTotal, error) {
	return m.totalsByDay[day], nil
}

func (m *mockTimeLogRepo) TotalsForRange(ctx context.Context, guildID studybot.GuildID, start, end studybot.StudyDay) ([]studybot.MemberTotal, error) {
	return m.totalsRange, nil
}

func (m *mockTimeLogRepo) MemberTotalForDay(ctx context.Context, guildID studybot.GuildID, userID studybot.UserID, day studybot.StudyDay) (int, error) {
	return 0, nil
}

func (m *mockTimeLogRepo) MemberTotalForRange(ctx context.Context, guildID studybot.GuildID, userID studybot.UserID, start, end studybot.StudyDay) (int, error) {
	return 0, nil
}

// secondsFor sums every recorded merge for a (user, day).
func (m *mockTimeLogRepo) secondsFor(userID studybot.UserID, day studybot.StudyDay) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, c := range m.calls {
		if c.UserID == userID && c.Day == day {
			total += c.Seconds
		}
	}
	return total
}

func (m *mockTimeLogRepo) totalSeconds() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, c := range m.calls {
		total += c.Seconds
	}
	return total
}

var _ studybot.TimeLogRepo = (*mockTimeLogRepo)(nil)

// mockSessionRepo keeps the durable mirror in maps, with optional error
// injection per operation.
type mockSessionRepo struct {
	mu     sync.Mutex
	active map[studybot.SessionKey]studybot.ActiveSessionRecord
	paused map[studybot.SessionKey]studybot.PausedSessionRecord

	saveActiveErr error
	savePausedErr error
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{
		active: make(map[studybot.SessionKey]studybot.ActiveSessionRecord),
		paused: make(map[studybot.SessionKey]studybot.PausedSessionRecord),
	}
}

func (m *mockSessionRepo) SaveActive(ctx context.Context, rec studybot.ActiveSessionRecord) error {
	if m.saveActiveErr != nil {
		return m.saveActiveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active[rec.SessionKey] = rec
	return nil
}

func (m *mockSessionRepo) DeleteActive(ctx context.Context, key studybot.SessionKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active, key)
	return nil
}

func (m *mockSessionRepo) ListActive(ctx context.Context) ([]studybot.ActiveSessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var recs []studybot.ActiveSessionRecord
	for _, rec := range m.active {
		recs = append(recs, rec)
	}
	return recs, nil
}

func (m *mockSessionRepo) SavePaused(ctx context.Context, rec studybot.PausedSessionRecord) error {
	if m.savePausedErr != nil {
		return m.savePausedErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused[rec.SessionKey] = rec
	return nil
}

func (m *mockSessionRepo) DeletePaused(ctx context.Context, key studybot.SessionKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.paused, key)
	return nil
}

func (m *mockSessionRepo) ListPaused(ctx context.Context) ([]studybot.PausedSessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var recs []studybot.PausedSessionRecord
	for _, rec := range m.paused {
		recs = append(recs, rec)
	}
	return recs, nil
}

var _ studybot.SessionRepo = (*mockSessionRepo)(nil)

// mockGuildConfigRepo serves canned announce configs.
type mockGuildConfigRepo struct {
	configs []studybot.GuildConfig
}

func (m *mockGuildConfigRepo) SetAnnounceChannel(ctx context.Context, guildID studybot.GuildID, channelID studybot.ChannelID) error {
	return nil
}

func (m *mockGuildConfigRepo) ListAnnounceChannels(ctx context.Context) ([]studybot.GuildConfig, error) {
	return m.configs, nil
}

func (m *mockGuildConfigRepo) AddMonitorChannel(ctx context.Context, guildID studybot.GuildID, channelID studybot.ChannelID) error {
	return nil
}

func (m *mockGuildConfigRepo) RemoveMonitorChannel(ctx context.Context, guildID studybot.GuildID, channelID studybot.ChannelID) error {
	return nil
}

func (m *mockGuildConfigRepo) ListMonitorChannels(ctx context.Context, guildID studybot.GuildID) ([]studybot.ChannelID, error) {
	return nil, nil
}

func (m *mockGuildConfigRepo) IsMonitorChannel(ctx context.Context, guildID studybot.GuildID, channelID studybot.ChannelID) (bool, error) {
	return false, nil
}

var _ studybot.GuildConfigRepo = (*mockGuildConfigRepo)(nil)

// mockCutoverStateRepo keeps the last boundary in memory.
type mockCutoverStateRepo struct {
	mu   sync.Mutex
	last time.Time
}

func (m *mockCutoverStateRepo) LastBoundary(ctx context.Context) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, nil
}

func (m *mockCutoverStateRepo) SetLastBoundary(ctx context.Context, boundary time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = boundary
	return nil
}

var _ studybot.CutoverStateRepo = (*mockCutoverStateRepo)(nil)

// publishCall is one recorded announcement.
type publishCall struct {
	Cfg    studybot.GuildConfig
	Report dailyReport
}

type mockAnnouncer struct {
	mu         sync.Mutex
	calls      []publishCall
	publishErr map[studybot.GuildID]error
}

func (m *mockAnnouncer) Publish(ctx context.Context, cfg studybot.GuildConfig, report dailyReport) error {
	if err := m.publishErr[cfg.GuildID]; err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, publishCall{Cfg: cfg, Report: report})
	return nil
}
