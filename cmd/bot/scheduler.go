package main

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hywlin/studybot-go"
)

var cutoverTickRate = time.Minute

// announcer publishes one guild's daily report. Implemented by the Discord
// messenger; faked in tests.
type announcer interface {
	Publish(ctx context.Context, cfg studybot.GuildConfig, report dailyReport) error
}

type dailyReport struct {
	PriorDay  studybot.StudyDay
	WeekStart studybot.StudyDay
	DayRows   []studybot.MemberTotal
	WeekRows  []studybot.MemberTotal
}

// cutoverScheduler wakes on a fixed cadence and processes every study-day
// boundary crossed since the last successfully processed one, instead of
// matching the boundary minute on the wall clock. A process that was down
// at 06:00 catches up on its next tick or at startup.
type cutoverScheduler struct {
	clock     studybot.Clock
	manager   SessionManager
	timeLog   studybot.TimeLogRepo
	guildCfg  studybot.GuildConfigRepo
	state     studybot.CutoverStateRepo
	announcer announcer
	now       func() time.Time
}

func newCutoverScheduler(
	clock studybot.Clock,
	manager SessionManager,
	timeLog studybot.TimeLogRepo,
	guildCfg studybot.GuildConfigRepo,
	state studybot.CutoverStateRepo,
	announcer announcer,
) *cutoverScheduler {
	return &cutoverScheduler{
		clock:     clock,
		manager:   manager,
		timeLog:   timeLog,
		guildCfg:  guildCfg,
		state:     state,
		announcer: announcer,
		now:       time.Now,
	}
}

// Run processes pending boundaries immediately, then on every tick until ctx
// is cancelled.
func (s *cutoverScheduler) Run(ctx context.Context) {
	if err := s.ProcessPending(ctx); err != nil {
		log.Error("failed boundary processing at startup", "err", err)
	}

	ticker := time.NewTicker(cutoverTickRate)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.ProcessPending(ctx); err != nil {
				log.Error("failed boundary processing", "err", err)
			}
		}
	}
}

// ProcessPending runs the cutover for every boundary in (lastProcessed, now]
// in order. A boundary is marked processed only after its truncation
// succeeds, so store failures are retried on the next tick rather than
// skipping a day.
func (s *cutoverScheduler) ProcessPending(ctx context.Context) error {
	now := s.now()

	last, err := s.state.LastBoundary(ctx)
	if err != nil {
		return err
	}
	if last.IsZero() {
		// first run ever: adopt the current boundary without replaying
		// history
		last = s.clock.BoundaryOnOrBefore(now)
		return s.state.SetLastBoundary(ctx, last)
	}

	for _, boundary := range s.clock.BoundariesBetween(last, now) {
		if err := s.runCutover(ctx, boundary, now); err != nil {
			return err
		}
		if err := s.state.SetLastBoundary(ctx, boundary); err != nil {
			return err
		}
	}
	return nil
}

// RunNow is the admin-triggered equivalent: it cuts at the most recent
// boundary and publishes the report immediately. Truncation is naturally
// idempotent (a session already moved to the boundary is not moved again);
// the report may repeat.
func (s *cutoverScheduler) RunNow(ctx context.Context) error {
	now := s.now()
	boundary := s.clock.BoundaryOnOrBefore(now)
	if err := s.runCutover(ctx, boundary, now); err != nil {
		return err
	}

	last, err := s.state.LastBoundary(ctx)
	if err != nil {
		return err
	}
	if boundary.After(last) {
		return s.state.SetLastBoundary(ctx, boundary)
	}
	return nil
}

func (s *cutoverScheduler) runCutover(ctx context.Context, boundary, now time.Time) error {
	log.Info("running cutover", "boundary", boundary)
	if err := s.manager.TruncateAtBoundary(ctx, boundary, now); err != nil {
		return err
	}
	s.announce(ctx, boundary)
	return nil
}

// announce publishes the prior study day's ranking plus week-to-date to
// every guild with a configured announce channel. One guild's failure is
// logged and does not block the others.
func (s *cutoverScheduler) announce(ctx context.Context, boundary time.Time) {
	priorDay := s.clock.PriorStudyDay(boundary)
	weekStart := s.clock.WeekStartStudyDay(boundary)

	configs, err := s.guildCfg.ListAnnounceChannels(ctx)
	if err != nil {
		log.Error("failed to list announce channels", "err", err)
		return
	}

	for _, cfg := range configs {
		dayRows, err := s.timeLog.TotalsForDay(ctx, cfg.GuildID, priorDay)
		if err != nil {
			log.Error("failed daily totals query", "guildID", cfg.GuildID, "day", priorDay, "err", err)
			continue
		}
		if len(dayRows) == 0 {
			continue
		}

		weekRows, err := s.timeLog.TotalsForRange(ctx, cfg.GuildID, weekStart, priorDay)
		if err != nil {
			log.Error("failed weekly totals query", "guildID", cfg.GuildID, "err", err)
			continue
		}

		report := dailyReport{
			PriorDay:  priorDay,
			WeekStart: weekStart,
			DayRows:   dayRows,
			WeekRows:  weekRows,
		}
		if err := s.announcer.Publish(ctx, cfg, report); err != nil {
			log.Error("failed report publish", "guildID", cfg.GuildID, "channelID", cfg.AnnounceChannelID, "err", err)
		}
	}
}
