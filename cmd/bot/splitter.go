package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Thiht/transactor"

	"github.com/hywlin/studybot-go"
)

// intervalSplitter decomposes a raw [start, end) interval across study-day
// boundaries and commits each piece to the time log under the study day it
// belongs to. It is the sole writer of time_log on the session path.
//
// Apply is not idempotent: re-applying the same physical interval double
// counts. Callers apply each interval exactly once.
type intervalSplitter struct {
	clock   studybot.Clock
	timeLog studybot.TimeLogRepo
	tx      transactor.Transactor
}

func newIntervalSplitter(clock studybot.Clock, timeLog studybot.TimeLogRepo, tx transactor.Transactor) *intervalSplitter {
	return &intervalSplitter{
		clock:   clock,
		timeLog: timeLog,
		tx:      tx,
	}
}

// Apply commits floor-truncated seconds for each boundary-delimited piece of
// [start, end). end <= start is a silent no-op, tolerating clock skew and
// duplicate stop events. All pieces commit in one transaction.
func (sp *intervalSplitter) Apply(ctx context.Context, guildID studybot.GuildID, userID studybot.UserID, start, end time.Time) error {
	if !end.After(start) {
		return nil
	}

	err := sp.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		cur := start
		for {
			boundary := sp.clock.NextBoundaryAfter(cur)
			subEnd := boundary
			if end.Before(boundary) {
				subEnd = end
			}
			// truncation is per piece: an interval crossing N boundaries
			// can lose up to N fractional seconds
			secs := int(subEnd.Sub(cur).Seconds())
			if secs > 0 {
				day := sp.clock.StudyDayOf(cur)
				if err := sp.timeLog.AddSeconds(ctx, guildID, userID, day, secs); err != nil {
					return err
				}
			}
			if !subEnd.Before(end) {
				return nil
			}
			cur = subEnd
		}
	})
	if err != nil {
		return fmt.Errorf("failed to apply interval: %w", err)
	}
	return nil
}
