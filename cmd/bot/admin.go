package main

import (
	"context"
	"fmt"
	"time"

	"github.com/hywlin/studybot-go"
)

// debugAddSeconds manually credits study time. The day defaults to the
// current study day when empty. Rejects non-positive amounts and malformed
// days before touching the store.
func debugAddSeconds(ctx context.Context, timeLog studybot.TimeLogRepo, clock studybot.Clock, guildID studybot.GuildID, userID studybot.UserID, dayStr string, seconds int, now time.Time) (studybot.StudyDay, error) {
	if seconds <= 0 {
		return "", fmt.Errorf("%w: seconds must be > 0, got %d", studybot.ErrInvalidArgument, seconds)
	}

	day := clock.StudyDayOf(now)
	if dayStr != "" {
		parsed, err := studybot.ParseStudyDay(dayStr)
		if err != nil {
			return "", err
		}
		day = parsed
	}

	if err := timeLog.AddSeconds(ctx, guildID, userID, day, seconds); err != nil {
		return "", fmt.Errorf("failed to add seconds: %w", err)
	}
	return day, nil
}
