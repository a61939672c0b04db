package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hywlin/studybot-go"
)

func TestDebugAddSeconds(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clock := studybot.NewClock(testLoc)
	now := localTime(2024, 3, 5, 12, 0, 0)

	t.Run("explicit day", func(t *testing.T) {
		t.Parallel()
		timeLog := &mockTimeLogRepo{}

		day, err := debugAddSeconds(ctx, timeLog, clock, "g", "u", "2024-02-29", 600, now)
		require.NoError(t, err)
		assert.Equal(t, studybot.StudyDay("2024-02-29"), day)
		assert.Equal(t, 600, timeLog.secondsFor("u", "2024-02-29"))
	})

	t.Run("empty day defaults to current study day", func(t *testing.T) {
		t.Parallel()
		timeLog := &mockTimeLogRepo{}

		day, err := debugAddSeconds(ctx, timeLog, clock, "g", "u", "", 60, now)
		require.NoError(t, err)
		assert.Equal(t, studybot.StudyDay("2024-03-05"), day)
	})

	t.Run("non-positive seconds rejected before any write", func(t *testing.T) {
		t.Parallel()
		timeLog := &mockTimeLogRepo{}

		for _, secs := range []int{0, -1} {
			_, err := debugAddSeconds(ctx, timeLog, clock, "g", "u", "", secs, now)
			assert.ErrorIs(t, err, studybot.ErrInvalidArgument)
		}
		assert.Empty(t, timeLog.calls)
	})

	t.Run("malformed day rejected", func(t *testing.T) {
		t.Parallel()
		timeLog := &mockTimeLogRepo{}

		_, err := debugAddSeconds(ctx, timeLog, clock, "g", "u", "03/05/2024", 60, now)
		assert.ErrorIs(t, err, studybot.ErrInvalidArgument)
		assert.Empty(t, timeLog.calls)
	})
}
