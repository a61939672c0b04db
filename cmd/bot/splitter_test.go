package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hywlin/studybot-go"
)

var testLoc = time.FixedZone("UTC+8", 8*60*60)

func localTime(y int, m time.Month, d, hh, mm, ss int) time.Time {
	return time.Date(y, m, d, hh, mm, ss, 0, testLoc)
}

func newTestSplitter(timeLog *mockTimeLogRepo) *intervalSplitter {
	clock := studybot.NewClock(testLoc)
	return newIntervalSplitter(clock, timeLog, &mockTransactor{})
}

func TestSplitter_NoOpOnEmptyOrInvertedInterval(t *testing.T) {
	t.Parallel()
	timeLog := &mockTimeLogRepo{}
	sp := newTestSplitter(timeLog)

	at := localTime(2024, 3, 5, 12, 0, 0)
	require.NoError(t, sp.Apply(context.Background(), "g", "u", at, at))
	require.NoError(t, sp.Apply(context.Background(), "g", "u", at, at.Add(-time.Minute)))

	assert.Empty(t, timeLog.calls)
}

func TestSplitter_SingleDayInterval(t *testing.T) {
	t.Parallel()
	timeLog := &mockTimeLogRepo{}
	sp := newTestSplitter(timeLog)

	start := localTime(2024, 3, 5, 12, 0, 0)
	require.NoError(t, sp.Apply(context.Background(), "g", "u", start, start.Add(90*time.Second)))

	require.Len(t, timeLog.calls, 1)
	assert.Equal(t, addCall{GuildID: "g", UserID: "u", Day: "2024-03-05", Seconds: 90}, timeLog.calls[0])
}

func TestSplitter_BoundaryStraddle(t *testing.T) {
	t.Parallel()
	timeLog := &mockTimeLogRepo{}
	sp := newTestSplitter(timeLog)

	// 05:59:30 -> 06:00:30 local splits 30s / 30s across the boundary
	start := localTime(2024, 3, 5, 5, 59, 30)
	end := localTime(2024, 3, 5, 6, 0, 30)
	require.NoError(t, sp.Apply(context.Background(), "g", "u", start, end))

	require.Len(t, timeLog.calls, 2)
	assert.Equal(t, addCall{GuildID: "g", UserID: "u", Day: "2024-03-04", Seconds: 30}, timeLog.calls[0])
	assert.Equal(t, addCall{GuildID: "g", UserID: "u", Day: "2024-03-05", Seconds: 30}, timeLog.calls[1])
}

func TestSplitter_MultiDayInterval(t *testing.T) {
	t.Parallel()
	timeLog := &mockTimeLogRepo{}
	sp := newTestSplitter(timeLog)

	start := localTime(2024, 3, 1, 12, 0, 0)
	end := localTime(2024, 3, 3, 12, 0, 0)
	require.NoError(t, sp.Apply(context.Background(), "g", "u", start, end))

	require.Len(t, timeLog.calls, 3)
	assert.Equal(t, 18*3600, timeLog.secondsFor("u", "2024-03-01"))
	assert.Equal(t, 24*3600, timeLog.secondsFor("u", "2024-03-02"))
	assert.Equal(t, 6*3600, timeLog.secondsFor("u", "2024-03-03"))
	assert.Equal(t, 48*3600, timeLog.totalSeconds())
}

func TestSplitter_FractionalSecondsTruncatePerPiece(t *testing.T) {
	t.Parallel()
	timeLog := &mockTimeLogRepo{}
	sp := newTestSplitter(timeLog)

	start := localTime(2024, 3, 5, 12, 0, 0)
	end := start.Add(2500 * time.Millisecond)
	require.NoError(t, sp.Apply(context.Background(), "g", "u", start, end))

	require.Len(t, timeLog.calls, 1)
	assert.Equal(t, 2, timeLog.calls[0].Seconds)
}

func TestSplitter_UTCInputSplitsOnLocalBoundary(t *testing.T) {
	t.Parallel()
	timeLog := &mockTimeLogRepo{}
	sp := newTestSplitter(timeLog)

	// 21:59:00 UTC = 05:59:00 local on 2024-03-05
	start := time.Date(2024, 3, 4, 21, 59, 0, 0, time.UTC)
	end := start.Add(2 * time.Minute)
	require.NoError(t, sp.Apply(context.Background(), "g", "u", start, end))

	assert.Equal(t, 60, timeLog.secondsFor("u", "2024-03-04"))
	assert.Equal(t, 60, timeLog.secondsFor("u", "2024-03-05"))
}
