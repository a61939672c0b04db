// Package studybot tracks how long members of a Discord server spend
// studying. Elapsed time is attributed to a study day that rolls over at
// 06:00 local time rather than midnight.
package studybot

import "time"

type (
	GuildID   string
	UserID    string
	ChannelID string

	// StudyDay is the accounting date for elapsed time, formatted
	// YYYY-MM-DD. The day spans 06:00 local to 06:00 local the next day.
	StudyDay string
)

// SessionKind distinguishes how a timer was opened. Voice sessions follow
// voice-channel presence; text sessions are opened by keywords and support
// pause/resume.
type SessionKind string

const (
	VoiceSession SessionKind = "voice"
	TextSession  SessionKind = "text"
)

// CanPause reports whether sessions of this kind support pause/resume.
func (k SessionKind) CanPause() bool {
	return k == TextSession
}

func (k SessionKind) Valid() bool {
	return k == VoiceSession || k == TextSession
}

// SessionKey identifies a session. At most one session may exist per key.
type SessionKey struct {
	GuildID GuildID
	UserID  UserID
	Kind    SessionKind
}

// ActiveSessionRecord is the durable mirror of a running session.
// AccumulatedSeconds carries time banked by earlier pause/resume cycles of a
// text session; it is zero for voice sessions.
type ActiveSessionRecord struct {
	SessionKey
	StartedAt          time.Time
	AccumulatedSeconds int
}

// PausedSessionRecord exists only while a text session is paused. It is
// mutually exclusive with an ActiveSessionRecord of the same key.
type PausedSessionRecord struct {
	SessionKey
	PausedAt           time.Time
	AccumulatedSeconds int
}

// MemberTotal is one ranking row: a member and their accumulated seconds,
// for a single study day or a summed range.
type MemberTotal struct {
	UserID  UserID
	Seconds int
}

// GuildConfig holds per-guild settings. AnnounceChannelID is empty until an
// admin sets one; the daily report is skipped for guilds without it.
type GuildConfig struct {
	GuildID           GuildID
	AnnounceChannelID ChannelID
}
