package studybot

import "errors"

// Expected user-facing conditions. Handlers surface these as a rejected
// command rather than a fault; they are never retried.
var (
	ErrAlreadyRunning  = errors.New("session already running")
	ErrNotRunning      = errors.New("no running session")
	ErrNoPausedSession = errors.New("no paused session")
	ErrInvalidArgument = errors.New("invalid argument")
)
