package studybot

import (
	"os"
	"strings"
	"sync"
)

// KeywordAction is what a matched trigger word routes to.
type KeywordAction int

const (
	NoAction KeywordAction = iota
	StartAction
	StopAction
	PauseAction
	ResumeAction
)

// Keywords holds the four trigger-word sets scanned in monitored text
// channels. Sets can be swapped at runtime without restarting the event
// loop.
type Keywords struct {
	mu                         sync.RWMutex
	start, stop, pause, resume map[string]struct{}
}

// Defaults match the original deployment's trigger words plus English
// aliases.
var defaultKeywords = map[KeywordAction][]string{
	StartAction:  {"讀", "start"},
	StopAction:   {"休", "stop"},
	PauseAction:  {"暫停", "pause"},
	ResumeAction: {"繼續", "resume"},
}

// LoadKeywords builds the keyword sets from the STUDYBOT_*_KEYWORDS
// environment variables (comma-separated), falling back to defaults for any
// unset variable.
func LoadKeywords() *Keywords {
	kw := &Keywords{}
	kw.Reload()
	return kw
}

// Reload re-reads the keyword environment variables and swaps the sets in
// place.
func (kw *Keywords) Reload() {
	start := keywordSet(os.Getenv("STUDYBOT_START_KEYWORDS"), defaultKeywords[StartAction])
	stop := keywordSet(os.Getenv("STUDYBOT_STOP_KEYWORDS"), defaultKeywords[StopAction])
	pause := keywordSet(os.Getenv("STUDYBOT_PAUSE_KEYWORDS"), defaultKeywords[PauseAction])
	resume := keywordSet(os.Getenv("STUDYBOT_RESUME_KEYWORDS"), defaultKeywords[ResumeAction])

	kw.mu.Lock()
	defer kw.mu.Unlock()
	kw.start, kw.stop, kw.pause, kw.resume = start, stop, pause, resume
}

// Match maps a message to its action. Unmatched text returns NoAction.
func (kw *Keywords) Match(text string) KeywordAction {
	word := strings.ToLower(strings.TrimSpace(text))
	if word == "" {
		return NoAction
	}

	kw.mu.RLock()
	defer kw.mu.RUnlock()
	switch {
	case contains(kw.start, word):
		return StartAction
	case contains(kw.stop, word):
		return StopAction
	case contains(kw.pause, word):
		return PauseAction
	case contains(kw.resume, word):
		return ResumeAction
	}
	return NoAction
}

func keywordSet(env string, defaults []string) map[string]struct{} {
	words := defaults
	if env != "" {
		words = strings.Split(env, ",")
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

func contains(set map[string]struct{}, word string) bool {
	_, ok := set[word]
	return ok
}
