package game

import (
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// SessionOption configures a Session during creation.
type SessionOption func(*Session)

// WithClock sets the clock used to timestamp notifications and chat.
// Default is the real clock.
func WithClock(clock quartz.Clock) SessionOption {
	return func(s *Session) {
		s.clock = clock
	}
}

// WithLogger sets the session logger. Default discards output.
func WithLogger(logger *log.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger.WithPrefix("session")
	}
}

// WithScorer replaces HighCardScore for settlement
func WithScorer(scorer Scorer) SessionOption {
	return func(s *Session) {
		s.scorer = scorer
	}
}

// WithIDGenerator sets how notification and chat ids are made.
// Default is random UUIDs.
func WithIDGenerator(newID func() string) SessionOption {
	return func(s *Session) {
		s.newID = newID
	}
}
