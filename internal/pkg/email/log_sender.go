package email

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// LogSender records messages instead of delivering them
type LogSender struct {
	logger zerolog.Logger

	mu   sync.Mutex
	sent []Message
}

// NewLogSender creates a development sender
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs msg and keeps it for inspection
func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()

	s.logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("text", msg.Text).
		Msg("Email captured by log sender")
	return nil
}

// Sent returns a copy of captured messages
func (s *LogSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}
