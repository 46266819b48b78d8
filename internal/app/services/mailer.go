package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/unicampus/internal/pkg/email"
)

// Mailer sends emails in the background so request latency does not depend on the mail provider
type Mailer struct {
	email   email.EmailService
	timeout time.Duration
	logger  zerolog.Logger
	wg      sync.WaitGroup
}

// NewMailer creates a Mailer. A nil EmailService disables sending.
func NewMailer(svc email.EmailService, timeout time.Duration, logger zerolog.Logger) *Mailer {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Mailer{email: svc, timeout: timeout, logger: logger}
}

// Go runs send in its own goroutine with a deadline. Failures are logged.
func (m *Mailer) Go(kind string, send func(ctx context.Context, svc email.EmailService) error) {
	if m == nil || m.email == nil {
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()

		if err := send(ctx, m.email); err != nil {
			m.logger.Warn().Err(err).Str("kind", kind).Msg("Failed to send email")
		}
	}()
}

// Wait blocks until in-flight emails finish
func (m *Mailer) Wait() {
	if m != nil {
		m.wg.Wait()
	}
}
