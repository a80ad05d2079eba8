package mail

import (
	"context"

	"github.com/invoicer/backend/internal/infrastructure/retry"
	"go.uber.org/zap"
)

// AttemptObserver is told about every delivery attempt
type AttemptObserver func(ctx context.Context, attempt int, err error)

// RetryingMailer retries transient delivery failures with exponential backoff
type RetryingMailer struct {
	next      Mailer
	cfg       retry.Config
	logger    *zap.Logger
	observers []AttemptObserver
}

// NewRetryingMailer wraps next
func NewRetryingMailer(next Mailer, cfg retry.Config, logger *zap.Logger) *RetryingMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryingMailer{next: next, cfg: cfg, logger: logger}
}

// Observe registers fn to be called after each attempt
func (m *RetryingMailer) Observe(fn AttemptObserver) {
	m.observers = append(m.observers, fn)
}

func (m *RetryingMailer) Send(ctx context.Context, msg Message) error {
	_, err := retry.Do(ctx, m.cfg, m.logger, "mail.send", func(ctx context.Context, attempt int) (struct{}, error) {
		err := m.next.Send(ctx, msg)
		for _, fn := range m.observers {
			fn(ctx, attempt, err)
		}
		return struct{}{}, err
	})
	return err
}

var _ Mailer = (*RetryingMailer)(nil)
