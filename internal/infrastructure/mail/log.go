package mail

import (
	"context"
	"sync"

	"github.com/invoicer/backend/internal/infrastructure/retry"
	"go.uber.org/zap"
)

// LogMailer writes messages to the log instead of sending them. It is the
// development default and keeps a copy of everything it was given.
type LogMailer struct {
	logger *zap.Logger

	mu   sync.Mutex
	sent []Message
}

// NewLogMailer creates the mailer
func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := msg.Validate(); err != nil {
		return retry.Permanent(err)
	}

	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()

	m.logger.Info("Mail not delivered (log provider)",
		zap.String("to", msg.To),
		zap.String("to_name", msg.ToName),
		zap.String("subject", msg.Subject),
		zap.Int("body_bytes", len(msg.HTMLBody)),
	)
	return nil
}

// Sent returns the messages seen so far
func (m *LogMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}

var _ Mailer = (*LogMailer)(nil)
