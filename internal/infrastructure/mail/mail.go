// Package mail delivers outgoing email.
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/infrastructure/config"
	"github.com/invoicer/backend/internal/infrastructure/retry"
	"go.uber.org/zap"
)

// ErrInvalidMessage is returned for messages that can never be delivered
var ErrInvalidMessage = errors.New("invalid mail message")

// Message is a single HTML mail
type Message struct {
	To       string
	ToName   string
	Subject  string
	HTMLBody string
	// ReplyTo is optional
	ReplyTo string
}

// Validate checks the message has a parseable recipient, subject and body
func (m Message) Validate() error {
	if _, err := mail.ParseAddress(m.To); err != nil {
		return fmt.Errorf("%w: recipient %q: %v", ErrInvalidMessage, m.To, err)
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("%w: subject is empty", ErrInvalidMessage)
	}
	if strings.TrimSpace(m.HTMLBody) == "" {
		return fmt.Errorf("%w: body is empty", ErrInvalidMessage)
	}
	return nil
}

// Mailer sends a message. Implementations must honour ctx cancellation.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New builds the mailer selected by cfg.Provider, wrapped with retries
func New(cfg config.MailConfig, logger *zap.Logger) (*RetryingMailer, error) {
	var base Mailer
	switch cfg.Provider {
	case "smtp":
		base = NewSMTPMailer(cfg, logger)
	case "", "log":
		base = NewLogMailer(logger)
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
	return NewRetryingMailer(base, retry.Config{
		MaxAttempts:       cfg.RetryAttempts,
		InitialBackoff:    cfg.RetryInitialBackoff,
		MaxBackoff:        cfg.RetryMaxBackoff,
		BackoffMultiplier: 2,
	}, logger), nil
}

// buildMIME renders msg as an RFC 5322 message with a quoted-printable HTML body
func buildMIME(from mail.Address, msg Message, now time.Time) ([]byte, error) {
	to := mail.Address{Name: msg.ToName, Address: msg.To}

	var buf bytes.Buffer
	header := func(k, v string) {
		buf.WriteString(k)
		buf.WriteString(": ")
		buf.WriteString(v)
		buf.WriteString("\r\n")
	}
	header("From", from.String())
	header("To", to.String())
	if msg.ReplyTo != "" {
		header("Reply-To", msg.ReplyTo)
	}
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", now.Format(time.RFC1123Z))
	header("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), domainOf(from.Address)))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/html; charset="utf-8"`)
	header("Content-Transfer-Encoding", "quoted-printable")
	buf.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&buf)
	if _, err := qp.Write([]byte(msg.HTMLBody)); err != nil {
		return nil, err
	}
	if err := qp.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func domainOf(addr string) string {
	if i := strings.LastIndexByte(addr, '@'); i >= 0 && i < len(addr)-1 {
		return addr[i+1:]
	}
	return "localhost"
}
