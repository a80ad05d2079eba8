package mail

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/mail"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/invoicer/backend/internal/infrastructure/config"
	"github.com/invoicer/backend/internal/infrastructure/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func validMessage() Message {
	return Message{
		To:       "ap@acme.example",
		ToName:   "Accounts Payable",
		Subject:  "Invoice INV-000001 from Studio",
		HTMLBody: "<p>Please find your invoice.</p>",
	}
}

func TestMessage_Validate(t *testing.T) {
	assert.NoError(t, validMessage().Validate())

	tests := []struct {
		name   string
		mutate func(*Message)
	}{
		{"bad recipient", func(m *Message) { m.To = "not-an-address" }},
		{"empty subject", func(m *Message) { m.Subject = " " }},
		{"empty body", func(m *Message) { m.HTMLBody = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMessage()
			tt.mutate(&m)
			assert.ErrorIs(t, m.Validate(), ErrInvalidMessage)
		})
	}
}

func TestBuildMIME(t *testing.T) {
	msg := validMessage()
	msg.Subject = "Facture n° 1"
	raw, err := buildMIME(mail.Address{Name: "Studio", Address: "billing@studio.example"}, msg, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	parsed, err := mail.ReadMessage(strings.NewReader(string(raw)))
	require.NoError(t, err)
	assert.Equal(t, `"Studio" <billing@studio.example>`, parsed.Header.Get("From"))
	assert.Equal(t, `"Accounts Payable" <ap@acme.example>`, parsed.Header.Get("To"))
	assert.Equal(t, "=?utf-8?q?Facture_n=C2=B0_1?=", parsed.Header.Get("Subject"))
	assert.Contains(t, parsed.Header.Get("Message-ID"), "@studio.example>")
	assert.Equal(t, "quoted-printable", parsed.Header.Get("Content-Transfer-Encoding"))
}

func TestLogMailer(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewLogMailer(zap.New(core))

	require.NoError(t, m.Send(context.Background(), validMessage()))
	assert.Len(t, m.Sent(), 1)
	assert.Equal(t, 1, logs.FilterMessage("Mail not delivered (log provider)").Len())

	err := m.Send(context.Background(), Message{To: "x"})
	assert.True(t, retry.IsPermanent(err))
}

type flakyMailer struct {
	mu       sync.Mutex
	failures int
	err      error
	calls    int
}

func (f *flakyMailer) Send(ctx context.Context, msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return nil
}

func fastRetry(attempts int) retry.Config {
	return retry.Config{MaxAttempts: attempts, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
}

func TestRetryingMailer(t *testing.T) {
	t.Run("retries transient failures", func(t *testing.T) {
		next := &flakyMailer{failures: 2, err: errors.New("connection reset")}
		m := NewRetryingMailer(next, fastRetry(3), nil)

		var attempts []int
		m.Observe(func(_ context.Context, attempt int, _ error) { attempts = append(attempts, attempt) })

		require.NoError(t, m.Send(context.Background(), validMessage()))
		assert.Equal(t, 3, next.calls)
		assert.Equal(t, []int{1, 2, 3}, attempts)
	})

	t.Run("fails after exhausting attempts", func(t *testing.T) {
		next := &flakyMailer{failures: 5, err: errors.New("connection reset")}
		err := NewRetryingMailer(next, fastRetry(3), nil).Send(context.Background(), validMessage())
		assert.Error(t, err)
		assert.Equal(t, 3, next.calls)
	})

	t.Run("does not retry permanent failures", func(t *testing.T) {
		next := &flakyMailer{failures: 5, err: retry.Permanent(errors.New("550 no such user"))}
		err := NewRetryingMailer(next, fastRetry(3), nil).Send(context.Background(), validMessage())
		assert.Error(t, err)
		assert.Equal(t, 1, next.calls)
	})
}

func TestNew(t *testing.T) {
	m, err := New(config.MailConfig{Provider: "log"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &RetryingMailer{}, m)

	_, err = New(config.MailConfig{Provider: "pigeon"}, zap.NewNop())
	assert.Error(t, err)
}

// fakeSMTP accepts one session. rcptReply is sent in response to RCPT TO.
func fakeSMTP(t *testing.T, rcptReply string) (addr string, received chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	received = make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		write := func(s string) { _, _ = conn.Write([]byte(s + "\r\n")) }
		write("220 fake ESMTP")

		var data strings.Builder
		inData := false
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			if inData {
				if line == ".\r\n" {
					inData = false
					received <- data.String()
					write("250 queued")
					continue
				}
				data.WriteString(line)
				continue
			}
			cmd := strings.ToUpper(strings.TrimSpace(line))
			switch {
			case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
				write("250-fake")
				write("250 8BITMIME")
			case strings.HasPrefix(cmd, "MAIL FROM"):
				write("250 ok")
			case strings.HasPrefix(cmd, "RCPT TO"):
				write(rcptReply)
			case cmd == "DATA":
				inData = true
				write("354 go ahead")
			case cmd == "QUIT":
				write("221 bye")
				return
			default:
				write("250 ok")
			}
		}
	}()
	return ln.Addr().String(), received
}

func smtpConfig(t *testing.T, addr string) config.MailConfig {
	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	p, err := net.LookupPort("tcp", port)
	require.NoError(t, err)
	return config.MailConfig{Host: host, Port: p, From: "billing@studio.example", FromName: "Studio", Timeout: 5 * time.Second}
}

func TestSMTPMailer(t *testing.T) {
	t.Run("delivers a message", func(t *testing.T) {
		addr, received := fakeSMTP(t, "250 ok")
		m := NewSMTPMailer(smtpConfig(t, addr), zap.NewNop())

		require.NoError(t, m.Send(context.Background(), validMessage()))
		select {
		case body := <-received:
			assert.Contains(t, body, "Subject: Invoice INV-000001 from Studio")
			assert.Contains(t, body, "Please find your invoice.")
		case <-time.After(2 * time.Second):
			t.Fatal("message not received")
		}
	})

	t.Run("5xx rejection is permanent", func(t *testing.T) {
		addr, _ := fakeSMTP(t, "550 no such user")
		err := NewSMTPMailer(smtpConfig(t, addr), nil).Send(context.Background(), validMessage())
		require.Error(t, err)
		assert.True(t, retry.IsPermanent(err))
	})

	t.Run("4xx rejection is transient", func(t *testing.T) {
		addr, _ := fakeSMTP(t, "451 try later")
		err := NewSMTPMailer(smtpConfig(t, addr), nil).Send(context.Background(), validMessage())
		require.Error(t, err)
		assert.False(t, retry.IsPermanent(err))
	})

	t.Run("unreachable relay is transient", func(t *testing.T) {
		err := NewSMTPMailer(config.MailConfig{Host: "127.0.0.1", Port: 1, From: "a@b.example", Timeout: time.Second}, nil).
			Send(context.Background(), validMessage())
		require.Error(t, err)
		assert.False(t, retry.IsPermanent(err))
	})
}
