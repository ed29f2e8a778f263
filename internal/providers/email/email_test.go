package email

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	jwemail "github.com/jordan-wright/email"
	"github.com/mingchang/meatshop/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSMTPSendBuildsMessage(t *testing.T) {
	p := NewSMTP(Config{Host: "smtp.example.com", Port: 587, Username: "u", Password: "p", From: "noreply@example.com"})

	var (
		got  *jwemail.Email
		addr string
	)
	p.send = func(e *jwemail.Email, a string, _ smtp.Auth) error {
		got, addr = e, a
		return nil
	}

	err := p.Send(context.Background(), Message{
		To:      []string{"info@example.com"},
		Bcc:     []string{"audit@example.com"},
		Subject: "新的客戶詢問 New Customer Inquiry",
		Text:    "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", addr)
	assert.Equal(t, "noreply@example.com", got.From)
	assert.Equal(t, []string{"info@example.com"}, got.To)
	assert.Equal(t, []string{"audit@example.com"}, got.Bcc)
	assert.Equal(t, "hello", string(got.Text))
}

func TestSMTPSendWrapsTransportError(t *testing.T) {
	p := NewSMTP(Config{Host: "smtp.example.com", Port: 25})
	boom := errors.New("connection refused")
	p.send = func(*jwemail.Email, string, smtp.Auth) error { return boom }

	err := p.Send(context.Background(), Message{To: []string{"a@example.com"}})
	assert.ErrorIs(t, err, boom)
}

func TestSMTPSendRequiresRecipient(t *testing.T) {
	p := NewSMTP(Config{Host: "smtp.example.com", Port: 25})
	p.send = func(*jwemail.Email, string, smtp.Auth) error {
		t.Fatalf("transport must not be called")
		return nil
	}
	assert.Error(t, p.Send(context.Background(), Message{}))
}

func TestNewFromConfigSelectsBackend(t *testing.T) {
	cases := map[string]any{
		"smtp":    &SMTPProvider{},
		"noop":    NoOpProvider{},
		"console": &ConsoleProvider{},
		"":        &ConsoleProvider{},
	}
	for backend, want := range cases {
		cfg := config.Config{Email: config.EmailConfig{Backend: backend, Host: "localhost", Port: 25}}
		got := NewFromConfig(cfg, zap.NewNop())
		assert.IsType(t, want, got, backend)
	}
}
