package email

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

//go:generate mockgen -destination=mock/mock_provider.go -package=mock . Provider

// Message is a plain-text notification.
type Message struct {
	From    string
	To      []string
	Bcc     []string
	Subject string
	Text    string
}

type Provider interface {
	Send(ctx context.Context, msg Message) error
}

type NoOpProvider struct{}

func (NoOpProvider) Send(context.Context, Message) error {
	return nil
}

// ConsoleProvider writes messages to the log instead of delivering them.
type ConsoleProvider struct {
	log *zap.Logger
}

func NewConsole(log *zap.Logger) *ConsoleProvider {
	return &ConsoleProvider{log: log.Named("email.console")}
}

func (p *ConsoleProvider) Send(_ context.Context, msg Message) error {
	p.log.Info("email",
		zap.String("from", msg.From),
		zap.String("to", strings.Join(msg.To, ",")),
		zap.Int("bcc", len(msg.Bcc)),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Text),
	)
	return nil
}
