package email

import (
	"github.com/mingchang/meatshop/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.email",
	fx.Provide(NewFromConfig),
)

// NewFromConfig picks the backend named by EMAIL_BACKEND.
func NewFromConfig(cfg config.Config, log *zap.Logger) Provider {
	switch cfg.Email.Backend {
	case "smtp":
		return NewSMTP(Config{
			Host:     cfg.Email.Host,
			Port:     cfg.Email.Port,
			UseTLS:   cfg.Email.UseTLS,
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
		})
	case "noop", "none":
		return NoOpProvider{}
	default:
		return NewConsole(log)
	}
}
