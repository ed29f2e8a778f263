package config

import (
	"errors"
	"net/mail"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultFallbackRecipient = "info@mingchang.com.tw"

// NotificationConfig controls where inquiry notifications are delivered.
type NotificationConfig struct {
	Enabled           bool     `mapstructure:"enabled"`
	FallbackRecipient string   `mapstructure:"fallbackRecipient"`
	Bcc               []string `mapstructure:"bcc"`
}

func DefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{
		Enabled:           true,
		FallbackRecipient: defaultFallbackRecipient,
	}
}

type NotificationConfigHolder struct {
	current atomic.Value // holds NotificationConfig
}

// NewStaticNotificationConfigHolder returns a holder that never reloads.
func NewStaticNotificationConfigHolder(cfg NotificationConfig) *NotificationConfigHolder {
	holder := &NotificationConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewNotificationConfigHolder(log *zap.Logger) (*NotificationConfigHolder, error) {
	log = log.Named("config.notification")

	v := viper.New()
	v.SetConfigName("notification")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/meatshop")
	v.AddConfigPath(".")

	v.SetEnvPrefix("MEATSHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultNotificationConfig()
	v.SetDefault("notification.enabled", defaults.Enabled)
	v.SetDefault("notification.fallbackRecipient", defaults.FallbackRecipient)
	v.SetDefault("notification.bcc", []string{})

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	var cfg NotificationConfig
	if err := v.UnmarshalKey("notification", &cfg); err != nil {
		return nil, err
	}
	if err := validateNotificationConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticNotificationConfigHolder(cfg)
	if !fileFound {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated NotificationConfig
		if err := v.UnmarshalKey("notification", &updated); err != nil {
			log.Warn("notification config reload failed", zap.Error(err))
			return
		}
		if err := validateNotificationConfig(updated); err != nil {
			log.Warn("invalid notification config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("notification config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *NotificationConfigHolder) Get() NotificationConfig {
	return h.current.Load().(NotificationConfig)
}

func validateNotificationConfig(cfg NotificationConfig) error {
	if strings.TrimSpace(cfg.FallbackRecipient) == "" {
		return errors.New("notification.fallbackRecipient cannot be empty")
	}
	if _, err := mail.ParseAddress(cfg.FallbackRecipient); err != nil {
		return errors.New("notification.fallbackRecipient is not a valid address")
	}
	for _, addr := range cfg.Bcc {
		if _, err := mail.ParseAddress(addr); err != nil {
			return errors.New("notification.bcc contains an invalid address")
		}
	}
	return nil
}
