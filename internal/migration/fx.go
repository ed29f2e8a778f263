package migration

import (
	"github.com/mingchang/meatshop/internal/config"
	"github.com/mingchang/meatshop/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if err := Apply(conn); err != nil {
			return err
		}

		created, err := seed.EnsureBootstrapAdmin(conn, cfg.Bootstrap)
		if err != nil {
			return err
		}
		if created {
			log.Info("bootstrap manager account created", zap.String("username", cfg.Bootstrap.AdminUsername))
		}
		return nil
	}),
)
