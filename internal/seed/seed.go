package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/mingchang/meatshop/internal/config"
	staffdomain "github.com/mingchang/meatshop/internal/staff/domain"
	"github.com/mingchang/meatshop/internal/staff/password"
	"gorm.io/gorm"
)

// EnsureBootstrapAdmin creates the manager account named in the bootstrap
// config when it does not exist yet. Existing accounts are left untouched.
func EnsureBootstrapAdmin(db *gorm.DB, cfg config.BootstrapConfig) (bool, error) {
	if db == nil {
		return false, errors.New("seed database handle is required")
	}
	username := strings.TrimSpace(cfg.AdminUsername)
	if username == "" || cfg.AdminPassword == "" {
		return false, nil
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return false, err
	}

	created := false
	ctx := context.Background()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&staffdomain.StaffUser{}).
			Where("username = ?", username).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		hashed, err := password.Hash(cfg.AdminPassword)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		user := staffdomain.StaffUser{
			ID:           node.Generate().Int64(),
			Username:     username,
			PasswordHash: hashed,
			Role:         staffdomain.RoleManager,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}
