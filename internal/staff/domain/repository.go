package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, user *StaffUser) error
	FindByUsername(ctx context.Context, db *gorm.DB, username string) (*StaffUser, error)
	TouchLogin(ctx context.Context, db *gorm.DB, id int64, at time.Time) error
	UpdatePasswordHash(ctx context.Context, db *gorm.DB, id int64, hash string, at time.Time) error
}
