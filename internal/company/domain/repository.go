package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	// Get returns nil when the row has not been created yet.
	Get(ctx context.Context, db *gorm.DB) (*CompanyInfo, error)
	Insert(ctx context.Context, db *gorm.DB, info *CompanyInfo) error
	Update(ctx context.Context, db *gorm.DB, info *CompanyInfo) error
}
