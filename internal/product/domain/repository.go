package domain

import (
	"context"

	"gorm.io/gorm"
)

// CatalogFilter selects available products for the storefront.
type CatalogFilter struct {
	CategoryID int64
	Query      string
	Sort       string
}

// ListFilter selects products for staff, regardless of availability.
type ListFilter struct {
	Query       string
	CategoryID  int64
	IsFeatured  *bool
	IsAvailable *bool
	StockStatus StockStatus
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, product *Product) error
	Update(ctx context.Context, db *gorm.DB, product *Product) error
	Delete(ctx context.Context, db *gorm.DB, id int64) (int64, error)
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Product, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string, availableOnly bool) (*Product, error)

	CountCatalog(ctx context.Context, db *gorm.DB, filter CatalogFilter) (int64, error)
	ListCatalog(ctx context.Context, db *gorm.DB, filter CatalogFilter, offset, limit int) ([]Product, error)
	Featured(ctx context.Context, db *gorm.DB, limit int) ([]Product, error)
	Related(ctx context.Context, db *gorm.DB, categoryID, excludeID int64, limit int) ([]Product, error)

	Count(ctx context.Context, db *gorm.DB, filter ListFilter) (int64, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, offset, limit int) ([]Product, error)
}
