package domain

import (
	"context"

	"gorm.io/gorm"
)

type ListFilter struct {
	Query    string
	IsActive *bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, category *Category) error
	Update(ctx context.Context, db *gorm.DB, category *Category) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Category, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Category, error)
	ListActive(ctx context.Context, db *gorm.DB) ([]Category, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Category, error)
	// ImageKeys lists the stored files of every image under the category.
	ImageKeys(ctx context.Context, db *gorm.DB, id int64) ([]string, error)
	CountProducts(ctx context.Context, db *gorm.DB, ids []int64) (map[int64]int64, error)
	// DeleteCascade removes the category together with its products and their
	// images. It must run inside a transaction.
	DeleteCascade(ctx context.Context, tx *gorm.DB, id int64) (int64, error)
}
