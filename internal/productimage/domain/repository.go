package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, image *ProductImage) error
	Update(ctx context.Context, db *gorm.DB, image *ProductImage) error
	Delete(ctx context.Context, db *gorm.DB, id int64) (int64, error)
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*ProductImage, error)
	ListByProduct(ctx context.Context, db *gorm.DB, productID int64) ([]ProductImage, error)
	ListByProducts(ctx context.Context, db *gorm.DB, productIDs []int64) (map[int64][]ProductImage, error)
	PrimaryByProducts(ctx context.Context, db *gorm.DB, productIDs []int64) (map[int64]ProductImage, error)
	Stats(ctx context.Context, db *gorm.DB, productIDs []int64) (map[int64]Stats, error)
	PathTaken(ctx context.Context, db *gorm.DB, path string) (bool, error)

	FindProduct(ctx context.Context, db *gorm.DB, productID int64) (*ProductRef, error)
	// LockProduct serializes primary-image changes of one product. Returns nil
	// when the product does not exist.
	LockProduct(ctx context.Context, tx *gorm.DB, productID int64) (*ProductRef, error)
	// DemoteOthers clears is_primary on every image of the product except keepID.
	DemoteOthers(ctx context.Context, tx *gorm.DB, productID, keepID int64) error
}
