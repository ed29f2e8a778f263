package repository

import (
	"context"

	"github.com/mingchang/meatshop/internal/productimage/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const imageOrdering = "display_order ASC, created_at ASC, id ASC"

func (r *repo) Insert(ctx context.Context, db *gorm.DB, image *domain.ProductImage) error {
	return db.WithContext(ctx).Create(image).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, image *domain.ProductImage) error {
	return db.WithContext(ctx).Exec(
		`UPDATE product_images
		 SET alt_text_zh = ?, alt_text_en = ?, display_order = ?, is_primary = ?, updated_at = ?
		 WHERE id = ?`,
		image.AltText.ZH,
		image.AltText.EN,
		image.DisplayOrder,
		image.IsPrimary,
		image.UpdatedAt,
		image.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) (int64, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM product_images WHERE id = ?`, id)
	return res.RowsAffected, res.Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.ProductImage, error) {
	var img domain.ProductImage
	if err := db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&img).Error; err != nil {
		return nil, err
	}
	if img.ID == 0 {
		return nil, nil
	}
	return &img, nil
}

func (r *repo) ListByProduct(ctx context.Context, db *gorm.DB, productID int64) ([]domain.ProductImage, error) {
	var items []domain.ProductImage
	err := db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order(imageOrdering).
		Find(&items).Error
	return items, err
}

func (r *repo) ListByProducts(ctx context.Context, db *gorm.DB, productIDs []int64) (map[int64][]domain.ProductImage, error) {
	out := make(map[int64][]domain.ProductImage, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	var items []domain.ProductImage
	err := db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Order(imageOrdering).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		out[item.ProductID] = append(out[item.ProductID], item)
	}
	return out, nil
}

func (r *repo) PrimaryByProducts(ctx context.Context, db *gorm.DB, productIDs []int64) (map[int64]domain.ProductImage, error) {
	out := make(map[int64]domain.ProductImage, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	var items []domain.ProductImage
	err := db.WithContext(ctx).
		Where("product_id IN ? AND is_primary = ?", productIDs, true).
		Order(imageOrdering).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if _, ok := out[item.ProductID]; !ok {
			out[item.ProductID] = item
		}
	}
	return out, nil
}

func (r *repo) Stats(ctx context.Context, db *gorm.DB, productIDs []int64) (map[int64]domain.Stats, error) {
	out := make(map[int64]domain.Stats, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		ProductID int64
		Total     int64
		Primaries int64
	}
	err := db.WithContext(ctx).Raw(
		`SELECT product_id,
		        COUNT(*) AS total,
		        SUM(CASE WHEN is_primary THEN 1 ELSE 0 END) AS primaries
		 FROM product_images
		 WHERE product_id IN ?
		 GROUP BY product_id`,
		productIDs,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ProductID] = domain.Stats{Count: row.Total, HasPrimary: row.Primaries > 0}
	}
	return out, nil
}

func (r *repo) PathTaken(ctx context.Context, db *gorm.DB, path string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.ProductImage{}).Where("image_path = ?", path).Count(&count).Error
	return count > 0, err
}

func (r *repo) FindProduct(ctx context.Context, db *gorm.DB, productID int64) (*domain.ProductRef, error) {
	var ref domain.ProductRef
	err := db.WithContext(ctx).Table("products").Select("id", "slug").Where("id = ?", productID).Limit(1).Scan(&ref).Error
	if err != nil {
		return nil, err
	}
	if ref.ID == 0 {
		return nil, nil
	}
	return &ref, nil
}

func (r *repo) LockProduct(ctx context.Context, tx *gorm.DB, productID int64) (*domain.ProductRef, error) {
	db := tx.WithContext(ctx)
	if db.Dialector.Name() == "sqlite" {
		// Take the database write lock up front; SQLite has no row locks.
		if err := db.Exec(`UPDATE products SET updated_at = updated_at WHERE id = ?`, productID).Error; err != nil {
			return nil, err
		}
	} else {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var ref domain.ProductRef
	err := db.Table("products").Select("id", "slug").Where("id = ?", productID).Limit(1).Scan(&ref).Error
	if err != nil {
		return nil, err
	}
	if ref.ID == 0 {
		return nil, nil
	}
	return &ref, nil
}

func (r *repo) DemoteOthers(ctx context.Context, tx *gorm.DB, productID, keepID int64) error {
	return tx.WithContext(ctx).Exec(
		`UPDATE product_images SET is_primary = ? WHERE product_id = ? AND id <> ? AND is_primary = ?`,
		false, productID, keepID, true,
	).Error
}
