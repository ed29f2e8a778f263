package repository

import (
	"context"
	"strings"

	"github.com/mingchang/meatshop/internal/category/domain"
	"github.com/mingchang/meatshop/pkg/db/search"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, category *domain.Category) error {
	return db.WithContext(ctx).Create(category).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, category *domain.Category) error {
	return db.WithContext(ctx).Exec(
		`UPDATE categories
		 SET name_zh = ?, name_en = ?, slug = ?, description_zh = ?, description_en = ?,
		     display_order = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		category.Name.ZH,
		category.Name.EN,
		category.Slug,
		category.Description.ZH,
		category.Description.EN,
		category.DisplayOrder,
		category.IsActive,
		category.UpdatedAt,
		category.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Category, error) {
	var c domain.Category
	err := db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	return &c, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Category, error) {
	var c domain.Category
	err := db.WithContext(ctx).Where("slug = ?", slug).Limit(1).Find(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	return &c, nil
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB) ([]domain.Category, error) {
	var items []domain.Category
	err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("display_order ASC").Order("name_en ASC").Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Category, error) {
	var items []domain.Category
	stmt := db.WithContext(ctx).Model(&domain.Category{})

	if q := strings.TrimSpace(filter.Query); q != "" {
		stmt = search.Contains(stmt, q, "name_zh", "name_en", "slug")
	}
	if filter.IsActive != nil {
		stmt = stmt.Where("is_active = ?", *filter.IsActive)
	}

	err := stmt.Order("display_order ASC").Order("name_en ASC").Order("id ASC").Find(&items).Error
	return items, err
}

func (r *repo) CountProducts(ctx context.Context, db *gorm.DB, ids []int64) (map[int64]int64, error) {
	out := make(map[int64]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []struct {
		CategoryID int64
		Total      int64
	}
	err := db.WithContext(ctx).Raw(
		`SELECT category_id, COUNT(*) AS total FROM products WHERE category_id IN ? GROUP BY category_id`,
		ids,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.CategoryID] = row.Total
	}
	return out, nil
}

func (r *repo) ImageKeys(ctx context.Context, db *gorm.DB, id int64) ([]string, error) {
	var rows []struct {
		ImagePath     string
		ThumbnailPath string
		MediumPath    string
		LargePath     string
	}
	err := db.WithContext(ctx).Raw(
		`SELECT pi.image_path, pi.thumbnail_path, pi.medium_path, pi.large_path
		 FROM product_images pi
		 JOIN products p ON p.id = pi.product_id
		 WHERE p.category_id = ?`,
		id,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(rows)*4)
	for _, row := range rows {
		for _, key := range []string{row.ImagePath, row.ThumbnailPath, row.MediumPath, row.LargePath} {
			if key != "" {
				keys = append(keys, key)
			}
		}
	}
	return keys, nil
}

func (r *repo) DeleteCascade(ctx context.Context, tx *gorm.DB, id int64) (int64, error) {
	db := tx.WithContext(ctx)
	if err := db.Exec(
		`DELETE FROM product_images WHERE product_id IN (SELECT id FROM products WHERE category_id = ?)`, id,
	).Error; err != nil {
		return 0, err
	}
	if err := db.Exec(`DELETE FROM products WHERE category_id = ?`, id).Error; err != nil {
		return 0, err
	}
	res := db.Exec(`DELETE FROM categories WHERE id = ?`, id)
	return res.RowsAffected, res.Error
}
