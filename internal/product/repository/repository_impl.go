package repository

import (
	"context"
	"strings"

	"github.com/mingchang/meatshop/internal/product/domain"
	"github.com/mingchang/meatshop/pkg/db/search"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

var searchColumns = []string{"name_zh", "name_en", "description_zh", "description_en"}

// defaultOrdering puts featured products first, then sorts by English name.
const defaultOrdering = "is_featured DESC, name_en ASC, id ASC"

func (r *repo) Insert(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, p *domain.Product) error {
	return db.WithContext(ctx).Exec(
		`UPDATE products
		 SET category_id = ?, name_zh = ?, name_en = ?, slug = ?,
		     description_zh = ?, description_en = ?, price = ?, unit = ?, weight_grams = ?,
		     origin_zh = ?, origin_en = ?, nutritional_info_zh = ?, nutritional_info_en = ?,
		     is_featured = ?, is_available = ?, stock_status = ?, updated_at = ?
		 WHERE id = ?`,
		p.CategoryID,
		p.Name.ZH,
		p.Name.EN,
		p.Slug,
		p.Description.ZH,
		p.Description.EN,
		p.Price,
		p.Unit,
		p.WeightGrams,
		p.Origin.ZH,
		p.Origin.EN,
		p.NutritionalInfo.ZH,
		p.NutritionalInfo.EN,
		p.IsFeatured,
		p.IsAvailable,
		p.StockStatus,
		p.UpdatedAt,
		p.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) (int64, error) {
	stmt := db.WithContext(ctx)
	if err := stmt.Exec(`DELETE FROM product_images WHERE product_id = ?`, id).Error; err != nil {
		return 0, err
	}
	res := stmt.Exec(`DELETE FROM products WHERE id = ?`, id)
	return res.RowsAffected, res.Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Product, error) {
	var p domain.Product
	if err := db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&p).Error; err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string, availableOnly bool) (*domain.Product, error) {
	var p domain.Product
	stmt := db.WithContext(ctx).Where("slug = ?", slug)
	if availableOnly {
		stmt = stmt.Where("is_available = ?", true)
	}
	if err := stmt.Limit(1).Find(&p).Error; err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) catalog(ctx context.Context, db *gorm.DB, filter domain.CatalogFilter) *gorm.DB {
	stmt := db.WithContext(ctx).Model(&domain.Product{}).Where("is_available = ?", true)
	if filter.CategoryID != 0 {
		stmt = stmt.Where("category_id = ?", filter.CategoryID)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		stmt = search.Contains(stmt, q, searchColumns...)
	}
	return stmt
}

func (r *repo) CountCatalog(ctx context.Context, db *gorm.DB, filter domain.CatalogFilter) (int64, error) {
	var total int64
	err := r.catalog(ctx, db, filter).Count(&total).Error
	return total, err
}

func (r *repo) ListCatalog(ctx context.Context, db *gorm.DB, filter domain.CatalogFilter, offset, limit int) ([]domain.Product, error) {
	var items []domain.Product
	err := r.catalog(ctx, db, filter).
		Order(catalogOrdering(filter.Sort)).
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	return items, err
}

func catalogOrdering(sort string) string {
	switch sort {
	case domain.SortPriceAsc:
		return "price ASC, id ASC"
	case domain.SortPriceDesc:
		return "price DESC, id ASC"
	case domain.SortName:
		return "name_en ASC, id ASC"
	default:
		return defaultOrdering
	}
}

func (r *repo) Featured(ctx context.Context, db *gorm.DB, limit int) ([]domain.Product, error) {
	var items []domain.Product
	err := db.WithContext(ctx).
		Where("is_featured = ? AND is_available = ?", true, true).
		Order(defaultOrdering).
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *repo) Related(ctx context.Context, db *gorm.DB, categoryID, excludeID int64, limit int) ([]domain.Product, error) {
	var items []domain.Product
	err := db.WithContext(ctx).
		Where("category_id = ? AND is_available = ? AND id <> ?", categoryID, true, excludeID).
		Order(defaultOrdering).
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *repo) filtered(ctx context.Context, db *gorm.DB, filter domain.ListFilter) *gorm.DB {
	stmt := db.WithContext(ctx).Model(&domain.Product{})
	if q := strings.TrimSpace(filter.Query); q != "" {
		stmt = search.Contains(stmt, q, searchColumns...)
	}
	if filter.CategoryID != 0 {
		stmt = stmt.Where("category_id = ?", filter.CategoryID)
	}
	if filter.IsFeatured != nil {
		stmt = stmt.Where("is_featured = ?", *filter.IsFeatured)
	}
	if filter.IsAvailable != nil {
		stmt = stmt.Where("is_available = ?", *filter.IsAvailable)
	}
	if filter.StockStatus != "" {
		stmt = stmt.Where("stock_status = ?", filter.StockStatus)
	}
	return stmt
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, filter domain.ListFilter) (int64, error) {
	var total int64
	err := r.filtered(ctx, db, filter).Count(&total).Error
	return total, err
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, offset, limit int) ([]domain.Product, error) {
	var items []domain.Product
	err := r.filtered(ctx, db, filter).
		Order(defaultOrdering).
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	return items, err
}
