package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mingchang/meatshop/internal/inquiry/domain"
	"github.com/mingchang/meatshop/pkg/db/search"
	"gorm.io/gorm"
)

var searchColumns = []string{"name", "email", "phone", "subject", "message", "product_name"}

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, inquiry *domain.ContactInquiry) error {
	return db.WithContext(ctx).Create(inquiry).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.ContactInquiry, error) {
	var item domain.ContactInquiry
	err := db.WithContext(ctx).Where("id = ?", id).Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, filter domain.ListFilter) (int64, error) {
	var total int64
	err := applyFilter(db.WithContext(ctx).Model(&domain.ContactInquiry{}), filter).
		Count(&total).Error
	return total, err
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, offset, limit int) ([]domain.ContactInquiry, error) {
	var items []domain.ContactInquiry
	err := applyFilter(db.WithContext(ctx).Model(&domain.ContactInquiry{}), filter).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *repo) UpdateNotes(ctx context.Context, db *gorm.DB, id int64, notes string, now time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.ContactInquiry{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"admin_notes": notes,
			"updated_at":  now,
		}).Error
}

func (r *repo) SetStatus(ctx context.Context, db *gorm.DB, ids []int64, status domain.Status, now time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	values := map[string]any{
		"status":     status,
		"updated_at": now,
	}
	if status == domain.StatusReplied {
		values["replied_at"] = gorm.Expr("COALESCE(replied_at, ?)", now)
	}
	res := db.WithContext(ctx).
		Model(&domain.ContactInquiry{}).
		Where("id IN ?", ids).
		Updates(values)
	return res.RowsAffected, res.Error
}

func applyFilter(stmt *gorm.DB, filter domain.ListFilter) *gorm.DB {
	if filter.Query != "" {
		stmt = search.Contains(stmt, filter.Query, searchColumns...)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Language != "" {
		stmt = stmt.Where("language_preference = ?", filter.Language)
	}
	if filter.CreatedFrom != nil {
		stmt = stmt.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		stmt = stmt.Where("created_at < ?", *filter.CreatedTo)
	}
	return stmt
}
