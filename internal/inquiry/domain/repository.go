package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type ListFilter struct {
	Query       string
	Status      Status
	Language    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, inquiry *ContactInquiry) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*ContactInquiry, error)
	Count(ctx context.Context, db *gorm.DB, filter ListFilter) (int64, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, offset, limit int) ([]ContactInquiry, error)
	UpdateNotes(ctx context.Context, db *gorm.DB, id int64, notes string, now time.Time) error
	// SetStatus moves the given inquiries to status in one statement. Moving
	// to replied stamps replied_at in the same statement unless already set.
	SetStatus(ctx context.Context, db *gorm.DB, ids []int64, status Status, now time.Time) (int64, error)
}
