package domain

import (
	"context"
	"errors"
	"time"

	"github.com/mingchang/meatshop/pkg/bilingual"
)

type Service interface {
	ListActive(ctx context.Context) ([]Category, error)
	GetBySlug(ctx context.Context, slug string) (*Category, error)

	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
}

type ListRequest struct {
	Query    string
	IsActive *bool
}

type CreateRequest struct {
	Name         bilingual.Text `json:"name"`
	Slug         string         `json:"slug" validate:"omitempty,max=100,categoryslug"`
	Description  bilingual.Text `json:"description"`
	DisplayOrder *int           `json:"display_order" validate:"omitempty,gte=0"`
	IsActive     *bool          `json:"is_active"`
}

type UpdateRequest struct {
	ID           string          `json:"-"`
	Name         *bilingual.Text `json:"name"`
	Slug         *string         `json:"slug" validate:"omitempty,max=100,categoryslug"`
	Description  *bilingual.Text `json:"description"`
	DisplayOrder *int            `json:"display_order" validate:"omitempty,gte=0"`
	IsActive     *bool           `json:"is_active"`
}

type Response struct {
	ID           string         `json:"id"`
	Name         bilingual.Text `json:"name"`
	DisplayName  string         `json:"display_name"`
	Slug         string         `json:"slug"`
	Description  bilingual.Text `json:"description"`
	DisplayOrder int            `json:"display_order"`
	IsActive     bool           `json:"is_active"`
	ProductCount int64          `json:"product_count"`
	ProductLabel string         `json:"product_count_display"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

var (
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidSlug  = errors.New("invalid_slug")
	ErrInvalidID    = errors.New("invalid_id")
	ErrSlugConflict = errors.New("slug_conflict")
	ErrNotFound     = errors.New("category_not_found")
)
