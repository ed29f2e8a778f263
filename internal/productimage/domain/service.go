package domain

import (
	"context"
	"errors"
	"time"

	"github.com/mingchang/meatshop/pkg/bilingual"
)

type Service interface {
	ListByProduct(ctx context.Context, productID string) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Upload(ctx context.Context, req UploadRequest) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
	URLs(image ProductImage) URLs
}

type UploadRequest struct {
	ProductID    string
	Filename     string
	Data         []byte
	AltText      bilingual.Text
	DisplayOrder int
	IsPrimary    bool
}

type UpdateRequest struct {
	ID           string          `json:"-"`
	AltText      *bilingual.Text `json:"alt_text"`
	DisplayOrder *int            `json:"display_order" validate:"omitempty,gte=0"`
	IsPrimary    *bool           `json:"is_primary"`
}

// URLs resolves stored keys to public URLs.
type URLs struct {
	Image     string `json:"image"`
	Thumbnail string `json:"thumbnail"`
	Medium    string `json:"medium"`
	Large     string `json:"large"`
}

type Response struct {
	ID           string         `json:"id"`
	ProductID    string         `json:"product_id"`
	AltText      bilingual.Text `json:"alt_text"`
	DisplayOrder int            `json:"display_order"`
	IsPrimary    bool           `json:"is_primary"`
	Paths        URLs           `json:"paths"`
	URLs         URLs           `json:"urls"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

const MaxAltTextLength = 200

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidProduct  = errors.New("invalid_product")
	ErrInvalidImage    = errors.New("invalid_image")
	ErrInvalidAltText  = errors.New("invalid_alt_text")
	ErrInvalidOrder    = errors.New("invalid_display_order")
	ErrNotFound        = errors.New("image_not_found")
	ErrProductNotFound = errors.New("product_not_found")
)
