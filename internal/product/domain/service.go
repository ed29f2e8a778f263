package domain

import (
	"context"
	"errors"
	"time"

	imagedomain "github.com/mingchang/meatshop/internal/productimage/domain"
	"github.com/mingchang/meatshop/pkg/bilingual"
	"github.com/mingchang/meatshop/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortName      = "name"
	SortFeatured  = "featured"

	FeaturedLimit = 6
	RelatedLimit  = 4
)

type Service interface {
	ListCatalog(ctx context.Context, q CatalogQuery) (*CatalogPage, error)
	GetDetail(ctx context.Context, slug string) (*Detail, error)
	Featured(ctx context.Context) ([]Product, error)
	// GetBySlug finds a product whatever its availability.
	GetBySlug(ctx context.Context, slug string) (*Product, error)

	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	Get(ctx context.Context, id string) (*Response, error)
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
}

type CatalogQuery struct {
	CategorySlug string
	Query        string
	Sort         string
	Page         string
}

type CatalogPage struct {
	Items []Product
	Page  pagination.Page
}

type Detail struct {
	Product Product
	Related []Product
}

type ListRequest struct {
	Query       string
	CategoryID  string
	IsFeatured  *bool
	IsAvailable *bool
	StockStatus string
	Page        string
	PageSize    string
}

type ListResponse struct {
	Items []Response      `json:"items"`
	Page  pagination.Page `json:"page"`
}

type CreateRequest struct {
	CategoryID      string          `json:"category_id" validate:"required"`
	Name            bilingual.Text  `json:"name"`
	Slug            string          `json:"slug" validate:"omitempty,max=200,productslug"`
	Description     bilingual.Text  `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Unit            string          `json:"unit" validate:"omitempty,max=50"`
	WeightGrams     *int            `json:"weight_grams" validate:"omitempty,gt=0"`
	Origin          bilingual.Text  `json:"origin"`
	NutritionalInfo bilingual.Text  `json:"nutritional_info"`
	IsFeatured      *bool           `json:"is_featured"`
	IsAvailable     *bool           `json:"is_available"`
	StockStatus     string          `json:"stock_status" validate:"omitempty,oneof=in_stock low_stock out_of_stock seasonal"`
}

type UpdateRequest struct {
	ID              string           `json:"-"`
	CategoryID      *string          `json:"category_id"`
	Name            *bilingual.Text  `json:"name"`
	Slug            *string          `json:"slug" validate:"omitempty,max=200,productslug"`
	Description     *bilingual.Text  `json:"description"`
	Price           *decimal.Decimal `json:"price"`
	Unit            *string          `json:"unit" validate:"omitempty,max=50"`
	WeightGrams     *int             `json:"weight_grams" validate:"omitempty,gte=0"`
	Origin          *bilingual.Text  `json:"origin"`
	NutritionalInfo *bilingual.Text  `json:"nutritional_info"`
	IsFeatured      *bool            `json:"is_featured"`
	IsAvailable     *bool            `json:"is_available"`
	StockStatus     *string          `json:"stock_status" validate:"omitempty,oneof=in_stock low_stock out_of_stock seasonal"`
}

type Response struct {
	ID                 string            `json:"id"`
	CategoryID         string            `json:"category_id"`
	CategoryName       string            `json:"category_name,omitempty"`
	Name               bilingual.Text    `json:"name"`
	DisplayName        string            `json:"display_name"`
	Slug               string            `json:"slug"`
	Description        bilingual.Text    `json:"description"`
	Price              decimal.Decimal   `json:"price"`
	FormattedPrice     string            `json:"formatted_price"`
	Unit               string            `json:"unit"`
	WeightGrams        *int              `json:"weight_grams,omitempty"`
	WeightDisplay      string            `json:"weight_display,omitempty"`
	Origin             bilingual.Text    `json:"origin"`
	NutritionalInfo    bilingual.Text    `json:"nutritional_info"`
	IsFeatured         bool              `json:"is_featured"`
	IsAvailable        bool              `json:"is_available"`
	StockStatus        StockStatus       `json:"stock_status"`
	StockStatusDisplay string            `json:"stock_status_display"`
	ImageCount         int64             `json:"image_count"`
	ImageCountDisplay  string            `json:"image_count_display"`
	PrimaryImage       *imagedomain.URLs `json:"primary_image,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

var (
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidCategory    = errors.New("invalid_category")
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidSlug        = errors.New("invalid_slug")
	ErrInvalidDescription = errors.New("invalid_description")
	ErrInvalidPrice       = errors.New("invalid_price")
	ErrInvalidUnit        = errors.New("invalid_unit")
	ErrInvalidWeight      = errors.New("invalid_weight")
	ErrInvalidStockStatus = errors.New("invalid_stock_status")
	ErrSlugConflict       = errors.New("slug_conflict")
	ErrNotFound           = errors.New("product_not_found")
)
