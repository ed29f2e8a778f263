package domain

import (
	"context"
	"errors"
	"time"

	"github.com/mingchang/meatshop/pkg/bilingual"
	"github.com/shopspring/decimal"
)

type Service interface {
	// Get returns nil, nil while the company has not been set up.
	Get(ctx context.Context) (*CompanyInfo, error)
	GetResponse(ctx context.Context) (*Response, error)
	Create(ctx context.Context, req Request) (*Response, error)
	Update(ctx context.Context, req Request) (*Response, error)
	UploadHero(ctx context.Context, filename string, data []byte) (*Response, error)
	HeroURL(info *CompanyInfo) string
}

// Request carries every editable field. Updates replace the whole row.
type Request struct {
	Name          bilingual.Text   `json:"name"`
	About         bilingual.Text   `json:"about"`
	Address       bilingual.Text   `json:"address"`
	BusinessHours bilingual.Text   `json:"business_hours"`
	Phone         string           `json:"phone" validate:"required,max=20"`
	Email         string           `json:"email" validate:"required,email,max=254"`
	Latitude      *decimal.Decimal `json:"latitude"`
	Longitude     *decimal.Decimal `json:"longitude"`
	LineID        string           `json:"line_id" validate:"max=50"`
	WhatsApp      string           `json:"whatsapp" validate:"max=20"`
	FacebookURL   string           `json:"facebook_url" validate:"omitempty,url,max=200"`
	InstagramURL  string           `json:"instagram_url" validate:"omitempty,url,max=200"`
}

type Response struct {
	Name          bilingual.Text   `json:"name"`
	DisplayName   string           `json:"display_name"`
	About         bilingual.Text   `json:"about"`
	Address       bilingual.Text   `json:"address"`
	BusinessHours bilingual.Text   `json:"business_hours"`
	Phone         string           `json:"phone"`
	Email         string           `json:"email"`
	Latitude      *decimal.Decimal `json:"latitude,omitempty"`
	Longitude     *decimal.Decimal `json:"longitude,omitempty"`
	LineID        string           `json:"line_id"`
	WhatsApp      string           `json:"whatsapp"`
	FacebookURL   string           `json:"facebook_url"`
	InstagramURL  string           `json:"instagram_url"`
	HeroImagePath string           `json:"hero_image_path,omitempty"`
	HeroImageURL  string           `json:"hero_image_url,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

var (
	ErrCompanyInfoExists = errors.New("company_info_exists")
	ErrNotFound          = errors.New("company_info_not_found")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidAbout      = errors.New("invalid_about")
	ErrInvalidAddress    = errors.New("invalid_address")
	ErrInvalidHours      = errors.New("invalid_business_hours")
	ErrInvalidLatitude   = errors.New("invalid_latitude")
	ErrInvalidLongitude  = errors.New("invalid_longitude")
	ErrInvalidImage      = errors.New("invalid_image")
)
