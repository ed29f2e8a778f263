package domain

import (
	"time"

	categorydomain "github.com/mingchang/meatshop/internal/category/domain"
	imagedomain "github.com/mingchang/meatshop/internal/productimage/domain"
	"github.com/mingchang/meatshop/pkg/bilingual"
	"github.com/mingchang/meatshop/pkg/format"
	"github.com/shopspring/decimal"
)

type StockStatus string

const (
	StockInStock    StockStatus = "in_stock"
	StockLowStock   StockStatus = "low_stock"
	StockOutOfStock StockStatus = "out_of_stock"
	StockSeasonal   StockStatus = "seasonal"
)

func (s StockStatus) Valid() bool {
	switch s {
	case StockInStock, StockLowStock, StockOutOfStock, StockSeasonal:
		return true
	}
	return false
}

func (s StockStatus) Label() string {
	switch s {
	case StockInStock:
		return "In Stock"
	case StockLowStock:
		return "Low Stock"
	case StockOutOfStock:
		return "Out of Stock"
	case StockSeasonal:
		return "Seasonal"
	default:
		return string(s)
	}
}

// BadgeClass is the CSS class of the stock badge.
func (s StockStatus) BadgeClass() string {
	switch s {
	case StockInStock:
		return "bg-green-100 text-green-800"
	case StockLowStock:
		return "bg-yellow-100 text-yellow-800"
	case StockOutOfStock:
		return "bg-red-100 text-red-800"
	case StockSeasonal:
		return "bg-orange-100 text-orange-800"
	default:
		return "bg-gray-100 text-gray-800"
	}
}

type Product struct {
	ID              int64           `json:"id" gorm:"primaryKey;autoIncrement:false"`
	CategoryID      int64           `json:"category_id" gorm:"not null;index:ix_products_category_available,priority:1"`
	Name            bilingual.Text  `json:"name" gorm:"embedded;embeddedPrefix:name_"`
	Slug            string          `json:"slug" gorm:"type:varchar(200);not null;uniqueIndex:ux_products_slug"`
	Description     bilingual.Text  `json:"description" gorm:"embedded;embeddedPrefix:description_"`
	Price           decimal.Decimal `json:"price" gorm:"type:numeric(10,2);not null"`
	Unit            string          `json:"unit" gorm:"type:varchar(50);not null;default:kg"`
	WeightGrams     *int            `json:"weight_grams,omitempty"`
	Origin          bilingual.Text  `json:"origin" gorm:"embedded;embeddedPrefix:origin_"`
	NutritionalInfo bilingual.Text  `json:"nutritional_info" gorm:"embedded;embeddedPrefix:nutritional_info_"`
	IsFeatured      bool            `json:"is_featured" gorm:"not null;default:false;index"`
	IsAvailable     bool            `json:"is_available" gorm:"not null;default:true;index:ix_products_category_available,priority:2"`
	StockStatus     StockStatus     `json:"stock_status" gorm:"type:varchar(20);not null;default:in_stock;index"`
	CreatedAt       time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt       time.Time       `json:"updated_at" gorm:"not null"`

	Category     *categorydomain.Category   `json:"category,omitempty" gorm:"-"`
	Images       []imagedomain.ProductImage `json:"images,omitempty" gorm:"-"`
	PrimaryImage *imagedomain.ProductImage  `json:"primary_image,omitempty" gorm:"-"`
}

func (Product) TableName() string { return "products" }

func (p Product) String() string {
	return p.Name.Paired()
}

func (p Product) URL() string {
	return "/products/" + p.Slug + "/"
}

func (p Product) InquiryURL() string {
	return "/contact/product/" + p.Slug + "/"
}

func (p Product) FormattedPrice() string {
	return format.TWD(&p.Price)
}

func (p Product) WeightDisplay() string {
	return format.Weight(p.WeightGrams)
}

func (p Product) StockBadgeClass() string {
	return p.StockStatus.BadgeClass()
}
