package domain

import (
	"time"

	"github.com/mingchang/meatshop/pkg/bilingual"
)

type ProductImage struct {
	ID            int64          `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ProductID     int64          `json:"product_id" gorm:"not null;index:ix_product_images_product_order,priority:1"`
	ImagePath     string         `json:"image_path" gorm:"type:varchar(255);not null"`
	ThumbnailPath string         `json:"thumbnail_path" gorm:"type:varchar(255);not null;default:''"`
	MediumPath    string         `json:"medium_path" gorm:"type:varchar(255);not null;default:''"`
	LargePath     string         `json:"large_path" gorm:"type:varchar(255);not null;default:''"`
	AltText       bilingual.Text `json:"alt_text" gorm:"embedded;embeddedPrefix:alt_text_"`
	DisplayOrder  int            `json:"display_order" gorm:"not null;default:0;index:ix_product_images_product_order,priority:2"`
	IsPrimary     bool           `json:"is_primary" gorm:"not null;default:false;index"`
	CreatedAt     time.Time      `json:"created_at" gorm:"not null"`
	UpdatedAt     time.Time      `json:"updated_at" gorm:"not null"`
}

func (ProductImage) TableName() string { return "product_images" }

// Keys lists every stored file belonging to the image.
func (i ProductImage) Keys() []string {
	keys := make([]string, 0, 4)
	for _, k := range []string{i.ImagePath, i.ThumbnailPath, i.MediumPath, i.LargePath} {
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// Stats summarizes the images of one product for admin listings.
type Stats struct {
	Count      int64
	HasPrimary bool
}

// ProductRef is the slice of a product row the image pipeline needs.
type ProductRef struct {
	ID   int64
	Slug string
}
