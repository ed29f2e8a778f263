package domain

import (
	"time"

	"github.com/mingchang/meatshop/pkg/bilingual"
)

type Category struct {
	ID           int64          `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name         bilingual.Text `json:"name" gorm:"embedded;embeddedPrefix:name_"`
	Slug         string         `json:"slug" gorm:"type:varchar(100);not null;uniqueIndex:ux_categories_slug"`
	Description  bilingual.Text `json:"description" gorm:"embedded;embeddedPrefix:description_"`
	DisplayOrder int            `json:"display_order" gorm:"not null;default:0;index"`
	IsActive     bool           `json:"is_active" gorm:"not null;default:true"`
	CreatedAt    time.Time      `json:"created_at" gorm:"not null"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"not null"`
}

func (Category) TableName() string { return "categories" }

func (c Category) String() string {
	return c.Name.ZH + " (" + c.Name.EN + ")"
}

// URL is the product list filtered to this category.
func (c Category) URL() string {
	return "/products/?category=" + c.Slug
}
