package domain

import (
	"time"

	"github.com/mingchang/meatshop/pkg/bilingual"
	"github.com/shopspring/decimal"
)

// SingletonID is the only primary key a CompanyInfo row may have.
const SingletonID int64 = 1

type CompanyInfo struct {
	ID            int64            `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name          bilingual.Text   `json:"name" gorm:"embedded;embeddedPrefix:name_"`
	About         bilingual.Text   `json:"about" gorm:"embedded;embeddedPrefix:about_"`
	Address       bilingual.Text   `json:"address" gorm:"embedded;embeddedPrefix:address_"`
	BusinessHours bilingual.Text   `json:"business_hours" gorm:"embedded;embeddedPrefix:business_hours_"`
	Phone         string           `json:"phone" gorm:"type:varchar(20);not null"`
	Email         string           `json:"email" gorm:"type:varchar(254);not null"`
	Latitude      *decimal.Decimal `json:"latitude,omitempty" gorm:"type:numeric(10,7)"`
	Longitude     *decimal.Decimal `json:"longitude,omitempty" gorm:"type:numeric(10,7)"`
	LineID        string           `json:"line_id" gorm:"type:varchar(50);not null;default:''"`
	WhatsApp      string           `json:"whatsapp" gorm:"column:whatsapp;type:varchar(20);not null;default:''"`
	FacebookURL   string           `json:"facebook_url" gorm:"type:varchar(200);not null;default:''"`
	InstagramURL  string           `json:"instagram_url" gorm:"type:varchar(200);not null;default:''"`
	HeroImagePath string           `json:"hero_image_path" gorm:"type:varchar(255);not null;default:''"`
	CreatedAt     time.Time        `json:"created_at" gorm:"not null"`
	UpdatedAt     time.Time        `json:"updated_at" gorm:"not null"`
}

func (CompanyInfo) TableName() string { return "company_info" }

func (c CompanyInfo) String() string { return c.Name.Paired() }

func (c CompanyInfo) HasLocation() bool {
	return c.Latitude != nil && c.Longitude != nil
}

// MapsQuery is the value handed to the embedded map: coordinates when known,
// the Chinese address otherwise.
func (c CompanyInfo) MapsQuery() string {
	if c.HasLocation() {
		return c.Latitude.String() + "," + c.Longitude.String()
	}
	return c.Address.Pick(bilingual.LangZH)
}
