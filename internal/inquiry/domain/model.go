package domain

import (
	"time"

	"github.com/mingchang/meatshop/pkg/bilingual"
	"github.com/mingchang/meatshop/pkg/format"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusReplied    Status = "replied"
	StatusResolved   Status = "resolved"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusReplied, StatusResolved:
		return true
	}
	return false
}

func (s Status) Label() string {
	switch s {
	case StatusNew:
		return "New"
	case StatusInProgress:
		return "In Progress"
	case StatusReplied:
		return "Replied"
	case StatusResolved:
		return "Resolved"
	default:
		return string(s)
	}
}

// LanguageLabel is the display name of a language preference.
func LanguageLabel(lang string) string {
	switch lang {
	case bilingual.LangZH:
		return "Traditional Chinese"
	case bilingual.LangEN:
		return "English"
	case bilingual.LangBoth:
		return "Both Languages"
	default:
		return lang
	}
}

const (
	GeneralSubject   = "一般詢問 General Inquiry"
	ProductSubject   = "產品詢問 Product Inquiry"
	NoProduct        = "無指定 Not specified"
	newInquiryWindow = 24 * time.Hour
	previewLength    = 100
)

// Metadata keys recorded with each submission.
const (
	MetaSource    = "source"
	MetaClientIP  = "client_ip"
	MetaUserAgent = "user_agent"
	MetaProductID = "product_id"
)

type ContactInquiry struct {
	ID                 int64             `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name               string            `json:"name" gorm:"type:varchar(100);not null"`
	Phone              string            `json:"phone" gorm:"type:varchar(20);not null"`
	Email              string            `json:"email" gorm:"type:varchar(254);not null;index:ix_contact_inquiries_email"`
	Subject            string            `json:"subject" gorm:"type:varchar(200);not null;default:''"`
	Message            string            `json:"message" gorm:"type:text;not null"`
	ProductName        string            `json:"product_name" gorm:"type:varchar(200);not null;default:''"`
	LanguagePreference string            `json:"language_preference" gorm:"type:varchar(10);not null;default:zh"`
	Status             Status            `json:"status" gorm:"type:varchar(20);not null;default:new;index:ix_contact_inquiries_status_created,priority:1"`
	AdminNotes         string            `json:"admin_notes" gorm:"type:text;not null"`
	Metadata           datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt          time.Time         `json:"created_at" gorm:"not null;index:ix_contact_inquiries_status_created,priority:2"`
	UpdatedAt          time.Time         `json:"updated_at" gorm:"not null"`
	RepliedAt          *time.Time        `json:"replied_at,omitempty"`
}

func (ContactInquiry) TableName() string { return "contact_inquiries" }

func (c ContactInquiry) String() string {
	return c.Name + " - " + c.SubjectDisplay() + " (" + c.CreatedAt.Format("2006-01-02") + ")"
}

// IsNew reports whether the inquiry arrived less than a day before now.
func (c ContactInquiry) IsNew(now time.Time) bool {
	return now.Sub(c.CreatedAt) < newInquiryWindow
}

// ResponseTime is nil until the inquiry has been replied to.
func (c ContactInquiry) ResponseTime() *time.Duration {
	if c.RepliedAt == nil {
		return nil
	}
	d := c.RepliedAt.Sub(c.CreatedAt)
	return &d
}

func (c ContactInquiry) ResponseTimeDisplay() string {
	return format.ResponseTime(c.ResponseTime())
}

func (c ContactInquiry) MessagePreview() string {
	return format.Preview(c.Message, previewLength)
}

func (c ContactInquiry) SubjectDisplay() string {
	if c.Subject == "" {
		return GeneralSubject
	}
	return c.Subject
}

func (c ContactInquiry) Source() string {
	if c.Metadata == nil {
		return ""
	}
	s, _ := c.Metadata[MetaSource].(string)
	return s
}
