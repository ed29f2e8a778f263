package domain

import (
	"context"
	"errors"
	"time"

	"github.com/mingchang/meatshop/pkg/db/pagination"
)

const (
	SuccessMessage        = "感謝您的詢問！我們會盡快回覆您。Thank you for your inquiry! We will respond as soon as possible."
	ProductSuccessMessage = "感謝您的產品詢問！我們會盡快回覆您。Thank you for your product inquiry! We will respond as soon as possible."
	AjaxSuccessMessage    = "詢問已送出！我們會盡快回覆您。Inquiry submitted! We will respond soon."
	AjaxErrorMessage      = "表單填寫有誤，請檢查並重新提交。Form validation failed, please check and resubmit."

	SourceContact = "contact"
	SourceProduct = "product"
)

// Bulk actions offered to staff.
const (
	ActionMarkInProgress = "mark_as_in_progress"
	ActionMarkReplied    = "mark_as_replied"
	ActionMarkResolved   = "mark_as_resolved"
)

type Service interface {
	// Submit validates and stores a general inquiry, then notifies the shop.
	// Notification failures are logged and never returned.
	Submit(ctx context.Context, form Form, meta Meta) (*ContactInquiry, error)
	SubmitForProduct(ctx context.Context, productSlug string, form Form, meta Meta) (*ContactInquiry, error)
	ProductPrefill(ctx context.Context, productSlug string) (*Prefill, error)

	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	Get(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	BulkUpdateStatus(ctx context.Context, req BulkRequest) (*BulkResult, error)
}

// Meta describes where a submission came from.
type Meta struct {
	ClientIP  string
	UserAgent string
}

// Prefill holds the values a product inquiry form starts with.
type Prefill struct {
	ProductID          int64
	ProductSlug        string
	ProductName        string
	Subject            string
	MessagePlaceholder string
}

type ListRequest struct {
	Query       string
	Status      string
	Language    string
	CreatedFrom string
	CreatedTo   string
	Page        string
	PageSize    string
}

type ListResponse struct {
	Items []Response      `json:"items"`
	Page  pagination.Page `json:"page"`
}

type UpdateRequest struct {
	ID         string  `json:"-"`
	Status     *string `json:"status" validate:"omitempty,oneof=new in_progress replied resolved"`
	AdminNotes *string `json:"admin_notes"`
}

type BulkRequest struct {
	Action string   `json:"action" validate:"required,oneof=mark_as_in_progress mark_as_replied mark_as_resolved"`
	IDs    []string `json:"ids" validate:"required,min=1,max=500"`
}

type BulkResult struct {
	Updated int64  `json:"updated"`
	Message string `json:"message"`
}

type Response struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	Phone               string         `json:"phone"`
	Email               string         `json:"email"`
	Subject             string         `json:"subject"`
	SubjectDisplay      string         `json:"subject_display"`
	Message             string         `json:"message"`
	MessagePreview      string         `json:"message_preview"`
	ProductName         string         `json:"product_name"`
	LanguagePreference  string         `json:"language_preference"`
	LanguageDisplay     string         `json:"language_preference_display"`
	Status              Status         `json:"status"`
	StatusDisplay       string         `json:"status_display"`
	AdminNotes          string         `json:"admin_notes"`
	IsNew               bool           `json:"is_new"`
	ResponseTimeDisplay string         `json:"response_time_display"`
	Metadata            map[string]any `json:"metadata,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	RepliedAt           *time.Time     `json:"replied_at,omitempty"`
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrInvalidLanguage = errors.New("invalid_language")
	ErrInvalidDate     = errors.New("invalid_date")
	ErrInvalidAction   = errors.New("invalid_action")
	ErrNotFound        = errors.New("inquiry_not_found")
	ErrProductNotFound = errors.New("product_not_found")
)
