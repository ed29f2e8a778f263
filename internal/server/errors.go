package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mingchang/meatshop/internal/authorization"
	categorydomain "github.com/mingchang/meatshop/internal/category/domain"
	companydomain "github.com/mingchang/meatshop/internal/company/domain"
	inquirydomain "github.com/mingchang/meatshop/internal/inquiry/domain"
	productdomain "github.com/mingchang/meatshop/internal/product/domain"
	imagedomain "github.com/mingchang/meatshop/internal/productimage/domain"
	"github.com/mingchang/meatshop/internal/providers/storage"
	staffdomain "github.com/mingchang/meatshop/internal/staff/domain"
	"github.com/mingchang/meatshop/pkg/db/pagination"
	"github.com/mingchang/meatshop/pkg/validation"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string                  `json:"type"`
	Message string                  `json:"message"`
	Errors  []validation.FieldError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrMethodNotAllowed   = errors.New("method_not_allowed")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	errs := &validation.Errors{}
	errs.Add(field, code, message)
	return errs
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr, ok := validation.As(err); ok {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Fields,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []validation.FieldError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, staffdomain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden),
		errors.Is(err, authorization.ErrInvalidActor):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, errorPayload{
			Type:    "method_not_allowed",
			Message: "method not allowed",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog feeds the request logger with the mapped error type and
// code without exposing raw messages.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	if status == http.StatusInternalServerError {
		return payload.Type, "internal_error"
	}
	if len(payload.Errors) > 0 {
		return payload.Type, payload.Errors[0].Code
	}
	return payload.Type, strings.TrimSpace(err.Error())
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isCategoryValidationError(err),
		isProductValidationError(err),
		isImageValidationError(err),
		isCompanyValidationError(err),
		isInquiryValidationError(err),
		errors.Is(err, storage.ErrInvalidKey):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, categorydomain.ErrSlugConflict),
		errors.Is(err, productdomain.ErrSlugConflict),
		errors.Is(err, companydomain.ErrCompanyInfoExists),
		errors.Is(err, staffdomain.ErrUsernameTaken):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, categorydomain.ErrNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, imagedomain.ErrNotFound),
		errors.Is(err, imagedomain.ErrProductNotFound),
		errors.Is(err, companydomain.ErrNotFound),
		errors.Is(err, inquirydomain.ErrNotFound),
		errors.Is(err, inquirydomain.ErrProductNotFound),
		errors.Is(err, pagination.ErrInvalidPage),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isCategoryValidationError(err error) bool {
	switch {
	case errors.Is(err, categorydomain.ErrInvalidID),
		errors.Is(err, categorydomain.ErrInvalidName),
		errors.Is(err, categorydomain.ErrInvalidSlug):
		return true
	default:
		return false
	}
}

func isProductValidationError(err error) bool {
	switch {
	case errors.Is(err, productdomain.ErrInvalidID),
		errors.Is(err, productdomain.ErrInvalidCategory),
		errors.Is(err, productdomain.ErrInvalidName),
		errors.Is(err, productdomain.ErrInvalidSlug),
		errors.Is(err, productdomain.ErrInvalidDescription),
		errors.Is(err, productdomain.ErrInvalidPrice),
		errors.Is(err, productdomain.ErrInvalidUnit),
		errors.Is(err, productdomain.ErrInvalidWeight),
		errors.Is(err, productdomain.ErrInvalidStockStatus):
		return true
	default:
		return false
	}
}

func isImageValidationError(err error) bool {
	switch {
	case errors.Is(err, imagedomain.ErrInvalidID),
		errors.Is(err, imagedomain.ErrInvalidProduct),
		errors.Is(err, imagedomain.ErrInvalidImage),
		errors.Is(err, imagedomain.ErrInvalidAltText),
		errors.Is(err, imagedomain.ErrInvalidOrder):
		return true
	default:
		return false
	}
}

func isCompanyValidationError(err error) bool {
	switch {
	case errors.Is(err, companydomain.ErrInvalidName),
		errors.Is(err, companydomain.ErrInvalidAbout),
		errors.Is(err, companydomain.ErrInvalidAddress),
		errors.Is(err, companydomain.ErrInvalidHours),
		errors.Is(err, companydomain.ErrInvalidLatitude),
		errors.Is(err, companydomain.ErrInvalidLongitude),
		errors.Is(err, companydomain.ErrInvalidImage):
		return true
	default:
		return false
	}
}

func isInquiryValidationError(err error) bool {
	switch {
	case errors.Is(err, inquirydomain.ErrInvalidID),
		errors.Is(err, inquirydomain.ErrInvalidStatus),
		errors.Is(err, inquirydomain.ErrInvalidLanguage),
		errors.Is(err, inquirydomain.ErrInvalidDate),
		errors.Is(err, inquirydomain.ErrInvalidAction):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "invalid_storage_key":
		return "invalid file name"
	default:
		return "invalid value"
	}
}
