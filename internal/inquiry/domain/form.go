package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mingchang/meatshop/pkg/bilingual"
	"github.com/mingchang/meatshop/pkg/validation"
)

const (
	MsgPhoneInvalid    = "請輸入有效的電話號碼 Please enter a valid phone number"
	MsgPhoneLength     = "電話號碼長度不正確 Phone number length is incorrect"
	MsgPhoneTaiwan     = "請輸入有效的台灣電話號碼 Please enter a valid Taiwan phone number"
	MsgMessageTooShort = "詢問內容至少需要10個字符 Message must be at least 10 characters long"

	// MaxSubjectLength and MaxProductNameLength match the validate tags on
	// Form and the column widths.
	MaxSubjectLength     = 200
	MaxProductNameLength = 200

	minMessageLength = 10
	minPhoneDigits   = 8
	maxPhoneDigits   = 15
)

// Form is the customer-facing inquiry payload, bound from either the HTML
// form or the AJAX submission.
type Form struct {
	Name               string `form:"name" json:"name" validate:"required,max=100"`
	Phone              string `form:"phone" json:"phone" validate:"required,max=20,phonechars"`
	Email              string `form:"email" json:"email" validate:"required,email,max=254"`
	Subject            string `form:"subject" json:"subject" validate:"max=200"`
	Message            string `form:"message" json:"message" validate:"required"`
	ProductName        string `form:"product_name" json:"product_name" validate:"max=200"`
	LanguagePreference string `form:"language_preference" json:"language_preference" validate:"omitempty,oneof=zh en both"`
}

// Normalize trims every field and defaults the language preference.
func (f Form) Normalize() Form {
	f.Name = strings.TrimSpace(f.Name)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Email = strings.TrimSpace(f.Email)
	f.Subject = strings.TrimSpace(f.Subject)
	f.Message = strings.TrimSpace(f.Message)
	f.ProductName = strings.TrimSpace(f.ProductName)
	f.LanguagePreference = strings.TrimSpace(f.LanguagePreference)
	if f.LanguagePreference == "" {
		f.LanguagePreference = bilingual.LangZH
	}
	return f
}

// Validate checks a normalized form and returns *validation.Errors holding
// every failing field, or nil.
func (f Form) Validate() error {
	errs := &validation.Errors{}
	if err := validation.Struct(f); err != nil {
		vErr, ok := validation.As(err)
		if !ok {
			return err
		}
		errs = vErr
	}

	if !errs.Has("phone") {
		if msg := CheckPhone(f.Phone); msg != "" {
			errs.Add("phone", "invalid_phone", msg)
		}
	}
	if !errs.Has("message") && utf8.RuneCountInString(strings.TrimSpace(f.Message)) < minMessageLength {
		errs.Add("message", "min_length", MsgMessageTooShort)
	}
	return errs.Err()
}

// CheckPhone applies the Taiwan phone rules and returns the failure message,
// or "" when the number is acceptable.
func CheckPhone(phone string) string {
	if !validation.ValidPhoneChars(phone) {
		return MsgPhoneInvalid
	}

	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
	n := len(digits)

	switch {
	case n < minPhoneDigits || n > maxPhoneDigits:
		return MsgPhoneLength
	case strings.HasPrefix(digits, "09") && n == 10:
		return ""
	case n <= 10:
		return ""
	case strings.HasPrefix(digits, "886") || strings.HasPrefix(phone, "+886"):
		return ""
	default:
		return MsgPhoneTaiwan
	}
}
