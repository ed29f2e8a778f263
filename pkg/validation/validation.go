// Package validation wraps go-playground/validator with the shop's slug and
// phone rules and turns failures into per-field errors.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	categorySlugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)
	productSlugPattern  = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	phoneCharsPattern   = regexp.MustCompile(`^[\d\-\s\(\)\+]+$`)
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the process-wide validator with custom tags registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
		mustRegister(v, RegisterCustom)
		instance = v
	})
	return instance
}

// RegisterCustom installs the shop's custom tags on v. The server also calls it
// on gin's binding validator.
func RegisterCustom(v *validator.Validate) error {
	rules := map[string]func(string) bool{
		"categoryslug": categorySlugPattern.MatchString,
		"productslug":  productSlugPattern.MatchString,
		"phonechars":   phoneCharsPattern.MatchString,
	}
	for tag, match := range rules {
		match := match
		err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			if s == "" {
				return true
			}
			return match(s)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func mustRegister(v *validator.Validate, fn func(*validator.Validate) error) {
	if err := fn(v); err != nil {
		panic(err)
	}
}

func ValidCategorySlug(s string) bool { return categorySlugPattern.MatchString(s) }
func ValidProductSlug(s string) bool  { return productSlugPattern.MatchString(s) }
func ValidPhoneChars(s string) bool   { return phoneCharsPattern.MatchString(s) }

// FieldError is one failed rule on one field.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Errors collects field errors for a whole form or payload.
type Errors struct {
	Fields []FieldError
}

func (e *Errors) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation error"
	}
	return "validation error: " + e.Fields[0].Field + " " + e.Fields[0].Code
}

func (e *Errors) Add(field, code, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Code: code, Message: message})
}

func (e *Errors) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Err returns nil when nothing was collected.
func (e *Errors) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// ByField groups messages by field, the shape returned to the contact form.
func (e *Errors) ByField() map[string][]string {
	out := make(map[string][]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = append(out[f.Field], f.Message)
	}
	return out
}

func (e *Errors) SortedFields() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, f := range e.Fields {
		if _, ok := seen[f.Field]; ok {
			continue
		}
		seen[f.Field] = struct{}{}
		out = append(out, f.Field)
	}
	sort.Strings(out)
	return out
}

// As extracts collected field errors from err.
func As(err error) (*Errors, bool) {
	var vErr *Errors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr, true
	}
	return nil, false
}

// Struct validates s and returns *Errors on failure.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &Errors{}
	for _, fe := range verrs {
		out.Add(fieldPath(fe), fe.Tag(), message(fe))
	}
	return out
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "url":
		return "Enter a valid URL."
	case "max":
		return "Ensure this value has at most " + fe.Param() + " characters."
	case "gte", "min":
		return "Ensure this value is greater than or equal to " + fe.Param() + "."
	case "gt":
		return "Ensure this value is greater than " + fe.Param() + "."
	case "oneof":
		return "Select a valid choice. Allowed: " + fe.Param() + "."
	case "categoryslug":
		return "Slug must contain only lowercase letters, numbers, and hyphens."
	case "productslug":
		return "Enter a valid slug consisting of letters, numbers, underscores or hyphens."
	case "phonechars":
		return "請輸入有效的電話號碼 Please enter a valid phone number"
	default:
		return "Invalid value."
	}
}
