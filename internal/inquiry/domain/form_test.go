package domain

import (
	"strings"
	"testing"

	"github.com/mingchang/meatshop/pkg/validation"
	"github.com/stretchr/testify/require"
)

func validForm() Form {
	return Form{
		Name:    "王小明",
		Phone:   "0912-345-678",
		Email:   "ming@example.com",
		Message: "請問牛小排現在有貨嗎？",
	}
}

func TestCheckPhone(t *testing.T) {
	cases := []struct {
		phone string
		want  string
	}{
		{"0912345678", ""},
		{"0912-345-678", ""},
		{"02-2345-6789", ""},
		{"(02) 2345 6789", ""},
		{"+886 912 345 678", ""},
		{"886912345678", ""},
		{"1234567", MsgPhoneLength},
		{"1234567890123456", MsgPhoneLength},
		{"12345678901", MsgPhoneTaiwan},
		{"09-12ab", MsgPhoneInvalid},
	}
	for _, tc := range cases {
		if got := CheckPhone(tc.phone); got != tc.want {
			t.Fatalf("CheckPhone(%q) = %q, want %q", tc.phone, got, tc.want)
		}
	}
}

func TestNormalizeDefaultsLanguage(t *testing.T) {
	f := Form{Name: "  Amy ", LanguagePreference: " "}.Normalize()
	require.Equal(t, "Amy", f.Name)
	require.Equal(t, "zh", f.LanguagePreference)
}

func TestValidateMessageLength(t *testing.T) {
	f := validForm()
	f.Message = strings.Repeat("肉", 9)
	err := f.Normalize().Validate()
	verrs, ok := validation.As(err)
	if !ok {
		t.Fatalf("expected validation errors, got %v", err)
	}
	require.Equal(t, []string{MsgMessageTooShort}, verrs.ByField()["message"])

	f.Message = strings.Repeat("肉", 10)
	require.NoError(t, f.Normalize().Validate())
}

func TestValidateCollectsEveryField(t *testing.T) {
	f := Form{Phone: "12345678901", Email: "nope", Message: "short", LanguagePreference: "fr"}
	err := f.Normalize().Validate()
	verrs, ok := validation.As(err)
	if !ok {
		t.Fatalf("expected validation errors, got %v", err)
	}
	for _, field := range []string{"name", "phone", "email", "message", "language_preference"} {
		if !verrs.Has(field) {
			t.Fatalf("expected an error on %s, got %v", field, verrs.ByField())
		}
	}
	require.Equal(t, []string{MsgPhoneTaiwan}, verrs.ByField()["phone"])
}
