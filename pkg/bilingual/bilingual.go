// Package bilingual holds the Traditional Chinese / English text pair shared
// by every catalog entity.
package bilingual

import "strings"

const (
	LangZH   = "zh"
	LangEN   = "en"
	LangBoth = "both"
)

// Text is embedded in gorm models with a column prefix, e.g.
//
//	Name bilingual.Text `gorm:"embedded;embeddedPrefix:name_"`
type Text struct {
	ZH string `gorm:"column:zh" json:"zh"`
	EN string `gorm:"column:en" json:"en"`
}

func New(zh, en string) Text {
	return Text{ZH: zh, EN: en}
}

// Display returns "zh en" when both are present, otherwise whichever is.
func (t Text) Display() string {
	zh := strings.TrimSpace(t.ZH)
	en := strings.TrimSpace(t.EN)
	switch {
	case zh != "" && en != "":
		return zh + " " + en
	case zh != "":
		return zh
	default:
		return en
	}
}

// Pick returns the requested language, falling back to the other one.
func (t Text) Pick(lang string) string {
	zh := strings.TrimSpace(t.ZH)
	en := strings.TrimSpace(t.EN)
	if lang == LangEN {
		if en != "" {
			return en
		}
		return zh
	}
	if zh != "" {
		return zh
	}
	return en
}

func (t Text) IsZero() bool {
	return strings.TrimSpace(t.ZH) == "" && strings.TrimSpace(t.EN) == ""
}

func (t Text) Complete() bool {
	return strings.TrimSpace(t.ZH) != "" && strings.TrimSpace(t.EN) != ""
}

func (t Text) Trimmed() Text {
	return Text{ZH: strings.TrimSpace(t.ZH), EN: strings.TrimSpace(t.EN)}
}

// Paired renders "zh (en)", used for inquiry product names.
func (t Text) Paired() string {
	return t.ZH + " (" + t.EN + ")"
}

// ValidLanguage reports whether lang is a supported reply preference.
func ValidLanguage(lang string) bool {
	switch lang {
	case LangZH, LangEN, LangBoth:
		return true
	}
	return false
}
