package server

import (
	"strconv"
	"strings"
)

// optionalBool parses a filter flag. Blank means unset; anything strconv
// cannot read is reported against field.
func optionalBool(raw, field string) (*bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, invalidParam(field)
	}
	return &parsed, nil
}

// formInt reads a non-negative integer form value, defaulting to zero.
func formInt(raw, field string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return 0, invalidParam(field)
	}
	return parsed, nil
}

func invalidParam(field string) error {
	return newValidationError(field, "invalid_"+field, "invalid "+field)
}
