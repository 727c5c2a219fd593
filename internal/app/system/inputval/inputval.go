// Package inputval holds the boundary checks applied to request bodies
// before they reach a store.
package inputval

import (
	"errors"
	"strings"
	"unicode"

	"github.com/dalemusser/waffle/pantry/validate"
)

// Error is a client-facing validation failure. Message is returned verbatim
// in the 400 response body.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Message }

// New returns a validation error for field.
func New(field, message string) *Error {
	return &Error{Field: field, Message: message}
}

// As reports whether err is (or wraps) a validation error.
func As(err error) (*Error, bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// OneOf reports whether v equals one of allowed.
func OneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// IsValidEmail reports whether s is a single bare address (no display name,
// no whitespace) that passes validate.SimpleEmailValid.
func IsValidEmail(s string) bool {
	local, domain, ok := strings.Cut(s, "@")
	if !ok || local == "" || domain == "" || strings.Contains(domain, "@") {
		return false
	}
	if strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return false
	}
	return validate.SimpleEmailValid(s)
}
