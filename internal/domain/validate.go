package domain

import (
	"net/url"

	"github.com/google/uuid"
)

// ValidateURL checks that raw is an absolute http(s) URL. field names the
// offending input in the error message.
func ValidateURL(field, raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return BadRequestf("Invalid %s URL", field)
	}

	return nil
}

// ParseID validates an identifier received from a client and returns its
// canonical form.
func ParseID(raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", ErrInvalidID
	}

	return id.String(), nil
}

// NewID returns a fresh random identifier.
func NewID() string {
	return uuid.NewString()
}
