package domain

import (
	"fmt"
	"strings"

	"github.com/go-mobile-verification/internal/pkg/validate"
)

// PhoneNumber identifies the recipient of a verification code. Its string
// form is used both for delivery and for deriving storage keys, so it must
// be stable for a given subscriber.
type PhoneNumber struct {
	number string
}

// NewPhoneNumber accepts 7 to 15 digits, optionally prefixed with '+'.
func NewPhoneNumber(raw string) (PhoneNumber, error) {
	raw = strings.TrimSpace(raw)
	if err := validate.Var(strings.TrimPrefix(raw, "+"), "required,number,min=7,max=15"); err != nil {
		return PhoneNumber{}, fmt.Errorf("invalid phone number: %v: %w", err, ErrBadRequest)
	}
	return PhoneNumber{number: raw}, nil
}

// MustPhoneNumber is like NewPhoneNumber but panics on invalid input.
func MustPhoneNumber(raw string) PhoneNumber {
	p, err := NewPhoneNumber(raw)
	if err != nil {
		panic(err)
	}
	return p
}

func (p PhoneNumber) String() string { return p.number }

// IsZero reports whether p was never initialised.
func (p PhoneNumber) IsZero() bool { return p.number == "" }

// Masked hides all but the last four digits; used in logs.
func (p PhoneNumber) Masked() string {
	if len(p.number) <= 4 {
		return strings.Repeat("*", len(p.number))
	}
	return strings.Repeat("*", len(p.number)-4) + p.number[len(p.number)-4:]
}
