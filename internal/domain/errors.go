package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrBadRequest         = errors.New("bad request")
	ErrMissingPlaceholder = errors.New("message template is missing the verification code placeholder")
	ErrUnavailable        = errors.New("collaborator unavailable")
)
