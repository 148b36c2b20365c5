package handler

import (
	"errors"
	"net/http"

	"github.com/go-mobile-verification/internal/domain"
)

// httpError maps domain sentinels to status codes. Anything unrecognised
// is reported as a generic 500 so backend details stay out of responses.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrMissingPlaceholder):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
