package notifications

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/lostfound/pkg/validation"
)

// ErrNotFound indicates the notification does not exist or belongs to
// another actor. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("notification not found")

// MapHTTPStatus maps notification errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, validation.ErrInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
