package classifier

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/lostfound/internal/authz"
)

var (
	// ErrClassificationFailed wraps any model failure during Classify.
	ErrClassificationFailed = errors.New("classification failed")
	// ErrUnavailable indicates no classifier backend is configured.
	ErrUnavailable = errors.New("classifier unavailable")
)

// MapHTTPStatus maps classifier errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, authz.ErrPermissionDenied) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrUnavailable) {
		return http.StatusServiceUnavailable
	}
	if errors.Is(err, ErrClassificationFailed) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
