package items

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/lostfound/internal/authz"
	"github.com/JaimeStill/lostfound/internal/classifier"
	"github.com/JaimeStill/lostfound/internal/imaging"
	"github.com/JaimeStill/lostfound/pkg/validation"
)

var (
	ErrNotFound = errors.New("item not found")
	// ErrNoImage indicates reclassification of an item without a photo.
	ErrNoImage = errors.New("item has no photo")
	// ErrClassification wraps an advisor failure on explicit reclassification.
	ErrClassification = errors.New("item classification failed")
	// ErrInvalidStatus indicates a status outside the kind's set, or a
	// found item set to returned outside claim approval.
	ErrInvalidStatus   = errors.New("invalid item status")
	ErrUnknownCategory = errors.New("unknown category")
)

// MapHTTPStatus maps item errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, authz.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, validation.ErrInvalid),
		errors.Is(err, ErrUnknownCategory):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoImage), errors.Is(err, ErrInvalidStatus):
		return http.StatusUnprocessableEntity
	case errors.Is(err, classifier.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrClassification):
		return http.StatusBadGateway
	case errors.Is(err, imaging.ErrUnsupported), errors.Is(err, imaging.ErrCorrupt):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, imaging.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
