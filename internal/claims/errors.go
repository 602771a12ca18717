package claims

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/lostfound/internal/authz"
	"github.com/JaimeStill/lostfound/internal/imaging"
	"github.com/JaimeStill/lostfound/pkg/validation"
)

var (
	ErrNotFound = errors.New("claim not found")
	// ErrItemNotFound indicates the referenced found item does not exist.
	ErrItemNotFound = errors.New("found item not found")
	// ErrDuplicate indicates the claimant already has a claim on the item.
	ErrDuplicate = errors.New("claim already filed for this item")
	// ErrSelfClaim indicates the claimant owns the found item.
	ErrSelfClaim = errors.New("cannot claim your own found item")
	// ErrInvalidState indicates a resolution attempt on a non-pending claim.
	ErrInvalidState = errors.New("claim is not pending")
	ErrNoPhoto      = errors.New("claim has no photo")
)

// MapHTTPStatus maps claim errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrItemNotFound),
		errors.Is(err, ErrNoPhoto):
		return http.StatusNotFound
	case errors.Is(err, authz.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, validation.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, ErrSelfClaim):
		return http.StatusUnprocessableEntity
	case errors.Is(err, imaging.ErrUnsupported), errors.Is(err, imaging.ErrCorrupt):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, imaging.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
