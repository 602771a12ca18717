// Package authz centralizes the access rules for every workflow operation.
// Domain systems ask Authorize whether an actor may perform an operation on
// a target, and Scope which owner a listing must be restricted to.
package authz

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/lostfound/internal/auth"
)

// ErrPermissionDenied indicates the actor may not perform the operation.
var ErrPermissionDenied = errors.New("permission denied")

// Operation names an authorizable action.
type Operation string

const (
	ReadItem                Operation = "item:read"
	UpdateItem              Operation = "item:update"
	ReclassifyItem          Operation = "item:reclassify"
	VerifyItem              Operation = "item:verify"
	OverrideItemStatus      Operation = "item:override-status"
	BackfillClassifications Operation = "item:backfill"
	ReadClaim               Operation = "claim:read"
	ResolveClaim            Operation = "claim:resolve"
	ReadNotification        Operation = "notification:read"
	UpdateNotification      Operation = "notification:update"
	ManageCategories        Operation = "category:manage"
	ReadClassificationLog   Operation = "classification-log:read"
)

type policy int

const (
	adminOnly policy = iota
	ownerOrAdmin
	ownerOnly
)

var policies = map[Operation]policy{
	ReadItem:                ownerOrAdmin,
	UpdateItem:              ownerOrAdmin,
	ReclassifyItem:          ownerOrAdmin,
	VerifyItem:              adminOnly,
	OverrideItemStatus:      adminOnly,
	BackfillClassifications: adminOnly,
	ReadClaim:               ownerOrAdmin,
	ResolveClaim:            adminOnly,
	ReadNotification:        ownerOnly,
	UpdateNotification:      ownerOnly,
	ManageCategories:        adminOnly,
	ReadClassificationLog:   adminOnly,
}

// Target identifies the owner of the resource an operation acts on.
// A nil target is used for operations that are not tied to a resource.
type Target struct {
	OwnerID uuid.UUID
}

// Authorize returns nil if actor may perform op on target, and
// ErrPermissionDenied otherwise. Unknown operations are denied.
func Authorize(actor auth.Actor, op Operation, target *Target) error {
	if actor.ID == uuid.Nil {
		return ErrPermissionDenied
	}

	p, ok := policies[op]
	if !ok {
		return ErrPermissionDenied
	}

	switch p {
	case adminOnly:
		if actor.IsAdmin() {
			return nil
		}
	case ownerOrAdmin:
		if actor.IsAdmin() || owns(actor, target) {
			return nil
		}
	case ownerOnly:
		if owns(actor, target) {
			return nil
		}
	}

	return ErrPermissionDenied
}

// Scope returns the owner id a listing for op must be restricted to, or nil
// when the actor may see every owner's records.
func Scope(actor auth.Actor, op Operation) *uuid.UUID {
	if policies[op] == ownerOrAdmin && actor.IsAdmin() {
		return nil
	}
	id := actor.ID
	return &id
}

// MapHTTPStatus maps authorization errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrPermissionDenied) {
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func owns(actor auth.Actor, target *Target) bool {
	return target != nil && target.OwnerID == actor.ID
}
