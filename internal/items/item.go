// Package items is the registry for lost and found item reports.
//
// Both kinds share one shape and one System implementation parameterized by
// Kind. Found items additionally carry a storage location, and their status
// only reaches returned through claim approval.
package items

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/lostfound/internal/classifier"
)

// Kind selects the lost or found registry.
type Kind string

const (
	KindLost  Kind = "lost"
	KindFound Kind = "found"
)

// Table returns the backing table name.
func (k Kind) Table() string {
	return string(k) + "_items"
}

// Path returns the URL segment and storage key prefix for the kind.
func (k Kind) Path() string {
	return string(k) + "-items"
}

// InitialStatus is the status assigned at creation.
func (k Kind) InitialStatus() Status {
	if k == KindFound {
		return StatusFound
	}
	return StatusLost
}

// Allows reports whether s is a member of the kind's status set.
func (k Kind) Allows(s Status) bool {
	switch k {
	case KindLost:
		return s == StatusLost || s == StatusFound || s == StatusClaimed
	case KindFound:
		return s == StatusFound || s == StatusReturned || s == StatusDisposed
	}
	return false
}

// Status is the lifecycle state of an item.
type Status string

const (
	StatusLost     Status = "lost"
	StatusFound    Status = "found"
	StatusClaimed  Status = "claimed"
	StatusReturned Status = "returned"
	StatusDisposed Status = "disposed"
)

// Suggestion is the stored output of the last successful classification.
type Suggestion struct {
	Label        string                  `json:"label"`
	Confidence   float64                 `json:"confidence"`
	Ranked       []classifier.Prediction `json:"ranked"`
	Display      []string                `json:"predictions_display"`
	ClassifiedAt time.Time               `json:"classified_at"`
}

// Item is a lost or found report.
type Item struct {
	ID              uuid.UUID   `json:"id"`
	Kind            Kind        `json:"kind"`
	OwnerID         uuid.UUID   `json:"owner_id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	CategoryID      *uuid.UUID  `json:"category_id,omitempty"`
	Category        *string     `json:"category,omitempty"`
	Location        string      `json:"location"`
	Date            string      `json:"date"`
	Time            *string     `json:"time,omitempty"`
	Brand           *string     `json:"brand,omitempty"`
	Color           *string     `json:"color,omitempty"`
	StorageLocation *string     `json:"storage_location,omitempty"`
	PhotoKey        *string     `json:"-"`
	HasPhoto        bool        `json:"has_photo"`
	Suggestion      *Suggestion `json:"suggestion,omitempty"`
	Status          Status      `json:"status"`
	IsVerified      bool        `json:"is_verified"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// CreateCommand carries the fields of a new report. Photo is optional and
// already normalized by the imaging pipeline.
type CreateCommand struct {
	Title           string     `json:"title" validate:"notblank,max=200"`
	Description     string     `json:"description" validate:"notblank"`
	CategoryID      *uuid.UUID `json:"category_id,omitempty"`
	Location        string     `json:"location" validate:"notblank,max=200"`
	Date            string     `json:"date" validate:"required,datetime=2006-01-02"`
	Time            *string    `json:"time,omitempty" validate:"omitempty,datetime=15:04"`
	Brand           *string    `json:"brand,omitempty" validate:"omitempty,max=100"`
	Color           *string    `json:"color,omitempty" validate:"omitempty,max=50"`
	StorageLocation *string    `json:"storage_location,omitempty" validate:"omitempty,max=200"`
	Photo           []byte     `json:"-"`
}

// UpdateCommand is a partial update. Nil fields are left unchanged. Clear
// names optional fields to reset to null; a field cannot be both set and
// cleared. Classification is never re-run by an update.
type UpdateCommand struct {
	Title           *string    `json:"title,omitempty" validate:"omitempty,notblank,max=200"`
	Description     *string    `json:"description,omitempty" validate:"omitempty,notblank"`
	CategoryID      *uuid.UUID `json:"category_id,omitempty"`
	Location        *string    `json:"location,omitempty" validate:"omitempty,notblank,max=200"`
	Date            *string    `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Time            *string    `json:"time,omitempty" validate:"omitempty,datetime=15:04"`
	Brand           *string    `json:"brand,omitempty" validate:"omitempty,max=100"`
	Color           *string    `json:"color,omitempty" validate:"omitempty,max=50"`
	StorageLocation *string    `json:"storage_location,omitempty" validate:"omitempty,max=200"`
	Status          *Status    `json:"status,omitempty"`
	IsVerified      *bool      `json:"is_verified,omitempty"`
	Clear           []string   `json:"clear,omitempty" validate:"omitempty,dive,oneof=category_id time brand color storage_location"`
}

// Clears reports whether the update resets field to null.
func (c UpdateCommand) Clears(field string) bool {
	return slices.Contains(c.Clear, field)
}

// BackfillResult reports a classification backfill run.
type BackfillResult struct {
	Candidates int               `json:"candidates"`
	Classified int               `json:"classified"`
	Failures   []BackfillFailure `json:"failures"`
}

// BackfillFailure records one item the backfill could not classify.
type BackfillFailure struct {
	ItemID uuid.UUID `json:"item_id"`
	Error  string    `json:"error"`
}
