// Package claims is the claim ledger and the resolution workflow.
//
// A resident files a claim on a found item they do not own. An admin then
// approves or rejects it exactly once; approval marks the found item
// returned in the same transaction, and the claimant is notified after
// commit on a best-effort basis.
package claims

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a claim.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	// StatusReturned is accepted by the store but no operation assigns it.
	StatusReturned Status = "returned"
)

// Claim is a request by a claimant to take ownership of a found item.
type Claim struct {
	ID             uuid.UUID  `json:"id"`
	ClaimantID     uuid.UUID  `json:"claimant_id"`
	FoundItemID    uuid.UUID  `json:"found_item_id"`
	FoundItemTitle string     `json:"found_item_title"`
	Description    string     `json:"description"`
	Proof          string     `json:"proof"`
	PhotoKey       *string    `json:"-"`
	HasPhoto       bool       `json:"has_photo"`
	Status         Status     `json:"status"`
	AdminNotes     string     `json:"admin_notes"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ResolvedAt     *time.Time `json:"resolved_at"`
}

// FileCommand carries a new claim. Photo is optional supporting evidence,
// already normalized by the imaging pipeline.
type FileCommand struct {
	FoundItemID uuid.UUID `json:"found_item_id" validate:"required"`
	Description string    `json:"description" validate:"notblank,max=2000"`
	Proof       string    `json:"proof" validate:"notblank,max=2000"`
	Photo       []byte    `json:"-"`
}

// ResolveCommand carries the admin's notes for an approval or rejection.
type ResolveCommand struct {
	AdminNotes string `json:"admin_notes" validate:"max=2000"`
}
