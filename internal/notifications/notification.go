// Package notifications records messages for residents and tracks whether
// they have been read. Notifications are created as side effects of claim
// resolution and are only ever visible to their recipient.
package notifications

import (
	"time"

	"github.com/google/uuid"
)

// Type classifies a notification.
type Type string

const (
	TypeClaimUpdate Type = "claim_update"
	TypeMatchFound  Type = "match_found"
	TypeItemFound   Type = "item_found"
	TypeSystem      Type = "system"
)

// Notification is a message addressed to one actor.
type Notification struct {
	ID          uuid.UUID  `json:"id"`
	RecipientID uuid.UUID  `json:"recipient_id"`
	Type        Type       `json:"type"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	LostItemID  *uuid.UUID `json:"lost_item_id,omitempty"`
	FoundItemID *uuid.UUID `json:"found_item_id,omitempty"`
	ClaimID     *uuid.UUID `json:"claim_id,omitempty"`
	IsRead      bool       `json:"is_read"`
	CreatedAt   time.Time  `json:"created_at"`
}

// EmitCommand describes a notification to create.
type EmitCommand struct {
	RecipientID uuid.UUID  `json:"recipient_id" validate:"required"`
	Type        Type       `json:"type" validate:"oneof=claim_update match_found item_found system"`
	Title       string     `json:"title" validate:"notblank,max=200"`
	Message     string     `json:"message" validate:"notblank"`
	LostItemID  *uuid.UUID `json:"lost_item_id,omitempty"`
	FoundItemID *uuid.UUID `json:"found_item_id,omitempty"`
	ClaimID     *uuid.UUID `json:"claim_id,omitempty"`
}
