package claims

import (
	"net/url"

	"github.com/google/uuid"

	"github.com/JaimeStill/lostfound/pkg/query"
	"github.com/JaimeStill/lostfound/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "claims", "cl").
	Project("id", "ID").
	Project("claimant_id", "ClaimantID").
	Project("found_item_id", "FoundItemID").
	Project("description", "Description").
	Project("proof", "Proof").
	Project("photo_key", "PhotoKey").
	Project("status", "Status").
	Project("admin_notes", "AdminNotes").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt").
	Project("resolved_at", "ResolvedAt").
	Join("public", "found_items", "f", "JOIN", "cl.found_item_id = f.id").
	Project("title", "FoundItemTitle")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters narrows a claim listing.
type Filters struct {
	Status      *string    `json:"status,omitempty"`
	FoundItemID *uuid.UUID `json:"found_item_id,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereEquals("FoundItemID", f.FoundItemID)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}

	if id := values.Get("found_item_id"); id != "" {
		if v, err := uuid.Parse(id); err == nil {
			f.FoundItemID = &v
		}
	}

	return f
}

func scanClaim(s repository.Scanner) (Claim, error) {
	var c Claim
	err := s.Scan(
		&c.ID,
		&c.ClaimantID,
		&c.FoundItemID,
		&c.Description,
		&c.Proof,
		&c.PhotoKey,
		&c.Status,
		&c.AdminNotes,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.ResolvedAt,
		&c.FoundItemTitle,
	)
	c.HasPhoto = c.PhotoKey != nil
	return c, err
}
