package notifications

import (
	"net/url"
	"strconv"

	"github.com/JaimeStill/lostfound/pkg/query"
	"github.com/JaimeStill/lostfound/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "notifications", "n").
	Project("id", "ID").
	Project("recipient_id", "RecipientID").
	Project("type", "Type").
	Project("title", "Title").
	Project("message", "Message").
	Project("lost_item_id", "LostItemID").
	Project("found_item_id", "FoundItemID").
	Project("claim_id", "ClaimID").
	Project("is_read", "IsRead").
	Project("created_at", "CreatedAt")

const columns = "id, recipient_id, type, title, message, lost_item_id, found_item_id, claim_id, is_read, created_at"

var defaultSort = query.SortField{Field: "CreatedAt", Descending: true}

// Filters narrows a notification listing.
type Filters struct {
	IsRead *bool   `json:"is_read,omitempty"`
	Type   *string `json:"type,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("IsRead", f.IsRead).
		WhereEquals("Type", f.Type)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if v := values.Get("is_read"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.IsRead = &b
		}
	}
	if t := values.Get("type"); t != "" {
		f.Type = &t
	}

	return f
}

func scanNotification(s repository.Scanner) (Notification, error) {
	var n Notification
	err := s.Scan(
		&n.ID,
		&n.RecipientID,
		&n.Type,
		&n.Title,
		&n.Message,
		&n.LostItemID,
		&n.FoundItemID,
		&n.ClaimID,
		&n.IsRead,
		&n.CreatedAt,
	)
	return n, err
}
