package items

import (
	"encoding/json"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/lostfound/internal/classifier"
	"github.com/JaimeStill/lostfound/pkg/query"
	"github.com/JaimeStill/lostfound/pkg/repository"
)

const dateLayout = "2006-01-02"

func newProjection(kind Kind) *query.ProjectionMap {
	return query.
		NewProjectionMap("public", kind.Table(), "i").
		Project("id", "ID").
		Project("owner_id", "OwnerID").
		Project("title", "Title").
		Project("description", "Description").
		Project("category_id", "CategoryID").
		Project("location", "Location").
		Project("item_date", "Date").
		Project("item_time", "Time").
		Project("brand", "Brand").
		Project("color", "Color").
		Project("storage_location", "StorageLocation").
		Project("photo_key", "PhotoKey").
		Project("suggested_label", "SuggestedLabel").
		Project("suggested_confidence", "SuggestedConfidence").
		Project("suggested_ranked", "SuggestedRanked").
		Project("classified_at", "ClassifiedAt").
		Project("status", "Status").
		Project("is_verified", "IsVerified").
		Project("created_at", "CreatedAt").
		Project("updated_at", "UpdatedAt").
		Join("public", "categories", "c", "LEFT JOIN", "i.category_id = c.id").
		Project("name", "Category")
}

var projections = map[Kind]*query.ProjectionMap{
	KindLost:  newProjection(KindLost),
	KindFound: newProjection(KindFound),
}

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters narrows an item listing. Category matches the category name
// case-insensitively and Location is a contains match.
type Filters struct {
	Category *string    `json:"category,omitempty"`
	Status   *string    `json:"status,omitempty"`
	Location *string    `json:"location,omitempty"`
	OwnerID  *uuid.UUID `json:"owner_id,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEqualsFold("Category", f.Category).
		WhereEquals("Status", f.Status).
		WhereContains("Location", f.Location).
		WhereEquals("OwnerID", f.OwnerID)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if c := values.Get("category"); c != "" {
		f.Category = &c
	}

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}

	if l := values.Get("location"); l != "" {
		f.Location = &l
	}

	if o := values.Get("owner_id"); o != "" {
		if id, err := uuid.Parse(o); err == nil {
			f.OwnerID = &id
		}
	}

	return f
}

func scanner(kind Kind) repository.ScanFunc[Item] {
	return func(s repository.Scanner) (Item, error) {
		var (
			it           Item
			date         time.Time
			label        *string
			confidence   *float64
			ranked       []byte
			classifiedAt *time.Time
		)

		err := s.Scan(
			&it.ID,
			&it.OwnerID,
			&it.Title,
			&it.Description,
			&it.CategoryID,
			&it.Location,
			&date,
			&it.Time,
			&it.Brand,
			&it.Color,
			&it.StorageLocation,
			&it.PhotoKey,
			&label,
			&confidence,
			&ranked,
			&classifiedAt,
			&it.Status,
			&it.IsVerified,
			&it.CreatedAt,
			&it.UpdatedAt,
			&it.Category,
		)
		if err != nil {
			return it, err
		}

		it.Kind = kind
		it.Date = date.Format(dateLayout)
		it.HasPhoto = it.PhotoKey != nil

		if label != nil && classifiedAt != nil {
			sg := &Suggestion{Label: *label, ClassifiedAt: *classifiedAt}
			if confidence != nil {
				sg.Confidence = *confidence
			}
			if len(ranked) > 0 {
				if err := json.Unmarshal(ranked, &sg.Ranked); err != nil {
					return it, err
				}
			}
			sg.Display = classifier.Display(sg.Ranked)
			it.Suggestion = sg
		}

		return it, nil
	}
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// normalizeTime rewrites a parsed time of day as zero-padded HH:MM.
func normalizeTime(s *string) *string {
	if s == nil {
		return nil
	}
	t, err := time.Parse("15:04", *s)
	if err != nil {
		return s
	}
	out := t.Format("15:04")
	return &out
}
