package items

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/JaimeStill/lostfound/internal/auth"
	"github.com/JaimeStill/lostfound/internal/classifier"
	"github.com/JaimeStill/lostfound/pkg/pagination"
)

// System defines the registry operations for one item kind. Every read is
// scoped: admins see all items, residents only the items they own.
type System interface {
	Kind() Kind
	Handler(maxUploadSize int64) *Handler

	List(ctx context.Context, actor auth.Actor, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Item], error)
	Find(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Item, error)

	// Create stores a new report owned by actor. When a photo is attached
	// it is uploaded and classified first; a classification failure is
	// logged and the item is saved without a suggestion.
	Create(ctx context.Context, actor auth.Actor, cmd CreateCommand) (*Item, error)
	Update(ctx context.Context, actor auth.Actor, id uuid.UUID, cmd UpdateCommand) (*Item, error)

	// Reclassify runs the advisor on the stored photo and overwrites the
	// suggestion. Prior suggestion fields are untouched on failure.
	Reclassify(ctx context.Context, actor auth.Actor, id uuid.UUID) (*classifier.Result, error)
	// Backfill reclassifies every photo item that has no suggestion. Admin only.
	Backfill(ctx context.Context, actor auth.Actor) (*BackfillResult, error)

	// Photo opens the stored photo. The caller must close the reader.
	Photo(ctx context.Context, actor auth.Actor, id uuid.UUID) (io.ReadCloser, error)
	// Matches lists lost items that could correspond to a found item.
	Matches(ctx context.Context, actor auth.Actor, id uuid.UUID) ([]Item, error)
}
