package categories

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/lostfound/internal/auth"
)

// System defines the category lookup operations.
type System interface {
	Handler() *Handler
	List(ctx context.Context) ([]Category, error)
	Find(ctx context.Context, id uuid.UUID) (*Category, error)
	// Create adds a category. Admin only.
	Create(ctx context.Context, actor auth.Actor, cmd CreateCommand) (*Category, error)
	// Delete removes a category; items filed under it become uncategorized. Admin only.
	Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error
}
