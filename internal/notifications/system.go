package notifications

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/lostfound/internal/auth"
	"github.com/JaimeStill/lostfound/pkg/pagination"
)

// System defines notification operations. Every read and write is scoped
// to the calling actor; admins have no override.
type System interface {
	Handler() *Handler

	// Emit creates a notification. It fails only on invalid input or a
	// store fault.
	Emit(ctx context.Context, cmd EmitCommand) (*Notification, error)

	List(ctx context.Context, actor auth.Actor, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Notification], error)
	Find(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Notification, error)
	UnreadCount(ctx context.Context, actor auth.Actor) (int, error)

	// MarkRead flags one of the actor's notifications as read.
	MarkRead(ctx context.Context, actor auth.Actor, id uuid.UUID) error
	// MarkAllRead flags every unread notification of the actor and returns
	// how many changed.
	MarkAllRead(ctx context.Context, actor auth.Actor) (int64, error)
}
