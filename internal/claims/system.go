package claims

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/JaimeStill/lostfound/internal/auth"
	"github.com/JaimeStill/lostfound/internal/notifications"
	"github.com/JaimeStill/lostfound/pkg/pagination"
)

// Notifier emits claimant notifications after a resolution commits.
type Notifier interface {
	Emit(ctx context.Context, cmd notifications.EmitCommand) (*notifications.Notification, error)
}

// System defines claim ledger and resolution operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	// File creates a pending claim by actor on a found item they do not own.
	File(ctx context.Context, actor auth.Actor, cmd FileCommand) (*Claim, error)

	List(ctx context.Context, actor auth.Actor, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Claim], error)
	Find(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Claim, error)
	Photo(ctx context.Context, actor auth.Actor, id uuid.UUID) (io.ReadCloser, error)

	// Approve resolves a pending claim and marks its found item returned.
	Approve(ctx context.Context, actor auth.Actor, id uuid.UUID, cmd ResolveCommand) (*Claim, error)
	// Reject resolves a pending claim and leaves the found item untouched.
	Reject(ctx context.Context, actor auth.Actor, id uuid.UUID, cmd ResolveCommand) (*Claim, error)
}
