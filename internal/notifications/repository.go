package notifications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/lostfound/internal/auth"
	"github.com/JaimeStill/lostfound/internal/authz"
	"github.com/JaimeStill/lostfound/internal/metrics"
	"github.com/JaimeStill/lostfound/pkg/pagination"
	"github.com/JaimeStill/lostfound/pkg/query"
	"github.com/JaimeStill/lostfound/pkg/repository"
	"github.com/JaimeStill/lostfound/pkg/validation"
)

type repo struct {
	db         *sql.DB
	metrics    metrics.Recorder
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a notification repository implementing the System interface.
func New(db *sql.DB, recorder metrics.Recorder, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		metrics:    recorder,
		logger:     logger.With("system", "notifications"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Emit(ctx context.Context, cmd EmitCommand) (*Notification, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	q := `
		INSERT INTO notifications(id, recipient_id, type, title, message, lost_item_id, found_item_id, claim_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + columns

	args := []any{
		uuid.New(),
		cmd.RecipientID,
		cmd.Type,
		cmd.Title,
		cmd.Message,
		cmd.LostItemID,
		cmd.FoundItemID,
		cmd.ClaimID,
	}

	n, err := repository.QueryOne(ctx, r.db, q, args, scanNotification)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}

	r.metrics.NotificationEmitted(string(n.Type))
	r.logger.Info("notification emitted", "id", n.ID, "recipient", n.RecipientID, "type", n.Type)
	return &n, nil
}

func (r *repo) List(
	ctx context.Context,
	actor auth.Actor,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Notification], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("RecipientID", authz.Scope(actor, authz.ReadNotification)).
		WhereSearch(page.Search, "Title", "Message")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.QueryCount(ctx, r.db, countSQL, countArgs)
	if err != nil {
		return nil, fmt.Errorf("count notifications: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	ns, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanNotification)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}

	result := pagination.NewPageResult(ns, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Notification, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	n, err := repository.QueryOne(ctx, r.db, q, args, scanNotification)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrNotFound)
	}

	if err := authz.Authorize(actor, authz.ReadNotification, &authz.Target{OwnerID: n.RecipientID}); err != nil {
		return nil, ErrNotFound
	}
	return &n, nil
}

func (r *repo) UnreadCount(ctx context.Context, actor auth.Actor) (int, error) {
	unread := false
	q, args := query.
		NewBuilder(projection).
		WhereEquals("RecipientID", authz.Scope(actor, authz.ReadNotification)).
		WhereEquals("IsRead", &unread).
		BuildCount()

	n, err := repository.QueryCount(ctx, r.db, q, args)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}

func (r *repo) MarkRead(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		"UPDATE notifications SET is_read = TRUE WHERE id = $1 AND recipient_id = $2",
		id, *authz.Scope(actor, authz.UpdateNotification),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

func (r *repo) MarkAllRead(ctx context.Context, actor auth.Actor) (int64, error) {
	n, err := repository.Exec(
		ctx, r.db,
		"UPDATE notifications SET is_read = TRUE WHERE recipient_id = $1 AND is_read = FALSE",
		*authz.Scope(actor, authz.UpdateNotification),
	)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}

	if n > 0 {
		r.logger.Info("notifications marked read", "recipient", actor.ID, "count", n)
	}
	return n, nil
}
