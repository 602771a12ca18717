package claims

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/lostfound/internal/auth"
	"github.com/JaimeStill/lostfound/internal/authz"
	"github.com/JaimeStill/lostfound/internal/imaging"
	"github.com/JaimeStill/lostfound/internal/metrics"
	"github.com/JaimeStill/lostfound/internal/notifications"
	"github.com/JaimeStill/lostfound/pkg/pagination"
	"github.com/JaimeStill/lostfound/pkg/query"
	"github.com/JaimeStill/lostfound/pkg/repository"
	"github.com/JaimeStill/lostfound/pkg/sanitize"
	"github.com/JaimeStill/lostfound/pkg/storage"
	"github.com/JaimeStill/lostfound/pkg/validation"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	notifier   Notifier
	metrics    metrics.Recorder
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a claim repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	notifier Notifier,
	recorder metrics.Recorder,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		notifier:   notifier,
		metrics:    recorder,
		logger:     logger.With("system", "claims"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) File(ctx context.Context, actor auth.Actor, cmd FileCommand) (*Claim, error) {
	if actor.ID == uuid.Nil {
		return nil, authz.ErrPermissionDenied
	}

	cmd.Description = sanitize.Text(cmd.Description)
	cmd.Proof = sanitize.Text(cmd.Proof)
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	var ownerID uuid.UUID
	err := r.db.QueryRowContext(ctx, "SELECT owner_id FROM found_items WHERE id = $1", cmd.FoundItemID).Scan(&ownerID)
	if err != nil {
		return nil, repository.MapError(err, ErrItemNotFound, ErrDuplicate)
	}
	if ownerID == actor.ID {
		return nil, ErrSelfClaim
	}

	id := uuid.New()

	var key *string
	if len(cmd.Photo) > 0 {
		k := fmt.Sprintf("claims/%s/photo.jpg", id)
		if err := r.storage.Upload(ctx, k, bytes.NewReader(cmd.Photo), imaging.ContentType); err != nil {
			return nil, fmt.Errorf("upload claim photo: %w", err)
		}
		key = &k
	}

	q := `
		INSERT INTO claims(id, claimant_id, found_item_id, description, proof, photo_key)
		VALUES ($1, $2, $3, $4, $5, $6)`

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Claim, error) {
		if _, err := repository.Exec(ctx, tx, q, id, actor.ID, cmd.FoundItemID, cmd.Description, cmd.Proof, key); err != nil {
			return Claim{}, err
		}
		return r.load(ctx, tx, id, false)
	})

	if err != nil {
		if key != nil {
			if delErr := r.storage.Delete(ctx, *key); delErr != nil {
				r.logger.Warn("compensating blob delete failed", "key", *key, "error", delErr)
			}
		}
		if repository.IsForeignKeyViolation(err) {
			return nil, ErrItemNotFound
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.metrics.ClaimFiled()
	r.logger.Info("claim filed", "id", c.ID, "claimant", c.ClaimantID, "found_item", c.FoundItemID)
	return &c, nil
}

func (r *repo) List(
	ctx context.Context,
	actor auth.Actor,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Claim], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("ClaimantID", authz.Scope(actor, authz.ReadClaim)).
		WhereSearch(page.Search, "Description", "Proof", "FoundItemTitle")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.QueryCount(ctx, r.db, countSQL, countArgs)
	if err != nil {
		return nil, fmt.Errorf("count claims: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	cs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanClaim)
	if err != nil {
		return nil, fmt.Errorf("query claims: %w", err)
	}

	result := pagination.NewPageResult(cs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Claim, error) {
	c, err := r.load(ctx, r.db, id, false)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if err := authz.Authorize(actor, authz.ReadClaim, &authz.Target{OwnerID: c.ClaimantID}); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repo) Photo(ctx context.Context, actor auth.Actor, id uuid.UUID) (io.ReadCloser, error) {
	c, err := r.Find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if c.PhotoKey == nil {
		return nil, ErrNoPhoto
	}

	rc, err := r.storage.Download(ctx, *c.PhotoKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoPhoto
		}
		return nil, fmt.Errorf("download claim photo: %w", err)
	}
	return rc, nil
}

func (r *repo) Approve(ctx context.Context, actor auth.Actor, id uuid.UUID, cmd ResolveCommand) (*Claim, error) {
	return r.resolve(ctx, actor, id, DecisionApprove, cmd)
}

func (r *repo) Reject(ctx context.Context, actor auth.Actor, id uuid.UUID, cmd ResolveCommand) (*Claim, error) {
	return r.resolve(ctx, actor, id, DecisionReject, cmd)
}

// resolve runs the transition under a row lock on the claim. A concurrent
// resolver blocks on the lock, then observes the terminal status and fails
// with ErrInvalidState.
func (r *repo) resolve(
	ctx context.Context,
	actor auth.Actor,
	id uuid.UUID,
	d Decision,
	cmd ResolveCommand,
) (*Claim, error) {
	if err := authz.Authorize(actor, authz.ResolveClaim, nil); err != nil {
		return nil, err
	}

	cmd.AdminNotes = sanitize.Text(cmd.AdminNotes)
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Claim, error) {
		current, err := r.load(ctx, tx, id, true)
		if err != nil {
			return Claim{}, err
		}

		next, err := Transition(current.Status, d)
		if err != nil {
			return Claim{}, err
		}

		err = repository.ExecExpectOne(ctx, tx, `
			UPDATE claims
			SET status = $2, admin_notes = $3, resolved_at = NOW(), updated_at = NOW()
			WHERE id = $1 AND status = 'pending'`,
			id, string(next), cmd.AdminNotes,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return Claim{}, ErrInvalidState
		}
		if err != nil {
			return Claim{}, err
		}

		if d == DecisionApprove {
			err := repository.ExecExpectOne(ctx, tx,
				"UPDATE found_items SET status = 'returned', updated_at = NOW() WHERE id = $1",
				current.FoundItemID,
			)
			if err != nil {
				return Claim{}, fmt.Errorf("mark found item returned: %w", err)
			}
		}

		return r.load(ctx, tx, id, false)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.metrics.ClaimResolved(string(d))
	r.logger.Info(
		"claim resolved",
		"id", c.ID,
		"status", c.Status,
		"found_item", c.FoundItemID,
		"admin", actor.ID,
	)

	r.notify(ctx, c, d)
	return &c, nil
}

// notify emits the claimant notice. The resolution is already committed,
// so a failure is logged and counted but never returned.
func (r *repo) notify(ctx context.Context, c Claim, d Decision) {
	notice := NoticeFor(d, c.FoundItemTitle)

	_, err := r.notifier.Emit(context.WithoutCancel(ctx), notifications.EmitCommand{
		RecipientID: c.ClaimantID,
		Type:        notifications.TypeClaimUpdate,
		Title:       notice.Title,
		Message:     notice.Message,
		FoundItemID: &c.FoundItemID,
		ClaimID:     &c.ID,
	})
	if err != nil {
		r.metrics.NotificationFailed()
		r.logger.Error("claim notification failed", "claim", c.ID, "recipient", c.ClaimantID, "error", err)
	}
}

func (r *repo) load(ctx context.Context, q repository.Querier, id uuid.UUID, lock bool) (Claim, error) {
	b := query.NewBuilder(projection)

	stmt, args := b.BuildSingle("ID", id)
	if lock {
		stmt, args = b.BuildSingleForUpdate("ID", id)
	}

	return repository.QueryOne(ctx, q, stmt, args, scanClaim)
}
