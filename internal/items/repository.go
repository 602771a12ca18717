package items

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/lostfound/internal/auth"
	"github.com/JaimeStill/lostfound/internal/authz"
	"github.com/JaimeStill/lostfound/internal/classifier"
	"github.com/JaimeStill/lostfound/internal/imaging"
	"github.com/JaimeStill/lostfound/internal/metrics"
	"github.com/JaimeStill/lostfound/pkg/pagination"
	"github.com/JaimeStill/lostfound/pkg/query"
	"github.com/JaimeStill/lostfound/pkg/repository"
	"github.com/JaimeStill/lostfound/pkg/sanitize"
	"github.com/JaimeStill/lostfound/pkg/storage"
	"github.com/JaimeStill/lostfound/pkg/validation"
)

const matchLimit = 50

type repo struct {
	kind        Kind
	db          *sql.DB
	storage     storage.System
	advisor     classifier.Advisor
	metrics     metrics.Recorder
	logger      *slog.Logger
	pagination  pagination.Config
	concurrency int
}

// New creates the item registry for kind. concurrency bounds the number of
// advisor calls a Backfill runs at once.
func New(
	kind Kind,
	db *sql.DB,
	store storage.System,
	advisor classifier.Advisor,
	recorder metrics.Recorder,
	logger *slog.Logger,
	pagination pagination.Config,
	concurrency int,
) System {
	return &repo{
		kind:        kind,
		db:          db,
		storage:     store,
		advisor:     advisor,
		metrics:     recorder,
		logger:      logger.With("system", kind.Path()),
		pagination:  pagination,
		concurrency: max(1, concurrency),
	}
}

func (r *repo) Kind() Kind { return r.kind }

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) projection() *query.ProjectionMap {
	return projections[r.kind]
}

func (r *repo) List(
	ctx context.Context,
	actor auth.Actor,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Item], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(r.projection(), defaultSort).
		WhereEquals("OwnerID", authz.Scope(actor, authz.ReadItem)).
		WhereSearch(page.Search, "Title", "Description", "Location")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.QueryCount(ctx, r.db, countSQL, countArgs)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", r.kind.Table(), err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanner(r.kind))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.kind.Table(), err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Item, error) {
	return r.authorized(ctx, actor, authz.ReadItem, id)
}

func (r *repo) Create(ctx context.Context, actor auth.Actor, cmd CreateCommand) (*Item, error) {
	if actor.ID == uuid.Nil {
		return nil, authz.ErrPermissionDenied
	}

	cmd.Title = sanitize.Text(cmd.Title)
	cmd.Description = sanitize.Text(cmd.Description)
	cmd.Location = sanitize.Text(cmd.Location)
	cmd.Brand = sanitize.Optional(cmd.Brand)
	cmd.Color = sanitize.Optional(cmd.Color)
	cmd.StorageLocation = sanitize.Optional(cmd.StorageLocation)
	cmd.Time = normalizeTime(cmd.Time)

	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}
	if r.kind == KindLost && cmd.StorageLocation != nil {
		return nil, storageLocationError()
	}

	date, err := parseDate(&cmd.Date)
	if err != nil {
		return nil, err
	}

	id := uuid.New()

	var (
		key        *string
		suggestion *classifier.Result
	)
	if len(cmd.Photo) > 0 {
		k := photoKey(r.kind, id)
		if err := r.storage.Upload(ctx, k, bytes.NewReader(cmd.Photo), imaging.ContentType); err != nil {
			return nil, fmt.Errorf("upload item photo: %w", err)
		}
		key = &k
		suggestion = r.suggest(ctx, id, cmd.Photo)
	}

	label, confidence, ranked, classifiedAt, err := suggestionArgs(suggestion)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
		INSERT INTO %s(id, owner_id, title, description, category_id, location, item_date, item_time,
			brand, color, storage_location, photo_key,
			suggested_label, suggested_confidence, suggested_ranked, classified_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		r.kind.Table(),
	)

	args := []any{
		id,
		actor.ID,
		cmd.Title,
		cmd.Description,
		cmd.CategoryID,
		cmd.Location,
		*date,
		cmd.Time,
		cmd.Brand,
		cmd.Color,
		cmd.StorageLocation,
		key,
		label,
		confidence,
		ranked,
		classifiedAt,
		string(r.kind.InitialStatus()),
	}

	it, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Item, error) {
		if _, err := repository.Exec(ctx, tx, q, args...); err != nil {
			return Item{}, err
		}
		return r.load(ctx, tx, id, false)
	})

	if err != nil {
		if key != nil {
			if delErr := r.storage.Delete(ctx, *key); delErr != nil {
				r.logger.Warn("compensating blob delete failed", "key", *key, "error", delErr)
			}
		}
		return nil, r.mapError(err)
	}

	r.metrics.ItemCreated(string(r.kind))
	r.logger.Info("item created", "id", it.ID, "owner", it.OwnerID, "has_photo", it.HasPhoto)
	return &it, nil
}

func (r *repo) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, cmd UpdateCommand) (*Item, error) {
	cmd.Title = sanitize.Optional(cmd.Title)
	cmd.Description = sanitize.Optional(cmd.Description)
	cmd.Location = sanitize.Optional(cmd.Location)
	cmd.Brand = sanitize.Optional(cmd.Brand)
	cmd.Color = sanitize.Optional(cmd.Color)
	cmd.StorageLocation = sanitize.Optional(cmd.StorageLocation)
	cmd.Time = normalizeTime(cmd.Time)

	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}
	if r.kind == KindLost && cmd.StorageLocation != nil {
		return nil, storageLocationError()
	}
	if err := clearConflicts(cmd); err != nil {
		return nil, err
	}
	if cmd.Status != nil && !r.kind.Allows(*cmd.Status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *cmd.Status)
	}

	date, err := parseDate(cmd.Date)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
		UPDATE %s SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			category_id = CASE WHEN $13 THEN NULL ELSE COALESCE($4, category_id) END,
			location = COALESCE($5, location),
			item_date = COALESCE($6, item_date),
			item_time = CASE WHEN $14 THEN NULL ELSE COALESCE($7, item_time) END,
			brand = CASE WHEN $15 THEN NULL ELSE COALESCE($8, brand) END,
			color = CASE WHEN $16 THEN NULL ELSE COALESCE($9, color) END,
			storage_location = CASE WHEN $17 THEN NULL ELSE COALESCE($10, storage_location) END,
			status = COALESCE($11, status),
			is_verified = COALESCE($12, is_verified),
			updated_at = NOW()
		WHERE id = $1`,
		r.kind.Table(),
	)

	it, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Item, error) {
		current, err := r.load(ctx, tx, id, true)
		if err != nil {
			return Item{}, err
		}

		if err := r.authorizeUpdate(actor, current, cmd); err != nil {
			return Item{}, err
		}

		_, err = repository.Exec(ctx, tx, q,
			id,
			cmd.Title,
			cmd.Description,
			cmd.CategoryID,
			cmd.Location,
			date,
			cmd.Time,
			cmd.Brand,
			cmd.Color,
			cmd.StorageLocation,
			cmd.Status,
			cmd.IsVerified,
			cmd.Clears("category_id"),
			cmd.Clears("time"),
			cmd.Clears("brand"),
			cmd.Clears("color"),
			cmd.Clears("storage_location"),
		)
		if err != nil {
			return Item{}, err
		}

		return r.load(ctx, tx, id, false)
	})

	if err != nil {
		return nil, r.mapError(err)
	}

	r.logger.Info("item updated", "id", id, "actor", actor.ID)
	return &it, nil
}

func (r *repo) Photo(ctx context.Context, actor auth.Actor, id uuid.UUID) (io.ReadCloser, error) {
	it, err := r.authorized(ctx, actor, authz.ReadItem, id)
	if err != nil {
		return nil, err
	}
	if it.PhotoKey == nil {
		return nil, ErrNoImage
	}

	rc, err := r.storage.Download(ctx, *it.PhotoKey)
	if err != nil {
		return nil, fmt.Errorf("download item photo: %w", err)
	}
	return rc, nil
}

func (r *repo) Matches(ctx context.Context, actor auth.Actor, id uuid.UUID) ([]Item, error) {
	if r.kind != KindFound {
		return nil, ErrNotFound
	}

	found, err := r.authorized(ctx, actor, authz.ReadItem, id)
	if err != nil {
		return nil, err
	}

	q, args := query.
		NewBuilder(projections[KindLost], defaultSort).
		WhereNullable("CategoryID", found.CategoryID).
		WhereEquals("Status", string(StatusLost)).
		WhereNotEquals("OwnerID", found.OwnerID).
		BuildLimit(matchLimit)

	matches, err := repository.QueryMany(ctx, r.db, q, args, scanner(KindLost))
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	return matches, nil
}

// authorized loads an item and checks op against its owner.
func (r *repo) authorized(ctx context.Context, actor auth.Actor, op authz.Operation, id uuid.UUID) (*Item, error) {
	it, err := r.load(ctx, r.db, id, false)
	if err != nil {
		return nil, r.mapError(err)
	}

	if err := authz.Authorize(actor, op, &authz.Target{OwnerID: it.OwnerID}); err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *repo) authorizeUpdate(actor auth.Actor, current Item, cmd UpdateCommand) error {
	if err := authz.Authorize(actor, authz.UpdateItem, &authz.Target{OwnerID: current.OwnerID}); err != nil {
		return err
	}

	if cmd.IsVerified != nil && *cmd.IsVerified != current.IsVerified {
		if err := authz.Authorize(actor, authz.VerifyItem, nil); err != nil {
			return err
		}
	}

	if r.kind == KindFound && cmd.Status != nil && *cmd.Status != current.Status {
		if *cmd.Status == StatusReturned {
			return fmt.Errorf("%w: returned is set only by claim approval", ErrInvalidStatus)
		}
		if err := authz.Authorize(actor, authz.OverrideItemStatus, nil); err != nil {
			return err
		}
	}

	return nil
}

func (r *repo) load(ctx context.Context, q repository.Querier, id uuid.UUID, lock bool) (Item, error) {
	b := query.NewBuilder(r.projection())

	stmt, args := b.BuildSingle("ID", id)
	if lock {
		stmt, args = b.BuildSingleForUpdate("ID", id)
	}

	return repository.QueryOne(ctx, q, stmt, args, scanner(r.kind))
}

func (r *repo) mapError(err error) error {
	if repository.IsForeignKeyViolation(err) {
		return ErrUnknownCategory
	}
	return repository.MapError(err, ErrNotFound, ErrNotFound)
}

func photoKey(kind Kind, id uuid.UUID) string {
	return fmt.Sprintf("%s/%s/photo.jpg", kind.Path(), id)
}

func clearConflicts(cmd UpdateCommand) error {
	set := map[string]bool{
		"category_id":      cmd.CategoryID != nil,
		"time":             cmd.Time != nil,
		"brand":            cmd.Brand != nil,
		"color":            cmd.Color != nil,
		"storage_location": cmd.StorageLocation != nil,
	}

	fields := map[string]string{}
	for _, field := range cmd.Clear {
		if set[field] {
			fields[field] = "cannot be set and cleared together"
		}
	}
	if len(fields) > 0 {
		return &validation.Error{Fields: fields}
	}
	return nil
}

func storageLocationError() error {
	return &validation.Error{Fields: map[string]string{
		"storage_location": "only recorded on found items",
	}}
}
