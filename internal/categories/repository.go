package categories

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/lostfound/internal/auth"
	"github.com/JaimeStill/lostfound/internal/authz"
	"github.com/JaimeStill/lostfound/pkg/query"
	"github.com/JaimeStill/lostfound/pkg/repository"
	"github.com/JaimeStill/lostfound/pkg/sanitize"
	"github.com/JaimeStill/lostfound/pkg/validation"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a category repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "categories"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) List(ctx context.Context) ([]Category, error) {
	q, args := query.NewBuilder(projection, defaultSort).Build()
	cats, err := repository.QueryMany(ctx, r.db, q, args, scanCategory)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	return cats, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Category, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)
	c, err := repository.QueryOne(ctx, r.db, q, args, scanCategory)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) Create(ctx context.Context, actor auth.Actor, cmd CreateCommand) (*Category, error) {
	if err := authz.Authorize(actor, authz.ManageCategories, nil); err != nil {
		return nil, err
	}

	cmd.Name = sanitize.Text(cmd.Name)
	cmd.Description = sanitize.Text(cmd.Description)
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	q := `
		INSERT INTO categories(id, name, description)
		VALUES ($1, $2, $3)
		RETURNING id, name, description, created_at`

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Category, error) {
		return repository.QueryOne(ctx, tx, q, []any{uuid.New(), cmd.Name, cmd.Description}, scanCategory)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("category created", "id", c.ID, "name", c.Name)
	return &c, nil
}

func (r *repo) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if err := authz.Authorize(actor, authz.ManageCategories, nil); err != nil {
		return err
	}

	err := repository.ExecExpectOne(ctx, r.db, "DELETE FROM categories WHERE id = $1", id)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("category deleted", "id", id)
	return nil
}
