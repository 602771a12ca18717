package classifier

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/lostfound/internal/auth"
	"github.com/JaimeStill/lostfound/internal/authz"
	"github.com/JaimeStill/lostfound/internal/metrics"
	"github.com/JaimeStill/lostfound/pkg/pagination"
	"github.com/JaimeStill/lostfound/pkg/query"
	"github.com/JaimeStill/lostfound/pkg/repository"
)

type repo struct {
	db         *sql.DB
	model      Model
	cfg        Config
	metrics    metrics.Recorder
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates the classifier system around model.
func New(
	db *sql.DB,
	model Model,
	cfg Config,
	recorder metrics.Recorder,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		model:      model,
		cfg:        cfg,
		metrics:    recorder,
		logger:     logger.With("system", "classifier"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) Status() Status {
	return Status{
		Provider:       r.cfg.Provider,
		Model:          r.model.Name(),
		Available:      r.model.Available(),
		Timeout:        r.cfg.Timeout,
		MaxPredictions: r.cfg.MaxPredictions,
	}
}

func (r *repo) Classify(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	callCtx, cancel := context.WithTimeout(ctx, r.cfg.TimeoutDuration())
	defer cancel()

	preds, err := r.model.Predict(callCtx, req.Image, req.MIME, r.cfg.MaxPredictions)
	elapsed := time.Since(start)

	if err != nil {
		r.metrics.Classification("failure", elapsed)
		r.record(ctx, req.Source, Result{Label: UnknownLabel, ModelVersion: r.model.Name(), ProcessingMS: elapsed.Milliseconds()}, err)
		return nil, fmt.Errorf("%w: %w", ErrClassificationFailed, err)
	}

	result := Summarize(preds, r.cfg.MaxPredictions)
	result.ModelVersion = r.model.Name()
	result.ProcessingMS = elapsed.Milliseconds()

	r.metrics.Classification("success", elapsed)
	r.record(ctx, req.Source, result, nil)

	r.logger.Info(
		"image classified",
		"source", req.Source,
		"label", result.Label,
		"confidence", result.Confidence,
		"duration", elapsed,
	)
	return &result, nil
}

// record writes a classification log row. Failures are logged and dropped.
func (r *repo) record(ctx context.Context, source string, result Result, callErr error) {
	ranked, err := json.Marshal(result.Ranked)
	if err != nil || result.Ranked == nil {
		ranked = []byte("[]")
	}

	var errText *string
	if callErr != nil {
		s := callErr.Error()
		errText = &s
	}

	_, err = repository.Exec(
		context.WithoutCancel(ctx), r.db,
		`INSERT INTO classification_logs(id, source, predicted_label, confidence, ranked, model_version, processing_ms, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.New(), source, result.Label, result.Confidence, string(ranked),
		result.ModelVersion, result.ProcessingMS, errText,
	)
	if err != nil {
		r.logger.Warn("classification log write failed", "source", source, "error", err)
	}
}

func (r *repo) Logs(
	ctx context.Context,
	actor auth.Actor,
	page pagination.PageRequest,
	filters LogFilters,
) (*pagination.PageResult[LogEntry], error) {
	if err := authz.Authorize(actor, authz.ReadClassificationLog, nil); err != nil {
		return nil, err
	}

	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(logProjection, logDefaultSort).
		WhereSearch(page.Search, "Source", "Label")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.QueryCount(ctx, r.db, countSQL, countArgs)
	if err != nil {
		return nil, fmt.Errorf("count classification logs: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	entries, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanLogEntry)
	if err != nil {
		return nil, fmt.Errorf("query classification logs: %w", err)
	}

	result := pagination.NewPageResult(entries, total, page.Page, page.PageSize)
	return &result, nil
}
