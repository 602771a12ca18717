package items

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/lostfound/internal/auth"
	"github.com/JaimeStill/lostfound/internal/authz"
	"github.com/JaimeStill/lostfound/internal/classifier"
	"github.com/JaimeStill/lostfound/internal/imaging"
	"github.com/JaimeStill/lostfound/pkg/repository"
)

// suggest classifies a freshly uploaded photo. Failures are logged and
// yield nil so item creation proceeds without a suggestion.
func (r *repo) suggest(ctx context.Context, id uuid.UUID, photo []byte) *classifier.Result {
	result, err := r.advisor.Classify(ctx, classifier.Request{
		Image:  photo,
		MIME:   imaging.ContentType,
		Source: r.source(id),
	})
	if err != nil {
		r.logger.Warn("classification failed, saving item without suggestion", "id", id, "error", err)
		return nil
	}
	return result
}

func (r *repo) Reclassify(ctx context.Context, actor auth.Actor, id uuid.UUID) (*classifier.Result, error) {
	it, err := r.authorized(ctx, actor, authz.ReclassifyItem, id)
	if err != nil {
		return nil, err
	}
	if it.PhotoKey == nil {
		return nil, ErrNoImage
	}

	result, err := r.classifyStored(ctx, it.ID, *it.PhotoKey)
	if err != nil {
		return nil, err
	}

	r.logger.Info("item reclassified", "id", id, "label", result.Label, "confidence", result.Confidence)
	return result, nil
}

func (r *repo) Backfill(ctx context.Context, actor auth.Actor) (*BackfillResult, error) {
	if err := authz.Authorize(actor, authz.BackfillClassifications, nil); err != nil {
		return nil, err
	}

	q := fmt.Sprintf(
		"SELECT id, photo_key FROM %s WHERE photo_key IS NOT NULL AND suggested_label IS NULL ORDER BY created_at",
		r.kind.Table(),
	)

	candidates, err := repository.QueryMany(ctx, r.db, q, nil, scanCandidate)
	if err != nil {
		return nil, fmt.Errorf("query backfill candidates: %w", err)
	}

	var (
		mu     sync.Mutex
		result = &BackfillResult{
			Candidates: len(candidates),
			Failures:   []BackfillFailure{},
		}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, c := range candidates {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			_, err := r.classifyStored(gctx, c.id, c.key)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failures = append(result.Failures, BackfillFailure{ItemID: c.id, Error: err.Error()})
				return nil
			}
			result.Classified++
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("backfill %s: %w", r.kind.Table(), err)
	}

	r.logger.Info(
		"classification backfill complete",
		"candidates", result.Candidates,
		"classified", result.Classified,
		"failed", len(result.Failures),
	)
	return result, nil
}

// classifyStored downloads the photo at key, classifies it and writes the
// suggestion in a single statement. Nothing is written when the advisor fails.
func (r *repo) classifyStored(ctx context.Context, id uuid.UUID, key string) (*classifier.Result, error) {
	rc, err := r.storage.Download(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("download item photo: %w", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("read item photo: %w", err)
	}

	result, err := r.advisor.Classify(ctx, classifier.Request{
		Image:  data,
		MIME:   imaging.ContentType,
		Source: r.source(id),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClassification, err)
	}

	label, confidence, ranked, classifiedAt, err := suggestionArgs(result)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
		UPDATE %s SET
			suggested_label = $2,
			suggested_confidence = $3,
			suggested_ranked = $4,
			classified_at = $5,
			updated_at = NOW()
		WHERE id = $1`,
		r.kind.Table(),
	)

	if err := repository.ExecExpectOne(ctx, r.db, q, id, label, confidence, ranked, classifiedAt); err != nil {
		return nil, r.mapError(err)
	}
	return result, nil
}

func (r *repo) source(id uuid.UUID) string {
	return r.kind.Path() + "/" + id.String()
}

// suggestionArgs flattens a result into the suggestion column values.
// A nil result yields NULLs and an empty ranked list.
func suggestionArgs(result *classifier.Result) (label *string, confidence *float64, ranked string, classifiedAt *time.Time, err error) {
	if result == nil {
		return nil, nil, "[]", nil, nil
	}

	b, err := json.Marshal(result.Ranked)
	if err != nil {
		return nil, nil, "", nil, fmt.Errorf("encode ranked predictions: %w", err)
	}
	if result.Ranked == nil {
		b = []byte("[]")
	}

	now := time.Now().UTC()
	return &result.Label, &result.Confidence, string(b), &now, nil
}

type candidate struct {
	id  uuid.UUID
	key string
}

func scanCandidate(s repository.Scanner) (candidate, error) {
	var c candidate
	err := s.Scan(&c.id, &c.key)
	return c, err
}
