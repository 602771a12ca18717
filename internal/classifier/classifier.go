// Package classifier suggests a category label for an item photo.
//
// A Model produces raw predictions; the System bounds each call with a
// timeout, condenses the predictions into a ranked Result, records every
// call in the classification log and exposes the status and log over HTTP.
package classifier

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/JaimeStill/lostfound/pkg/formatting"
)

// UnknownLabel is reported when a model returns no predictions.
const UnknownLabel = "unknown"

// Prediction is one candidate label with a confidence percentage (0-100).
type Prediction struct {
	Label      string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

func (p Prediction) String() string {
	return fmt.Sprintf("%s: %s", p.Label, formatting.FormatPercent(p.Confidence))
}

// Result is the condensed output of a classification call.
type Result struct {
	Label        string       `json:"label"`
	Confidence   float64      `json:"confidence"`
	Ranked       []Prediction `json:"ranked"`
	Display      []string     `json:"predictions_display"`
	ModelVersion string       `json:"model_version"`
	ProcessingMS int64        `json:"processing_ms"`
}

// Request carries a normalized photo to classify. Source identifies the
// caller in the classification log, e.g. "lost-items/<id>".
type Request struct {
	Image  []byte
	MIME   string
	Source string
}

// Advisor is the capability item systems consume.
type Advisor interface {
	Classify(ctx context.Context, req Request) (*Result, error)
}

// Model is a backend that labels an image.
type Model interface {
	Predict(ctx context.Context, image []byte, mime string, limit int) ([]Prediction, error)
	Name() string
	Available() bool
}

// Summarize ranks predictions by descending confidence, clamps each
// confidence to 0-100 and keeps the top limit entries. The top entry
// becomes the suggested label; an empty list yields UnknownLabel at 0.
func Summarize(preds []Prediction, limit int) Result {
	if limit <= 0 {
		limit = DefaultMaxPredictions
	}

	ranked := make([]Prediction, 0, len(preds))
	for _, p := range preds {
		if p.Label == "" {
			continue
		}
		p.Confidence = min(max(p.Confidence, 0), 100)
		ranked = append(ranked, p)
	}

	slices.SortStableFunc(ranked, func(a, b Prediction) int {
		return cmp.Compare(b.Confidence, a.Confidence)
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	result := Result{
		Label:   UnknownLabel,
		Ranked:  ranked,
		Display: Display(ranked),
	}
	if len(ranked) > 0 {
		result.Label = ranked[0].Label
		result.Confidence = ranked[0].Confidence
	}
	return result
}

// Display renders each prediction as "label: 12.34%".
func Display(preds []Prediction) []string {
	out := make([]string, len(preds))
	for i, p := range preds {
		out[i] = p.String()
	}
	return out
}
