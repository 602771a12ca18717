package classifier

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/lostfound/pkg/query"
	"github.com/JaimeStill/lostfound/pkg/repository"
)

// LogEntry records one classifier call.
type LogEntry struct {
	ID           uuid.UUID    `json:"id"`
	Source       string       `json:"source"`
	Label        string       `json:"predicted_label"`
	Confidence   float64      `json:"confidence"`
	Ranked       []Prediction `json:"ranked"`
	ModelVersion string       `json:"model_version"`
	ProcessingMS int64        `json:"processing_ms"`
	Error        *string      `json:"error,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

var logProjection = query.
	NewProjectionMap("public", "classification_logs", "l").
	Project("id", "ID").
	Project("source", "Source").
	Project("predicted_label", "Label").
	Project("confidence", "Confidence").
	Project("ranked", "Ranked").
	Project("model_version", "ModelVersion").
	Project("processing_ms", "ProcessingMS").
	Project("error", "Error").
	Project("created_at", "CreatedAt")

var logDefaultSort = query.SortField{Field: "CreatedAt", Descending: true}

// LogFilters narrows the classification log.
type LogFilters struct {
	Source *string `json:"source,omitempty"`
	Label  *string `json:"label,omitempty"`
	Failed *bool   `json:"failed,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f LogFilters) Apply(b *query.Builder) *query.Builder {
	b.WhereContains("Source", f.Source).WhereEqualsFold("Label", f.Label)
	if f.Failed != nil {
		if *f.Failed {
			b.WhereNotNull("Error")
		} else {
			b.WhereNull("Error")
		}
	}
	return b
}

func scanLogEntry(s repository.Scanner) (LogEntry, error) {
	var (
		e      LogEntry
		ranked []byte
	)
	err := s.Scan(
		&e.ID,
		&e.Source,
		&e.Label,
		&e.Confidence,
		&ranked,
		&e.ModelVersion,
		&e.ProcessingMS,
		&e.Error,
		&e.CreatedAt,
	)
	if err != nil {
		return e, err
	}
	if len(ranked) > 0 {
		if err := json.Unmarshal(ranked, &e.Ranked); err != nil {
			return e, err
		}
	}
	return e, nil
}
