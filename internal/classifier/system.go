package classifier

import (
	"context"

	"github.com/JaimeStill/lostfound/internal/auth"
	"github.com/JaimeStill/lostfound/pkg/pagination"
)

// Status describes the configured backend.
type Status struct {
	Provider       Provider `json:"provider"`
	Model          string   `json:"model"`
	Available      bool     `json:"available"`
	Timeout        string   `json:"timeout"`
	MaxPredictions int      `json:"max_predictions"`
}

// System is the Classification Advisor plus its operational surface.
type System interface {
	Advisor
	Handler(maxUploadSize int64) *Handler
	Status() Status
	// Logs returns the classification log. Admin only.
	Logs(ctx context.Context, actor auth.Actor, page pagination.PageRequest, filters LogFilters) (*pagination.PageResult[LogEntry], error)
}
