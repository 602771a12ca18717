package classifier

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/JaimeStill/lostfound/internal/auth"
	"github.com/JaimeStill/lostfound/internal/imaging"
	"github.com/JaimeStill/lostfound/pkg/handlers"
	"github.com/JaimeStill/lostfound/pkg/pagination"
	"github.com/JaimeStill/lostfound/pkg/routes"
)

// ErrPhotoRequired indicates a classify request without a photo.
var ErrPhotoRequired = errors.New("photo required")

// Handler provides HTTP endpoints for the classifier.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// NewHandler creates a classifier Handler.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "classifier"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for classifier endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/classifier",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/status", Handler: h.Status},
			{Method: "POST", Pattern: "/classify", Handler: h.Classify},
			{Method: "GET", Pattern: "/logs", Handler: h.Logs},
		},
	}
}

// Status reports the configured backend.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.Status())
}

// Classify labels an uploaded photo without saving anything but the log entry.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Current(w, r, h.logger)
	if !ok {
		return
	}

	if err := handlers.ParseMultipart(w, r, h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, err)
		return
	}

	photo, err := imaging.ReadForm(r, "photo")
	if err != nil {
		handlers.RespondError(w, h.logger, imaging.MapHTTPStatus(err), err)
		return
	}
	if photo == nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrPhotoRequired)
		return
	}

	result, err := h.sys.Classify(r.Context(), Request{
		Image:  photo.Data,
		MIME:   imaging.ContentType,
		Source: fmt.Sprintf("upload/%s", actor.ID),
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Logs returns the classification log. Admin only.
func (h *Handler) Logs(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Current(w, r, h.logger)
	if !ok {
		return
	}

	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	result, err := h.sys.Logs(r.Context(), actor, page, logFiltersFromQuery(r.URL.Query()))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func logFiltersFromQuery(values url.Values) LogFilters {
	var f LogFilters

	if s := values.Get("source"); s != "" {
		f.Source = &s
	}
	if l := values.Get("label"); l != "" {
		f.Label = &l
	}
	if v := values.Get("failed"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.Failed = &b
		}
	}

	return f
}
