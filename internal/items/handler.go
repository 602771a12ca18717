package items

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/lostfound/internal/auth"
	"github.com/JaimeStill/lostfound/internal/imaging"
	"github.com/JaimeStill/lostfound/pkg/handlers"
	"github.com/JaimeStill/lostfound/pkg/pagination"
	"github.com/JaimeStill/lostfound/pkg/routes"
	"github.com/JaimeStill/lostfound/pkg/storage"
	"github.com/JaimeStill/lostfound/pkg/validation"
)

// Handler provides HTTP endpoints for one item kind.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates an item Handler.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", sys.Kind().Path()),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for the kind's endpoints.
// Found items additionally expose potential matches.
func (h *Handler) Routes() routes.Group {
	group := routes.Group{
		Prefix: "/" + h.sys.Kind().Path(),
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "POST", Pattern: "/classify-missing", Handler: h.Backfill},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "PUT", Pattern: "/{id}", Handler: h.Update},
			{Method: "GET", Pattern: "/{id}/photo", Handler: h.Photo},
			{Method: "POST", Pattern: "/{id}/reclassify", Handler: h.Reclassify},
		},
	}

	if h.sys.Kind() == KindFound {
		group.Routes = append(group.Routes, routes.Route{
			Method: "GET", Pattern: "/{id}/matches", Handler: h.Matches,
		})
	}

	return group
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Current(w, r, h.logger)
	if !ok {
		return
	}

	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	result, err := h.sys.List(r.Context(), actor, page, FiltersFromQuery(r.URL.Query()))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Current(w, r, h.logger)
	if !ok {
		return
	}

	var req SearchRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.List(r.Context(), actor, req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Current(w, r, h.logger)
	if !ok {
		return
	}

	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	it, err := h.sys.Find(r.Context(), actor, id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, it)
}

// Create accepts multipart form fields with an optional photo, or a JSON
// body without one.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Current(w, r, h.logger)
	if !ok {
		return
	}

	var cmd CreateCommand
	if handlers.IsMultipart(r) {
		c, status, err := h.readForm(w, r)
		if err != nil {
			handlers.RespondError(w, h.logger, status, err)
			return
		}
		cmd = c
	} else if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	it, err := h.sys.Create(r.Context(), actor, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, it)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Current(w, r, h.logger)
	if !ok {
		return
	}

	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var cmd UpdateCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	it, err := h.sys.Update(r.Context(), actor, id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, it)
}

func (h *Handler) Photo(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Current(w, r, h.logger)
	if !ok {
		return
	}

	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	rc, err := h.sys.Photo(r.Context(), actor, id)
	if err != nil {
		status := MapHTTPStatus(err)
		if errors.Is(err, ErrNoImage) || errors.Is(err, storage.ErrNotFound) {
			status = http.StatusNotFound
		}
		handlers.RespondError(w, h.logger, status, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", imaging.ContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("photo stream interrupted", "id", id, "error", err)
	}
}

func (h *Handler) Reclassify(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Current(w, r, h.logger)
	if !ok {
		return
	}

	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.Reclassify(r.Context(), actor, id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Backfill(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Current(w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.sys.Backfill(r.Context(), actor)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Matches(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Current(w, r, h.logger)
	if !ok {
		return
	}

	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	matches, err := h.sys.Matches(r.Context(), actor, id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, matches)
}

func (h *Handler) readForm(w http.ResponseWriter, r *http.Request) (CreateCommand, int, error) {
	if err := handlers.ParseMultipart(w, r, h.maxUploadSize); err != nil {
		return CreateCommand{}, http.StatusRequestEntityTooLarge, err
	}

	cmd := CreateCommand{
		Title:           strings.TrimSpace(r.FormValue("title")),
		Description:     strings.TrimSpace(r.FormValue("description")),
		Location:        strings.TrimSpace(r.FormValue("location")),
		Date:            strings.TrimSpace(r.FormValue("date")),
		Time:            handlers.FormOptional(r, "time"),
		Brand:           handlers.FormOptional(r, "brand"),
		Color:           handlers.FormOptional(r, "color"),
		StorageLocation: handlers.FormOptional(r, "storage_location"),
	}

	if c := handlers.FormOptional(r, "category_id"); c != nil {
		id, err := uuid.Parse(*c)
		if err != nil {
			return cmd, http.StatusBadRequest, &validation.Error{Fields: map[string]string{
				"category_id": "must be a valid id",
			}}
		}
		cmd.CategoryID = &id
	}

	photo, err := imaging.ReadForm(r, "photo")
	if err != nil {
		return cmd, imaging.MapHTTPStatus(err), err
	}
	if photo != nil {
		cmd.Photo = photo.Data
	}

	return cmd, http.StatusOK, nil
}
