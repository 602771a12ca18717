package claims

import (
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
	"github.com/JaimeStill/lostfound/pkg/validation"
)

// Handler provides HTTP endpoints for claims.
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

// NewHandler creates a claim Handler.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "claims"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for claim endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/claims",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.File},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/photo", Handler: h.Photo},
			{Method: "POST", Pattern: "/{id}/approve", Handler: h.Approve},
			{Method: "POST", Pattern: "/{id}/reject", Handler: h.Reject},
		},
	}
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

	c, err := h.sys.Find(r.Context(), actor, id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, c)
}

// File accepts a JSON body, or multipart fields with an optional photo.
func (h *Handler) File(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Current(w, r, h.logger)
	if !ok {
		return
	}

	var cmd FileCommand
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

	c, err := h.sys.File(r.Context(), actor, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, c)
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
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", imaging.ContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("photo stream interrupted", "id", id, "error", err)
	}
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, DecisionApprove)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, DecisionReject)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, d Decision) {
	actor, ok := auth.Current(w, r, h.logger)
	if !ok {
		return
	}

	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var cmd ResolveCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	resolve := h.sys.Reject
	if d == DecisionApprove {
		resolve = h.sys.Approve
	}

	c, err := resolve(r.Context(), actor, id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, c)
}

func (h *Handler) readForm(w http.ResponseWriter, r *http.Request) (FileCommand, int, error) {
	if err := handlers.ParseMultipart(w, r, h.maxUploadSize); err != nil {
		return FileCommand{}, http.StatusRequestEntityTooLarge, err
	}

	cmd := FileCommand{
		Description: strings.TrimSpace(r.FormValue("description")),
		Proof:       strings.TrimSpace(r.FormValue("proof")),
	}

	id, err := uuid.Parse(strings.TrimSpace(r.FormValue("found_item_id")))
	if err != nil {
		return cmd, http.StatusBadRequest, &validation.Error{Fields: map[string]string{
			"found_item_id": "must be a valid id",
		}}
	}
	cmd.FoundItemID = id

	photo, err := imaging.ReadForm(r, "photo")
	if err != nil {
		return cmd, imaging.MapHTTPStatus(err), err
	}
	if photo != nil {
		cmd.Photo = photo.Data
	}

	return cmd, http.StatusOK, nil
}
