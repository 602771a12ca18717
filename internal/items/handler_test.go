package items_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/lostfound/internal/auth"
	"github.com/JaimeStill/lostfound/internal/authz"
	"github.com/JaimeStill/lostfound/internal/classifier"
	"github.com/JaimeStill/lostfound/internal/items"
	"github.com/JaimeStill/lostfound/pkg/pagination"
	"github.com/JaimeStill/lostfound/pkg/routes"
)

type mockSystem struct {
	kind         items.Kind
	listFn       func(ctx context.Context, actor auth.Actor, page pagination.PageRequest, filters items.Filters) (*pagination.PageResult[items.Item], error)
	findFn       func(ctx context.Context, actor auth.Actor, id uuid.UUID) (*items.Item, error)
	createFn     func(ctx context.Context, actor auth.Actor, cmd items.CreateCommand) (*items.Item, error)
	updateFn     func(ctx context.Context, actor auth.Actor, id uuid.UUID, cmd items.UpdateCommand) (*items.Item, error)
	reclassifyFn func(ctx context.Context, actor auth.Actor, id uuid.UUID) (*classifier.Result, error)
	photoFn      func(ctx context.Context, actor auth.Actor, id uuid.UUID) (io.ReadCloser, error)
}

func (m *mockSystem) Kind() items.Kind { return m.kind }

func (m *mockSystem) Handler(maxUploadSize int64) *items.Handler { return newTestHandler(m) }

func (m *mockSystem) List(ctx context.Context, actor auth.Actor, page pagination.PageRequest, filters items.Filters) (*pagination.PageResult[items.Item], error) {
	return m.listFn(ctx, actor, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, actor auth.Actor, id uuid.UUID) (*items.Item, error) {
	return m.findFn(ctx, actor, id)
}

func (m *mockSystem) Create(ctx context.Context, actor auth.Actor, cmd items.CreateCommand) (*items.Item, error) {
	return m.createFn(ctx, actor, cmd)
}

func (m *mockSystem) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, cmd items.UpdateCommand) (*items.Item, error) {
	return m.updateFn(ctx, actor, id, cmd)
}

func (m *mockSystem) Reclassify(ctx context.Context, actor auth.Actor, id uuid.UUID) (*classifier.Result, error) {
	return m.reclassifyFn(ctx, actor, id)
}

func (m *mockSystem) Backfill(ctx context.Context, actor auth.Actor) (*items.BackfillResult, error) {
	if !actor.IsAdmin() {
		return nil, authz.ErrPermissionDenied
	}
	return &items.BackfillResult{Candidates: 2, Classified: 2, Failures: []items.BackfillFailure{}}, nil
}

func (m *mockSystem) Photo(ctx context.Context, actor auth.Actor, id uuid.UUID) (io.ReadCloser, error) {
	return m.photoFn(ctx, actor, id)
}

func (m *mockSystem) Matches(ctx context.Context, actor auth.Actor, id uuid.UUID) ([]items.Item, error) {
	return []items.Item{}, nil
}

func newTestHandler(sys items.System) *items.Handler {
	return items.NewHandler(
		sys,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
		1<<20,
	)
}

func setupMux(h *items.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, h.Routes())
	return mux
}

func asActor(req *http.Request, actor auth.Actor) *http.Request {
	return req.WithContext(auth.WithActor(req.Context(), actor))
}

func TestRoutesByKind(t *testing.T) {
	lost := routes.Patterns(newTestHandler(&mockSystem{kind: items.KindLost}).Routes())
	found := routes.Patterns(newTestHandler(&mockSystem{kind: items.KindFound}).Routes())

	if !contains(lost, "POST /lost-items/{id}/reclassify") {
		t.Errorf("lost routes missing reclassify: %v", lost)
	}
	if contains(lost, "GET /lost-items/{id}/matches") {
		t.Error("lost items expose matches")
	}
	if !contains(found, "GET /found-items/{id}/matches") {
		t.Errorf("found routes missing matches: %v", found)
	}
	if len(found) != len(lost)+1 {
		t.Errorf("found routes = %d, lost routes = %d", len(found), len(lost))
	}
}

func contains(patterns []string, want string) bool {
	for _, p := range patterns {
		if p == want {
			return true
		}
	}
	return false
}

func TestHandlerRequiresActor(t *testing.T) {
	mux := setupMux(newTestHandler(&mockSystem{kind: items.KindLost}))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/lost-items", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestHandlerList(t *testing.T) {
	actor := auth.Actor{ID: uuid.New(), Role: auth.RoleResident}
	sys := &mockSystem{
		kind: items.KindFound,
		listFn: func(_ context.Context, a auth.Actor, page pagination.PageRequest, f items.Filters) (*pagination.PageResult[items.Item], error) {
			if a.ID != actor.ID {
				t.Errorf("actor = %v", a.ID)
			}
			if f.Category == nil || *f.Category != "bags" || page.Search == nil || *page.Search != "blue" {
				t.Errorf("filters = %+v search = %v", f, page.Search)
			}
			r := pagination.NewPageResult([]items.Item{{Title: "blue backpack"}}, 1, page.Page, page.PageSize)
			return &r, nil
		},
	}

	rec := httptest.NewRecorder()
	setupMux(newTestHandler(sys)).ServeHTTP(rec, asActor(httptest.NewRequest("GET", "/found-items?q=blue&category=bags", nil), actor))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var got pagination.PageResult[items.Item]
	json.NewDecoder(rec.Body).Decode(&got)
	if got.Total != 1 || got.Data[0].Title != "blue backpack" {
		t.Errorf("result = %+v", got)
	}
}

func TestHandlerCreateMultipart(t *testing.T) {
	actor := auth.Actor{ID: uuid.New(), Role: auth.RoleResident}
	category := uuid.New()

	var got items.CreateCommand
	sys := &mockSystem{
		kind: items.KindFound,
		createFn: func(_ context.Context, _ auth.Actor, cmd items.CreateCommand) (*items.Item, error) {
			got = cmd
			return &items.Item{ID: uuid.New(), Title: cmd.Title, HasPhoto: len(cmd.Photo) > 0}, nil
		},
	}

	var img bytes.Buffer
	png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 8, 8)))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("title", "blue backpack")
	mw.WriteField("description", "navy canvas")
	mw.WriteField("location", "lobby")
	mw.WriteField("date", "2026-03-14")
	mw.WriteField("storage_location", "front desk")
	mw.WriteField("category_id", category.String())
	fw, _ := mw.CreateFormFile("photo", "bag.png")
	fw.Write(img.Bytes())
	mw.Close()

	req := httptest.NewRequest("POST", "/found-items", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	setupMux(newTestHandler(sys)).ServeHTTP(rec, asActor(req, actor))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if got.Title != "blue backpack" || got.Date != "2026-03-14" {
		t.Errorf("cmd = %+v", got)
	}
	if got.CategoryID == nil || *got.CategoryID != category {
		t.Errorf("category = %v", got.CategoryID)
	}
	if got.StorageLocation == nil || *got.StorageLocation != "front desk" || got.Brand != nil {
		t.Errorf("optional fields = %v %v", got.StorageLocation, got.Brand)
	}
	if !bytes.HasPrefix(got.Photo, []byte{0xFF, 0xD8}) {
		t.Error("photo was not normalized to JPEG")
	}
}

func TestHandlerCreateRejections(t *testing.T) {
	actor := auth.Actor{ID: uuid.New(), Role: auth.RoleResident}
	sys := &mockSystem{
		kind: items.KindLost,
		createFn: func(context.Context, auth.Actor, items.CreateCommand) (*items.Item, error) {
			t.Error("Create should not be reached")
			return nil, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	form := func(field, filename string, content []byte) (*bytes.Buffer, string) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		mw.WriteField("title", "x")
		if filename != "" {
			fw, _ := mw.CreateFormFile(field, filename)
			fw.Write(content)
		} else {
			mw.WriteField(field, string(content))
		}
		mw.Close()
		return &body, mw.FormDataContentType()
	}

	tests := []struct {
		name     string
		field    string
		filename string
		content  []byte
		want     int
	}{
		{"bad category", "category_id", "", []byte("not-a-uuid"), http.StatusBadRequest},
		{"not an image", "photo", "notes.txt", []byte("plain text"), http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := form(tt.field, tt.filename, tt.content)
			req := httptest.NewRequest("POST", "/lost-items", body)
			req.Header.Set("Content-Type", ct)

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, asActor(req, actor))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandlerCreateJSON(t *testing.T) {
	actor := auth.Actor{ID: uuid.New(), Role: auth.RoleResident}
	sys := &mockSystem{
		kind: items.KindLost,
		createFn: func(_ context.Context, _ auth.Actor, cmd items.CreateCommand) (*items.Item, error) {
			if cmd.Title != "wallet" || cmd.Photo != nil {
				t.Errorf("cmd = %+v", cmd)
			}
			return &items.Item{ID: uuid.New()}, nil
		},
	}

	req := httptest.NewRequest("POST", "/lost-items", strings.NewReader(`{"title":"wallet","description":"brown","location":"gym","date":"2026-01-02"}`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	setupMux(newTestHandler(sys)).ServeHTTP(rec, asActor(req, actor))
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, body %s", rec.Code, rec.Body)
	}
}

func TestHandlerUpdateClear(t *testing.T) {
	actor := auth.Actor{ID: uuid.New(), Role: auth.RoleResident}
	sys := &mockSystem{
		kind: items.KindLost,
		updateFn: func(_ context.Context, _ auth.Actor, _ uuid.UUID, cmd items.UpdateCommand) (*items.Item, error) {
			if !cmd.Clears("brand") || !cmd.Clears("color") || cmd.Clears("time") {
				t.Errorf("clear = %v", cmd.Clear)
			}
			return &items.Item{ID: uuid.New()}, nil
		},
	}

	req := httptest.NewRequest("PUT", "/lost-items/"+uuid.NewString(), strings.NewReader(`{"clear":["brand","color"]}`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	setupMux(newTestHandler(sys)).ServeHTTP(rec, asActor(req, actor))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, body %s", rec.Code, rec.Body)
	}
}

func TestHandlerErrors(t *testing.T) {
	actor := auth.Actor{ID: uuid.New(), Role: auth.RoleResident}
	sys := &mockSystem{
		kind: items.KindFound,
		findFn: func(context.Context, auth.Actor, uuid.UUID) (*items.Item, error) {
			return nil, authz.ErrPermissionDenied
		},
		updateFn: func(context.Context, auth.Actor, uuid.UUID, items.UpdateCommand) (*items.Item, error) {
			return nil, items.ErrInvalidStatus
		},
		reclassifyFn: func(context.Context, auth.Actor, uuid.UUID) (*classifier.Result, error) {
			return nil, items.ErrNoImage
		},
		photoFn: func(context.Context, auth.Actor, uuid.UUID) (io.ReadCloser, error) {
			return nil, items.ErrNoImage
		},
	}
	mux := setupMux(newTestHandler(sys))
	id := uuid.NewString()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"find forbidden", "GET", "/found-items/" + id, "", http.StatusForbidden},
		{"find bad id", "GET", "/found-items/nope", "", http.StatusBadRequest},
		{"update returned", "PUT", "/found-items/" + id, `{"status":"returned"}`, http.StatusUnprocessableEntity},
		{"update unknown field", "PUT", "/found-items/" + id, `{"owner_id":"x"}`, http.StatusBadRequest},
		{"reclassify without photo", "POST", "/found-items/" + id + "/reclassify", "", http.StatusUnprocessableEntity},
		{"photo missing", "GET", "/found-items/" + id + "/photo", "", http.StatusNotFound},
		{"backfill as resident", "POST", "/found-items/classify-missing", "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, asActor(req, actor))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestHandlerPhoto(t *testing.T) {
	actor := auth.Actor{ID: uuid.New(), Role: auth.RoleAdmin}
	sys := &mockSystem{
		kind: items.KindLost,
		photoFn: func(context.Context, auth.Actor, uuid.UUID) (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("jpeg")), nil
		},
	}

	rec := httptest.NewRecorder()
	setupMux(newTestHandler(sys)).ServeHTTP(rec, asActor(httptest.NewRequest("GET", "/lost-items/"+uuid.NewString()+"/photo", nil), actor))

	if rec.Code != http.StatusOK || rec.Body.String() != "jpeg" {
		t.Errorf("status = %d body = %q", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("content type = %q", ct)
	}
}
