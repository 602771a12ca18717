package handlers_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/lostfound/pkg/handlers"
)

func TestRespondJSON(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		data       any
		wantStatus int
	}{
		{
			name:       "200 with map",
			status:     http.StatusOK,
			data:       map[string]string{"key": "value"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "201 with struct",
			status:     http.StatusCreated,
			data:       struct{ Count int }{Count: 3},
			wantStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handlers.RespondJSON(rec, tt.status, tt.data)

			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("content-type: got %s", ct)
			}

			var parsed map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
		})
	}
}

func TestRespondError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := httptest.NewRecorder()

	handlers.RespondError(rec, logger, http.StatusConflict, errors.New("claim already exists"))

	if rec.Code != http.StatusConflict {
		t.Errorf("status: got %d, want 409", rec.Code)
	}

	var parsed map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if parsed["error"] != "claim already exists" {
		t.Errorf("error: got %q", parsed["error"])
	}
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		AdminNotes string `json:"admin_notes"`
	}

	t.Run("decodes body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"admin_notes":"verified"}`))
		var b body
		if err := handlers.DecodeJSON(req, &b); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if b.AdminNotes != "verified" {
			t.Errorf("admin_notes: got %q", b.AdminNotes)
		}
	})

	t.Run("empty body is allowed", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", nil)
		var b body
		if err := handlers.DecodeJSON(req, &b); err != nil {
			t.Fatalf("decode: %v", err)
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"notes":"x"}`))
		var b body
		err := handlers.DecodeJSON(req, &b)
		if !errors.Is(err, handlers.ErrInvalidBody) {
			t.Errorf("err: got %v, want ErrInvalidBody", err)
		}
	})
}

func TestPathUUID(t *testing.T) {
	id := uuid.New()
	mux := http.NewServeMux()

	var got uuid.UUID
	var gotErr error
	mux.HandleFunc("GET /claims/{id}", func(w http.ResponseWriter, r *http.Request) {
		got, gotErr = handlers.PathUUID(r, "id")
	})

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/claims/"+id.String(), nil))
	if gotErr != nil || got != id {
		t.Errorf("PathUUID = %v, %v; want %v", got, gotErr, id)
	}

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/claims/not-a-uuid", nil))
	if !errors.Is(gotErr, handlers.ErrInvalidID) {
		t.Errorf("err = %v, want ErrInvalidID", gotErr)
	}
}

func TestIsMultipart(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"multipart/form-data; boundary=xyz", true},
		{"application/json", false},
		{"", false},
	}

	for _, tt := range tests {
		req := httptest.NewRequest("POST", "/", nil)
		req.Header.Set("Content-Type", tt.contentType)
		if got := handlers.IsMultipart(req); got != tt.want {
			t.Errorf("IsMultipart(%q) = %v, want %v", tt.contentType, got, tt.want)
		}
	}
}

func TestFormOptional(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader("brand=+Acme+&color="))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if got := handlers.FormOptional(req, "brand"); got == nil || *got != "Acme" {
		t.Errorf("brand = %v, want Acme", got)
	}
	if got := handlers.FormOptional(req, "color"); got != nil {
		t.Errorf("color = %q, want nil", *got)
	}
	if got := handlers.FormOptional(req, "missing"); got != nil {
		t.Errorf("missing = %q, want nil", *got)
	}
}
