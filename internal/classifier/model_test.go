package classifier_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/lostfound/internal/classifier"
)

func fakeChatServer(t *testing.T, content string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if seen != nil {
			json.NewDecoder(r.Body).Decode(seen)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func openAIModel(t *testing.T, baseURL string) classifier.Model {
	t.Helper()
	m, err := classifier.NewModel(&classifier.Config{
		Provider: classifier.ProviderOpenAI,
		BaseURL:  baseURL,
		Token:    "sk-test",
		Model:    "gpt-4o-mini",
	})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

func TestVisionPredict(t *testing.T) {
	var body map[string]any
	srv := fakeChatServer(t, `{"predictions":[{"category":"backpack","confidence":91},{"category":"duffel bag","confidence":6}]}`, &body)

	m := openAIModel(t, srv.URL+"/v1")
	if m.Name() != "openai/gpt-4o-mini" || !m.Available() {
		t.Errorf("Name = %q, Available = %v", m.Name(), m.Available())
	}

	preds, err := m.Predict(context.Background(), []byte("jpeg"), "image/jpeg", 5)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if len(preds) != 2 || preds[0].Label != "backpack" || preds[0].Confidence != 91 {
		t.Errorf("preds = %+v", preds)
	}

	raw, _ := json.Marshal(body["messages"])
	if !strings.Contains(string(raw), "data:image/jpeg;base64,") {
		t.Error("request did not carry the image as a data URI")
	}
}

func TestVisionPredictKeepsPercentScale(t *testing.T) {
	srv := fakeChatServer(t, "```json\n{\"predictions\":[{\"category\":\"keys\",\"confidence\":0.8},{\"category\":\"wallet\",\"confidence\":0.2}]}\n```", nil)

	preds, err := openAIModel(t, srv.URL+"/v1").Predict(context.Background(), []byte("jpeg"), "image/jpeg", 5)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if len(preds) != 2 || preds[0].Confidence != 0.8 || preds[1].Confidence != 0.2 {
		t.Errorf("preds = %+v, want keys at 0.8 and wallet at 0.2", preds)
	}
}

func TestVisionPredictUnparseable(t *testing.T) {
	srv := fakeChatServer(t, "I am unable to help with that.", nil)

	if _, err := openAIModel(t, srv.URL+"/v1").Predict(context.Background(), []byte("jpeg"), "image/jpeg", 5); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDisabledModel(t *testing.T) {
	m, err := classifier.NewModel(&classifier.Config{Provider: classifier.ProviderNone})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	if m.Available() {
		t.Error("disabled model reports available")
	}
	if _, err := m.Predict(context.Background(), nil, "", 5); !errors.Is(err, classifier.ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}
