package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func embedServer(t *testing.T, vectors [][]float32, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if seen != nil {
			*seen = body
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":      body["model"],
			"embeddings": vectors,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEmbedBatch(t *testing.T) {
	t.Parallel()
	var seen map[string]any
	srv := embedServer(t, [][]float32{{1, 0}, {0, 1}}, &seen)

	p, err := New(srv.URL, "nomic-embed-text", 0, WithSeed(42))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := p.EmbedBatch(context.Background(), []string{"ash", "bone"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(got) != 2 || got[0][0] != 1 || got[1][1] != 1 {
		t.Errorf("vectors = %v", got)
	}

	opts, _ := seen["options"].(map[string]any)
	if opts["num_thread"] != float64(1) {
		t.Errorf("num_thread = %v, want 1", opts["num_thread"])
	}
	if opts["seed"] != float64(42) {
		t.Errorf("seed = %v, want 42", opts["seed"])
	}
}

func TestEmbedBatch_CountMismatch(t *testing.T) {
	t.Parallel()
	srv := embedServer(t, [][]float32{{1}}, nil)
	p, err := New(srv.URL, "m", 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.EmbedBatch(context.Background(), []string{"a", "b"}); err == nil {
		t.Error("expected error on count mismatch")
	}
}

func TestEmbedBatch_Empty(t *testing.T) {
	t.Parallel()
	p, err := New("", "m", 0)
	if err != nil {
		t.Fatal(err)
	}
	got, err := p.EmbedBatch(context.Background(), nil)
	if err != nil || got != nil {
		t.Errorf("EmbedBatch(nil) = %v, %v", got, err)
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()
	if _, err := New("", "", 0); err == nil {
		t.Error("empty model accepted")
	}
	if _, err := New("://bad", "m", 0); err == nil {
		t.Error("bad url accepted")
	}
}
