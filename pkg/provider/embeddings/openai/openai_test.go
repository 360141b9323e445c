package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type embedRequest struct {
	Input      []string `json:"input"`
	Model      string   `json:"model"`
	Dimensions int      `json:"dimensions"`
}

// fakeServer answers /embeddings with [len(text), index-in-request] per
// input, listing the data in reverse order.
func fakeServer(t *testing.T) (*httptest.Server, *[]embedRequest) {
	t.Helper()
	var mu sync.Mutex
	var seen []embedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/embeddings") {
			http.NotFound(w, r)
			return
		}
		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mu.Lock()
		seen = append(seen, req)
		mu.Unlock()

		type datum struct {
			Object    string    `json:"object"`
			Index     int       `json:"index"`
			Embedding []float64 `json:"embedding"`
		}
		data := make([]datum, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, datum{Object: "embedding", Index: i, Embedding: []float64{float64(len(req.Input[i])), float64(i)}})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  req.Model,
			"data":   data,
			"usage":  map[string]int{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestNew(t *testing.T) {
	t.Parallel()
	if _, err := New("", ""); err == nil {
		t.Error("missing api key accepted")
	}
	p, err := New("sk-test", "", WithBaseURL("http://localhost:1"), WithTimeout(time.Second))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.ModelID() != DefaultModel {
		t.Errorf("ModelID = %q, want %q", p.ModelID(), DefaultModel)
	}
	if p.batch != MaxBatch {
		t.Errorf("batch = %d, want %d", p.batch, MaxBatch)
	}
}

func TestEmbedBatch_SplitsAndOrders(t *testing.T) {
	t.Parallel()
	srv, seen := fakeServer(t)
	p, err := New("sk-test", "embed-small",
		WithBaseURL(srv.URL+"/v1/"), WithBatchSize(2), WithDimensions(2), WithMaxRetries(0))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, err := p.EmbedBatch(context.Background(), []string{"a", "bb", "ccc"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	want := [][]float32{{1, 0}, {2, 1}, {3, 0}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("vectors (-want +got):\n%s", diff)
	}

	wantReqs := []embedRequest{
		{Input: []string{"a", "bb"}, Model: "embed-small", Dimensions: 2},
		{Input: []string{"ccc"}, Model: "embed-small", Dimensions: 2},
	}
	if diff := cmp.Diff(wantReqs, *seen); diff != "" {
		t.Errorf("requests (-want +got):\n%s", diff)
	}
}

func TestEmbedBatch_Empty(t *testing.T) {
	t.Parallel()
	p, err := New("sk-test", "", WithBaseURL("http://localhost:1"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := p.EmbedBatch(context.Background(), nil)
	if err != nil || got != nil {
		t.Errorf("EmbedBatch(nil) = %v, %v; want nil, nil", got, err)
	}
}

func TestEmbedBatch_ServerError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"bad key"}}`, http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	p, err := New("sk-test", "", WithBaseURL(srv.URL+"/v1/"), WithMaxRetries(0))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = p.EmbedBatch(context.Background(), []string{"x"})
	if err == nil || !strings.HasPrefix(err.Error(), "openai embeddings: inputs 0..0") {
		t.Errorf("err = %v, want wrapped request error", err)
	}
}

func TestWithBatchSize_IgnoresOutOfRange(t *testing.T) {
	t.Parallel()
	for _, n := range []int{0, -1, MaxBatch + 1} {
		p, err := New("sk-test", "", WithBatchSize(n))
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if p.batch != MaxBatch {
			t.Errorf("WithBatchSize(%d): batch = %d, want %d", n, p.batch, MaxBatch)
		}
	}
}
