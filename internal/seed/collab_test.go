package seed_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	embmock "github.com/MrWong99/hexforge/pkg/provider/embeddings/mock"
	llmmock "github.com/MrWong99/hexforge/pkg/provider/llm/mock"

	"github.com/MrWong99/hexforge/internal/seed"
)

func TestLLMSummariser(t *testing.T) {
	t.Parallel()
	p := &llmmock.Provider{Replies: []string{"  A lonely   watchman\nfaces the fog. "}}
	s := seed.NewLLMSummariser(p)

	got, err := s.Summarise(context.Background(), "The fog crept over the moor.")
	if err != nil {
		t.Fatalf("Summarise: %v", err)
	}
	if got != "A lonely watchman faces the fog." {
		t.Errorf("Summarise = %q", got)
	}
	if len(p.Calls) != 1 || p.Calls[0].Messages[0].Content != "The fog crept over the moor." {
		t.Errorf("unexpected calls: %+v", p.Calls)
	}

	got, err = s.Summarise(context.Background(), "   ")
	if err != nil || got != "" {
		t.Errorf("blank input: got %q, %v", got, err)
	}
	if p.CallCount() != 1 {
		t.Errorf("blank input reached the provider")
	}
}

func TestEmbeddingZeroShot(t *testing.T) {
	t.Parallel()
	emb := &embmock.Provider{Vectors: map[string][]float32{
		"the dead walk":                {1, 0},
		"This text is about horror.":   {1, 0},
		"This text is about nature.":   {0, 1},
		"This text is about folklore.": {-1, 0},
	}}
	z := seed.NewEmbeddingZeroShot(emb)

	got, err := z.Classify(context.Background(), "the dead walk", []string{"horror", "nature", "folklore"})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	want := []seed.LabelScore{{Label: "horror", Score: 1}, {Label: "nature", Score: 0.5}, {Label: "folklore", Score: 0}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scores mismatch (-want +got):\n%s", diff)
	}
	if len(emb.Batches) != 1 || len(emb.Batches[0]) != 4 {
		t.Errorf("want one batch of 4 inputs, got %v", emb.Batches)
	}
}

func TestEmbeddingZeroShot_Error(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	z := seed.NewEmbeddingZeroShot(&embmock.Provider{Err: boom})
	if _, err := z.Classify(context.Background(), "x", []string{"a"}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestEmbeddingSentiment(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		vec  []float32
		want seed.Mood
	}{
		{"positive", []float32{1, 0}, seed.Mood{Polarity: seed.Positive, Score: 1}},
		{"negative", []float32{0, 1}, seed.Mood{Polarity: seed.Negative, Score: 1}},
		{"even", []float32{1, 1}, seed.Mood{Polarity: seed.Positive, Score: 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			emb := &embmock.Provider{Vectors: map[string][]float32{
				"text":              tt.vec,
				seed.PositiveAnchor: {1, 0},
				seed.NegativeAnchor: {0, 1},
			}}

			got, err := seed.NewEmbeddingSentiment(emb).Sentiment(context.Background(), "text")
			if err != nil {
				t.Fatalf("Sentiment: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mood mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
