package seed

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/MrWong99/hexforge/pkg/provider/embeddings"
	"github.com/MrWong99/hexforge/pkg/provider/llm"
)

// Summariser produces a short abstract of a narrative window.
type Summariser interface {
	Summarise(ctx context.Context, text string) (string, error)
}

// LabelScore is one zero-shot classification result.
type LabelScore struct {
	Label string  `toml:"label"`
	Score float64 `toml:"score"`
}

// ZeroShot scores text against labels it was not trained on. Scores are in
// [0,1] and returned in the order of labels.
type ZeroShot interface {
	Classify(ctx context.Context, text string, labels []string) ([]LabelScore, error)
}

// Mood is the sentiment of a text.
type Mood struct {
	Polarity string  `toml:"polarity"`
	Score    float64 `toml:"score"`
}

// Polarities.
const (
	Positive = "positive"
	Negative = "negative"
)

// SentimentClassifier judges the polarity of a text.
type SentimentClassifier interface {
	Sentiment(ctx context.Context, text string) (Mood, error)
}

const summarisationPrompt = `Summarise the following passage from a public-domain book in two or three sentences.
Preserve: the setting, the mood, any creatures or places named, and what is at stake.
Do not mention the book, the author or that this is a summary.`

// LLMSummariser summarises with an [llm.Provider].
type LLMSummariser struct {
	llm llm.Provider
}

var _ Summariser = (*LLMSummariser)(nil)

// NewLLMSummariser returns a summariser backed by provider.
func NewLLMSummariser(provider llm.Provider) *LLMSummariser {
	return &LLMSummariser{llm: provider}
}

// Summarise implements [Summariser].
func (s *LLMSummariser) Summarise(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	resp, err := s.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: summarisationPrompt,
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: text}},
		Temperature:  0.2,
		MaxTokens:    200,
	})
	if err != nil {
		return "", fmt.Errorf("seed: summarise: %w", err)
	}
	return strings.Join(strings.Fields(resp.Content), " "), nil
}

// hypothesis turns a label into the sentence it is compared against.
func hypothesis(label string) string {
	return "This text is about " + label + "."
}

// EmbeddingZeroShot scores labels by cosine similarity between the text and
// a hypothesis sentence per label, rescaled from [-1,1] to [0,1] and then
// stretched against the best label so that the top label scores 1 when it is
// clearly ahead.
type EmbeddingZeroShot struct {
	emb embeddings.Provider
}

var _ ZeroShot = (*EmbeddingZeroShot)(nil)

// NewEmbeddingZeroShot returns a classifier backed by emb.
func NewEmbeddingZeroShot(emb embeddings.Provider) *EmbeddingZeroShot {
	return &EmbeddingZeroShot{emb: emb}
}

// Classify implements [ZeroShot].
func (z *EmbeddingZeroShot) Classify(ctx context.Context, text string, labels []string) ([]LabelScore, error) {
	if len(labels) == 0 {
		return nil, nil
	}
	inputs := make([]string, 0, len(labels)+1)
	inputs = append(inputs, text)
	for _, l := range labels {
		inputs = append(inputs, hypothesis(l))
	}
	vecs, err := z.emb.EmbedBatch(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("seed: zero-shot: %w", err)
	}
	sims := make([]float64, len(labels))
	for i := range labels {
		sims[i] = (embeddings.Cosine(vecs[0], vecs[i+1]) + 1) / 2
	}
	return normalise(labels, sims), nil
}

// normalise maps similarities onto [0,1] relative to their spread.
func normalise(labels []string, sims []float64) []LabelScore {
	lo, hi := slices.Min(sims), slices.Max(sims)
	out := make([]LabelScore, len(labels))
	for i, l := range labels {
		score := sims[i]
		if hi > lo {
			score = (sims[i] - lo) / (hi - lo) * hi
		}
		out[i] = LabelScore{Label: l, Score: round3(score)}
	}
	return out
}

// EmbeddingSentiment compares a text against positive and negative anchor
// sentences.
type EmbeddingSentiment struct {
	emb embeddings.Provider
}

var _ SentimentClassifier = (*EmbeddingSentiment)(nil)

// NewEmbeddingSentiment returns a sentiment classifier backed by emb.
func NewEmbeddingSentiment(emb embeddings.Provider) *EmbeddingSentiment {
	return &EmbeddingSentiment{emb: emb}
}

// Anchor sentences for [EmbeddingSentiment].
const (
	PositiveAnchor = "A joyful, hopeful and warm story of kindness and peace."
	NegativeAnchor = "A bleak, fearful and cruel story of suffering and death."
)

// Sentiment implements [SentimentClassifier]. The score is the softmax
// probability of the winning polarity.
func (s *EmbeddingSentiment) Sentiment(ctx context.Context, text string) (Mood, error) {
	vecs, err := s.emb.EmbedBatch(ctx, []string{text, PositiveAnchor, NegativeAnchor})
	if err != nil {
		return Mood{}, fmt.Errorf("seed: sentiment: %w", err)
	}
	pos := embeddings.Cosine(vecs[0], vecs[1])
	neg := embeddings.Cosine(vecs[0], vecs[2])
	// Two-way softmax at temperature 0.1.
	pPos := 1 / (1 + math.Exp((neg-pos)/0.1))
	if pPos >= 0.5 {
		return Mood{Polarity: Positive, Score: round3(pPos)}, nil
	}
	return Mood{Polarity: Negative, Score: round3(1 - pPos)}, nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
