// Package openai embeds category names and candidate labels through the
// OpenAI embeddings endpoint or any server that speaks its wire format.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/MrWong99/hexforge/pkg/provider/embeddings"
)

// DefaultModel is used when New receives an empty model.
const DefaultModel = oai.EmbeddingModelTextEmbedding3Small

// MaxBatch is the largest number of inputs sent in one request. Larger
// batches are split.
const MaxBatch = 2048

var _ embeddings.Provider = (*Provider)(nil)

// Provider implements [embeddings.Provider].
type Provider struct {
	client     oai.Client
	model      string
	dimensions int
	batch      int
}

type settings struct {
	requestOpts []option.RequestOption
	dimensions  int
	batch       int
}

// Option configures a Provider.
type Option func(*settings)

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return func(s *settings) { s.requestOpts = append(s.requestOpts, option.WithBaseURL(url)) }
}

// WithTimeout bounds each HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.requestOpts = append(s.requestOpts, option.WithHTTPClient(&http.Client{Timeout: d}))
	}
}

// WithMaxRetries overrides the client's retry count for transient errors.
func WithMaxRetries(n int) Option {
	return func(s *settings) { s.requestOpts = append(s.requestOpts, option.WithMaxRetries(n)) }
}

// WithDimensions asks text-embedding-3 models for shortened vectors.
func WithDimensions(n int) Option {
	return func(s *settings) { s.dimensions = n }
}

// WithBatchSize caps inputs per request. Values outside 1..MaxBatch are
// ignored.
func WithBatchSize(n int) Option {
	return func(s *settings) {
		if n > 0 && n <= MaxBatch {
			s.batch = n
		}
	}
}

// New constructs a Provider. apiKey is required.
func New(apiKey, model string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("openai embeddings: apiKey must not be empty")
	}
	if model == "" {
		model = DefaultModel
	}
	s := settings{batch: MaxBatch}
	for _, o := range opts {
		o(&s)
	}
	return &Provider{
		client:     oai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, s.requestOpts...)...),
		model:      model,
		dimensions: s.dimensions,
		batch:      s.batch,
	}, nil
}

// EmbedBatch returns one vector per text, in input order.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += p.batch {
		chunk := texts[start:min(start+p.batch, len(texts))]
		vecs, err := p.embed(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("openai embeddings: inputs %d..%d: %w", start, start+len(chunk)-1, err)
		}
		out = append(out, vecs...)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func (p *Provider) embed(ctx context.Context, texts []string) ([][]float32, error) {
	params := oai.EmbeddingNewParams{
		Model: p.model,
		Input: oai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	}
	if p.dimensions > 0 {
		params.Dimensions = oai.Int(int64(p.dimensions))
	}
	resp, err := p.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("got %d vectors for %d inputs", len(resp.Data), len(texts))
	}
	vecs := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(texts) || vecs[d.Index] != nil {
			return nil, fmt.Errorf("unexpected vector index %d", d.Index)
		}
		v := make([]float32, len(d.Embedding))
		for i, x := range d.Embedding {
			v[i] = float32(x)
		}
		vecs[d.Index] = v
	}
	return vecs, nil
}

// ModelID implements embeddings.Provider.
func (p *Provider) ModelID() string { return p.model }
