// Package mock provides a scripted llm.Provider for tests.
//
//	p := &mock.Provider{Replies: []string{`{"note":"ok"}`}}
package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/MrWong99/hexforge/pkg/provider/llm"
)

// ErrExhausted is returned once all scripted replies have been used and
// Fallback is empty.
var ErrExhausted = errors.New("mock llm: no scripted reply left")

// Provider answers Complete calls from a script.
//
// Respond, when set, takes precedence over Replies. Otherwise Replies are
// consumed in order and Fallback is returned after they run out.
type Provider struct {
	mu sync.Mutex

	Replies  []string
	Fallback string
	Respond  func(ctx context.Context, req llm.CompletionRequest) (string, error)
	Err      error

	Caps llm.ModelCapabilities

	// Calls records every request in order.
	Calls []llm.CompletionRequest
}

var _ llm.Provider = (*Provider)(nil)

// Complete implements llm.Provider.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	p.Calls = append(p.Calls, req)
	respond, err := p.Respond, p.Err
	var reply string
	var ok bool
	if respond == nil && err == nil {
		if len(p.Replies) > 0 {
			reply, p.Replies, ok = p.Replies[0], p.Replies[1:], true
		} else if p.Fallback != "" {
			reply, ok = p.Fallback, true
		}
	}
	p.mu.Unlock()

	switch {
	case err != nil:
		return nil, err
	case respond != nil:
		s, err := respond(ctx, req)
		if err != nil {
			return nil, err
		}
		return &llm.CompletionResponse{Content: s}, nil
	case !ok:
		return nil, ErrExhausted
	}
	return &llm.CompletionResponse{Content: reply}, nil
}

// Capabilities implements llm.Provider.
func (p *Provider) Capabilities() llm.ModelCapabilities {
	if p.Caps.ContextWindow == 0 {
		return llm.ModelCapabilities{ContextWindow: 8_192, MaxOutputTokens: 2_048}
	}
	return p.Caps
}

// CallCount returns the number of Complete calls so far.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}
