package provider

import (
	"context"
	"fmt"
	"log"

	"github.com/zen-systems/agentgate/pkg/chat"
)

// AttemptReport captures one dispatch attempt in a fallback chain.
type AttemptReport struct {
	Model        string `json:"model"`
	Provider     string `json:"provider,omitempty"`
	Error        string `json:"error,omitempty"`
	UsedFallback bool   `json:"used_fallback"`
}

// StreamResult is the streaming counterpart of chat.Result: the
// normalized stream plus which candidate actually serves it.
type StreamResult struct {
	Stream       Stream
	ModelUsed    string
	ProviderUsed string
	UsedFallback bool
}

// Manager dispatches chat requests across providers with ordered
// fallback. It imposes no waits of its own: after one candidate fails
// or times out, the next is tried immediately.
type Manager struct {
	providers []Provider
	debug     bool
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerDebug enables per-attempt logging.
func WithManagerDebug(debug bool) ManagerOption {
	return func(m *Manager) {
		m.debug = debug
	}
}

// NewManager creates a manager over the given providers.
func NewManager(providers []Provider, opts ...ManagerOption) *Manager {
	m := &Manager{providers: providers}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Available returns the names of the configured providers.
func (m *Manager) Available() []string {
	names := make([]string, 0, len(m.providers))
	for _, p := range m.providers {
		names = append(names, p.Name())
	}
	return names
}

// providerFor finds the provider serving a model id.
func (m *Manager) providerFor(model string) Provider {
	for _, p := range m.providers {
		if p.Supports(model) {
			return p
		}
	}
	return nil
}

// ExecuteWithFallback tries each candidate model in order until one
// provider succeeds. The preferred model is expected first in the
// chain; an empty chain degenerates to the request's own model. Every
// attempt is reported, so callers can see the errors of the candidates
// that were skipped over. When every candidate fails the returned
// error is an *ExhaustedError naming the attempted candidates in
// order.
func (m *Manager) ExecuteWithFallback(ctx context.Context, req chat.Request, chain []string) (*chat.Result, []AttemptReport, error) {
	chain = m.normalizeChain(req, chain)

	var reports []AttemptReport
	var lastErr error

	for _, model := range chain {
		fallback := model != req.Model

		p := m.providerFor(model)
		if p == nil {
			lastErr = fmt.Errorf("no provider for model %s", model)
			reports = append(reports, AttemptReport{Model: model, Error: lastErr.Error(), UsedFallback: fallback})
			continue
		}

		// Each attempt rewrites model-specific fields on its own copy.
		attempt := req
		attempt.Model = model
		attempt.Stream = false

		result, err := p.Complete(ctx, attempt)
		if err != nil {
			lastErr = err
			reports = append(reports, AttemptReport{Model: model, Provider: p.Name(), Error: err.Error(), UsedFallback: fallback})
			if m.debug {
				log.Printf("[provider] %s/%s failed: %v", p.Name(), model, err)
			}
			if ctx.Err() != nil {
				break
			}
			continue
		}

		result.ModelUsed = model
		result.ProviderUsed = p.Name()
		result.UsedFallback = fallback
		reports = append(reports, AttemptReport{Model: model, Provider: p.Name(), UsedFallback: fallback})
		return result, reports, nil
	}

	return nil, reports, &ExhaustedError{Attempted: attemptedModels(reports), LastErr: lastErr}
}

// ExecuteStreamWithFallback is the streaming variant of
// ExecuteWithFallback. Fallback happens only at stream establishment;
// once a provider starts producing chunks, mid-stream errors surface
// on the stream itself.
func (m *Manager) ExecuteStreamWithFallback(ctx context.Context, req chat.Request, chain []string) (*StreamResult, []AttemptReport, error) {
	chain = m.normalizeChain(req, chain)

	var reports []AttemptReport
	var lastErr error

	for _, model := range chain {
		fallback := model != req.Model

		p := m.providerFor(model)
		if p == nil {
			lastErr = fmt.Errorf("no provider for model %s", model)
			reports = append(reports, AttemptReport{Model: model, Error: lastErr.Error(), UsedFallback: fallback})
			continue
		}

		attempt := req
		attempt.Model = model
		attempt.Stream = true

		stream, err := p.Stream(ctx, attempt)
		if err != nil {
			lastErr = err
			reports = append(reports, AttemptReport{Model: model, Provider: p.Name(), Error: err.Error(), UsedFallback: fallback})
			if m.debug {
				log.Printf("[provider] %s/%s stream failed: %v", p.Name(), model, err)
			}
			if ctx.Err() != nil {
				break
			}
			continue
		}

		reports = append(reports, AttemptReport{Model: model, Provider: p.Name(), UsedFallback: fallback})
		return &StreamResult{
			Stream:       Normalize(stream),
			ModelUsed:    model,
			ProviderUsed: p.Name(),
			UsedFallback: fallback,
		}, reports, nil
	}

	return nil, reports, &ExhaustedError{Attempted: attemptedModels(reports), LastErr: lastErr}
}

func (m *Manager) normalizeChain(req chat.Request, chain []string) []string {
	if len(chain) == 0 {
		return []string{req.Model}
	}
	return chain
}

func attemptedModels(reports []AttemptReport) []string {
	models := make([]string, 0, len(reports))
	for _, r := range reports {
		models = append(models, r.Model)
	}
	return models
}
