// Package provider executes chat requests against LLM providers with
// ordered fallback, and normalizes every provider's streaming protocol
// into one chunk format.
package provider

import (
	"context"

	"github.com/zen-systems/agentgate/pkg/chat"
)

// Provider is one LLM backend.
type Provider interface {
	// Name returns the provider's identifier.
	Name() string

	// Models returns the list of supported models.
	Models() []string

	// Supports reports whether the provider serves the given model id.
	Supports(model string) bool

	// Complete executes a buffered completion. Implementations operate
	// on their own copy of the request; the caller's value is never
	// mutated, including provider-specific temperature clamping.
	Complete(ctx context.Context, req chat.Request) (*chat.Result, error)

	// Stream executes a streaming completion. The returned stream
	// yields normalized chunks and always terminates with a sentinel
	// chunk carrying a finish reason.
	Stream(ctx context.Context, req chat.Request) (Stream, error)
}

// clampTemperature bounds a sampling temperature into a provider's
// accepted range.
func clampTemperature(t, lo, hi float64) float64 {
	if t < lo {
		return lo
	}
	if t > hi {
		return hi
	}
	return t
}
