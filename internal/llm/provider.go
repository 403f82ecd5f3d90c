// Package llm wraps the text generation providers behind one interface.
package llm

import (
	"context"
	"errors"
	"sync"

	"vibetweet/internal/models"
)

// ErrNotConfigured is returned when a provider has no credentials.
var ErrNotConfigured = errors.New("llm provider not configured")

// Request is a single completion call.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Provider generates text from a prompt.
type Provider interface {
	Name() models.LLMProvider
	Generate(ctx context.Context, req Request) (string, error)
}

// Registry holds the configured providers by name.
type Registry struct {
	mu        sync.RWMutex
	providers map[models.LLMProvider]Provider
	order     []models.LLMProvider
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[models.LLMProvider]Provider)}
}

// Register adds or replaces a provider under its own name.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[p.Name()]; !exists {
		r.order = append(r.order, p.Name())
	}
	r.providers[p.Name()] = p
}

// Provider returns the provider registered under name.
func (r *Registry) Provider(name models.LLMProvider) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// Names lists registered providers in registration order.
func (r *Registry) Names() []models.LLMProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.LLMProvider(nil), r.order...)
}

// Candidates returns the providers to try, in order: preferred, fallback,
// then every other registered provider. Unregistered names are skipped.
func (r *Registry) Candidates(preferred, fallback models.LLMProvider) []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Provider
	seen := map[models.LLMProvider]bool{}
	add := func(name models.LLMProvider) {
		if seen[name] {
			return
		}
		seen[name] = true
		if p, ok := r.providers[name]; ok {
			out = append(out, p)
		}
	}

	add(preferred)
	add(fallback)
	for _, name := range r.order {
		add(name)
	}
	return out
}
