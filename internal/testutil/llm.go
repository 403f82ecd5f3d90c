package testutil

import (
	"context"
	"sync"

	"vibetweet/internal/llm"
	"vibetweet/internal/models"
)

// ProviderStub is a scripted llm.Provider. Each call pops the next reply;
// once the script is exhausted the last reply repeats.
type ProviderStub struct {
	ProviderName models.LLMProvider
	Replies      []string
	Err          error

	mu       sync.Mutex
	requests []llm.Request
}

// Name implements llm.Provider.
func (p *ProviderStub) Name() models.LLMProvider {
	return p.ProviderName
}

// Generate implements llm.Provider.
func (p *ProviderStub) Generate(_ context.Context, req llm.Request) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.requests = append(p.requests, req)
	if p.Err != nil {
		return "", p.Err
	}
	if len(p.Replies) == 0 {
		return "[]", nil
	}
	idx := min(len(p.requests)-1, len(p.Replies)-1)
	return p.Replies[idx], nil
}

// Requests returns every request seen so far.
func (p *ProviderStub) Requests() []llm.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]llm.Request(nil), p.requests...)
}
