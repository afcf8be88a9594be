package scoring

import (
	"context"
	"fmt"
	"sync"

	"ceap/domain"
)

// Provider is a pluggable prediction model integration. Model internals
// are opaque; the platform only depends on this contract.
type Provider interface {
	ModelID() string
	ModelVersion() string
	RequiredFeatures() []string
	ScoreCandidate(ctx context.Context, cand domain.Candidate, features map[string]any) (domain.Score, error)
}

// DefaultScorer is an optional heuristic hook a provider may expose; the
// fallback resolver uses it as the second tier.
type DefaultScorer interface {
	DefaultScore(ctx context.Context, cand domain.Candidate) (domain.Score, error)
}

// ProviderRegistry holds concrete model integrations keyed by model id,
// selected at configuration time.
type ProviderRegistry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{providers: make(map[string]Provider)}
}

func (r *ProviderRegistry) Register(p Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := p.ModelID()
	if id == "" {
		return fmt.Errorf("provider model id is required")
	}
	if _, exists := r.providers[id]; exists {
		return fmt.Errorf("provider %q already registered", id)
	}
	r.providers[id] = p
	return nil
}

func (r *ProviderRegistry) Get(modelID string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[modelID]
	return p, ok
}

func (r *ProviderRegistry) ModelIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	return ids
}
