package scoring

import (
	"context"

	"ceap/domain"
)

// ProtectedProvider composes a real provider with a circuit breaker and
// the fallback resolver behind the same Provider contract. It never
// raises an error to its caller for scoring failures: the result is a
// real score or a fallback score.
type ProtectedProvider struct {
	provider Provider
	breaker  *CircuitBreaker
	fallback *Fallback
}

var _ Provider = (*ProtectedProvider)(nil)

func NewProtectedProvider(provider Provider, breaker *CircuitBreaker, fallback *Fallback) *ProtectedProvider {
	return &ProtectedProvider{
		provider: provider,
		breaker:  breaker,
		fallback: fallback,
	}
}

func (p *ProtectedProvider) ModelID() string            { return p.provider.ModelID() }
func (p *ProtectedProvider) ModelVersion() string       { return p.provider.ModelVersion() }
func (p *ProtectedProvider) RequiredFeatures() []string { return p.provider.RequiredFeatures() }

func (p *ProtectedProvider) ScoreCandidate(ctx context.Context, cand domain.Candidate, features map[string]any) (domain.Score, error) {
	var score domain.Score

	err := p.breaker.Execute(func() error {
		s, err := p.provider.ScoreCandidate(ctx, cand, features)
		if err != nil {
			return err
		}
		score = s
		return nil
	})
	if err != nil {
		return p.fallback.GetFallbackScore(ctx, cand, p.provider, err), nil
	}

	return score, nil
}

// Breaker exposes the underlying breaker for observability endpoints.
func (p *ProtectedProvider) Breaker() *CircuitBreaker { return p.breaker }
