package scoring

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"ceap/domain"
	"ceap/pkg/logger"
)

// ScoreCacheWriter is the population side of the score cache. The engine
// writes fresh real scores so the fallback resolver has something recent
// to serve when a backend degrades.
type ScoreCacheWriter interface {
	Put(ctx context.Context, candidateKey, modelID string, score domain.Score) error
}

type EngineConfig struct {
	MaxParallel int
	Fallback    FallbackConfig
}

// Engine scores candidates against every registered model. One task is
// submitted per (candidate, model) pair; a task's failure never cancels
// its siblings because protected providers absorb scoring failures.
type Engine struct {
	providers *ProviderRegistry
	breakers  *BreakerRegistry
	fallback  *Fallback
	cacheW    ScoreCacheWriter
	cfg       EngineConfig

	mu        sync.Mutex
	protected map[string]*ProtectedProvider
}

func NewEngine(
	providers *ProviderRegistry,
	breakers *BreakerRegistry,
	cache ScoreCache,
	cacheW ScoreCacheWriter,
	cfg EngineConfig,
) *Engine {
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 8
	}
	return &Engine{
		providers: providers,
		breakers:  breakers,
		fallback:  NewFallback(cache, cfg.Fallback),
		cacheW:    cacheW,
		cfg:       cfg,
		protected: make(map[string]*ProtectedProvider),
	}
}

// ProviderFor returns the protected wrapper for a model id.
func (e *Engine) ProviderFor(modelID string) (*ProtectedProvider, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if p, ok := e.protected[modelID]; ok {
		return p, nil
	}

	raw, ok := e.providers.Get(modelID)
	if !ok {
		return nil, fmt.Errorf("scoring provider %q: %w", modelID, domain.ErrNotFound)
	}

	p := NewProtectedProvider(raw, e.breakers.For(modelID), e.fallback)
	e.protected[modelID] = p
	return p, nil
}

// ScoreCandidate runs one candidate through the given models and returns
// a copy with all scores attached.
func (e *Engine) ScoreCandidate(ctx context.Context, cand domain.Candidate, modelIDs []string, features map[string]any) (domain.Candidate, error) {
	scored, err := e.ScoreBatch(ctx, []domain.Candidate{cand}, modelIDs, features)
	if err != nil {
		return cand, err
	}
	return scored[0], nil
}

// ScoreBatch scores every (candidate, model) pair on a bounded worker
// pool and joins the results in input order.
func (e *Engine) ScoreBatch(ctx context.Context, cands []domain.Candidate, modelIDs []string, features map[string]any) ([]domain.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if len(modelIDs) == 0 {
		modelIDs = e.providers.ModelIDs()
	}

	start := time.Now()

	type slot struct {
		mu     sync.Mutex
		scores []domain.Score
	}
	slots := make([]slot, len(cands))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.MaxParallel)

	for i := range cands {
		for _, modelID := range modelIDs {
			i, modelID := i, modelID
			g.Go(func() error {
				provider, err := e.ProviderFor(modelID)
				if err != nil {
					logger.Warn("skipping unknown scoring model", "model_id", modelID)
					return nil
				}

				// never errors: fallback is the terminal absorbing stage
				score, _ := provider.ScoreCandidate(gctx, cands[i], features)

				if e.cacheW != nil && !IsFallbackScore(score) {
					if err := e.cacheW.Put(gctx, cands[i].Key(), modelID, score); err != nil {
						logger.Warn("score cache population failed",
							"model_id", modelID,
							"candidate_id", cands[i].Key(),
							"error", err.Error(),
						)
					}
				}

				slots[i].mu.Lock()
				slots[i].scores = append(slots[i].scores, score)
				slots[i].mu.Unlock()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("score batch: %w", err)
	}

	out := make([]domain.Candidate, len(cands))
	for i := range cands {
		c := cands[i]
		for _, s := range slots[i].scores {
			c = c.WithScore(s)
		}
		out[i] = c
	}

	ScoringBatchLatency.Observe(time.Since(start).Seconds())
	return out, nil
}

// Breakers exposes breaker snapshots for the admin surface.
func (e *Engine) Breakers() []BreakerMetrics {
	return e.breakers.Snapshot()
}
