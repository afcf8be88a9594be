package scoring

import (
	"context"

	"ceap/domain"
	"ceap/pkg/logger"
)

// Score metadata keys set on every fallback score.
const (
	MetaFallback         = "fallback"
	MetaOriginalFailure  = "original_failure"
	MetaFallbackStrategy = "fallback_strategy"

	StrategyCached   = "cached"
	StrategyProvider = "provider"
	StrategyDefault  = "default"
)

// ScoreCache is the read side of the score cache repository consumed by
// the fallback resolver. Implementations honor TTL expiry on Get.
type ScoreCache interface {
	Get(ctx context.Context, candidateKey, modelID string) (*domain.Score, error)
}

type FallbackConfig struct {
	DefaultScore      float64
	DefaultConfidence float64
	LogFailures       bool
}

// Fallback resolves a usable score when a scoring call fails or the
// breaker is open: cached score, then provider-default, then configured
// default. It never returns an error.
type Fallback struct {
	cache ScoreCache
	cfg   FallbackConfig
}

func NewFallback(cache ScoreCache, cfg FallbackConfig) *Fallback {
	return &Fallback{cache: cache, cfg: cfg}
}

// GetFallbackScore always returns a usable score tagged with fallback
// markers; the triggering failure is recorded in metadata and optionally
// logged, never re-thrown.
func (f *Fallback) GetFallbackScore(ctx context.Context, cand domain.Candidate, provider Provider, cause error) domain.Score {
	modelID := provider.ModelID()

	if f.cfg.LogFailures {
		logger.Warn("scoring failed, resolving fallback",
			"model_id", modelID,
			"candidate_id", cand.Key(),
			"error", cause.Error(),
		)
	}

	if f.cache != nil {
		cached, err := f.cache.Get(ctx, cand.Key(), modelID)
		if err != nil && f.cfg.LogFailures {
			logger.Warn("score cache lookup failed",
				"model_id", modelID,
				"candidate_id", cand.Key(),
				"error", err.Error(),
			)
		}
		if cached != nil {
			score := *cached
			tagFallback(&score, StrategyCached, cause)
			ScoringFallbacksTotal.WithLabelValues(modelID, StrategyCached).Inc()
			return score
		}
	}

	if ds, ok := provider.(DefaultScorer); ok {
		score, err := ds.DefaultScore(ctx, cand)
		if err == nil {
			score.ModelID = modelID
			tagFallback(&score, StrategyProvider, cause)
			ScoringFallbacksTotal.WithLabelValues(modelID, StrategyProvider).Inc()
			return score
		}
		if f.cfg.LogFailures {
			logger.Warn("provider default scoring failed",
				"model_id", modelID,
				"candidate_id", cand.Key(),
				"error", err.Error(),
			)
		}
	}

	score := domain.Score{
		ModelID:    modelID,
		Value:      f.cfg.DefaultScore,
		Confidence: f.cfg.DefaultConfidence,
	}
	tagFallback(&score, StrategyDefault, cause)
	ScoringFallbacksTotal.WithLabelValues(modelID, StrategyDefault).Inc()
	return score
}

func tagFallback(score *domain.Score, strategy string, cause error) {
	meta := make(map[string]string, len(score.Metadata)+3)
	for k, v := range score.Metadata {
		meta[k] = v
	}
	meta[MetaFallback] = "true"
	meta[MetaOriginalFailure] = cause.Error()
	meta[MetaFallbackStrategy] = strategy
	score.Metadata = meta
}

// IsFallbackScore reports whether the score was produced by the fallback
// resolver rather than a live provider call.
func IsFallbackScore(score domain.Score) bool {
	return score.Metadata[MetaFallback] == "true"
}
