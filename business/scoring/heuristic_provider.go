package scoring

import (
	"context"
	"fmt"

	"ceap/domain"
)

// HeuristicProvider is the built-in engagement-propensity model: it
// scores from the candidate's mapped attributes instead of calling an
// external backend. It doubles as the reference implementation of the
// provider contract.
type HeuristicProvider struct {
	modelID string
	version string
}

var (
	_ Provider      = (*HeuristicProvider)(nil)
	_ DefaultScorer = (*HeuristicProvider)(nil)
)

func NewHeuristicProvider(modelID, version string) *HeuristicProvider {
	return &HeuristicProvider{modelID: modelID, version: version}
}

func (p *HeuristicProvider) ModelID() string      { return p.modelID }
func (p *HeuristicProvider) ModelVersion() string { return p.version }

func (p *HeuristicProvider) RequiredFeatures() []string {
	return []string{"base_score"}
}

func (p *HeuristicProvider) ScoreCandidate(ctx context.Context, cand domain.Candidate, features map[string]any) (domain.Score, error) {
	if err := ctx.Err(); err != nil {
		return domain.Score{}, &domain.ScoringError{ModelID: p.modelID, Err: err}
	}

	base, ok := numericAttr(cand.Attributes, "base_score")
	if !ok {
		if base, ok = numericAttr(features, "base_score"); !ok {
			return domain.Score{}, &domain.ScoringError{
				ModelID: p.modelID,
				Err:     fmt.Errorf("candidate has no base_score attribute"),
			}
		}
	}

	value := clampUnit(base)
	return domain.Score{
		ModelID:    p.modelID,
		Value:      value,
		Confidence: 0.6,
	}, nil
}

// DefaultScore is the fallback hook: a neutral midpoint with low
// confidence.
func (p *HeuristicProvider) DefaultScore(ctx context.Context, cand domain.Candidate) (domain.Score, error) {
	return domain.Score{
		ModelID:    p.modelID,
		Value:      0.5,
		Confidence: 0.2,
	}, nil
}

func numericAttr(attrs map[string]any, key string) (float64, bool) {
	if attrs == nil {
		return 0, false
	}
	switch v := attrs[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
