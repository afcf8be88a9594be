package scoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"ceap/domain"
)

func TestProtectedProvider_PassesThroughRealScore(t *testing.T) {
	p := &fakeProvider{id: "model-a", score: domain.Score{ModelID: "model-a", Value: 0.9}}
	b := NewCircuitBreaker("model-a", BreakerConfig{FailureThreshold: 3, SuccessThreshold: 1, ResetTimeout: time.Minute})
	pp := NewProtectedProvider(p, b, NewFallback(nil, FallbackConfig{DefaultScore: 0.1}))

	score, err := pp.ScoreCandidate(context.Background(), testCandidate(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score.Value != 0.9 || IsFallbackScore(score) {
		t.Errorf("expected real score passthrough, got %+v", score)
	}
}

func TestProtectedProvider_FailuresYieldFallbackAndOpenBreaker(t *testing.T) {
	p := &fakeProvider{id: "model-a", err: errors.New("backend timeout")}
	b := NewCircuitBreaker("model-a", BreakerConfig{FailureThreshold: 3, SuccessThreshold: 1, ResetTimeout: time.Minute})
	pp := NewProtectedProvider(p, b, NewFallback(nil, FallbackConfig{DefaultScore: 0.1}))

	for i := 0; i < 3; i++ {
		score, err := pp.ScoreCandidate(context.Background(), testCandidate(), nil)
		if err != nil {
			t.Fatalf("call %d: fallback path must not error, got %v", i, err)
		}
		if !IsFallbackScore(score) {
			t.Fatalf("call %d: expected fallback score, got %+v", i, score)
		}
	}

	if b.State() != StateOpen {
		t.Fatalf("expected open breaker after threshold failures, got %v", b.State())
	}
	if p.calls != 3 {
		t.Errorf("expected 3 backend invocations, got %d", p.calls)
	}

	// fourth call fails fast: fallback score without touching the backend
	score, err := pp.ScoreCandidate(context.Background(), testCandidate(), nil)
	if err != nil {
		t.Fatalf("fail-fast path must not error, got %v", err)
	}
	if !IsFallbackScore(score) {
		t.Error("expected fallback score while open")
	}
	if p.calls != 3 {
		t.Errorf("backend must not be invoked while open, got %d calls", p.calls)
	}
	if score.Metadata[MetaOriginalFailure] == "" {
		t.Error("expected circuit-open failure recorded in metadata")
	}
}

func TestProtectedProvider_RecoversAfterResetTimeout(t *testing.T) {
	p := &fakeProvider{id: "model-a", err: errors.New("down")}
	b := NewCircuitBreaker("model-a", BreakerConfig{FailureThreshold: 1, SuccessThreshold: 1, ResetTimeout: 10 * time.Millisecond})
	pp := NewProtectedProvider(p, b, NewFallback(nil, FallbackConfig{DefaultScore: 0.1}))

	_, _ = pp.ScoreCandidate(context.Background(), testCandidate(), nil)
	if b.State() != StateOpen {
		t.Fatalf("expected open, got %v", b.State())
	}

	p.err = nil
	p.score = domain.Score{ModelID: "model-a", Value: 0.7}
	time.Sleep(20 * time.Millisecond)

	score, err := pp.ScoreCandidate(context.Background(), testCandidate(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if IsFallbackScore(score) || score.Value != 0.7 {
		t.Errorf("expected real score after recovery, got %+v", score)
	}
	if b.State() != StateClosed {
		t.Errorf("expected closed after trial success, got %v", b.State())
	}
}
