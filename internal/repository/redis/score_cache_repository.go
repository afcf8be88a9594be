package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ceap/business/scoring"
	"ceap/domain"
)

// ScoreCacheRepository keeps the most recent real score per
// (candidate, model) with a TTL; expiry is enforced by Redis itself so
// Get only ever returns non-expired entries.
type ScoreCacheRepository struct {
	client *redis.Client
	ttl    time.Duration
}

var (
	_ scoring.ScoreCache       = (*ScoreCacheRepository)(nil)
	_ scoring.ScoreCacheWriter = (*ScoreCacheRepository)(nil)
)

func NewScoreCacheRepository(client *redis.Client, ttl time.Duration) *ScoreCacheRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ScoreCacheRepository{client: client, ttl: ttl}
}

func scoreKey(candidateKey, modelID string) string {
	return fmt.Sprintf("score:%s:%s", candidateKey, modelID)
}

func (r *ScoreCacheRepository) Get(ctx context.Context, candidateKey, modelID string) (*domain.Score, error) {
	val, err := r.client.Get(ctx, scoreKey(candidateKey, modelID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get score from Redis: %w", err)
	}

	var score domain.Score
	if err := json.Unmarshal([]byte(val), &score); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached score: %w", err)
	}

	return &score, nil
}

func (r *ScoreCacheRepository) Put(ctx context.Context, candidateKey, modelID string, score domain.Score) error {
	raw, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("failed to marshal score: %w", err)
	}

	if err := r.client.Set(ctx, scoreKey(candidateKey, modelID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store score in Redis: %w", err)
	}

	return nil
}
