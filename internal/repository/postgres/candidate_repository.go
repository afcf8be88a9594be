package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"ceap/business/pipeline"
	"ceap/domain"
)

type candidateRow struct {
	ID          string    `gorm:"column:id;primaryKey"`
	CustomerID  string    `gorm:"column:customer_id;index"`
	Version     int64     `gorm:"column:version;not null"`
	ExpiresAt   time.Time `gorm:"column:expires_at;index"`
	PayloadJSON []byte    `gorm:"column:payload_json"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (candidateRow) TableName() string {
	return "candidates"
}

type CandidateRepository struct {
	DB *gorm.DB
}

var _ pipeline.CandidateRepository = (*CandidateRepository)(nil)

func NewCandidateRepository(db *gorm.DB) *CandidateRepository {
	return &CandidateRepository{DB: db}
}

// Save inserts a new candidate or updates an existing one with an
// optimistic-lock check: the stored version must be exactly one behind
// the incoming one.
func (r *CandidateRepository) Save(ctx context.Context, cand domain.Candidate) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	raw, err := json.Marshal(cand)
	if err != nil {
		return fmt.Errorf("failed to marshal candidate: %w", err)
	}

	row := candidateRow{
		ID:          cand.ID,
		CustomerID:  cand.CustomerID,
		Version:     cand.Metadata.Version,
		ExpiresAt:   cand.Metadata.ExpiresAt,
		PayloadJSON: raw,
	}

	var existing candidateRow
	err = r.DB.WithContext(ctx).Select("id", "version").First(&existing, "id = ?", cand.ID).Error
	if err == gorm.ErrRecordNotFound {
		if err := r.DB.WithContext(ctx).Create(&row).Error; err != nil {
			return fmt.Errorf("failed to insert candidate: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to query candidates: %w", err)
	}

	res := r.DB.WithContext(ctx).
		Model(&candidateRow{}).
		Where("id = ? AND version < ?", cand.ID, cand.Metadata.Version).
		Updates(map[string]any{
			"customer_id":  row.CustomerID,
			"version":      row.Version,
			"expires_at":   row.ExpiresAt,
			"payload_json": row.PayloadJSON,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update candidate: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("optimistic lock conflict for candidate %s (version %d)", cand.ID, cand.Metadata.Version)
	}

	return nil
}

func (r *CandidateRepository) GetByID(ctx context.Context, id string) (domain.Candidate, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Candidate{}, false, fmt.Errorf("context error: %w", err)
	}

	var row candidateRow
	err := r.DB.WithContext(ctx).First(&row, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return domain.Candidate{}, false, nil
	}
	if err != nil {
		return domain.Candidate{}, false, fmt.Errorf("failed to query candidates: %w", err)
	}

	var cand domain.Candidate
	if err := json.Unmarshal(row.PayloadJSON, &cand); err != nil {
		return domain.Candidate{}, false, fmt.Errorf("failed to unmarshal payload_json: %w", err)
	}

	return cand, true, nil
}

// DeleteExpired removes candidates whose TTL has lapsed; run from a
// maintenance schedule.
func (r *CandidateRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).
		Delete(&candidateRow{}, "expires_at < ?", now)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete expired candidates: %w", res.Error)
	}
	return res.RowsAffected, nil
}
