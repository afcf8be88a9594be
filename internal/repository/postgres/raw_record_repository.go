package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"ceap/business/connector"
)

type rawRecordRow struct {
	ID          uint              `gorm:"column:id;primaryKey"`
	ConnectorID string            `gorm:"column:connector_id;index;not null"`
	Payload     datatypes.JSONMap `gorm:"column:payload;type:jsonb"`
	Processed   bool              `gorm:"column:processed;index"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
}

func (rawRecordRow) TableName() string {
	return "raw_records"
}

// RawRecordRepository stages raw source records for batch extraction.
type RawRecordRepository struct {
	DB *gorm.DB
}

var _ connector.RecordSource = (*RawRecordRepository)(nil)

func NewRawRecordRepository(db *gorm.DB) *RawRecordRepository {
	return &RawRecordRepository{DB: db}
}

func (r *RawRecordRepository) Enqueue(ctx context.Context, connectorID string, payload map[string]any) error {
	row := rawRecordRow{
		ConnectorID: connectorID,
		Payload:     datatypes.JSONMap(payload),
	}
	if err := r.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to enqueue raw record: %w", err)
	}
	return nil
}

// FetchPending returns unprocessed records for a connector and marks
// them processed in the same transaction.
func (r *RawRecordRepository) FetchPending(ctx context.Context, connectorID string, limit int) ([]map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var out []map[string]any
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []rawRecordRow
		if err := tx.
			Where("connector_id = ? AND processed = false", connectorID).
			Order("id").
			Limit(limit).
			Find(&rows).Error; err != nil {
			return fmt.Errorf("failed to query raw_records: %w", err)
		}

		if len(rows) == 0 {
			return nil
		}

		ids := make([]uint, 0, len(rows))
		out = make([]map[string]any, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.ID)
			out = append(out, map[string]any(row.Payload))
		}

		if err := tx.Model(&rawRecordRow{}).
			Where("id IN ?", ids).
			Update("processed", true).Error; err != nil {
			return fmt.Errorf("failed to mark raw_records processed: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}
