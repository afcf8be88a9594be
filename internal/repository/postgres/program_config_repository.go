package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ceap/business/program"
	"ceap/domain"
)

type programConfigRow struct {
	ProgramID   string    `gorm:"column:program_id;primaryKey"`
	Marketplace string    `gorm:"column:marketplace;index"`
	Enabled     bool      `gorm:"column:enabled"`
	ConfigJSON  []byte    `gorm:"column:config_json"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (programConfigRow) TableName() string {
	return "program_configs"
}

type marketplaceOverrideRow struct {
	ProgramID   string            `gorm:"column:program_id;primaryKey"`
	Marketplace string            `gorm:"column:marketplace;primaryKey"`
	Overrides   datatypes.JSONMap `gorm:"column:overrides;type:jsonb"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (marketplaceOverrideRow) TableName() string {
	return "marketplace_config_overrides"
}

type ProgramConfigRepository struct {
	DB *gorm.DB
}

var _ program.ConfigRepository = (*ProgramConfigRepository)(nil)

func NewProgramConfigRepository(db *gorm.DB) *ProgramConfigRepository {
	return &ProgramConfigRepository{DB: db}
}

func (r *ProgramConfigRepository) FindByProgramID(ctx context.Context, programID string) (domain.ProgramConfig, bool, error) {
	var row programConfigRow
	err := r.DB.WithContext(ctx).First(&row, "program_id = ?", programID).Error
	if err == gorm.ErrRecordNotFound {
		return domain.ProgramConfig{}, false, nil
	}
	if err != nil {
		return domain.ProgramConfig{}, false, fmt.Errorf("failed to query program_configs: %w", err)
	}

	cfg, err := decodeProgram(row)
	if err != nil {
		return domain.ProgramConfig{}, false, err
	}
	return cfg, true, nil
}

func (r *ProgramConfigRepository) FindByMarketplace(ctx context.Context, marketplace string) ([]domain.ProgramConfig, error) {
	var rows []programConfigRow
	err := r.DB.WithContext(ctx).
		Where("marketplace = ?", marketplace).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query program_configs: %w", err)
	}

	out := make([]domain.ProgramConfig, 0, len(rows))
	for _, row := range rows {
		cfg, err := decodeProgram(row)
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, nil
}

func (r *ProgramConfigRepository) Save(ctx context.Context, cfg domain.ProgramConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal program config: %w", err)
	}

	row := programConfigRow{
		ProgramID:   cfg.ProgramID,
		Marketplace: cfg.Marketplace,
		Enabled:     cfg.Enabled,
		ConfigJSON:  raw,
	}

	if err := r.DB.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "program_id"}},
			UpdateAll: true,
		},
	).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to upsert program_configs: %w", err)
	}

	return nil
}

func (r *ProgramConfigRepository) UpdateEnabled(ctx context.Context, programID string, enabled bool) error {
	var row programConfigRow
	err := r.DB.WithContext(ctx).First(&row, "program_id = ?", programID).Error
	if err != nil {
		return fmt.Errorf("failed to load program_configs: %w", err)
	}

	cfg, err := decodeProgram(row)
	if err != nil {
		return err
	}
	cfg.Enabled = enabled

	return r.Save(ctx, cfg)
}

func (r *ProgramConfigRepository) Delete(ctx context.Context, programID string) error {
	if err := r.DB.WithContext(ctx).
		Delete(&programConfigRow{}, "program_id = ?", programID).Error; err != nil {
		return fmt.Errorf("failed to delete program_configs: %w", err)
	}

	// overrides for the program go with it
	if err := r.DB.WithContext(ctx).
		Delete(&marketplaceOverrideRow{}, "program_id = ?", programID).Error; err != nil {
		return fmt.Errorf("failed to delete marketplace overrides: %w", err)
	}

	return nil
}

func (r *ProgramConfigRepository) GetOverride(ctx context.Context, programID, marketplace string) (map[string]any, bool, error) {
	var row marketplaceOverrideRow
	err := r.DB.WithContext(ctx).
		Where("program_id = ? AND marketplace = ?", programID, marketplace).
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query marketplace overrides: %w", err)
	}

	return map[string]any(row.Overrides), true, nil
}

func (r *ProgramConfigRepository) SaveOverride(ctx context.Context, override domain.MarketplaceConfigOverride) error {
	row := marketplaceOverrideRow{
		ProgramID:   override.ProgramID,
		Marketplace: override.Marketplace,
		Overrides:   datatypes.JSONMap(override.Overrides),
	}

	if err := r.DB.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "program_id"}, {Name: "marketplace"}},
			UpdateAll: true,
		},
	).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to upsert marketplace overrides: %w", err)
	}

	return nil
}

func decodeProgram(row programConfigRow) (domain.ProgramConfig, error) {
	var cfg domain.ProgramConfig
	if err := json.Unmarshal(row.ConfigJSON, &cfg); err != nil {
		return domain.ProgramConfig{}, fmt.Errorf("failed to unmarshal config_json: %w", err)
	}
	return cfg, nil
}
