package domain

// TreatmentGroup is an experiment variant with an allocation percentage
// of traffic. Allocations within one experiment must sum to 100; this is
// checked lazily at assignment time, not at load time.
type TreatmentGroup struct {
	ID                   string `json:"id" validate:"required"`
	Name                 string `json:"name"`
	AllocationPercentage int    `json:"allocation_percentage" validate:"gte=0,lte=100"`
}

type ExperimentConfig struct {
	ID              string           `json:"id" validate:"required"`
	Name            string           `json:"name"`
	Enabled         bool             `json:"enabled"`
	TreatmentGroups []TreatmentGroup `json:"treatment_groups" validate:"dive"`
}

type FilterConfig struct {
	ID      string         `json:"id" validate:"required"`
	Type    string         `json:"type" validate:"required"`
	Enabled bool           `json:"enabled"`
	Params  map[string]any `json:"params,omitempty"`
}

type ChannelConfig struct {
	ID      string `json:"id" validate:"required"`
	Type    string `json:"type" validate:"required,oneof=email push sms inapp"`
	Enabled bool   `json:"enabled"`
}

type DataConnectorConfig struct {
	ID            string                  `json:"id" validate:"required"`
	ConnectorType string                  `json:"connector_type" validate:"required"`
	Enabled       bool                    `json:"enabled"`
	FieldMappings map[string]FieldMapping `json:"field_mappings,omitempty"`
	Settings      map[string]any          `json:"settings,omitempty"`
}

type ScoringModelConfig struct {
	ModelID           string  `json:"model_id" validate:"required"`
	ModelVersion      string  `json:"model_version"`
	Enabled           bool    `json:"enabled"`
	DefaultScore      float64 `json:"default_score"`
	DefaultConfidence float64 `json:"default_confidence"`
	FailureThreshold  int     `json:"failure_threshold" validate:"gte=0"`
	SuccessThreshold  int     `json:"success_threshold" validate:"gte=0"`
	ResetTimeoutMs    int64   `json:"reset_timeout_ms" validate:"gte=0"`
}

// ProgramConfig is the base configuration of an engagement program.
// Marketplace overrides are applied on read and never mutate the
// stored base.
type ProgramConfig struct {
	ProgramID        string                `json:"program_id" validate:"required"`
	Name             string                `json:"name"`
	Marketplace      string                `json:"marketplace" validate:"required"`
	Enabled          bool                  `json:"enabled"`
	BatchSchedule    string                `json:"batch_schedule"`
	ReactiveEnabled  bool                  `json:"reactive_enabled"`
	CandidateTTLDays int                   `json:"candidate_ttl_days" validate:"gte=0"`
	TimingWindowDays int                   `json:"timing_window_days" validate:"gte=0"`
	Experiments      []ExperimentConfig    `json:"experiments,omitempty" validate:"dive"`
	Filters          []FilterConfig        `json:"filters,omitempty" validate:"dive"`
	Channels         []ChannelConfig       `json:"channels" validate:"min=1,dive"`
	Connectors       []DataConnectorConfig `json:"connectors" validate:"min=1,dive"`
	ScoringModels    []ScoringModelConfig  `json:"scoring_models,omitempty" validate:"dive"`
}

// MarketplaceConfigOverride is a marketplace-scoped partial patch applied
// over a base program configuration on read.
type MarketplaceConfigOverride struct {
	ProgramID   string         `json:"program_id" validate:"required"`
	Marketplace string         `json:"marketplace" validate:"required"`
	Overrides   map[string]any `json:"overrides"`
}
