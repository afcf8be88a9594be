package connector

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ceap/business/mapping"
	"ceap/domain"
)

// Target field names the JSON connector expects the field mappings to
// produce. Everything else mapped lands in candidate attributes.
const (
	TargetCustomerID  = "customer_id"
	TargetSubjectType = "subject_type"
	TargetSubjectID   = "subject_id"
)

// RecordSource feeds staged raw records into the JSON connector;
// implementations live in the repository layer.
type RecordSource interface {
	FetchPending(ctx context.Context, connectorID string, limit int) ([]map[string]any, error)
}

// JSONConnector normalizes heterogeneous JSON records into candidates
// through the typed field mapper.
type JSONConnector struct {
	source     RecordSource
	batchLimit int
}

var _ Connector = (*JSONConnector)(nil)

func NewJSONConnector(source RecordSource, batchLimit int) *JSONConnector {
	if batchLimit <= 0 {
		batchLimit = 500
	}
	return &JSONConnector{source: source, batchLimit: batchLimit}
}

func (c *JSONConnector) Name() string { return "json" }

func (c *JSONConnector) ValidateConfig(cfg domain.DataConnectorConfig) error {
	if cfg.ID == "" {
		return fmt.Errorf("connector id is required")
	}
	if len(cfg.FieldMappings) == 0 {
		return fmt.Errorf("connector %q requires field mappings", cfg.ID)
	}
	if _, ok := cfg.FieldMappings[TargetCustomerID]; !ok {
		return fmt.Errorf("connector %q requires a %q field mapping", cfg.ID, TargetCustomerID)
	}
	return nil
}

func (c *JSONConnector) Extract(ctx context.Context, cfg domain.DataConnectorConfig) ([]map[string]any, error) {
	if c.source == nil {
		return nil, &domain.DataExtractionError{Connector: cfg.ID, Err: fmt.Errorf("no record source configured")}
	}

	records, err := c.source.FetchPending(ctx, cfg.ID, c.batchLimit)
	if err != nil {
		return nil, &domain.DataExtractionError{Connector: cfg.ID, Err: err}
	}
	return records, nil
}

func (c *JSONConnector) Transform(ctx context.Context, cfg domain.DataConnectorConfig, baseContext []domain.Context, record map[string]any) (domain.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return domain.Candidate{}, fmt.Errorf("context error: %w", err)
	}

	fields, err := mapping.MapRecord(cfg.FieldMappings, record)
	if err != nil {
		return domain.Candidate{}, &domain.TransformationError{Connector: cfg.ID, Err: err}
	}

	customerID, _ := fields[TargetCustomerID].(string)
	if customerID == "" {
		return domain.Candidate{}, &domain.TransformationError{
			Connector: cfg.ID,
			Err:       fmt.Errorf("mapped %q is empty", TargetCustomerID),
		}
	}

	subjectType, _ := fields[TargetSubjectType].(string)
	subjectID, _ := fields[TargetSubjectID].(string)
	if subjectType == "" || subjectID == "" {
		return domain.Candidate{}, &domain.TransformationError{
			Connector: cfg.ID,
			Err:       fmt.Errorf("mapped subject type/id are empty"),
		}
	}

	attributes := make(map[string]any, len(fields))
	for k, v := range fields {
		switch k {
		case TargetCustomerID, TargetSubjectType, TargetSubjectID:
		default:
			attributes[k] = v
		}
	}

	now := time.Now()
	cand := domain.Candidate{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Context:    baseContext,
		Subject: domain.Subject{
			Type: subjectType,
			ID:   subjectID,
		},
		Attributes: attributes,
		Metadata: domain.CandidateMetadata{
			CreatedAt:         now,
			UpdatedAt:         now,
			Version:           1,
			SourceConnectorID: cfg.ID,
		},
	}

	return cand, nil
}
