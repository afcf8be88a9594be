package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ceap/business/connector"
	"ceap/business/experiment"
	"ceap/business/program"
	"ceap/business/scoring"
	"ceap/domain"
	"ceap/pkg/logger"
	"ceap/pkg/metrics"
)

// ---- Repository interfaces ----

type CandidateRepository interface {
	Save(ctx context.Context, cand domain.Candidate) error
	GetByID(ctx context.Context, id string) (domain.Candidate, bool, error)
}

// ---- Usecase / Service ----

// Service orchestrates one pipeline invocation: extract raw records,
// normalize them into candidates, score them against every configured
// model, assign experiment treatments, and persist the survivors.
type Service struct {
	registry      *program.Registry
	connectors    *connector.Registry
	engine        *scoring.Engine
	breakers      *scoring.BreakerRegistry
	candidateRepo CandidateRepository
}

func NewService(
	registry *program.Registry,
	connectors *connector.Registry,
	engine *scoring.Engine,
	breakers *scoring.BreakerRegistry,
	candidateRepo CandidateRepository,
) *Service {
	return &Service{
		registry:      registry,
		connectors:    connectors,
		engine:        engine,
		breakers:      breakers,
		candidateRepo: candidateRepo,
	}
}

// RunSummary reports what one pipeline invocation did.
type RunSummary struct {
	WorkflowExecutionID string `json:"workflow_execution_id"`
	Extracted           int    `json:"extracted"`
	Transformed         int    `json:"transformed"`
	Scored              int    `json:"scored"`
	Persisted           int    `json:"persisted"`
	TransformFailures   int    `json:"transform_failures"`
}

// Run executes the full pipeline for one program in one marketplace.
func (s *Service) Run(ctx context.Context, programID, marketplace string) (RunSummary, error) {
	if err := ctx.Err(); err != nil {
		return RunSummary{}, fmt.Errorf("context error: %w", err)
	}

	summary := RunSummary{WorkflowExecutionID: uuid.NewString()}
	ctx = WithWorkflowID(ctx, summary.WorkflowExecutionID)

	cfg, err := s.effectiveConfig(ctx, programID, marketplace)
	if err != nil {
		return summary, err
	}
	if !cfg.Enabled {
		logger.Info("program disabled, skipping run",
			"program_id", programID,
			"marketplace", marketplace,
			"workflow_execution_id", summary.WorkflowExecutionID,
		)
		return summary, nil
	}

	s.configureBreakers(*cfg)

	start := time.Now()

	baseContext := []domain.Context{
		{Type: "marketplace", ID: cfg.Marketplace},
		{Type: "program", ID: cfg.ProgramID},
	}
	if marketplace != "" && marketplace != cfg.Marketplace {
		baseContext[0].ID = marketplace
	}

	var candidates []domain.Candidate
	for _, connCfg := range cfg.Connectors {
		if !connCfg.Enabled {
			continue
		}

		conn, ok := s.connectors.Get(connCfg.ConnectorType)
		if !ok {
			logger.Warn("no connector registered for type",
				"connector_id", connCfg.ID,
				"connector_type", connCfg.ConnectorType,
			)
			continue
		}
		if err := conn.ValidateConfig(connCfg); err != nil {
			logger.Warn("connector config invalid, skipping",
				"connector_id", connCfg.ID,
				"error", err.Error(),
			)
			continue
		}

		records, err := conn.Extract(ctx, connCfg)
		if err != nil {
			logger.Error("extraction failed",
				"connector_id", connCfg.ID,
				"error", err.Error(),
			)
			continue
		}
		summary.Extracted += len(records)

		transformed, failures := s.transformRecords(ctx, conn, connCfg, baseContext, records)
		summary.Transformed += len(transformed)
		summary.TransformFailures += failures
		candidates = append(candidates, transformed...)
	}

	if len(candidates) == 0 {
		return summary, nil
	}

	for i := range candidates {
		candidates[i].Metadata.WorkflowExecutionID = summary.WorkflowExecutionID
		candidates[i].Metadata.ExpiresAt = expiry(*cfg)
	}

	scored, err := s.engine.ScoreBatch(ctx, candidates, enabledModels(*cfg), nil)
	if err != nil {
		return summary, fmt.Errorf("score candidates: %w", err)
	}
	summary.Scored = len(scored)

	for i := range scored {
		assigned, err := s.assignTreatment(scored[i], *cfg)
		if err != nil {
			return summary, err
		}
		scored[i] = assigned
	}

	for _, cand := range scored {
		if err := s.candidateRepo.Save(ctx, cand); err != nil {
			logger.Error("failed to persist candidate",
				"candidate_id", cand.ID,
				"customer_id", cand.CustomerID,
				"error", err.Error(),
			)
			continue
		}
		summary.Persisted++
	}

	metrics.PipelineRunLatency.Observe(time.Since(start).Seconds())
	metrics.CandidatesProcessedTotal.WithLabelValues(cfg.ProgramID, cfg.Marketplace).
		Add(float64(summary.Persisted))

	logger.Info("pipeline run complete",
		"program_id", cfg.ProgramID,
		"marketplace", cfg.Marketplace,
		"workflow_execution_id", summary.WorkflowExecutionID,
		"extracted", summary.Extracted,
		"persisted", summary.Persisted,
		"transform_failures", summary.TransformFailures,
	)

	return summary, nil
}

// IngestRecords runs the transform/score/assign/persist stages for
// records pushed through the API instead of pulled by a connector.
func (s *Service) IngestRecords(ctx context.Context, programID, marketplace, connectorID string, records []map[string]any) (RunSummary, error) {
	if err := ctx.Err(); err != nil {
		return RunSummary{}, fmt.Errorf("context error: %w", err)
	}

	summary := RunSummary{
		WorkflowExecutionID: uuid.NewString(),
		Extracted:           len(records),
	}
	ctx = WithWorkflowID(ctx, summary.WorkflowExecutionID)

	cfg, err := s.effectiveConfig(ctx, programID, marketplace)
	if err != nil {
		return summary, err
	}

	var connCfg *domain.DataConnectorConfig
	for i := range cfg.Connectors {
		if cfg.Connectors[i].ID == connectorID {
			connCfg = &cfg.Connectors[i]
			break
		}
	}
	if connCfg == nil {
		return summary, fmt.Errorf("connector %q: %w", connectorID, domain.ErrNotFound)
	}

	conn, ok := s.connectors.Get(connCfg.ConnectorType)
	if !ok {
		return summary, fmt.Errorf("connector type %q: %w", connCfg.ConnectorType, domain.ErrNotFound)
	}

	s.configureBreakers(*cfg)

	baseContext := []domain.Context{
		{Type: "marketplace", ID: cfg.Marketplace},
		{Type: "program", ID: cfg.ProgramID},
	}

	candidates, failures := s.transformRecords(ctx, conn, *connCfg, baseContext, records)
	summary.Transformed = len(candidates)
	summary.TransformFailures = failures

	if len(candidates) == 0 {
		return summary, nil
	}

	for i := range candidates {
		candidates[i].Metadata.WorkflowExecutionID = summary.WorkflowExecutionID
		candidates[i].Metadata.ExpiresAt = expiry(*cfg)
	}

	scored, err := s.engine.ScoreBatch(ctx, candidates, enabledModels(*cfg), nil)
	if err != nil {
		return summary, fmt.Errorf("score candidates: %w", err)
	}
	summary.Scored = len(scored)

	for i := range scored {
		assigned, err := s.assignTreatment(scored[i], *cfg)
		if err != nil {
			return summary, err
		}
		if err := s.candidateRepo.Save(ctx, assigned); err != nil {
			logger.Error("failed to persist candidate",
				"candidate_id", assigned.ID,
				"error", err.Error(),
			)
			continue
		}
		summary.Persisted++
	}

	metrics.CandidatesProcessedTotal.WithLabelValues(cfg.ProgramID, cfg.Marketplace).
		Add(float64(summary.Persisted))

	return summary, nil
}

// GetCandidate loads a persisted candidate by id.
func (s *Service) GetCandidate(ctx context.Context, id string) (domain.Candidate, error) {
	cand, ok, err := s.candidateRepo.GetByID(ctx, id)
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("load candidate: %w", err)
	}
	if !ok {
		return domain.Candidate{}, domain.ErrNotFound
	}
	return cand, nil
}

// ScoreCandidate re-scores one persisted candidate on demand and
// persists the result. An empty model list means every registered model.
func (s *Service) ScoreCandidate(ctx context.Context, id string, modelIDs []string) (domain.Candidate, error) {
	cand, err := s.GetCandidate(ctx, id)
	if err != nil {
		return domain.Candidate{}, err
	}

	scored, err := s.engine.ScoreCandidate(ctx, cand, modelIDs, nil)
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("score candidate: %w", err)
	}

	if err := s.candidateRepo.Save(ctx, scored); err != nil {
		return domain.Candidate{}, fmt.Errorf("persist scored candidate: %w", err)
	}
	return scored, nil
}

// RejectCandidate appends a rejection record and persists the new
// version; the existing history is never rewritten.
func (s *Service) RejectCandidate(ctx context.Context, id string, rec domain.RejectionRecord) (domain.Candidate, error) {
	cand, err := s.GetCandidate(ctx, id)
	if err != nil {
		return domain.Candidate{}, err
	}

	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	rejected := cand.WithRejection(rec)

	if err := s.candidateRepo.Save(ctx, rejected); err != nil {
		return domain.Candidate{}, fmt.Errorf("persist rejection: %w", err)
	}
	return rejected, nil
}

// ---- helpers ----

func (s *Service) effectiveConfig(ctx context.Context, programID, marketplace string) (*domain.ProgramConfig, error) {
	res := s.registry.Get(ctx, programID, marketplace)
	switch res.Status {
	case program.StatusSuccess:
		return res.Program, nil
	case program.StatusNotFound:
		return nil, fmt.Errorf("program %q: %w", programID, domain.ErrNotFound)
	default:
		if res.Err != nil {
			return nil, res.Err
		}
		return nil, errors.New(res.Message)
	}
}

func (s *Service) transformRecords(
	ctx context.Context,
	conn connector.Connector,
	cfg domain.DataConnectorConfig,
	baseContext []domain.Context,
	records []map[string]any,
) ([]domain.Candidate, int) {
	out := make([]domain.Candidate, 0, len(records))
	failures := 0

	for _, record := range records {
		cand, err := conn.Transform(ctx, cfg, baseContext, record)
		if err != nil {
			failures++
			logger.Warn("record transformation failed",
				"connector_id", cfg.ID,
				"error", err.Error(),
			)
			continue
		}
		out = append(out, cand)
	}

	return out, failures
}

// assignTreatment applies the first enabled experiment; the assignment
// itself is stateless and stable per (customer, experiment).
func (s *Service) assignTreatment(cand domain.Candidate, cfg domain.ProgramConfig) (domain.Candidate, error) {
	for _, exp := range cfg.Experiments {
		if !exp.Enabled {
			continue
		}
		group, err := experiment.Assign(cand.CustomerID, exp)
		if err != nil {
			return cand, fmt.Errorf("assign treatment: %w", err)
		}
		if group == nil {
			continue
		}
		return cand.WithTreatment(domain.ExperimentTreatment{
			ExperimentID: exp.ID,
			TreatmentID:  group.ID,
		}), nil
	}
	return cand, nil
}

func (s *Service) configureBreakers(cfg domain.ProgramConfig) {
	for _, model := range cfg.ScoringModels {
		if model.FailureThreshold == 0 && model.SuccessThreshold == 0 && model.ResetTimeoutMs == 0 {
			continue
		}
		s.breakers.Configure(model.ModelID, scoring.BreakerConfig{
			FailureThreshold: model.FailureThreshold,
			SuccessThreshold: model.SuccessThreshold,
			ResetTimeout:     time.Duration(model.ResetTimeoutMs) * time.Millisecond,
		})
	}
}

func enabledModels(cfg domain.ProgramConfig) []string {
	ids := make([]string, 0, len(cfg.ScoringModels))
	for _, m := range cfg.ScoringModels {
		if m.Enabled {
			ids = append(ids, m.ModelID)
		}
	}
	return ids
}

func expiry(cfg domain.ProgramConfig) time.Time {
	ttl := cfg.CandidateTTLDays
	if ttl <= 0 {
		ttl = 30
	}
	return time.Now().AddDate(0, 0, ttl)
}
