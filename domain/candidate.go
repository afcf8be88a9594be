package domain

import (
	"errors"
	"time"
)

// Context is a named dimension the candidate was sourced under
// (marketplace, program, vertical).
type Context struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Subject is the thing being evaluated for a customer
// (product, video, track, service, event).
type Subject struct {
	Type     string         `json:"type"`
	ID       string         `json:"id"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type Score struct {
	ModelID    string            `json:"model_id"`
	Value      float64           `json:"value"`
	Confidence float64           `json:"confidence"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type ExperimentTreatment struct {
	ExperimentID string `json:"experiment_id"`
	TreatmentID  string `json:"treatment_id"`
}

// RejectionRecord is append-only; a candidate's rejection history is
// only ever extended, never rewritten.
type RejectionRecord struct {
	FilterID   string    `json:"filter_id"`
	Reason     string    `json:"reason"`
	ReasonCode string    `json:"reason_code"`
	Timestamp  time.Time `json:"timestamp"`
}

type CandidateMetadata struct {
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
	ExpiresAt           time.Time            `json:"expires_at"`
	Version             int64                `json:"version"`
	SourceConnectorID   string               `json:"source_connector_id"`
	WorkflowExecutionID string               `json:"workflow_execution_id"`
	ExperimentTreatment *ExperimentTreatment `json:"experiment_treatment,omitempty"`
}

// Candidate is a normalized customer-subject engagement opportunity.
// It is an immutable value: the With* methods return a new instance
// with the version bumped, the original is never modified.
type Candidate struct {
	ID               string            `json:"id"`
	CustomerID       string            `json:"customer_id"`
	Context          []Context         `json:"context"`
	Subject          Subject           `json:"subject"`
	Scores           map[string]Score  `json:"scores,omitempty"`
	Attributes       map[string]any    `json:"attributes"`
	Metadata         CandidateMetadata `json:"metadata"`
	RejectionHistory []RejectionRecord `json:"rejection_history,omitempty"`
}

func (c Candidate) Validate() error {
	if c.CustomerID == "" {
		return errors.New("customer_id is required")
	}
	if len(c.Context) == 0 {
		return errors.New("context is required")
	}
	for _, dim := range c.Context {
		if dim.Type == "" || dim.ID == "" {
			return errors.New("context dimensions require type and id")
		}
	}
	if c.Subject.Type == "" || c.Subject.ID == "" {
		return errors.New("subject requires type and id")
	}
	if c.Attributes == nil {
		return errors.New("attributes are required")
	}
	if c.Metadata.Version <= 0 {
		return errors.New("metadata version must be positive")
	}
	return nil
}

// WithScore returns a copy with the score attached under its model id.
func (c Candidate) WithScore(score Score) Candidate {
	scores := make(map[string]Score, len(c.Scores)+1)
	for k, v := range c.Scores {
		scores[k] = v
	}
	scores[score.ModelID] = score

	c.Scores = scores
	c.Metadata.Version++
	c.Metadata.UpdatedAt = time.Now()
	return c
}

// WithTreatment returns a copy with the experiment treatment attached.
func (c Candidate) WithTreatment(t ExperimentTreatment) Candidate {
	c.Metadata.ExperimentTreatment = &t
	c.Metadata.Version++
	c.Metadata.UpdatedAt = time.Now()
	return c
}

// WithRejection returns a copy with the rejection appended.
func (c Candidate) WithRejection(r RejectionRecord) Candidate {
	history := make([]RejectionRecord, len(c.RejectionHistory), len(c.RejectionHistory)+1)
	copy(history, c.RejectionHistory)
	c.RejectionHistory = append(history, r)
	c.Metadata.Version++
	c.Metadata.UpdatedAt = time.Now()
	return c
}

// Key is the candidate identity used for score cache lookups.
func (c Candidate) Key() string {
	return c.ID
}
