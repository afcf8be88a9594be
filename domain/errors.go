package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by registry lookups for unknown ids.
var ErrNotFound = errors.New("not found")

// FieldMappingError reports a required-field resolution or coercion
// failure in the typed field mapper.
type FieldMappingError struct {
	Field       string
	SourceField string
	Err         error
}

func (e *FieldMappingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("field mapping failed for %q (source %q): %v", e.Field, e.SourceField, e.Err)
	}
	return fmt.Sprintf("field mapping failed for %q (source %q)", e.Field, e.SourceField)
}

func (e *FieldMappingError) Unwrap() error { return e.Err }

// ScoringError is a provider-level scoring failure.
type ScoringError struct {
	ModelID string
	Err     error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("scoring failed for model %q: %v", e.ModelID, e.Err)
}

func (e *ScoringError) Unwrap() error { return e.Err }

// CircuitOpenError is the fail-fast rejection synthesized by an open
// circuit breaker; the wrapped call is never invoked.
type CircuitOpenError struct {
	Name     string
	OpenedAt time.Time
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit breaker %q is open", e.Name)
}

// ConfigValidationError reports malformed configuration, e.g. experiment
// allocations not summing to 100 or a structurally invalid program.
type ConfigValidationError struct {
	Reason string
}

func (e *ConfigValidationError) Error() string {
	return "config validation failed: " + e.Reason
}

// DataExtractionError is a connector-level failure while pulling raw
// records from a source system.
type DataExtractionError struct {
	Connector string
	Err       error
}

func (e *DataExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for connector %q: %v", e.Connector, e.Err)
}

func (e *DataExtractionError) Unwrap() error { return e.Err }

// TransformationError is a connector-level failure while turning a raw
// record into a candidate.
type TransformationError struct {
	Connector string
	Err       error
}

func (e *TransformationError) Error() string {
	return fmt.Sprintf("transformation failed for connector %q: %v", e.Connector, e.Err)
}

func (e *TransformationError) Unwrap() error { return e.Err }

// OperationError wraps a repository-level failure surfaced through a
// registry operation result.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("operation %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("operation %s failed", e.Op)
}

func (e *OperationError) Unwrap() error { return e.Err }
