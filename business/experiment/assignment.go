package experiment

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"ceap/domain"
)

// Assign deterministically maps (customerId, experiment) to a treatment
// group honoring the declared allocation percentages. It is stateless:
// identical inputs always yield the identical group, across processes
// and restarts.
//
// Returns (nil, nil) when the experiment is disabled or has no treatment
// groups. Allocations not summing to exactly 100 fail fast with a
// ConfigValidationError instead of renormalizing.
func Assign(customerID string, cfg domain.ExperimentConfig) (*domain.TreatmentGroup, error) {
	if !cfg.Enabled || len(cfg.TreatmentGroups) == 0 {
		return nil, nil
	}

	total := 0
	for _, g := range cfg.TreatmentGroups {
		total += g.AllocationPercentage
	}
	if total != 100 {
		return nil, &domain.ConfigValidationError{
			Reason: fmt.Sprintf("experiment %q treatment allocations sum to %d, expected 100", cfg.ID, total),
		}
	}

	b := bucket(customerID, cfg.ID)

	cumulative := 0
	for i := range cfg.TreatmentGroups {
		cumulative += cfg.TreatmentGroups[i].AllocationPercentage
		if b < cumulative {
			return &cfg.TreatmentGroups[i], nil
		}
	}

	// allocations sum to 100 so the walk above always matches; keep the
	// last group as a defensive fallback anyway
	return &cfg.TreatmentGroups[len(cfg.TreatmentGroups)-1], nil
}

// bucket hashes "customerId:experimentId" with SHA-256, takes the first
// 8 bytes as a 64-bit integer with the sign bit stripped, and reduces
// mod 100 into [0, 99].
func bucket(customerID, experimentID string) int {
	digest := sha256.Sum256([]byte(customerID + ":" + experimentID))
	v := int64(binary.BigEndian.Uint64(digest[:8]) &^ (1 << 63))
	return int(v % 100)
}
