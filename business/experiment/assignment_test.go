package experiment

import (
	"errors"
	"fmt"
	"testing"

	"ceap/domain"
)

func fiftyFifty() domain.ExperimentConfig {
	return domain.ExperimentConfig{
		ID:      "exp-1",
		Enabled: true,
		TreatmentGroups: []domain.TreatmentGroup{
			{ID: "control", AllocationPercentage: 50},
			{ID: "variant", AllocationPercentage: 50},
		},
	}
}

func TestAssign_Deterministic(t *testing.T) {
	cfg := fiftyFifty()

	first, err := Assign("customer-42", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == nil {
		t.Fatal("expected assignment")
	}

	for i := 0; i < 50; i++ {
		got, err := Assign("customer-42", cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID != first.ID {
			t.Fatalf("iteration %d: assignment drifted from %q to %q", i, first.ID, got.ID)
		}
	}
}

func TestAssign_DifferentExperimentsIndependent(t *testing.T) {
	a := fiftyFifty()
	b := fiftyFifty()
	b.ID = "exp-2"

	// with enough customers, the two experiments must not always agree
	agree := 0
	const n = 200
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("customer-%d", i)
		ga, _ := Assign(id, a)
		gb, _ := Assign(id, b)
		if ga.ID == gb.ID {
			agree++
		}
	}
	if agree == n || agree == 0 {
		t.Errorf("experiment buckets look correlated: %d/%d agreements", agree, n)
	}
}

func TestAssign_DisabledReturnsNil(t *testing.T) {
	cfg := fiftyFifty()
	cfg.Enabled = false

	got, err := Assign("customer-42", cfg)
	if err != nil || got != nil {
		t.Errorf("expected nil,nil for disabled experiment, got %v, %v", got, err)
	}
}

func TestAssign_EmptyGroupsReturnsNil(t *testing.T) {
	cfg := domain.ExperimentConfig{ID: "exp-1", Enabled: true}

	got, err := Assign("customer-42", cfg)
	if err != nil || got != nil {
		t.Errorf("expected nil,nil for empty groups, got %v, %v", got, err)
	}
}

func TestAssign_BadAllocationSumFails(t *testing.T) {
	cfg := domain.ExperimentConfig{
		ID:      "exp-1",
		Enabled: true,
		TreatmentGroups: []domain.TreatmentGroup{
			{ID: "control", AllocationPercentage: 60},
			{ID: "variant", AllocationPercentage: 50},
		},
	}

	_, err := Assign("customer-42", cfg)
	var cfgErr *domain.ConfigValidationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigValidationError, got %v", err)
	}
}

func TestAssign_FullAllocationAlwaysMatches(t *testing.T) {
	cfg := domain.ExperimentConfig{
		ID:      "exp-1",
		Enabled: true,
		TreatmentGroups: []domain.TreatmentGroup{
			{ID: "a", AllocationPercentage: 10},
			{ID: "b", AllocationPercentage: 30},
			{ID: "c", AllocationPercentage: 60},
		},
	}

	counts := map[string]int{}
	for i := 0; i < 1000; i++ {
		got, err := Assign(fmt.Sprintf("customer-%d", i), cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil {
			t.Fatal("expected assignment for every customer")
		}
		counts[got.ID]++
	}

	// every group should see some traffic; rough shape, not exact split
	for _, id := range []string{"a", "b", "c"} {
		if counts[id] == 0 {
			t.Errorf("group %q received no traffic: %v", id, counts)
		}
	}
	if counts["c"] <= counts["a"] {
		t.Errorf("60%% group should dominate 10%% group: %v", counts)
	}
}

func TestBucket_Range(t *testing.T) {
	for i := 0; i < 500; i++ {
		b := bucket(fmt.Sprintf("customer-%d", i), "exp-1")
		if b < 0 || b > 99 {
			t.Fatalf("bucket out of range: %d", b)
		}
	}
}

func TestBucket_DependsOnBothInputs(t *testing.T) {
	base := bucket("customer-1", "exp-1")
	same := bucket("customer-1", "exp-1")
	if base != same {
		t.Fatal("bucket must be deterministic")
	}

	varied := 0
	for i := 2; i < 30; i++ {
		if bucket(fmt.Sprintf("customer-%d", i), "exp-1") != base {
			varied++
		}
	}
	if varied == 0 {
		t.Error("bucket ignores customer id")
	}
}
