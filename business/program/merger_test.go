package program

import (
	"reflect"
	"testing"

	"ceap/domain"
)

func baseConfig() domain.ProgramConfig {
	return domain.ProgramConfig{
		ProgramID:        "winback",
		Marketplace:      "US",
		Enabled:          true,
		BatchSchedule:    "0 6 * * *",
		ReactiveEnabled:  false,
		CandidateTTLDays: 30,
		TimingWindowDays: 7,
	}
}

func TestMergeOverrides_KnownFields(t *testing.T) {
	merged := MergeOverrides(baseConfig(), map[string]any{
		OverrideEnabled:          false,
		OverrideBatchSchedule:    "0 12 * * *",
		OverrideReactiveEnabled:  true,
		OverrideCandidateTTLDays: 14,
		OverrideTimingWindowDays: 3,
	})

	if merged.Enabled {
		t.Error("enabled override not applied")
	}
	if merged.BatchSchedule != "0 12 * * *" {
		t.Errorf("batch schedule override not applied: %q", merged.BatchSchedule)
	}
	if !merged.ReactiveEnabled {
		t.Error("reactive override not applied")
	}
	if merged.CandidateTTLDays != 14 || merged.TimingWindowDays != 3 {
		t.Errorf("int overrides not applied: %d/%d", merged.CandidateTTLDays, merged.TimingWindowDays)
	}
}

func TestMergeOverrides_EmptyReturnsBase(t *testing.T) {
	base := baseConfig()

	if got := MergeOverrides(base, nil); !reflect.DeepEqual(got, base) {
		t.Errorf("nil overrides must return base unchanged: %+v", got)
	}
	if got := MergeOverrides(base, map[string]any{}); !reflect.DeepEqual(got, base) {
		t.Errorf("empty overrides must return base unchanged: %+v", got)
	}
}

func TestMergeOverrides_UnknownFieldIgnored(t *testing.T) {
	base := baseConfig()

	got := MergeOverrides(base, map[string]any{"unknownField": "whatever"})
	if !reflect.DeepEqual(got, base) {
		t.Errorf("unknown field must be ignored: %+v", got)
	}
}

func TestMergeOverrides_WrongTypeRetainsBase(t *testing.T) {
	base := baseConfig()

	got := MergeOverrides(base, map[string]any{
		OverrideEnabled:          "not-a-bool",
		OverrideCandidateTTLDays: "fourteen",
		OverrideBatchSchedule:    42,
	})

	if !got.Enabled || got.CandidateTTLDays != 30 || got.BatchSchedule != "0 6 * * *" {
		t.Errorf("wrong-typed overrides must retain base values: %+v", got)
	}
}

func TestMergeOverrides_JSONNumbersAccepted(t *testing.T) {
	// decoded JSON carries ints as float64
	got := MergeOverrides(baseConfig(), map[string]any{
		OverrideCandidateTTLDays: float64(21),
	})
	if got.CandidateTTLDays != 21 {
		t.Errorf("integral float64 must be accepted: %d", got.CandidateTTLDays)
	}

	got = MergeOverrides(baseConfig(), map[string]any{
		OverrideCandidateTTLDays: float64(21.5),
	})
	if got.CandidateTTLDays != 30 {
		t.Errorf("fractional float64 must retain base: %d", got.CandidateTTLDays)
	}
}

func TestMergeOverrides_BaseNotMutated(t *testing.T) {
	base := baseConfig()
	_ = MergeOverrides(base, map[string]any{OverrideEnabled: false})

	if !base.Enabled {
		t.Error("base configuration must not be mutated")
	}
}
