package program

import "ceap/domain"

// Override field names recognized by the merger. Any other key in an
// override map is ignored.
const (
	OverrideEnabled          = "enabled"
	OverrideBatchSchedule    = "batchSchedule"
	OverrideReactiveEnabled  = "reactiveEnabled"
	OverrideCandidateTTLDays = "candidateTTLDays"
	OverrideTimingWindowDays = "timingWindowDays"
)

// MergeOverrides layers marketplace overrides onto a base program
// configuration and returns the effective configuration as a new value;
// the base is never mutated. Only the fixed set of known fields can be
// overridden, and a value of the wrong type silently retains the base
// value (matching the platform's historical permissive behavior).
func MergeOverrides(base domain.ProgramConfig, overrides map[string]any) domain.ProgramConfig {
	if len(overrides) == 0 {
		return base
	}

	merged := base

	if v, ok := boolOverride(overrides, OverrideEnabled); ok {
		merged.Enabled = v
	}
	if v, ok := stringOverride(overrides, OverrideBatchSchedule); ok {
		merged.BatchSchedule = v
	}
	if v, ok := boolOverride(overrides, OverrideReactiveEnabled); ok {
		merged.ReactiveEnabled = v
	}
	if v, ok := intOverride(overrides, OverrideCandidateTTLDays); ok {
		merged.CandidateTTLDays = v
	}
	if v, ok := intOverride(overrides, OverrideTimingWindowDays); ok {
		merged.TimingWindowDays = v
	}

	return merged
}

func boolOverride(overrides map[string]any, key string) (bool, bool) {
	raw, ok := overrides[key]
	if !ok {
		return false, false
	}
	v, ok := raw.(bool)
	return v, ok
}

func stringOverride(overrides map[string]any, key string) (string, bool) {
	raw, ok := overrides[key]
	if !ok {
		return "", false
	}
	v, ok := raw.(string)
	return v, ok
}

// intOverride accepts int and integral JSON numbers; anything else is a
// wrong-type value and the base is retained.
func intOverride(overrides map[string]any, key string) (int, bool) {
	raw, ok := overrides[key]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
		return 0, false
	default:
		return 0, false
	}
}
