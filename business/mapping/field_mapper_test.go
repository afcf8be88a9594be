package mapping

import (
	"errors"
	"testing"
	"time"

	"ceap/domain"
)

func TestMapRecord_NestedPathResolution(t *testing.T) {
	rules := map[string]domain.FieldMapping{
		"target": {SourceField: "customer.id", Required: true},
	}
	record := map[string]any{
		"customer": map[string]any{"id": "C1"},
	}

	out, err := MapRecord(rules, record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["target"] != "C1" {
		t.Errorf("expected C1, got %v", out["target"])
	}
}

func TestMapRecord_RequiredMissingFails(t *testing.T) {
	rules := map[string]domain.FieldMapping{
		"target": {SourceField: "customer.id", Required: true},
	}
	record := map[string]any{
		"customer": map[string]any{},
	}

	_, err := MapRecord(rules, record)
	if err == nil {
		t.Fatal("expected error for missing required field")
	}
	var mapErr *domain.FieldMappingError
	if !errors.As(err, &mapErr) {
		t.Errorf("expected FieldMappingError, got %T", err)
	}
}

func TestMapRecord_OptionalMissingUsesDefault(t *testing.T) {
	rules := map[string]domain.FieldMapping{
		"target": {SourceField: "missing.path", Required: false, DefaultValue: "fallback"},
	}

	out, err := MapRecord(rules, map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["target"] != "fallback" {
		t.Errorf("expected default value, got %v", out["target"])
	}
}

func TestMapRecord_NonMapIntermediateIsNotFound(t *testing.T) {
	rules := map[string]domain.FieldMapping{
		"target": {SourceField: "customer.id", Required: false, DefaultValue: "d"},
	}
	record := map[string]any{"customer": "not-a-map"}

	out, err := MapRecord(rules, record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["target"] != "d" {
		t.Errorf("expected default, got %v", out["target"])
	}
}

func TestMapRecord_IntegerCoercion(t *testing.T) {
	rules := map[string]domain.FieldMapping{
		"count": {SourceField: "count", TargetType: domain.FieldTypeInteger, Required: true},
	}

	out, err := MapRecord(rules, map[string]any{"count": "42"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["count"] != 42 {
		t.Errorf("expected 42, got %v (%T)", out["count"], out["count"])
	}
}

func TestMapRecord_UnparseableOptionalUsesDefault(t *testing.T) {
	rules := map[string]domain.FieldMapping{
		"count": {SourceField: "count", TargetType: domain.FieldTypeInteger, Required: false, DefaultValue: 0},
	}

	out, err := MapRecord(rules, map[string]any{"count": "abc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["count"] != 0 {
		t.Errorf("expected default 0, got %v", out["count"])
	}
}

func TestMapRecord_UnparseableRequiredFails(t *testing.T) {
	rules := map[string]domain.FieldMapping{
		"count": {SourceField: "count", TargetType: domain.FieldTypeInteger, Required: true},
	}

	if _, err := MapRecord(rules, map[string]any{"count": "abc"}); err == nil {
		t.Fatal("expected error for unparseable required field")
	}
}

func TestCoerce_Boolean(t *testing.T) {
	cases := []struct {
		in   any
		want bool
	}{
		{true, true},
		{"true", true},
		{"FALSE", false},
		{"True", true},
		{1, true},
		{0, false},
		{float64(2.5), true},
	}

	for _, tc := range cases {
		got, err := coerce(tc.in, domain.FieldTypeBoolean)
		if err != nil {
			t.Errorf("coerce(%v) error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("coerce(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}

	if _, err := coerce("yes-ish", domain.FieldTypeBoolean); err == nil {
		t.Error("expected error for unparseable boolean")
	}
}

func TestCoerce_Timestamp(t *testing.T) {
	rfc := "2024-06-01T10:30:00Z"
	got, err := coerce(rfc, domain.FieldTypeTimestamp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ts, ok := got.(time.Time)
	if !ok || ts.IsZero() {
		t.Fatalf("expected parsed time, got %v", got)
	}

	// date-only layout
	if _, err := coerce("2024-06-01", domain.FieldTypeTimestamp); err != nil {
		t.Errorf("date-only parse failed: %v", err)
	}

	// epoch millis
	got, err = coerce(float64(1717238400000), domain.FieldTypeTimestamp)
	if err != nil {
		t.Fatalf("epoch millis parse failed: %v", err)
	}
	if got.(time.Time).UnixMilli() != 1717238400000 {
		t.Errorf("epoch millis roundtrip mismatch: %v", got)
	}

	if _, err := coerce("not a date", domain.FieldTypeTimestamp); err == nil {
		t.Error("expected error for unparseable timestamp")
	}
}

func TestCoerce_List(t *testing.T) {
	got, err := coerce("a, b ,c", domain.FieldTypeList)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list := got.([]any)
	if len(list) != 3 || list[0] != "a" || list[1] != "b" || list[2] != "c" {
		t.Errorf("unexpected split result: %v", list)
	}

	got, _ = coerce(42, domain.FieldTypeList)
	if list := got.([]any); len(list) != 1 || list[0] != 42 {
		t.Errorf("expected scalar wrap, got %v", list)
	}

	existing := []any{"x", "y"}
	got, _ = coerce(existing, domain.FieldTypeList)
	if list := got.([]any); len(list) != 2 {
		t.Errorf("expected passthrough, got %v", list)
	}
}

func TestCoerce_Map(t *testing.T) {
	nested := map[string]any{"k": "v"}
	got, err := coerce(nested, domain.FieldTypeMap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.(map[string]any)["k"] != "v" {
		t.Errorf("expected passthrough, got %v", got)
	}

	if _, err := coerce("scalar", domain.FieldTypeMap); err == nil {
		t.Error("expected error coercing scalar to map")
	}
}

func TestCoerce_StringAndDouble(t *testing.T) {
	got, _ := coerce(42, domain.FieldTypeString)
	if got != "42" {
		t.Errorf("expected \"42\", got %v", got)
	}

	d, err := coerce("3.14", domain.FieldTypeDouble)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 3.14 {
		t.Errorf("expected 3.14, got %v", d)
	}

	l, err := coerce("9000000000", domain.FieldTypeLong)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l != int64(9000000000) {
		t.Errorf("expected int64, got %v (%T)", l, l)
	}
}
