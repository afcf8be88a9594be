package mapping

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"ceap/domain"
)

// timestampLayouts are tried in order before falling back to an
// epoch-millisecond numeric parse.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func coerce(value any, target domain.FieldType) (any, error) {
	if target == "" {
		return value, nil
	}

	switch target {
	case domain.FieldTypeString:
		return coerceString(value), nil
	case domain.FieldTypeInteger:
		n, err := coerceInt64(value)
		if err != nil {
			return nil, err
		}
		return int(n), nil
	case domain.FieldTypeLong:
		return coerceInt64(value)
	case domain.FieldTypeDouble:
		return coerceFloat64(value)
	case domain.FieldTypeBoolean:
		return coerceBool(value)
	case domain.FieldTypeTimestamp:
		return coerceTimestamp(value)
	case domain.FieldTypeList:
		return coerceList(value), nil
	case domain.FieldTypeMap:
		return coerceMap(value)
	default:
		return nil, fmt.Errorf("unknown target type %q", target)
	}
}

func coerceString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}

func coerceInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float32:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			// accept "42.0" style numerics the way a lenient parser would
			f, ferr := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if ferr != nil {
				return 0, fmt.Errorf("cannot parse %q as integer", v)
			}
			return int64(f), nil
		}
		return n, nil
	default:
		return 0, fmt.Errorf("cannot coerce %T to integer", value)
	}
}

func coerceFloat64(value any) (float64, error) {
	switch v := value.(type) {
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as double", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("cannot coerce %T to double", value)
	}
}

func coerceBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(strings.ToLower(v)))
		if err != nil {
			return false, fmt.Errorf("cannot parse %q as boolean", v)
		}
		return b, nil
	case int:
		return v != 0, nil
	case int64:
		return v != 0, nil
	case float64:
		return v != 0, nil
	default:
		return false, fmt.Errorf("cannot coerce %T to boolean", value)
	}
}

func coerceTimestamp(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		// epoch millis as a string
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms), nil
		}
		return time.Time{}, fmt.Errorf("cannot parse %q as timestamp", v)
	case int:
		return time.UnixMilli(int64(v)), nil
	case int64:
		return time.UnixMilli(v), nil
	case float64:
		return time.UnixMilli(int64(v)), nil
	default:
		return time.Time{}, fmt.Errorf("cannot coerce %T to timestamp", value)
	}
}

// coerceList passes sequences through, splits comma-separated strings
// into trimmed tokens, and wraps any other scalar into a one-element list.
func coerceList(value any) []any {
	switch v := value.(type) {
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	case string:
		parts := strings.Split(v, ",")
		out := make([]any, 0, len(parts))
		for _, p := range parts {
			out = append(out, strings.TrimSpace(p))
		}
		return out
	default:
		return []any{value}
	}
}

func coerceMap(value any) (map[string]any, error) {
	if m, ok := value.(map[string]any); ok {
		return m, nil
	}
	return nil, fmt.Errorf("cannot coerce %T to map", value)
}
