package mapping

import (
	"fmt"
	"strings"

	"ceap/domain"
	"ceap/pkg/logger"
)

// MapRecord converts a raw nested record into a typed field set using the
// declared per-field mapping rules. It is a pure function of (rules, record):
// required fields that cannot be resolved or coerced fail with a
// FieldMappingError, optional failures silently substitute the default.
func MapRecord(rules map[string]domain.FieldMapping, record map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(rules))

	for target, rule := range rules {
		raw, found := resolvePath(record, rule.SourceField)

		var value any
		var err error
		if found {
			value, err = coerce(raw, rule.TargetType)
		}

		if !found || err != nil {
			if rule.Required {
				return nil, &domain.FieldMappingError{
					Field:       target,
					SourceField: rule.SourceField,
					Err:         resolveErr(found, err),
				}
			}
			if err != nil {
				logger.Debug("field coercion failed, using default",
					"field", target,
					"source_field", rule.SourceField,
					"target_type", string(rule.TargetType),
					"error", err.Error(),
				)
			}
			out[target] = rule.DefaultValue
			continue
		}

		out[target] = value
	}

	return out, nil
}

func resolveErr(found bool, err error) error {
	if !found {
		return fmt.Errorf("source field not found")
	}
	return err
}

// resolvePath walks a dot-separated path through nested maps. Any absent
// key or non-map intermediate yields not-found, which is not an error by
// itself.
func resolvePath(record map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	segments := strings.Split(path, ".")
	var current any = record

	for _, seg := range segments {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[seg]
		if !ok {
			return nil, false
		}
	}

	return current, true
}
