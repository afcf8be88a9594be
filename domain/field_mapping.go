package domain

// FieldType is the closed set of target types a field mapping can
// coerce a raw value into.
type FieldType string

const (
	FieldTypeString    FieldType = "STRING"
	FieldTypeInteger   FieldType = "INTEGER"
	FieldTypeLong      FieldType = "LONG"
	FieldTypeDouble    FieldType = "DOUBLE"
	FieldTypeBoolean   FieldType = "BOOLEAN"
	FieldTypeTimestamp FieldType = "TIMESTAMP"
	FieldTypeList      FieldType = "LIST"
	FieldTypeMap       FieldType = "MAP"
)

// FieldMapping declares how one target field is produced from a raw
// source record. SourceField is a dot-separated path walked through
// nested maps.
type FieldMapping struct {
	SourceField  string    `json:"source_field" validate:"required"`
	TargetType   FieldType `json:"target_type,omitempty"`
	Required     bool      `json:"required"`
	DefaultValue any       `json:"default_value,omitempty"`
}
