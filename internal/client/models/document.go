package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Document is a RemoteStore record with an opaque field payload.
type Document struct {
	ID         string
	Collection string
	Revision   int64
	Fields     map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Decode copies the document fields into v, a pointer to a struct with json tags.
func (d *Document) Decode(v any) error {
	b, err := json.Marshal(d.Fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s document %s: %w", d.Collection, d.ID, err)
	}
	return nil
}

// FieldsOf flattens a json-tagged struct into a field map for create/update.
func FieldsOf(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// Filter matches documents whose Field equals Value.
type Filter struct {
	Field string
	Value any
}

// Eq builds an equality filter.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

// Query narrows a collection listing. OrderBy sorts descending when Desc is
// set; Limit <= 0 leaves the server default. Offset skips that many matches
// and is how callers page past one Limit.
type Query struct {
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int
	Offset  int
}
