package remote

import (
	"encoding/json"
	"fmt"
)

// Record is one row as a generic document.
type Record map[string]any

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ID returns the record's id as a string.
func (r Record) ID() string {
	switch v := r["id"].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// ToRecord converts a struct into a Record through its JSON form.
func ToRecord(v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return r, nil
}

// ToRecords converts a slice of structs.
func ToRecords[T any](items []T) ([]Record, error) {
	out := make([]Record, 0, len(items))
	for _, it := range items {
		r, err := ToRecord(it)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Decode converts records back into typed values.
func Decode[T any](records []Record) ([]T, error) {
	data, err := json.Marshal(records)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(records))
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
