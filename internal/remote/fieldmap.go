package remote

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed fieldmap.yaml
var defaultFieldMap []byte

// FieldMap translates registered lowercase remote columns to local field
// names. It is a fixed table, not a general case converter.
type FieldMap struct {
	toLocal map[string]string
}

type fieldMapFile struct {
	Fields map[string]string `yaml:"fields"`
}

// ParseFieldMap parses a YAML field map. Every key must be lowercase and
// must be the lowercase form of its value.
func ParseFieldMap(data []byte) (*FieldMap, error) {
	var f fieldMapFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse field map: %w", err)
	}
	if len(f.Fields) == 0 {
		return nil, fmt.Errorf("parse field map: no fields")
	}
	m := &FieldMap{toLocal: make(map[string]string, len(f.Fields))}
	for remote, local := range f.Fields {
		if remote != strings.ToLower(remote) {
			return nil, fmt.Errorf("field map: remote column %q is not lowercase", remote)
		}
		if strings.ToLower(local) != remote {
			return nil, fmt.Errorf("field map: %q does not lowercase to %q", local, remote)
		}
		m.toLocal[remote] = local
	}
	return m, nil
}

// DefaultFieldMap returns the embedded map. It panics on a malformed
// embedded file, which is a build defect.
func DefaultFieldMap() *FieldMap {
	m, err := ParseFieldMap(defaultFieldMap)
	if err != nil {
		panic(err)
	}
	return m
}

// Local returns the local name for a remote column and whether it is registered.
func (m *FieldMap) Local(column string) (string, bool) {
	local, ok := m.toLocal[column]
	return local, ok
}

// Len is the number of registered columns.
func (m *FieldMap) Len() int { return len(m.toLocal) }

// Denormalize maps an inbound remote record to local field names.
// Unregistered keys pass through unchanged.
func (m *FieldMap) Denormalize(r Record) Record {
	out := make(Record, len(r))
	for k, v := range r {
		if local, ok := m.toLocal[k]; ok {
			out[local] = v
			continue
		}
		if _, taken := out[k]; !taken {
			out[k] = v
		}
	}
	return out
}

// DenormalizeAll maps every record.
func (m *FieldMap) DenormalizeAll(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = m.Denormalize(r)
	}
	return out
}

// Normalize lowercases every top-level key for an outbound write. Nested
// documents keep their keys.
func Normalize(r Record) Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[strings.ToLower(k)] = v
	}
	return out
}

// NormalizeAll lowercases every record.
func NormalizeAll(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = Normalize(r)
	}
	return out
}
