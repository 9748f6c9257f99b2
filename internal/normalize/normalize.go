// Package normalize reconciles records whose keys arrive in more than one
// naming convention (team_id vs teamId, name vs title, ...).
//
// A Schema lists, per field, the canonical key followed by its legacy aliases.
// Normalizing a record copies the first non-empty value (canonical first) onto
// the canonical key and every alias, so readers may use either name.
// Keys unknown to the schema are passed through untouched.
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type Field struct {
	Canonical string
	Aliases   []string
}

func (f Field) keys() []string {
	out := make([]string, 0, len(f.Aliases)+1)
	out = append(out, f.Canonical)
	return append(out, f.Aliases...)
}

type Schema struct {
	Name   string
	Fields []Field
}

// Normalize returns a copy of raw with every schema field populated under all of its names.
// It is idempotent: normalizing its own output yields an equal record.
func (s Schema) Normalize(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw)+len(s.Fields))
	for k, v := range raw {
		out[k] = v
	}
	for _, f := range s.Fields {
		v, ok := firstPresent(out, f.keys())
		if !ok {
			continue
		}
		for _, k := range f.keys() {
			out[k] = v
		}
	}
	return out
}

// Canonical returns the canonical key for name, or name itself when the schema does not know it.
func (s Schema) Canonical(name string) string {
	for _, f := range s.Fields {
		for _, k := range f.keys() {
			if k == name {
				return f.Canonical
			}
		}
	}
	return name
}

// Lookup returns the value of a field by any of its names.
func (s Schema) Lookup(raw map[string]any, name string) (any, bool) {
	canonical := s.Canonical(name)
	for _, f := range s.Fields {
		if f.Canonical == canonical {
			return firstPresent(raw, f.keys())
		}
	}
	v, ok := raw[name]
	if !ok || isEmpty(v) {
		return nil, false
	}
	return v, true
}

// Marshal encodes v and emits the normalized form (both canonical and legacy keys).
// v must not itself implement json.Marshaler through this schema, or it recurses.
func (s Schema) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return b, nil
	}
	m, err := DecodeMap(b)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", s.Name, err)
	}
	return json.Marshal(s.Normalize(m))
}

// Unmarshal normalizes the JSON object in b and decodes it into out.
func (s Schema) Unmarshal(b []byte, out any) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	m, err := DecodeMap(trimmed)
	if err != nil {
		return fmt.Errorf("normalize %s: %w", s.Name, err)
	}
	nb, err := json.Marshal(s.Normalize(m))
	if err != nil {
		return err
	}
	return json.Unmarshal(nb, out)
}

// Decode normalizes an already decoded record and converts it into out.
func (s Schema) Decode(raw map[string]any, out any) error {
	b, err := json.Marshal(s.Normalize(raw))
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

// DecodeMap decodes a JSON object keeping numbers as json.Number.
func DecodeMap(b []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

func firstPresent(raw map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || isEmpty(v) {
			continue
		}
		return v, true
	}
	return nil, false
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	default:
		return false
	}
}
