package core

import (
	"bytes"
	"encoding/json"
)

// ImportRow is one data row of an uploaded file: column name to value, in
// header order. Values read from a file are strings; the importer adds
// typed values (ids, timestamps, flags) to accepted rows.
type ImportRow struct {
	keys   []string
	values map[string]any
}

// NewImportRow builds a row from parallel header and value slices.
// Missing trailing values become empty strings; blank header cells are dropped.
func NewImportRow(header, values []string) *ImportRow {
	r := &ImportRow{values: make(map[string]any, len(header))}
	for i, h := range header {
		if h == "" {
			continue
		}
		v := ""
		if i < len(values) {
			v = values[i]
		}
		r.Set(h, v)
	}
	return r
}

// Get returns the value stored under key.
func (r *ImportRow) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// String returns the value under key as a string, or "" when absent or not a string.
func (r *ImportRow) String(key string) string {
	s, _ := r.values[key].(string)
	return s
}

// Has reports whether key is a column of the row.
func (r *ImportRow) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Set stores value under key, keeping the position of an existing key.
func (r *ImportRow) Set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Delete removes key from the row.
func (r *ImportRow) Delete(key string) {
	if _, ok := r.values[key]; !ok {
		return
	}
	delete(r.values, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the column names in order.
func (r *ImportRow) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of columns.
func (r *ImportRow) Len() int { return len(r.keys) }

// Clone returns an independent copy of the row.
func (r *ImportRow) Clone() *ImportRow {
	c := &ImportRow{
		keys:   make([]string, len(r.keys)),
		values: make(map[string]any, len(r.values)),
	}
	copy(c.keys, r.keys)
	for k, v := range r.values {
		c.values[k] = v
	}
	return c
}

// MarshalJSON encodes the row as a JSON object in column order.
func (r *ImportRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
