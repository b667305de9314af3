// Package records loads record sets for tables built from definitions.
//
// A record is a JSON-like object. Files may hold a bare list of records or
// an object with a "records" list:
//
//	.json        [{"id": 1}, ...]        or {"records": [...]}
//	.yaml, .yml  - id: 1                 or records: [...]
//	.toml        [[records]]             (TOML has no top-level arrays)
//
// Nested lists of objects are normalized to []any of Record so sub-row
// accessors see one shape regardless of the source format.
package records

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Record is one row of source data.
type Record = map[string]any

// Format names a record file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ErrUnsupportedFormat is returned for file extensions Load does not know.
var ErrUnsupportedFormat = errors.New("unsupported record format")

// FormatOf returns the format for a file name by extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}

// Load reads the records in path, choosing the decoder by extension.
func Load(path string) ([]Record, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open records: %w", err)
	}
	defer f.Close()

	recs, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

// Decode reads records in the given format from r.
func Decode(r io.Reader, format Format) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	var doc any
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode json records: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode yaml records: %w", err)
		}
	case FormatTOML:
		var m map[string]any
		if _, err := toml.Decode(string(data), &m); err != nil {
			return nil, fmt.Errorf("decode toml records: %w", err)
		}
		doc = m
	default:
		return nil, fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
	}

	return fromDocument(doc)
}

// fromDocument accepts a list of records or an object with a "records"
// list.
func fromDocument(doc any) ([]Record, error) {
	if m, ok := doc.(map[string]any); ok {
		list, ok := m["records"]
		if !ok {
			return nil, errors.New(`records: object has no "records" list`)
		}
		doc = list
	}

	items, ok := asList(doc)
	if !ok {
		if doc == nil {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("records: expected a list, got %T", doc)
	}

	out := make([]Record, 0, len(items))
	for i, item := range items {
		rec, ok := normalize(item).(Record)
		if !ok {
			return nil, fmt.Errorf("records[%d]: expected an object, got %T", i, item)
		}
		out = append(out, rec)
	}
	return out, nil
}

// asList returns the elements of the list shapes the decoders produce.
func asList(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return x, true
	case []map[string]any:
		out := make([]any, len(x))
		for i, m := range x {
			out[i] = m
		}
		return out, true
	}
	return nil, false
}

// normalize rewrites nested maps and lists into map[string]any and []any.
// TOML integers are narrowed to int.
func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(Record, len(x))
		for k, e := range x {
			out[k] = normalize(e)
		}
		return out
	case map[any]any:
		out := make(Record, len(x))
		for k, e := range x {
			out[fmt.Sprint(k)] = normalize(e)
		}
		return out
	case int64:
		return int(x)
	}
	if items, ok := asList(v); ok {
		out := make([]any, len(items))
		for i, e := range items {
			out[i] = normalize(e)
		}
		return out
	}
	return v
}

// SubRows returns a GetSubRows function reading the list under key.
// Non-object elements are skipped.
func SubRows(key string) func(Record, int) []Record {
	return func(r Record, _ int) []Record {
		items, ok := asList(r[key])
		if !ok {
			return nil
		}
		out := make([]Record, 0, len(items))
		for _, item := range items {
			if rec, ok := item.(Record); ok {
				out = append(out, rec)
			}
		}
		return out
	}
}
