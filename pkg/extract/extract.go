// Package extract resolves values out of the heterogeneous record shapes
// the two systems export: nested JSON objects addressed by dotted paths,
// flattened records whose keys are themselves dotted strings, and
// state/territory/division values that may be a bare string, a named
// object, or a {data:{name}} wrapper.
package extract

import (
	"strconv"
	"strings"
)

// Value traverses a nested record along a dot-separated path. It returns
// the value and true when every segment resolves, or nil and false as soon
// as a segment is missing or a non-map is traversed into.
func Value(record map[string]any, path string) (any, bool) {
	if record == nil || path == "" {
		return nil, false
	}

	var current any = record
	for _, key := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Flat looks up a flattened-key record where the entire dotted path is a
// literal map key (the web-CMS primary export uses keys like
// "Column1.content.name").
func Flat(record map[string]any, key string) (any, bool) {
	if record == nil {
		return nil, false
	}
	v, ok := record[key]
	return v, ok
}

// String converts an extracted value to a string, returning "" for nil or
// for values without a useful string form. JSON numbers decode as float64
// and render without a trailing ".0" so identifiers and zip codes survive.
func String(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}

// StringAt resolves a nested path and converts the result with String.
func StringAt(record map[string]any, path string) string {
	v, _ := Value(record, path)
	return String(v)
}

// FlatString looks up a flattened key and converts the result with String.
func FlatString(record map[string]any, key string) string {
	v, _ := Flat(record, key)
	return String(v)
}
