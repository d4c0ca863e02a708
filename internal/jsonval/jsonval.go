// Package jsonval provides pointer-style access helpers over the dynamic
// map[string]any values that flow through the session message log, tool
// inputs, and provider stream deltas. None of this data has a fixed Go
// shape; every field is optional unless a caller explicitly requires it.
package jsonval

// String returns m[key] as a string, or def if the key is absent or not a
// string.
func String(m map[string]any, key, def string) string {
	if m == nil {
		return def
	}
	v, ok := m[key]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

// Bool returns m[key] as a bool, or def if the key is absent or not a bool.
func Bool(m map[string]any, key string, def bool) bool {
	if m == nil {
		return def
	}
	v, ok := m[key]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

// Map returns m[key] as a map[string]any, or nil if absent or not a map.
func Map(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	v, ok := m[key]
	if !ok {
		return nil
	}
	sub, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return sub
}

// Slice returns m[key] as a []any, or nil if absent or not a slice.
func Slice(m map[string]any, key string) []any {
	if m == nil {
		return nil
	}
	v, ok := m[key]
	if !ok {
		return nil
	}
	s, ok := v.([]any)
	if !ok {
		return nil
	}
	return s
}

// Has reports whether key is present in m.
func Has(m map[string]any, key string) bool {
	if m == nil {
		return false
	}
	_, ok := m[key]
	return ok
}
