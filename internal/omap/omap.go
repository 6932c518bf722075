// Package omap implements an insertion-ordered string-keyed map with
// optional case-insensitive keys, used by value.Object to preserve key
// order (§4.2).
package omap

import "strings"

// Map is an insertion-ordered key -> value mapping. Create one with New: a
// zero Map has no index, and Insert or Replace on it panics.
type Map[V any] struct {
	caseInsensitive bool
	index           map[string]int
	keys            []string
	values          []V
}

// New creates an ordered map. When caseInsensitive is true, lookups and
// inserts fold keys to lowercase before hashing.
func New[V any](caseInsensitive bool) *Map[V] {
	return &Map[V]{
		caseInsensitive: caseInsensitive,
		index:           make(map[string]int),
	}
}

// NormalizeKey exposes the same folding Insert/Lookup apply internally, so
// callers that keep parallel indices (e.g. value.Object's implicit-array
// tail map) stay consistent with the map's own case handling.
func (m *Map[V]) NormalizeKey(key string) string {
	return m.normalize(key)
}

func (m *Map[V]) normalize(key string) string {
	if m.caseInsensitive {
		return strings.ToLower(key)
	}
	return key
}

// Insert adds key -> value if key is new, or reports that the key already
// exists (ok == false) so the caller can fold the value into an implicit
// array instead of overwriting.
func (m *Map[V]) Insert(key string, value V) (existing V, ok bool) {
	nk := m.normalize(key)
	if idx, found := m.index[nk]; found {
		return m.values[idx], false
	}
	m.index[nk] = len(m.keys)
	m.keys = append(m.keys, key)
	m.values = append(m.values, value)
	var zero V
	return zero, true
}

// Replace sets key -> value unconditionally, preserving original
// insertion position if the key already existed.
func (m *Map[V]) Replace(key string, value V) {
	nk := m.normalize(key)
	if idx, found := m.index[nk]; found {
		m.values[idx] = value
		return
	}
	m.index[nk] = len(m.keys)
	m.keys = append(m.keys, key)
	m.values = append(m.values, value)
}

// Lookup returns the value stored for key, if any.
func (m *Map[V]) Lookup(key string) (V, bool) {
	idx, found := m.index[m.normalize(key)]
	if !found {
		var zero V
		return zero, false
	}
	return m.values[idx], true
}

// Delete removes key, returning its value if present.
func (m *Map[V]) Delete(key string) (V, bool) {
	nk := m.normalize(key)
	idx, found := m.index[nk]
	if !found {
		var zero V
		return zero, false
	}

	v := m.values[idx]
	m.keys = append(m.keys[:idx], m.keys[idx+1:]...)
	m.values = append(m.values[:idx], m.values[idx+1:]...)
	delete(m.index, nk)
	for k, i := range m.index {
		if i > idx {
			m.index[k] = i - 1
		}
	}
	return v, true
}

// Count returns the number of distinct keys.
func (m *Map[V]) Count() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order. The caller must not mutate it.
func (m *Map[V]) Keys() []string {
	return m.keys
}

// Range calls fn for every entry in insertion order, stopping early if fn
// returns false.
func (m *Map[V]) Range(fn func(key string, value V) bool) {
	for i, k := range m.keys {
		if !fn(k, m.values[i]) {
			return
		}
	}
}

// RangeSafe snapshots the key order before iterating, so fn may mutate the
// map (insert/delete) without corrupting traversal. Supplements
// ucl_object_iterate_safe from the original C implementation.
func (m *Map[V]) RangeSafe(fn func(key string, value V) bool) {
	snapshot := make([]string, len(m.keys))
	copy(snapshot, m.keys)
	for _, k := range snapshot {
		v, ok := m.Lookup(k)
		if !ok {
			continue
		}
		if !fn(k, v) {
			return
		}
	}
}

// Clone returns a shallow copy preserving order and case sensitivity.
func (m *Map[V]) Clone() *Map[V] {
	out := New[V](m.caseInsensitive)
	out.keys = append([]string(nil), m.keys...)
	out.values = append([]V(nil), m.values...)
	out.index = make(map[string]int, len(m.index))
	for k, v := range m.index {
		out.index[k] = v
	}
	return out
}
