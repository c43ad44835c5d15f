// Package config holds the key/value table shared by the config store
// adapters. Keys use dot notation ("chunking.size").
package config

import (
	"maps"
	"slices"
	"strings"
	"sync"
)

// Values is a concurrency-safe table of settings with typed accessors.
// The zero value is ready to use.
type Values struct {
	mu sync.RWMutex
	m  map[string]any
}

// Get returns the raw value stored under key.
func (v *Values) Get(key string) (any, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	val, ok := v.m[key]
	return val, ok
}

// GetString returns key as a string, or "" when unset or not a string.
func (v *Values) GetString(key string) string {
	s, _ := v.lookup(key).(string)
	return s
}

// GetInt returns key as an int. Decoders hand back int64 and JSON
// callers float64, so both are accepted.
func (v *Values) GetInt(key string) int {
	switch n := v.lookup(key).(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// GetFloat returns key as a float64, widening integers.
func (v *Values) GetFloat(key string) float64 {
	switch n := v.lookup(key).(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

// Put stores value under key.
func (v *Values) Put(key string, value any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.m == nil {
		v.m = map[string]any{}
	}
	v.m[key] = value
}

// Keys returns the stored keys in sorted order.
func (v *Values) Keys() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Sorted(maps.Keys(v.m))
}

// Replace swaps the whole table for flat.
func (v *Values) Replace(flat map[string]any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.m = maps.Clone(flat)
}

// Tree returns the table as nested maps, one level per key segment.
func (v *Values) Tree() map[string]any {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return Nest(v.m)
}

func (v *Values) lookup(key string) any {
	val, _ := v.Get(key)
	return val
}

// Flatten turns nested maps into dot-notation keys:
// {"a": {"b": 1}} becomes {"a.b": 1}.
func Flatten(tree map[string]any) map[string]any {
	flat := map[string]any{}
	flattenInto(flat, "", tree)
	return flat
}

func flattenInto(dst map[string]any, prefix string, tree map[string]any) {
	for k, val := range tree {
		if prefix != "" {
			k = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			flattenInto(dst, k, sub)
			continue
		}
		dst[k] = val
	}
}

// Nest reverses Flatten. When a key is both a value and the prefix of
// another key, the value wins and the longer key is dropped.
func Nest(flat map[string]any) map[string]any {
	tree := map[string]any{}

	// Shorter keys first so a plain value always claims its slot before
	// a longer key tries to turn it into a table.
	keys := slices.SortedFunc(maps.Keys(flat), func(a, b string) int {
		return strings.Count(a, ".") - strings.Count(b, ".")
	})

	for _, key := range keys {
		parts := strings.Split(key, ".")
		node := tree
		for _, part := range parts[:len(parts)-1] {
			existing, taken := node[part]
			if !taken {
				child := map[string]any{}
				node[part] = child
				node = child
				continue
			}
			child, isTable := existing.(map[string]any)
			if !isTable {
				node = nil
				break
			}
			node = child
		}
		if node != nil {
			node[parts[len(parts)-1]] = flat[key]
		}
	}
	return tree
}
