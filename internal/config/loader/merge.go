package loader

import (
	"reflect"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// DeepMerge overlays src on dst and returns dst, allocating it when nil.
// Tables merge key by key; any other value from src replaces the one in
// dst. Nothing from src is aliased.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			if into, ok := dst[k].(map[string]any); ok {
				dst[k] = DeepMerge(into, sub)
				continue
			}
		}
		dst[k] = cloneValue(v)
	}
	return dst
}

// Clone deep-copies a configuration tree.
func Clone(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return lo.MapValues(m, func(v any, _ string) any { return cloneValue(v) })
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return Clone(t)
	case []any:
		return lo.Map(t, func(item any, _ int) any { return cloneValue(item) })
	}
	return v
}

// GetByPath looks up a dotted path such as "ui.show_history".
func GetByPath(m map[string]any, path string) (any, bool) {
	head, rest, nested := strings.Cut(path, ".")
	v, ok := m[head]
	if !ok || !nested {
		return v, ok
	}
	sub, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	return GetByPath(sub, rest)
}

// SetByPath stores value at a dotted path, creating tables on the way and
// replacing any non-table value that is in the way.
func SetByPath(m map[string]any, path string, value any) {
	if m == nil {
		return
	}
	head, rest, nested := strings.Cut(path, ".")
	if !nested {
		m[head] = value
		return
	}
	sub, ok := m[head].(map[string]any)
	if !ok {
		sub = make(map[string]any)
		m[head] = sub
	}
	SetByPath(sub, rest, value)
}

// ChangedSections lists, sorted, the top-level sections that were added,
// removed or modified between old and new.
func ChangedSections(old, new map[string]any) []string {
	keys := lo.Union(lo.Keys(old), lo.Keys(new))
	changed := lo.Filter(keys, func(k string, _ int) bool {
		ov, inOld := old[k]
		nv, inNew := new[k]
		return inOld != inNew || !reflect.DeepEqual(ov, nv)
	})
	slices.Sort(changed)
	return changed
}
