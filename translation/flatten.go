package translation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Flatten turns a nested document into dot-path keys. Slices are indexed by
// position and non-string scalars are rendered as text; nil values are
// dropped.
func Flatten(doc map[string]any) map[string]string {
	flat := make(map[string]string)
	flatten("", doc, flat)
	return flat
}

func flatten(prefix string, value any, flat map[string]string) {
	join := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + "." + k
	}

	switch v := value.(type) {
	case nil:
	case map[string]any:
		for k, child := range v {
			flatten(join(k), child, flat)
		}
	case map[string]string:
		for k, child := range v {
			flat[join(k)] = child
		}
	case []any:
		for i, child := range v {
			flatten(join(strconv.Itoa(i)), child, flat)
		}
	case []string:
		for i, child := range v {
			flat[join(strconv.Itoa(i))] = child
		}
	case string:
		flat[prefix] = v
	default:
		flat[prefix] = fmt.Sprint(v)
	}
}

// Unflatten rebuilds the nested document of Flatten. Numeric segments stay
// map keys, so a round trip preserves every value but not slice types.
// A key that is both a value and a parent keeps the parent.
func Unflatten(flat map[string]string) map[string]any {
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	doc := make(map[string]any)
	for _, key := range keys {
		segs := strings.Split(key, ".")

		node := doc
		for _, seg := range segs[:len(segs)-1] {
			child, ok := node[seg].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[seg] = child
			}
			node = child
		}

		last := segs[len(segs)-1]
		if _, isParent := node[last].(map[string]any); isParent {
			continue
		}
		node[last] = flat[key]
	}

	return doc
}

// Prefixed reports whether key falls under one of the prefixes.
func Prefixed(key string, prefixes []string) bool {
	for _, p := range prefixes {
		if key == p || strings.HasPrefix(key, p+".") {
			return true
		}
	}

	return false
}
