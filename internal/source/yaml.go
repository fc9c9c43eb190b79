package source

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// FromYAML loads and flattens the YAML document at name within fsys. Nested
// mappings become dotted keys; sequences of scalars become list values. A
// missing file yields an empty Source, matching the convention that optional
// configuration layers simply contribute nothing. A file that exists but
// cannot be parsed is an error.
func FromYAML(fsys fs.FS, name string) (Source, error) {
	data, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return Empty(name), nil
	}
	if err != nil {
		return Source{}, fmt.Errorf("read %s: %w", name, err)
	}

	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Source{}, fmt.Errorf("parse %s: %w", name, err)
	}

	values := make(map[string]Value)
	flatten("", root, values)
	return New(name, values), nil
}

func flatten(prefix string, node map[string]any, out map[string]Value) {
	// Sorted for deterministic behavior when a document holds both a scalar
	// and a mapping under clashing dotted paths.
	keys := make([]string, 0, len(node))
	for k := range node {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch v := node[k].(type) {
		case map[string]any:
			flatten(key, v, out)
		case []any:
			items := make([]string, 0, len(v))
			for _, item := range v {
				items = append(items, scalarString(item))
			}
			out[key] = NewList(items)
		default:
			out[key] = NewScalar(scalarString(v))
		}
	}
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(s)
	case int:
		return strconv.Itoa(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", s)
	}
}
