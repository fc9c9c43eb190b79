package source

import (
	"os"
	"strings"
)

// FromEnvironment snapshots the process environment. Every variable is
// exposed under its literal name and, when distinct, under a normalized
// dotted alias (lowercased, underscores become dots) so that a variable like
// WATERFALL_PROFILE can serve the waterfall.profile key. The literal name
// wins if the alias collides with another variable.
func FromEnvironment() Source {
	environ := os.Environ()
	values := make(map[string]Value, 2*len(environ))

	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		values[name] = NewScalar(value)
	}

	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		alias := normalizeEnvName(name)
		if _, taken := values[alias]; !taken {
			values[alias] = NewScalar(value)
		}
	}

	return New("environment", values)
}

func normalizeEnvName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", "."))
}
