package source

import "strings"

// FromProperties builds the process-properties source from -Dkey=value
// arguments on the command line plus explicitly supplied pairs. Explicit
// pairs win over command-line definitions of the same key.
func FromProperties(args []string, extra map[string]string) Source {
	values := make(map[string]Value, len(args)+len(extra))

	for _, arg := range args {
		def, ok := strings.CutPrefix(arg, "-D")
		if !ok {
			continue
		}
		key, value, ok := strings.Cut(def, "=")
		if !ok || key == "" {
			continue
		}
		values[key] = NewScalar(value)
	}

	for key, value := range extra {
		if key == "" {
			continue
		}
		values[key] = NewScalar(value)
	}

	return New("properties", values)
}
