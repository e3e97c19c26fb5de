package config

import (
	"os"
	"reflect"
	"strings"
)

var environ = os.Environ

// binding maps an environment variable name, without prefix, to a path of
// json keys in Settings.
type binding struct {
	env  string
	path []string
}

// bindings collects the env struct tags of Settings.
func bindings() []binding {
	return collectBindings(reflect.TypeOf(Settings{}), nil)
}

func collectBindings(t reflect.Type, base []string) []binding {
	var out []binding
	for i := range t.NumField() {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		path := append(append([]string{}, base...), name)
		if env := f.Tag.Get("env"); env != "" {
			out = append(out, binding{env: env, path: path})
			continue
		}
		if f.Type.Kind() == reflect.Struct {
			out = append(out, collectBindings(f.Type, path)...)
		}
	}
	return out
}

// envLayer returns the nested map of variables in env that carry prefix
// and match a binding. Values stay strings; the decoder converts them.
func envLayer(prefix string, env []string, binds []binding) map[string]any {
	byName := make(map[string][]string, len(binds))
	for _, b := range binds {
		byName[b.env] = b.path
	}

	out := make(map[string]any)
	for _, kv := range env {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		path, ok := byName[strings.TrimPrefix(key, prefix)]
		if !ok {
			continue
		}
		setPath(out, path, value)
	}
	return out
}

func setPath(m map[string]any, path []string, value any) {
	for _, key := range path[:len(path)-1] {
		next, ok := m[key].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[key] = next
		}
		m = next
	}
	m[path[len(path)-1]] = value
}
