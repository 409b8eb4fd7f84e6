package config

import (
	"context"
	"maps"
)

// ConfigSource produces a string-keyed, possibly nested map of raw values.
//
// Load must be safe for concurrent use and must return a map the caller may
// modify. Watch is optional: sources that cannot detect changes return nil
// immediately. Sources that can block until ctx is done, sending an Event on
// ch for each change they see; the channel is owned by the caller.
type ConfigSource interface {
	Load(ctx context.Context) (map[string]any, error)
	Watch(ctx context.Context, ch chan<- Event) error
	// Name identifies the source in errors and logs, e.g. "file" or "env".
	Name() string
}

// Event is published by Manager after a reload changed the bound config.
type Event struct {
	// ChangedKeys holds the top-level struct field names whose values differ,
	// e.g. ["Services"] when only the service map changed.
	ChangedKeys []string

	OldConfig any
	NewConfig any
}

// Changed reports whether the top-level field key is among ChangedKeys.
func (e Event) Changed(key string) bool {
	for _, k := range e.ChangedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// MapSource serves a fixed map. It backs Defaults and is handy in tests.
type MapSource struct {
	SourceName string
	Values     map[string]any
}

func (m *MapSource) Name() string {
	if m.SourceName == "" {
		return "map"
	}
	return m.SourceName
}

func (m *MapSource) Load(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return deepCopy(m.Values), nil
}

func (m *MapSource) Watch(context.Context, chan<- Event) error { return nil }

func deepCopy(src map[string]any) map[string]any {
	out := maps.Clone(src)
	if out == nil {
		return map[string]any{}
	}
	for k, v := range out {
		if nested, ok := v.(map[string]any); ok {
			out[k] = deepCopy(nested)
		}
	}
	return out
}
