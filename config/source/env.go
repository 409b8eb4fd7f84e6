package source

import (
	"context"
	"os"
	"strings"

	"github.com/skekre98/locator/config"
)

// DefaultEnvPrefix is used when EnvSource.Prefix is empty.
const DefaultEnvPrefix = "LOCATOR_"

// EnvSource loads prefixed environment variables as nested config.
//
// The prefix is stripped, the rest is lowercased and split on underscores. A
// double underscore stands for a literal underscore inside one key:
//
//	LOCATOR_SERVER_ADDR=:9090
//	  -> {server: {addr: ":9090"}}
//	LOCATOR_SERVICES_MAIL__QUEUE=*github.com/acme/app/mail.Queue
//	  -> {services: {mail_queue: "*github.com/acme/app/mail.Queue"}}
//
// Keys are always lowercase, so service names with capitals can only come
// from YAML files or CLI flags. Values stay strings; the Binder converts them.
// When a leaf already exists at a path, deeper variables under it are skipped.
type EnvSource struct {
	Prefix string
}

func (e *EnvSource) Name() string { return "env" }

func (e *EnvSource) Load(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return loadEnvVars(prefixOrDefault(e.Prefix), os.Environ()), nil
}

// Watch is a no-op; the environment is fixed for the process lifetime.
func (e *EnvSource) Watch(ctx context.Context, ch chan<- config.Event) error {
	return nil
}

func prefixOrDefault(p string) string {
	if p == "" {
		return DefaultEnvPrefix
	}
	return p
}

func loadEnvVars(prefix string, environ []string) map[string]any {
	result := make(map[string]any)
	for _, env := range environ {
		key, value, found := strings.Cut(env, "=")
		if !found || !strings.HasPrefix(key, prefix) {
			continue
		}
		setPrefixed(result, prefix, key, value)
	}
	return result
}

func setPrefixed(result map[string]any, prefix, key, value string) {
	key = strings.ToLower(strings.TrimPrefix(key, prefix))
	if key == "" {
		return
	}
	setNestedValue(result, splitEnvKey(key), value)
}

// splitEnvKey splits on "_" and joins the pieces around each "__" back with a
// single underscore.
func splitEnvKey(key string) []string {
	var segments []string
	for i, part := range strings.Split(key, "__") {
		pieces := strings.Split(part, "_")
		if i > 0 && len(segments) > 0 {
			segments[len(segments)-1] += "_" + pieces[0]
			pieces = pieces[1:]
		}
		segments = append(segments, pieces...)
	}
	return segments
}

func setNestedValue(m map[string]any, segments []string, value string) {
	current := m

	for i, segment := range segments {
		if segment == "" {
			continue
		}

		if i == len(segments)-1 {
			current[segment] = value
			return
		}

		existing, exists := current[segment]
		if !exists {
			nested := make(map[string]any)
			current[segment] = nested
			current = nested
			continue
		}
		nested, ok := existing.(map[string]any)
		if !ok {
			// a leaf already lives here
			return
		}
		current = nested
	}
}
