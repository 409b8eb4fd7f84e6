package source

import (
	"context"
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"

	"github.com/skekre98/locator/config"
)

// DotEnvSource reads a .env file with the same prefix and nesting rules as
// EnvSource, without touching the process environment. A missing file yields
// an empty map.
type DotEnvSource struct {
	// Path defaults to ".env".
	Path   string
	Prefix string
}

func (d *DotEnvSource) Name() string { return "dotenv" }

func (d *DotEnvSource) Load(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := d.Path
	if path == "" {
		path = ".env"
	}
	vars, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, err
	}

	prefix := prefixOrDefault(d.Prefix)
	result := make(map[string]any)
	for key, value := range vars {
		if strings.HasPrefix(key, prefix) {
			setPrefixed(result, prefix, key, value)
		}
	}
	return result, nil
}

// Watch is a no-op; edit the file and restart, or rely on FileSource polling.
func (d *DotEnvSource) Watch(ctx context.Context, ch chan<- config.Event) error {
	return nil
}
