package source

import (
	"path/filepath"
	"time"

	"github.com/skekre98/locator/config"
)

// Standard returns the usual precedence chain, lowest first: built-in
// defaults, YAML files in dir, dir/.env, the environment, then CLI flags.
// A positive poll interval lets the file source drive AutoReload.
func Standard(dir, profile string, poll time.Duration) []config.ConfigSource {
	return []config.ConfigSource{
		config.Defaults(),
		&FileSource{BasePath: dir, Profile: profile, PollInterval: poll},
		&DotEnvSource{Path: filepath.Join(dir, ".env")},
		&EnvSource{},
		&CLISource{},
	}
}
