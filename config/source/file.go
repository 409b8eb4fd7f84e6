package source

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/skekre98/locator/config"
)

// FileSource loads application.yaml (or .yml) from BasePath and, when Profile
// is set, overlays application.<profile>.yaml. The overlay replaces whole
// top-level keys; a missing overlay is ignored.
//
//	configs/
//	  application.yaml
//	  application.prod.yaml
type FileSource struct {
	BasePath string
	Profile  string
	// PollInterval enables Watch. Zero disables it.
	PollInterval time.Duration
}

func (f *FileSource) Name() string { return "file" }

// Load returns os.ErrNotExist when the base file is missing.
func (f *FileSource) Load(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	baseFile := findYAMLFile(f.BasePath, "application")
	if baseFile == "" {
		return nil, os.ErrNotExist
	}

	data := map[string]any{}
	if err := readYAML(baseFile, data); err != nil {
		return nil, err
	}

	if f.Profile != "" {
		if profileFile := findYAMLFile(f.BasePath, "application."+f.Profile); profileFile != "" {
			if err := readYAML(profileFile, data); err != nil {
				return nil, err
			}
		}
	}
	return data, nil
}

// Watch polls the modification times of the base and profile files and sends
// an event whenever one changes. It returns nil at once when PollInterval is
// zero, and ctx.Err() once ctx is done.
func (f *FileSource) Watch(ctx context.Context, ch chan<- config.Event) error {
	if f.PollInterval <= 0 {
		return nil
	}

	ticker := time.NewTicker(f.PollInterval)
	defer ticker.Stop()

	last := f.fingerprint()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			current := f.fingerprint()
			if current == last {
				continue
			}
			last = current
			select {
			case ch <- config.Event{}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// fingerprint summarizes which config files exist and when they changed.
func (f *FileSource) fingerprint() string {
	var fp string
	names := []string{"application"}
	if f.Profile != "" {
		names = append(names, "application."+f.Profile)
	}
	for _, n := range names {
		path := findYAMLFile(f.BasePath, n)
		if path == "" {
			fp += n + ":missing;"
			continue
		}
		if info, err := os.Stat(path); err == nil {
			fp += path + ":" + info.ModTime().UTC().Format(time.RFC3339Nano) + ":" +
				strconv.FormatInt(info.Size(), 10) + ";"
		}
	}
	return fp
}

// findYAMLFile returns the first existing basename.yaml or basename.yml.
func findYAMLFile(dir, basename string) string {
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(dir, basename+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func readYAML(path string, out map[string]any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, &out)
}
