package configutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// Load reads a json5 configuration file along with its gitignored
// local override layer, where the override wins on conflicts:
// 1. <name>.<ext>
// 2. <name>.local.<ext>
// It returns os.ErrNotExist when neither file is present.
func Load[T any](name string) (T, error) {
	var out T

	ext := filepath.Ext(name)
	localName := fmt.Sprintf("%s.local%s", strings.TrimSuffix(name, ext), ext)

	found := false
	for _, layer := range []string{name, localName} {
		contents, err := os.ReadFile(layer)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return out, err
		}

		var parsed T
		err = json5.Unmarshal(contents, &parsed)
		if err != nil {
			return out, fmt.Errorf("parse %s: %w", layer, err)
		}
		err = mergo.Merge(&out, parsed, mergo.WithOverride)
		if err != nil {
			return out, err
		}

		if layer == localName {
			slog.Info("merged local config overrides", "file", localName)
		}
		found = true
	}

	if !found {
		return out, os.ErrNotExist
	}
	return out, nil
}

// LoadRecursively walks up the filesystem from the working directory
// until it finds a configuration file matching the name.
func LoadRecursively[T any](name string) (T, error) {
	var zero T

	dir, err := os.Getwd()
	if err != nil {
		return zero, err
	}

	for {
		out, err := Load[T](filepath.Join(dir, name))
		if !errors.Is(err, os.ErrNotExist) {
			return out, err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return zero, os.ErrNotExist
		}
		dir = parent
	}
}
