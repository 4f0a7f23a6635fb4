// Package config loads Willow settings from a TOML file.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// DefaultPath is the settings file consulted when no path is given.
const DefaultPath = "settings.toml"

// Settings holds user-tunable configuration. Missing fields keep their
// defaults.
type Settings struct {
	// Theme is the UI theme name. Unused by the core; carried for the
	// surrounding application.
	Theme string `toml:"theme"`

	// FontSize is the UI font size in points.
	FontSize int `toml:"font_size"`

	// APIPreference selects the provider for synchronous prompts:
	// "openai", "google" or "anthropic".
	APIPreference string `toml:"api_preference"`

	// MaxConcurrentTasks is the background worker pool size.
	MaxConcurrentTasks int `toml:"max_concurrent_tasks"`

	// Model optionally overrides the provider's default model.
	Model string `toml:"model"`
}

// Default returns the settings used when no file exists.
func Default() Settings {
	return Settings{
		Theme:              "dark",
		FontSize:           12,
		APIPreference:      "openai",
		MaxConcurrentTasks: 3,
	}
}

// Load reads settings from path. A missing file is not an error: the
// defaults are returned. A present but unparseable file returns the
// defaults together with the parse error, so the caller can warn and
// keep going.
func Load(path string) (Settings, error) {
	if path == "" {
		path = DefaultPath
	}

	settings := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("failed to read settings: %w", err)
	}

	if err := toml.Unmarshal(data, &settings); err != nil {
		return Default(), fmt.Errorf("failed to parse %s: %w", path, err)
	}

	settings.normalize()
	return settings, nil
}

// normalize replaces out-of-range values with defaults.
func (s *Settings) normalize() {
	def := Default()
	if s.FontSize <= 0 {
		s.FontSize = def.FontSize
	}
	if s.MaxConcurrentTasks <= 0 {
		s.MaxConcurrentTasks = def.MaxConcurrentTasks
	}
	if s.Theme == "" {
		s.Theme = def.Theme
	}
	if s.APIPreference == "" {
		s.APIPreference = def.APIPreference
	}
}
