// Package credentials loads LLM API keys from standard locations.
package credentials

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// ErrInsecurePermissions is returned when the credentials file is
// readable by group or others.
var ErrInsecurePermissions = fmt.Errorf("credentials file has insecure permissions")

// Environment variables consulted when no file provides a key.
var envKeys = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"google":    "GEMINI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}

// ProviderCreds holds credentials for a single provider.
type ProviderCreds struct {
	APIKey string `toml:"api_key"`
}

// Credentials holds API keys per provider, keyed by provider name
// ("openai", "google", "anthropic").
type Credentials struct {
	providers map[string]*ProviderCreds
}

// StandardPaths returns the credential file locations in priority order.
func StandardPaths() []string {
	paths := []string{"credentials.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "willow", "credentials.toml"),
			filepath.Join(home, ".willow", "credentials.toml"),
		)
	}
	return paths
}

// Load loads credentials from the first available standard location.
// A missing file is not an error: env vars still apply via APIKey.
func Load() (*Credentials, string, error) {
	for _, path := range StandardPaths() {
		if _, err := os.Stat(path); err == nil {
			creds, err := LoadFile(path)
			if err != nil {
				return nil, path, err
			}
			return creds, path, nil
		}
	}
	return &Credentials{providers: map[string]*ProviderCreds{}}, "", nil
}

// LoadFile loads credentials from a specific file.
// Returns ErrInsecurePermissions if the file is readable by group or others.
func LoadFile(path string) (*Credentials, error) {
	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.Mode().Perm()&0o077 != 0 {
			return nil, fmt.Errorf("%w: %s has mode %o, want 600",
				ErrInsecurePermissions, path, info.Mode().Perm())
		}
	}

	providers := make(map[string]*ProviderCreds)
	if _, err := toml.DecodeFile(path, &providers); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &Credentials{providers: providers}, nil
}

// APIKey returns the API key for a provider. File entries win over
// environment variables; an empty string means no key is configured.
func (c *Credentials) APIKey(provider string) string {
	if c != nil && c.providers != nil {
		if pc, ok := c.providers[provider]; ok && pc != nil && pc.APIKey != "" {
			return pc.APIKey
		}
	}
	if env, ok := envKeys[provider]; ok {
		return os.Getenv(env)
	}
	return ""
}

// Providers returns the provider names that have a key configured,
// from the file or the environment.
func (c *Credentials) Providers() []string {
	var out []string
	for name := range envKeys {
		if c.APIKey(name) != "" {
			out = append(out, name)
		}
	}
	return out
}
