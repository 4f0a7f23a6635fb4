package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeCreds(t *testing.T, content string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.toml")
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeCreds(t, `
[openai]
api_key = "sk-test-openai"

[google]
api_key = "g-test-key"
`, 0o600)

	creds, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if got := creds.APIKey("openai"); got != "sk-test-openai" {
		t.Errorf("Expected openai key, got %q", got)
	}
	if got := creds.APIKey("google"); got != "g-test-key" {
		t.Errorf("Expected google key, got %q", got)
	}
}

func TestLoadFileInsecurePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits not enforced on windows")
	}

	path := writeCreds(t, `[openai]
api_key = "leaky"
`, 0o644)

	_, err := LoadFile(path)
	if !errors.Is(err, ErrInsecurePermissions) {
		t.Errorf("Expected ErrInsecurePermissions, got %v", err)
	}
}

func TestEnvFallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-gemini-key")

	creds := &Credentials{}
	if got := creds.APIKey("google"); got != "env-gemini-key" {
		t.Errorf("Expected env fallback, got %q", got)
	}
	if got := creds.APIKey("openai"); got != os.Getenv("OPENAI_API_KEY") {
		t.Errorf("Expected openai env value, got %q", got)
	}
}

func TestFileWinsOverEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")

	path := writeCreds(t, `[openai]
api_key = "file-key"
`, 0o600)

	creds, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if got := creds.APIKey("openai"); got != "file-key" {
		t.Errorf("File key should win over env, got %q", got)
	}
}

func TestUnknownProvider(t *testing.T) {
	creds := &Credentials{}
	if got := creds.APIKey("mystery"); got != "" {
		t.Errorf("Unknown provider should yield empty key, got %q", got)
	}
}

func TestProviders(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "anth-key")

	creds := &Credentials{}
	got := creds.Providers()
	if len(got) != 1 || got[0] != "anthropic" {
		t.Errorf("Expected [anthropic], got %v", got)
	}
}
