package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeSettings(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "cerebras.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write settings file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeSettings(t, t.TempDir(), "api_key: sk-test\nmodel: llama3.1-8b\n")

	l, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	s := l.Get()
	if s.APIKey != "sk-test" {
		t.Errorf("APIKey = %q, want sk-test", s.APIKey)
	}
	if s.Model != "llama3.1-8b" {
		t.Errorf("Model = %q, want llama3.1-8b", s.Model)
	}
	if s.BaseURL != "https://api.cerebras.ai" {
		t.Errorf("BaseURL = %q, want default", s.BaseURL)
	}
	if s.TimeoutSeconds != 60 {
		t.Errorf("TimeoutSeconds = %d, want 60", s.TimeoutSeconds)
	}
	if s.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", s.MaxRetries)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load() on missing file should fail")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CEREBRAS_API_KEY", "sk-env")
	path := writeSettings(t, t.TempDir(), "model: llama3.1-8b\n")

	l, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := l.Get().APIKey; got != "sk-env" {
		t.Errorf("APIKey = %q, want sk-env", got)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("CEREBRAS_API_KEY", "sk-env")
	t.Setenv("CEREBRAS_BASE_URL", "https://proxy.internal")

	s, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if s.APIKey != "sk-env" {
		t.Errorf("APIKey = %q, want sk-env", s.APIKey)
	}
	if s.BaseURL != "https://proxy.internal" {
		t.Errorf("BaseURL = %q, want https://proxy.internal", s.BaseURL)
	}
	if s.Model != "llama-3.3-70b" {
		t.Errorf("Model = %q, want default", s.Model)
	}
}

func TestOnChange(t *testing.T) {
	dir := t.TempDir()
	path := writeSettings(t, dir, "model: llama3.1-8b\n")

	l, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	changed := make(chan Settings, 1)
	l.OnChange(func(_, updated Settings) {
		select {
		case changed <- updated:
		default:
		}
	})

	// The watcher needs a moment to attach before the rewrite.
	time.Sleep(200 * time.Millisecond)
	writeSettings(t, dir, "model: llama-3.3-70b\n")

	select {
	case s := <-changed:
		if s.Model != "llama-3.3-70b" {
			t.Errorf("Model after change = %q, want llama-3.3-70b", s.Model)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change callback")
	}
}
