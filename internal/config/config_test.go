package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultConfigDir(); got != filepath.Join("/tmp/xdg", AppName) {
		t.Errorf("unexpected dir %q", got)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvTimeout, "")

	cfg, _ := New(t.TempDir())
	if err := cfg.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL() != DefaultAPIURL {
		t.Errorf("expected default URL, got %q", cfg.BaseURL())
	}
	if cfg.RequestTimeout() != DefaultTimeout {
		t.Errorf("expected default timeout, got %v", cfg.RequestTimeout())
	}
	if !cfg.TrustServerPercentage() {
		t.Error("server percentage should be trusted by default")
	}
}

func TestLoad_YAML(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvTimeout, "")

	dir := t.TempDir()
	yml := "api_url: https://tasks.example.com/\ndefault_project: Home\ndefault_filter: pending\ntimeout: 3s\nserver_percentage: false\n"
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte(yml), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, _ := New(dir)
	if err := cfg.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL() != "https://tasks.example.com" {
		t.Errorf("expected trimmed URL, got %q", cfg.BaseURL())
	}
	if cfg.DefaultProject != "Home" || cfg.DefaultFilter != "pending" {
		t.Errorf("unexpected settings: %+v", cfg.Settings)
	}
	if cfg.RequestTimeout() != 3*time.Second {
		t.Errorf("expected 3s, got %v", cfg.RequestTimeout())
	}
	if cfg.TrustServerPercentage() {
		t.Error("expected server_percentage false")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte("api_url: http://file\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvAPIURL, "http://env")
	t.Setenv(EnvTimeout, "250ms")

	cfg, _ := New(dir)
	if err := cfg.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL() != "http://env" {
		t.Errorf("expected env URL, got %q", cfg.BaseURL())
	}
	if cfg.RequestTimeout() != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %v", cfg.RequestTimeout())
	}
}

func TestLoad_DotEnvInConfigDir(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	os.Unsetenv(EnvAPIURL)

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, EnvFile), []byte(EnvAPIURL+"=http://dotenv\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, _ := New(dir)
	if err := cfg.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL() != "http://dotenv" {
		t.Errorf("expected .env URL, got %q", cfg.BaseURL())
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte("api_url: [\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, _ := New(dir)
	if err := cfg.Load(); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

func TestLoad_InvalidTimeout(t *testing.T) {
	t.Setenv(EnvTimeout, "soon")
	cfg, _ := New(t.TempDir())
	if err := cfg.Load(); err == nil {
		t.Error("expected error for invalid timeout")
	}
}

func TestPaths(t *testing.T) {
	cfg, _ := New("/cfg")
	if cfg.SessionPath() != filepath.Join("/cfg", SessionFile) {
		t.Errorf("unexpected session path %q", cfg.SessionPath())
	}
	if cfg.ConfigPath() != filepath.Join("/cfg", ConfigFile) {
		t.Errorf("unexpected config path %q", cfg.ConfigPath())
	}
}
