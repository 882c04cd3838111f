package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TADA_HOME", dir)
	for _, k := range []string{"TADA_BASE_URL", "TADA_OWNER_ID", "TADA_HTTP_TIMEOUT", "TADA_LOG_LEVEL", "TADA_LOG_FILE", "TADA_THEME", "TADA_REFRESH_AFTER_WRITE", "TADA_CONFIRM_DELETE"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Defaults()
	if *cfg != want {
		t.Errorf("Load() = %+v, want %+v", *cfg, want)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := isolate(t)
	body := `base_url = "http://localhost:9000/"
owner_id = 7
http_timeout = "5s"
log_level = "debug"
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TADA_LOG_LEVEL", "warn")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "http://localhost:9000" {
		t.Errorf("BaseURL = %q, trailing slash should be trimmed", cfg.BaseURL)
	}
	if cfg.OwnerID != 7 {
		t.Errorf("OwnerID = %d, want 7", cfg.OwnerID)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("HTTPTimeout = %v, want 5s", cfg.HTTPTimeout)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, env should win over file", cfg.LogLevel)
	}
}

func TestLoad_ExplicitMissingPath(t *testing.T) {
	isolate(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load(missing explicit path) should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"ftp scheme", func(c *Config) { c.BaseURL = "ftp://example.com" }, true},
		{"no host", func(c *Config) { c.BaseURL = "http://" }, true},
		{"negative timeout", func(c *Config) { c.HTTPTimeout = -time.Second }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Defaults()
			tt.mutate(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWriteDefault_RoundTrip(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "cfg", "config.toml")
	if err := WriteDefault(path, false); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	if err := WriteDefault(path, false); err == nil {
		t.Error("second WriteDefault without force should fail")
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(written): %v", err)
	}
	if *cfg != Defaults() {
		t.Errorf("round trip = %+v", *cfg)
	}
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	if err := Defaults().Encode(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `base_url = "https://dummyjson.com"`) {
		t.Errorf("encoded config missing base_url:\n%s", buf.String())
	}
}
