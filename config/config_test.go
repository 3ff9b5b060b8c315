package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cfg.Host != "slipway.app" {
		t.Errorf("host = %q, want slipway.app", cfg.Host)
	}
	if cfg.StageDelay != 400*time.Millisecond {
		t.Errorf("stage delay = %s, want 400ms", cfg.StageDelay)
	}
	if cfg.MaxSourceKB != 512 {
		t.Errorf("max_source_kb = %d, want 512", cfg.MaxSourceKB)
	}
}

func TestParseFullConfig(t *testing.T) {
	data := []byte("host: example.dev\ndelay: 1s\nmax_source_kb: 64\ntheme: light\n")
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cfg.Host != "example.dev" {
		t.Errorf("host = %q, want example.dev", cfg.Host)
	}
	if cfg.StageDelay != time.Second {
		t.Errorf("stage delay = %s, want 1s", cfg.StageDelay)
	}
	if cfg.MaxSourceKB != 64 {
		t.Errorf("max_source_kb = %d, want 64", cfg.MaxSourceKB)
	}
	if cfg.Theme != "light" {
		t.Errorf("theme = %q, want light", cfg.Theme)
	}
}

func TestParseRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad delay", "delay: soon\n", "invalid delay"},
		{"negative delay", "delay: -1s\n", "not be negative"},
		{"empty host", "host: \"\"\n", "host"},
		{"bad size", "max_source_kb: -3\n", "max_source_kb"},
		{"not yaml", "\t{nope\n", "parsing config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestLoadReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slipway.yaml")
	if err := os.WriteFile(path, []byte("host: files.dev\n"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Host != "files.dev" {
		t.Errorf("host = %q, want files.dev", cfg.Host)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load() of a missing file should error")
	}
}
