package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing config file must not be an error: %v", err)
	}
	if cfg.Listen != ":8080" {
		t.Fatalf("wrong default listen: %q", cfg.Listen)
	}
	if cfg.Sheet.Worksheet != "Sheet1" || cfg.Sheet.MarkerCell != "A1" {
		t.Fatalf("wrong sheet defaults: %+v", cfg.Sheet)
	}
	if cfg.Poll.Schedule != "@every 30s" {
		t.Fatalf("wrong poll default: %q", cfg.Poll.Schedule)
	}
}

func TestLoadAppliesFileAndNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
listen: ":9090"
sheet:
  csv_base_url: "https://docs.google.com/spreadsheets/d/abc"
  fetch_timeout: 5s
poll:
  schedule: "@every 1m"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Listen != ":9090" {
		t.Fatalf("listen not applied: %q", cfg.Listen)
	}
	if cfg.Sheet.FetchTimeout != 5*time.Second {
		t.Fatalf("fetch timeout not applied: %v", cfg.Sheet.FetchTimeout)
	}
	// Unset keys fall back to defaults.
	if cfg.Sheet.Worksheet != "Sheet1" || cfg.Sheet.MarkerWorksheet != "Metadata" {
		t.Fatalf("defaults not filled in: %+v", cfg.Sheet)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SHEET_CSV_URL", "https://docs.google.com/spreadsheets/d/env")
	t.Setenv("DATABASE_URL", "host=db dbname=attendance")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Sheet.CSVBaseURL != "https://docs.google.com/spreadsheets/d/env" {
		t.Fatalf("env override not applied: %q", cfg.Sheet.CSVBaseURL)
	}
	if !cfg.Archive.Enabled || cfg.Archive.DSN == "" {
		t.Fatalf("DATABASE_URL must enable the archive: %+v", cfg.Archive)
	}
}
