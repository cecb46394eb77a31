package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"nropster/internal/config"
	"nropster/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("NROPSTER_MAK", "")

	opts = append([]testsupport.ConfigOption{testsupport.WithStubbedBinaries()}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	encoded, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, []byte(encoded), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func writeCachedListing(t *testing.T, cfg *config.Config) {
	t.Helper()
	captured := time.Date(2024, 1, 13, 2, 0, 0, 0, time.UTC)
	testsupport.WriteFile(t, cfg.CatalogCachePath(), testsupport.Listing(
		testsupport.ListingEntry{
			Title:    "Nature",
			Episode:  "Owls",
			Size:     2 << 30,
			Duration: time.Hour,
			Captured: captured,
			URL:      "http://recorder/download/Nature.TiVo?id=11",
			Keep:     true,
		},
		testsupport.ListingEntry{
			Title:    "News",
			Size:     1000,
			Duration: 30 * time.Minute,
			Captured: captured.Add(time.Hour),
			URL:      "http://recorder/download/News.TiVo?id=12",
		},
	))
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
