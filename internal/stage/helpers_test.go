package stage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"nropster/internal/services"
)

func TestRequireInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "show.mpg")

	if err := RequireInput("transcode", ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty path, got %v", err)
	}
	if err := RequireInput("transcode", path); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for missing file, got %v", err)
	}
	if err := RequireInput("transcode", dir); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for directory, got %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := RequireInput("transcode", path); err != nil {
		t.Fatalf("expected existing file to pass, got %v", err)
	}
}

func TestEnsureParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "out.dv")
	if err := EnsureParentDir("transcode", path); err != nil {
		t.Fatalf("EnsureParentDir: %v", err)
	}
	if info, err := os.Stat(filepath.Dir(path)); err != nil || !info.IsDir() {
		t.Fatalf("expected parent dir, got %v", err)
	}
}

func TestHealthConstructors(t *testing.T) {
	if h := Healthy("fetch"); !h.Ready || h.Name != "fetch" {
		t.Fatalf("unexpected healthy record %+v", h)
	}
	if h := Unhealthy("transcode", "ffmpeg missing"); h.Ready || h.Detail != "ffmpeg missing" {
		t.Fatalf("unexpected unhealthy record %+v", h)
	}
	if err := Healthy("fetch").Err(); err != nil {
		t.Fatalf("healthy stage should not report an error: %v", err)
	}
	err := Unhealthy("transcode", "ffmpeg missing").Err()
	if err == nil || err.Error() != "stage transcode not ready: ffmpeg missing" {
		t.Fatalf("unexpected error %v", err)
	}
}
