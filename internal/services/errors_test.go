package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"nropster/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "downloading", "decode", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"downloading", "decode", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutMarkerDefaultsToExternalTool(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestClassify(t *testing.T) {
	busy := services.Wrap(services.ErrBusy, "downloading", "request", "503", nil)
	if kind := services.Classify(busy); kind != services.KindBusy {
		t.Fatalf("expected busy, got %q", kind)
	}
	if !services.IsRetryable(fmt.Errorf("outer: %w", busy)) {
		t.Fatal("expected wrapped busy error to stay retryable")
	}

	fatal := services.Wrap(services.ErrFetchFailed, "downloading", "decode", "exit 1", errors.New("x"))
	if kind := services.Classify(fatal); kind != services.KindFatal {
		t.Fatalf("expected fatal, got %q", kind)
	}
	if kind := services.Classify(errors.New("plain")); kind != services.KindFatal {
		t.Fatalf("expected unmarked errors to be fatal, got %q", kind)
	}
	if kind := services.Classify(nil); kind != services.KindNone {
		t.Fatalf("expected no kind for nil, got %q", kind)
	}
}

func TestDescribe(t *testing.T) {
	failure := services.Describe(services.Wrap(services.ErrTranscodeFailed, "encoding", "", "no output", nil))
	if failure.Kind != services.KindFatal {
		t.Fatalf("unexpected kind %q", failure.Kind)
	}
	if !strings.Contains(failure.Message, "no output") {
		t.Fatalf("unexpected message %q", failure.Message)
	}
	if (services.Describe(nil) != services.Failure{}) {
		t.Fatal("expected zero failure for nil error")
	}
}
