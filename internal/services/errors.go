package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSourceUnreachable = errors.New("source unreachable")
	ErrBusy              = errors.New("server busy")
	ErrFetchFailed       = errors.New("fetch failed")
	ErrTranscodeFailed   = errors.New("transcode failed")
	ErrExternalTool      = errors.New("external tool error")
	ErrValidation        = errors.New("validation error")
	ErrConfiguration     = errors.New("configuration error")
)

// Kind separates failures the pipeline retries from those it gives up on.
type Kind string

const (
	KindNone  Kind = ""
	KindBusy  Kind = "busy"
	KindFatal Kind = "fatal"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify maps an error onto the retry taxonomy. Anything not explicitly
// marked busy is fatal.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrBusy):
		return KindBusy
	default:
		return KindFatal
	}
}

// IsRetryable reports whether the failure should leave the item eligible for
// another attempt.
func IsRetryable(err error) bool {
	return Classify(err) == KindBusy
}

// Failure is the kind and message recorded against an item after an error.
type Failure struct {
	Kind    Kind
	Message string
}

// Describe converts an error into the recorded Failure form.
func Describe(err error) Failure {
	if err == nil {
		return Failure{}
	}
	return Failure{Kind: Classify(err), Message: strings.TrimSpace(err.Error())}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
