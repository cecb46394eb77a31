package services

import "context"

type attemptKey struct{}

// Attempt identifies one stage attempt on one work item. Zero fields are
// treated as unset.
type Attempt struct {
	// ItemID is the item's position in the work list, counted from 1.
	ItemID int
	// Stage is the workflow stage (fetch or transcode).
	Stage string
	// Lane is the worker lane running the stage.
	Lane string
	// RequestID correlates every log line of the attempt.
	RequestID string
}

// WithAttempt annotates ctx with attempt. Non-zero fields of attempt replace
// those already carried by ctx; zero fields keep the outer value.
func WithAttempt(ctx context.Context, attempt Attempt) context.Context {
	if outer, ok := AttemptFromContext(ctx); ok {
		attempt = outer.merge(attempt)
	}
	if attempt == (Attempt{}) {
		return ctx
	}
	return context.WithValue(ctx, attemptKey{}, attempt)
}

// AttemptFromContext returns the attempt carried by ctx, if any.
func AttemptFromContext(ctx context.Context) (Attempt, bool) {
	if ctx == nil {
		return Attempt{}, false
	}
	attempt, ok := ctx.Value(attemptKey{}).(Attempt)
	return attempt, ok
}

func (a Attempt) merge(inner Attempt) Attempt {
	if inner.ItemID > 0 {
		a.ItemID = inner.ItemID
	}
	if inner.Stage != "" {
		a.Stage = inner.Stage
	}
	if inner.Lane != "" {
		a.Lane = inner.Lane
	}
	if inner.RequestID != "" {
		a.RequestID = inner.RequestID
	}
	return a
}
