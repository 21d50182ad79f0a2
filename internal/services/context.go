package services

import "context"

type contextKey string

const (
	runIDKey     contextKey = "run_id"
	itemIndexKey contextKey = "item_index"
)

// WithRunID annotates context with the identifier of the current match run.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithItemIndex annotates context with the zero-based position of the source
// item being processed.
func WithItemIndex(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, itemIndexKey, index)
}

// ItemIndexFromContext extracts the item position if present.
func ItemIndexFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(itemIndexKey).(int)
	return v, ok
}
