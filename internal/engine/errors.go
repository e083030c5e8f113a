package engine

import "errors"

// Sentinel kinds for recompute errors.
var (
	// ErrSeriesClosed rejects triggers against completed or cancelled series.
	ErrSeriesClosed = errors.New("series closed")
	// ErrRecomputeTimeout marks a pass abandoned at its soft deadline.
	ErrRecomputeTimeout = errors.New("recompute timed out")
	// ErrPassAborted marks a pass abandoned because its context was
	// cancelled, e.g. the series was closed or the service is shutting down.
	ErrPassAborted = errors.New("recompute pass aborted")
)
