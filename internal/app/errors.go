package service

import "errors"

// Sentinel kinds for request validation errors.
var (
	// ErrPickLocked rejects picks against bets that already resolved or
	// were cancelled.
	ErrPickLocked = errors.New("pick locked")
	// ErrInvalidSelection rejects picks naming a side the bet does not offer.
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrNotStarted rejects calls made before Start.
	ErrNotStarted = errors.New("service not started")
)
