package repository

import "errors"

// Sentinel kinds for series store errors.
var (
	ErrSeriesExists        = errors.New("series already exists")
	ErrSeriesNotFound      = errors.New("series not found")
	ErrBetNotFound         = errors.New("bet not found")
	ErrParticipantExists   = errors.New("participant already joined")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrNoGeneration        = errors.New("no snapshot generation published")
)
