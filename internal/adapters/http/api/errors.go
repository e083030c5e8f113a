package api

import (
	"errors"
	"net/http"

	"github.com/jkc55555/betsup-engine/internal/adapters/repository"
	service "github.com/jkc55555/betsup-engine/internal/app"
	"github.com/jkc55555/betsup-engine/internal/domain/scoring"
	"github.com/jkc55555/betsup-engine/internal/engine"
)

var errInvalidLimit = errors.New("limit must be a non-negative integer")

// statusFor maps domain errors onto HTTP status codes and error codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrSeriesNotFound),
		errors.Is(err, repository.ErrBetNotFound),
		errors.Is(err, repository.ErrParticipantNotFound),
		errors.Is(err, repository.ErrNoGeneration):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, repository.ErrSeriesExists),
		errors.Is(err, repository.ErrParticipantExists):
		return http.StatusConflict, "already_exists"
	case errors.Is(err, engine.ErrSeriesClosed):
		return http.StatusConflict, "series_closed"
	case errors.Is(err, service.ErrPickLocked):
		return http.StatusConflict, "pick_locked"
	case errors.Is(err, service.ErrInvalidSelection),
		errors.Is(err, scoring.ErrInvalidPick),
		errors.Is(err, scoring.ErrInvalidConfig),
		errors.Is(err, scoring.ErrUnknownMethod):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, engine.ErrRecomputeTimeout):
		return http.StatusServiceUnavailable, "recompute_timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, err)
}
