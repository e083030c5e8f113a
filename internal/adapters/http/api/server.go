// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/jkc55555/betsup-engine/internal/app"
	"github.com/jkc55555/betsup-engine/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	CreateSeries(ctx context.Context, s *model.Series) (string, error)
	Join(ctx context.Context, seriesID, participantID, displayName string) error
	SubmitPick(ctx context.Context, seriesID, participantID string, pick model.Pick) error
	ResolveBet(ctx context.Context, seriesID string, res service.Resolution) error
	CloseSeries(ctx context.Context, seriesID string) error
	Recompute(ctx context.Context, seriesID string) error
	Standings(ctx context.Context, seriesID string, limit int) ([]model.Snapshot, error)
	ParticipantStanding(ctx context.Context, seriesID, participantID string) (model.Snapshot, error)
}

// StatsProvider exposes service statistics for the stats endpoint.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// Server wires HTTP routes for the business API.
type Server struct {
	seriesHandler    *SeriesHandler
	picksHandler     *PicksHandler
	standingsHandler *StandingsHandler
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		seriesHandler:    NewSeriesHandler(deps),
		picksHandler:     NewPicksHandler(deps),
		standingsHandler: NewStandingsHandler(deps),
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /series", MetricsMiddleware(s.seriesHandler.HandleCreate, "series"))
	mux.HandleFunc("POST /series/{id}/close", MetricsMiddleware(s.seriesHandler.HandleClose, "series_close"))
	mux.HandleFunc("POST /series/{id}/recompute", MetricsMiddleware(s.seriesHandler.HandleRecompute, "series_recompute"))

	mux.HandleFunc("POST /series/{id}/participants", MetricsMiddleware(s.picksHandler.HandleJoin, "participants"))
	mux.HandleFunc("POST /series/{id}/picks", MetricsMiddleware(s.picksHandler.HandlePick, "picks"))
	mux.HandleFunc("POST /series/{id}/resolutions", MetricsMiddleware(s.picksHandler.HandleResolution, "resolutions"))

	mux.HandleFunc("GET /series/{id}/standings", MetricsMiddleware(s.standingsHandler.HandleStandings, "standings"))
	mux.HandleFunc("GET /series/{id}/standings/{participantID}", MetricsMiddleware(s.standingsHandler.HandleParticipant, "participant_standing"))
}

type ackResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
