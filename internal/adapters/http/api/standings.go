package api

import (
	"net/http"
	"strconv"

	"github.com/jkc55555/betsup-engine/internal/domain/model"
)

// StandingsHandler serves standings read endpoints.
type StandingsHandler struct {
	deps Dependencies
}

// NewStandingsHandler creates a standings handler.
func NewStandingsHandler(deps Dependencies) *StandingsHandler {
	return &StandingsHandler{deps: deps}
}

type standingsResponse struct {
	SeriesID  string           `json:"series_id"`
	Standings []model.Snapshot `json:"standings"`
}

// HandleStandings serves GET /series/{id}/standings?limit=N.
func (h *StandingsHandler) HandleStandings(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", errInvalidLimit)
			return
		}
		limit = n
	}

	seriesID := r.PathValue("id")
	standings, err := h.deps.Standings(r.Context(), seriesID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, standingsResponse{SeriesID: seriesID, Standings: standings})
}

// HandleParticipant serves GET /series/{id}/standings/{participantID}.
func (h *StandingsHandler) HandleParticipant(w http.ResponseWriter, r *http.Request) {
	snap, err := h.deps.ParticipantStanding(r.Context(), r.PathValue("id"), r.PathValue("participantID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
