package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jkc55555/betsup-engine/internal/domain/model"
)

// SeriesHandler serves series administration endpoints.
type SeriesHandler struct {
	deps Dependencies
}

// NewSeriesHandler creates a series handler.
func NewSeriesHandler(deps Dependencies) *SeriesHandler {
	return &SeriesHandler{deps: deps}
}

// createSeriesRequest mirrors the POST /series schema.
type createSeriesRequest struct {
	Name    string              `json:"name"`
	Scoring model.ScoringConfig `json:"scoring"`
	Bets    []model.Bet         `json:"bets"`
}

func (r createSeriesRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("missing name")
	}
	if len(r.Bets) == 0 {
		return errors.New("missing bets")
	}
	return nil
}

type createSeriesResponse struct {
	SeriesID string `json:"series_id"`
}

// HandleCreate serves POST /series.
func (h *SeriesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createSeriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}

	id, err := h.deps.CreateSeries(r.Context(), &model.Series{
		Name:    req.Name,
		Scoring: req.Scoring,
		Bets:    req.Bets,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createSeriesResponse{SeriesID: id})
}

// HandleClose serves POST /series/{id}/close.
func (h *SeriesHandler) HandleClose(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.CloseSeries(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "closed"})
}

// HandleRecompute serves POST /series/{id}/recompute.
func (h *SeriesHandler) HandleRecompute(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Recompute(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "recomputed"})
}
