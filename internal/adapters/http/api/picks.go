package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/jkc55555/betsup-engine/internal/app"
	"github.com/jkc55555/betsup-engine/internal/domain/model"
)

// PicksHandler serves participant, pick and resolution intake endpoints.
type PicksHandler struct {
	deps Dependencies
}

// NewPicksHandler creates a picks handler.
func NewPicksHandler(deps Dependencies) *PicksHandler {
	return &PicksHandler{deps: deps}
}

// joinRequest mirrors the POST /series/{id}/participants schema.
type joinRequest struct {
	ParticipantID string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
}

func (r joinRequest) validate() error {
	if strings.TrimSpace(r.DisplayName) == "" {
		return errors.New("missing display_name")
	}
	return nil
}

// HandleJoin serves POST /series/{id}/participants.
func (h *PicksHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := h.deps.Join(r.Context(), r.PathValue("id"), req.ParticipantID, req.DisplayName); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ackResponse{Status: "joined"})
}

// pickRequest mirrors the POST /series/{id}/picks schema.
type pickRequest struct {
	ParticipantID string `json:"participant_id"`
	BetID         string `json:"bet_id"`
	Side          string `json:"side"`
	Confidence    int    `json:"confidence,omitempty"`
}

func (r pickRequest) validate() error {
	switch {
	case strings.TrimSpace(r.ParticipantID) == "":
		return errors.New("missing participant_id")
	case strings.TrimSpace(r.BetID) == "":
		return errors.New("missing bet_id")
	case strings.TrimSpace(r.Side) == "":
		return errors.New("missing side")
	}
	return nil
}

// HandlePick serves POST /series/{id}/picks.
func (h *PicksHandler) HandlePick(w http.ResponseWriter, r *http.Request) {
	var req pickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}
	pick := model.Pick{
		BetID:      req.BetID,
		Side:       req.Side,
		Confidence: req.Confidence,
	}
	if err := h.deps.SubmitPick(r.Context(), r.PathValue("id"), req.ParticipantID, pick); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}

// resolutionRequest mirrors the POST /series/{id}/resolutions schema.
type resolutionRequest struct {
	ResolutionID string `json:"resolution_id"`
	BetID        string `json:"bet_id"`
	WinningSide  string `json:"winning_side"`
	Void         bool   `json:"void"`
}

func (r resolutionRequest) validate() error {
	if strings.TrimSpace(r.BetID) == "" {
		return errors.New("missing bet_id")
	}
	if !r.Void && strings.TrimSpace(r.WinningSide) == "" {
		return errors.New("missing winning_side on non-void resolution")
	}
	return nil
}

// HandleResolution serves POST /series/{id}/resolutions.
func (h *PicksHandler) HandleResolution(w http.ResponseWriter, r *http.Request) {
	var req resolutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res := service.Resolution{
		ID:          req.ResolutionID,
		BetID:       req.BetID,
		WinningSide: req.WinningSide,
		Void:        req.Void,
	}
	if err := h.deps.ResolveBet(r.Context(), r.PathValue("id"), res); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "applied"})
}
