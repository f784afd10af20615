package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/usercreator005/ff-india-tournaments-sub000/services"
)

type StageHandler struct {
	stages *services.StageService
}

func NewStageHandler(stages *services.StageService) *StageHandler {
	return &StageHandler{stages: stages}
}

func getStageNumberFromURL(r *http.Request) (int, error) {
	stageStr := chi.URLParam(r, "stageNumber")
	stage, err := strconv.Atoi(stageStr)
	if err != nil || stage < 1 {
		return 0, errors.New("invalid stage number in URL path")
	}
	return stage, nil
}

// GenerateHandler обрабатывает
// POST /tournaments/{tournamentID}/stages/{stageNumber}/leaderboard —
// пересборку таблицы этапа из залоченных матчей.
func (h *StageHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	stageNumber, err := getStageNumberFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req struct {
		MatchRoomIDs []int `json:"match_room_ids"`
	}
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	leaderboard, err := h.stages.GenerateStageLeaderboard(r.Context(), tournamentID, stageNumber, req.MatchRoomIDs, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": leaderboard}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// QualifyHandler обрабатывает
// POST /tournaments/{tournamentID}/stages/{stageNumber}/qualify
func (h *StageHandler) QualifyHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	stageNumber, err := getStageNumberFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req struct {
		QualifyCount int `json:"qualify_count"`
	}
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	qualified, err := h.stages.MarkQualified(r.Context(), tournamentID, stageNumber, req.QualifyCount, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"qualified": qualified}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// LeaderboardHandler обрабатывает
// GET /tournaments/{tournamentID}/stages/{stageNumber}/leaderboard
func (h *StageHandler) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	stageNumber, err := getStageNumberFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	leaderboard, err := h.stages.StageLeaderboard(r.Context(), tournamentID, stageNumber)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": leaderboard}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
