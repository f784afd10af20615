package handlers

import (
	"net/http"

	"github.com/usercreator005/ff-india-tournaments-sub000/services"
)

type ResultHandler struct {
	results *services.ResultService
}

func NewResultHandler(results *services.ResultService) *ResultHandler {
	return &ResultHandler{results: results}
}

// UpsertHandler обрабатывает PUT /match-rooms/{matchRoomID}/results —
// ввод или исправление результата команды, пока матч не залочен.
func (h *ResultHandler) UpsertHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	matchRoomID, err := getIDFromURL(r, "matchRoomID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpsertResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.MatchRoomID = matchRoomID

	result, err := h.results.UpsertResult(r.Context(), input, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// LockHandler обрабатывает POST /match-rooms/{matchRoomID}/lock
func (h *ResultHandler) LockHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	matchRoomID, err := getIDFromURL(r, "matchRoomID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	locked, err := h.results.LockMatch(r.Context(), matchRoomID, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"locked_results": locked}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler обрабатывает DELETE /results/{resultID}
func (h *ResultHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	resultID, err := getIDFromURL(r, "resultID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.results.DeleteResult(r.Context(), resultID, actor); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// LeaderboardHandler обрабатывает GET /match-rooms/{matchRoomID}/leaderboard
func (h *ResultHandler) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	matchRoomID, err := getIDFromURL(r, "matchRoomID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	leaderboard, err := h.results.MatchLeaderboard(r.Context(), matchRoomID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": leaderboard}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
