package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/usercreator005/ff-india-tournaments-sub000/services"
)

type MatchRoomHandler struct {
	rooms *services.MatchRoomService
}

func NewMatchRoomHandler(rooms *services.MatchRoomService) *MatchRoomHandler {
	return &MatchRoomHandler{rooms: rooms}
}

// CreateHandler обрабатывает POST /tournaments/{tournamentID}/match-rooms
func (h *MatchRoomHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req struct {
		StageNumber  int        `json:"stage_number"`
		MatchNumber  int        `json:"match_number"`
		MapName      *string    `json:"map_name"`
		ScheduledAt  *time.Time `json:"scheduled_at"`
		RoomCode     string     `json:"room_code"`
		RoomPassword string     `json:"room_password"`
	}
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	room, err := h.rooms.CreateRoom(r.Context(), actor, services.CreateMatchRoomInput{
		TournamentID: tournamentID,
		StageNumber:  req.StageNumber,
		MatchNumber:  req.MatchNumber,
		MapName:      req.MapName,
		ScheduledAt:  req.ScheduledAt,
		RoomCode:     req.RoomCode,
		RoomPassword: req.RoomPassword,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match_room": room}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PublishHandler обрабатывает POST /match-rooms/{matchRoomID}/publish
func (h *MatchRoomHandler) PublishHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	matchRoomID, err := getIDFromURL(r, "matchRoomID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	room, err := h.rooms.PublishRoom(r.Context(), actor, matchRoomID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match_room": room}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetHandler обрабатывает GET /match-rooms/{matchRoomID}
func (h *MatchRoomHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	matchRoomID, err := getIDFromURL(r, "matchRoomID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	room, err := h.rooms.GetRoom(r.Context(), actor, matchRoomID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match_room": room}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler обрабатывает GET /tournaments/{tournamentID}/match-rooms
func (h *MatchRoomHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var stageNumber *int
	if stageStr := r.URL.Query().Get("stage"); stageStr != "" {
		if v, convErr := strconv.Atoi(stageStr); convErr == nil && v > 0 {
			stageNumber = &v
		} else {
			badRequestResponse(w, r, errors.New("invalid stage query parameter"))
			return
		}
	}

	rooms, err := h.rooms.ListRooms(r.Context(), actor, tournamentID, stageNumber)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match_rooms": rooms}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CredentialsHandler обрабатывает GET /match-rooms/{matchRoomID}/credentials
func (h *MatchRoomHandler) CredentialsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	matchRoomID, err := getIDFromURL(r, "matchRoomID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	creds, err := h.rooms.RoomCredentials(r.Context(), actor, matchRoomID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"credentials": creds}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler обрабатывает DELETE /match-rooms/{matchRoomID}
func (h *MatchRoomHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	matchRoomID, err := getIDFromURL(r, "matchRoomID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.rooms.DeleteRoom(r.Context(), actor, matchRoomID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
