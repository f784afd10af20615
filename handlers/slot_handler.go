package handlers

import (
	"net/http"

	"github.com/usercreator005/ff-india-tournaments-sub000/models"
	"github.com/usercreator005/ff-india-tournaments-sub000/services"
)

type SlotHandler struct {
	slots *services.SlotService
}

func NewSlotHandler(slots *services.SlotService) *SlotHandler {
	return &SlotHandler{slots: slots}
}

// JoinHandler обрабатывает POST /tournaments/{tournamentID}/slots/join —
// самостоятельное занятие слота капитаном.
func (h *SlotHandler) JoinHandler(w http.ResponseWriter, r *http.Request) {
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
		TeamID int `json:"team_id"`
	}
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entry, err := h.slots.JoinSlot(r.Context(), tournamentID, req.TeamID, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"lobby_entry": entry}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AssignHandler обрабатывает POST /tournaments/{tournamentID}/slots/assign —
// ручное назначение команды на конкретный слот менеджером.
func (h *SlotHandler) AssignHandler(w http.ResponseWriter, r *http.Request) {
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
		TeamID     int `json:"team_id"`
		SlotNumber int `json:"slot_number"`
	}
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entry, err := h.slots.AssignSlot(r.Context(), tournamentID, req.TeamID, req.SlotNumber, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"lobby_entry": entry}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RemoveHandler обрабатывает DELETE /lobby/{lobbyID}
func (h *SlotHandler) RemoveHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	lobbyID, err := getIDFromURL(r, "lobbyID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.slots.RemoveSlot(r.Context(), lobbyID, actor); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListLobbyHandler обрабатывает GET /tournaments/{tournamentID}/lobby
func (h *SlotHandler) ListLobbyHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entries, err := h.slots.ListLobby(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"lobby": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateStatusHandler обрабатывает PUT /lobby/{lobbyID}/status
func (h *SlotHandler) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	lobbyID, err := getIDFromURL(r, "lobbyID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req struct {
		Status models.LobbyStatus `json:"status"`
	}
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.slots.UpdateSlotStatus(r.Context(), lobbyID, req.Status, actor); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
