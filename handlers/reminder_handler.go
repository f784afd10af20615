package handlers

import (
	"net/http"
	"time"

	"github.com/usercreator005/ff-india-tournaments-sub000/services"
)

type ReminderHandler struct {
	reminders *services.ReminderService
}

func NewReminderHandler(reminders *services.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminders: reminders}
}

// ScheduleHandler обрабатывает POST /reminders
func (h *ReminderHandler) ScheduleHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	tenantID, err := resolveTenantID(actor, r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req struct {
		TournamentID *int      `json:"tournament_id"`
		MatchRoomID  *int      `json:"match_room_id"`
		Recipient    string    `json:"recipient"`
		Subject      string    `json:"subject"`
		Message      string    `json:"message"`
		RemindAt     time.Time `json:"remind_at"`
	}
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	reminder, err := h.reminders.Schedule(r.Context(), actor, tenantID, services.ScheduleReminderInput{
		TournamentID: req.TournamentID,
		MatchRoomID:  req.MatchRoomID,
		Recipient:    req.Recipient,
		Subject:      req.Subject,
		Message:      req.Message,
		RemindAt:     req.RemindAt,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"reminder": reminder}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler обрабатывает GET /reminders
func (h *ReminderHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	tenantID, err := resolveTenantID(actor, r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	reminders, err := h.reminders.ListByTenant(r.Context(), actor, tenantID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"reminders": reminders}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
