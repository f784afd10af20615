package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/usercreator005/ff-india-tournaments-sub000/models"
	"github.com/usercreator005/ff-india-tournaments-sub000/services"
)

type TournamentHandler struct {
	tournaments *services.TournamentService
}

func NewTournamentHandler(tournaments *services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournaments: tournaments}
}

// resolveTenantID определяет тенант операции: супер-админ передаёт
// tenant_id явно, остальные работают в своём.
func resolveTenantID(actor models.Actor, r *http.Request) (int, error) {
	if actor.Role == models.RoleSuperAdmin {
		tenantStr := r.URL.Query().Get("tenant_id")
		if tenantStr == "" {
			return 0, errors.New("tenant_id query parameter is required for super admin")
		}
		tenantID, err := strconv.Atoi(tenantStr)
		if err != nil || tenantID <= 0 {
			return 0, errors.New("invalid tenant_id query parameter")
		}
		return tenantID, nil
	}
	if actor.TenantID == nil {
		return 0, errors.New("actor has no tenant")
	}
	return *actor.TenantID, nil
}

type createTournamentRequest struct {
	Name        string          `json:"name"`
	Game        string          `json:"game"`
	Description *string         `json:"description"`
	Slots       int             `json:"slots"`
	PrizePool   decimal.Decimal `json:"prize_pool"`
	EntryFee    decimal.Decimal `json:"entry_fee"`
	EntryTerms  *string         `json:"entry_terms"`
	StartAt     time.Time       `json:"start_at"`
}

// CreateHandler обрабатывает POST /tournaments
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	tenantID, err := resolveTenantID(actor, r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req createTournamentRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournaments.Create(r.Context(), actor, tenantID, services.CreateTournamentInput{
		Name:        req.Name,
		Game:        req.Game,
		Description: req.Description,
		Slots:       req.Slots,
		PrizePool:   req.PrizePool,
		EntryFee:    req.EntryFee,
		EntryTerms:  req.EntryTerms,
		StartAt:     req.StartAt,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler обрабатывает GET /tournaments/{tournamentID}
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournaments.GetByID(r.Context(), actor, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler обрабатывает GET /tournaments
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	var status *models.TournamentStatus
	if statusStr := query.Get("status"); statusStr != "" {
		s := models.TournamentStatus(statusStr)
		switch s {
		case models.StatusUpcoming, models.StatusOngoing, models.StatusPast:
			status = &s
		default:
			badRequestResponse(w, r, errors.New("invalid status query parameter"))
			return
		}
	}

	limit := 20
	if limitStr := query.Get("limit"); limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil && v > 0 {
			limit = v
		} else {
			badRequestResponse(w, r, errors.New("invalid limit query parameter"))
			return
		}
	}
	offset := 0
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if v, err := strconv.Atoi(offsetStr); err == nil && v >= 0 {
			offset = v
		} else {
			badRequestResponse(w, r, errors.New("invalid offset query parameter"))
			return
		}
	}

	tournaments, err := h.tournaments.List(r.Context(), actor, status, limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateHandler обрабатывает PATCH /tournaments/{tournamentID}
func (h *TournamentHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req struct {
		Name        *string          `json:"name"`
		Game        *string          `json:"game"`
		Description *string          `json:"description"`
		PrizePool   *decimal.Decimal `json:"prize_pool"`
		EntryFee    *decimal.Decimal `json:"entry_fee"`
		EntryTerms  *string          `json:"entry_terms"`
		StartAt     *time.Time       `json:"start_at"`
	}
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournaments.Update(r.Context(), actor, id, services.UpdateTournamentInput{
		Name:        req.Name,
		Game:        req.Game,
		Description: req.Description,
		PrizePool:   req.PrizePool,
		EntryFee:    req.EntryFee,
		EntryTerms:  req.EntryTerms,
		StartAt:     req.StartAt,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ChangeStatusHandler обрабатывает PUT /tournaments/{tournamentID}/status
func (h *TournamentHandler) ChangeStatusHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req struct {
		Status models.TournamentStatus `json:"status"`
	}
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournaments.ChangeStatus(r.Context(), actor, id, req.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler обрабатывает DELETE /tournaments/{tournamentID}
func (h *TournamentHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournaments.Delete(r.Context(), actor, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetScoringHandler обрабатывает PUT /tournaments/{tournamentID}/scoring
func (h *TournamentHandler) SetScoringHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req struct {
		KillPoints      int         `json:"kill_points"`
		PlacementPoints map[int]int `json:"placement_points"`
	}
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	scoring, err := h.tournaments.SetScoring(r.Context(), actor, id, req.KillPoints, req.PlacementPoints)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"scoring": scoring}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetScoringHandler обрабатывает GET /tournaments/{tournamentID}/scoring
func (h *TournamentHandler) GetScoringHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	scoring, err := h.tournaments.GetScoring(r.Context(), actor, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"scoring": scoring}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
