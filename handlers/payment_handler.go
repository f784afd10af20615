package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/usercreator005/ff-india-tournaments-sub000/models"
	"github.com/usercreator005/ff-india-tournaments-sub000/services"
)

// Предел размера скриншота чека.
const maxProofUploadBytes = 10 << 20 // 10MB

type PaymentHandler struct {
	payments *services.PaymentService
}

func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// SubmitHandler обрабатывает POST /payment-proofs (multipart/form-data:
// tenant_id, tournament_id, team_id, amount, screenshot).
func (h *PaymentHandler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := actorOrUnauthorized(w, r); !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxProofUploadBytes)
	if err := r.ParseMultipartForm(maxProofUploadBytes); err != nil {
		badRequestResponse(w, r, errors.New("failed to parse multipart form"))
		return
	}

	tenantID, err := strconv.Atoi(r.FormValue("tenant_id"))
	if err != nil || tenantID <= 0 {
		badRequestResponse(w, r, errors.New("invalid tenant_id form field"))
		return
	}
	tournamentID, err := strconv.Atoi(r.FormValue("tournament_id"))
	if err != nil || tournamentID <= 0 {
		badRequestResponse(w, r, errors.New("invalid tournament_id form field"))
		return
	}
	teamID, err := strconv.Atoi(r.FormValue("team_id"))
	if err != nil || teamID <= 0 {
		badRequestResponse(w, r, errors.New("invalid team_id form field"))
		return
	}
	amount, err := decimal.NewFromString(r.FormValue("amount"))
	if err != nil {
		badRequestResponse(w, r, errors.New("invalid amount form field"))
		return
	}

	file, header, err := r.FormFile("screenshot")
	if err != nil {
		badRequestResponse(w, r, errors.New("screenshot file is required"))
		return
	}
	defer file.Close()

	proof, err := h.payments.SubmitProof(r.Context(), services.SubmitProofInput{
		TenantID:     tenantID,
		TournamentID: tournamentID,
		TeamID:       teamID,
		Amount:       amount,
		FileName:     header.Filename,
		ContentType:  header.Header.Get("Content-Type"),
		File:         file,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"payment_proof": proof}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ApproveHandler обрабатывает POST /payment-proofs/{proofID}/approve
func (h *PaymentHandler) ApproveHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	proofID, err := getIDFromURL(r, "proofID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	proof, err := h.payments.Approve(r.Context(), actor, proofID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"payment_proof": proof}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RejectHandler обрабатывает POST /payment-proofs/{proofID}/reject
func (h *PaymentHandler) RejectHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	proofID, err := getIDFromURL(r, "proofID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	proof, err := h.payments.Reject(r.Context(), actor, proofID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"payment_proof": proof}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetHandler обрабатывает GET /payment-proofs/{proofID}
func (h *PaymentHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	proofID, err := getIDFromURL(r, "proofID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	proof, err := h.payments.GetProof(r.Context(), actor, proofID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"payment_proof": proof}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler обрабатывает GET /payment-proofs
func (h *PaymentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	tenantID, err := resolveTenantID(actor, r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var status *models.PaymentProofStatus
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		s := models.PaymentProofStatus(statusStr)
		switch s {
		case models.ProofPending, models.ProofApproved, models.ProofRejected:
			status = &s
		default:
			badRequestResponse(w, r, errors.New("invalid status query parameter"))
			return
		}
	}

	proofs, err := h.payments.ListProofs(r.Context(), actor, tenantID, status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"payment_proofs": proofs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
