package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"pitboss/models"
	"pitboss/service"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

// Handler holds the dependencies for the HTTP handlers
type Handler struct {
	loyaltyService service.LoyaltyService
	ledgerLimit    int
}

// NewHandler creates a new handler
func NewHandler(loyaltyService service.LoyaltyService, ledgerLimit int) *Handler {
	return &Handler{
		loyaltyService: loyaltyService,
		ledgerLimit:    ledgerLimit,
	}
}

// ComputePoints runs the pure points calculation. No side effects.
func (h *Handler) ComputePoints(w http.ResponseWriter, r *http.Request) {
	var req ComputePointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "INVALID_INPUT", "malformed request body")
		return
	}

	points, err := h.loyaltyService.ComputePoints(service.CalculationInput{
		AverageBet:  req.AverageBet,
		TotalRounds: req.TotalRounds,
		Config:      req.GameConfiguration,
		PlayerTier:  models.Tier(req.PlayerTier),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ComputePointsResponse{Points: points})
}

// InitializeLoyalty creates a fresh loyalty account for a player
func (h *Handler) InitializeLoyalty(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")

	account, err := h.loyaltyService.InitializeAccount(r.Context(), playerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAccountDTO(account))
}

// GetLoyalty returns the current account snapshot
func (h *Handler) GetLoyalty(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")

	account, err := h.loyaltyService.GetAccount(r.Context(), playerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountDTO(account))
}

// Accrue appends a ledger entry and applies its balance change exactly once.
// Safe to retry: a duplicate submission returns the original entry with
// is_existing=true.
func (h *Handler) Accrue(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")

	var req AccrueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "INVALID_INPUT", "malformed request body")
		return
	}

	result, err := h.loyaltyService.Accrue(r.Context(), service.AccrueParams{
		PlayerID:        playerID,
		Points:          req.Points,
		TransactionType: models.TransactionType(req.TransactionType),
		Reason:          req.Reason,
		SessionID:       req.SessionID,
		RatingSlipID:    req.RatingSlipID,
		Source:          req.Source,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccrueResponse(result))
}

// GetLedger returns the most recent ledger entries for a player
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")

	entries, err := h.loyaltyService.GetLedger(r.Context(), playerID, h.ledgerLimit)
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := make([]LedgerEntryDTO, 0, len(entries))
	for _, entry := range entries {
		dtos = append(dtos, toLedgerEntryDTO(entry))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Healthz reports liveness
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// writeError maps subsystem errors onto HTTP statuses. Driver errors never
// reach here untagged; anything unrecognized is a 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeJSONError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case errors.Is(err, service.ErrLoyaltyNotFound):
		writeJSONError(w, http.StatusNotFound, "LOYALTY_NOT_FOUND", err.Error())
	case errors.Is(err, service.ErrLoyaltyAlreadyExists):
		writeJSONError(w, http.StatusConflict, "LOYALTY_ALREADY_EXISTS", err.Error())
	case errors.Is(err, service.ErrInsufficientBalance):
		writeJSONError(w, http.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE", err.Error())
	case errors.Is(err, service.ErrStorageUnavailable):
		log.WithError(err).Error("Storage unavailable")
		writeJSONError(w, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "storage unavailable, retry the request")
	default:
		log.WithError(err).Error("Unhandled error")
		writeJSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
