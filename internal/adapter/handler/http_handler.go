package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/iradwatkins/steppers-inventory/internal/core/domain"
	"github.com/iradwatkins/steppers-inventory/internal/core/service"
)

type HTTPHandler struct {
	inventory *service.InventoryService
}

func NewHTTPHandler(inventory *service.InventoryService) *HTTPHandler {
	return &HTTPHandler{inventory: inventory}
}

type availabilityRequest struct {
	TicketTypeID string `json:"ticket_type_id"`
	Quantity     int    `json:"quantity"`
	CreateHold   bool   `json:"create_hold"`
	Channel      string `json:"channel"`
	SessionID    string `json:"session_id"`
	UserID       string `json:"user_id"`
}

type holdPayload struct {
	ID           string    `json:"id"`
	TicketTypeID string    `json:"ticket_type_id"`
	EventID      string    `json:"event_id"`
	Quantity     int       `json:"quantity"`
	SessionID    string    `json:"session_id"`
	Channel      string    `json:"channel"`
	Status       string    `json:"status"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type availabilityResponse struct {
	Available         bool         `json:"available"`
	AvailableQuantity int          `json:"available_quantity"`
	Status            string       `json:"status"`
	Hold              *holdPayload `json:"hold,omitempty"`
}

func (h *HTTPHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TicketTypeID == "" || req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	res, err := h.inventory.CheckAvailability(r.Context(), service.CheckAvailabilityInput{
		TicketTypeID: req.TicketTypeID,
		Quantity:     req.Quantity,
		CreateHold:   req.CreateHold,
		Channel:      domain.Channel(req.Channel),
		SessionID:    req.SessionID,
		UserID:       req.UserID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := availabilityResponse{
		Available:         res.Available,
		AvailableQuantity: res.AvailableQuantity,
		Status:            string(res.Status),
	}
	if res.Hold != nil {
		resp.Hold = toHoldPayload(*res.Hold)
	}
	writeJSON(w, http.StatusOK, resp)
}

type createHoldRequest struct {
	TicketTypeID string `json:"ticket_type_id"`
	Quantity     int    `json:"quantity"`
	Channel      string `json:"channel"`
	SessionID    string `json:"session_id"`
	UserID       string `json:"user_id"`
}

func (h *HTTPHandler) CreateHold(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createHoldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TicketTypeID == "" || req.SessionID == "" || req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	hold, err := h.inventory.CreateHold(r.Context(), service.CreateHoldInput{
		TicketTypeID: req.TicketTypeID,
		Quantity:     req.Quantity,
		Channel:      domain.Channel(req.Channel),
		SessionID:    req.SessionID,
		UserID:       req.UserID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toHoldPayload(hold))
}

type completePurchaseRequest struct {
	HoldID  string `json:"hold_id"`
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
}

type completePurchaseResponse struct {
	RemainingInventory int          `json:"remaining_inventory"`
	Hold               *holdPayload `json:"hold,omitempty"`
}

func (h *HTTPHandler) CompletePurchase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req completePurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.HoldID == "" || req.OrderID == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	res, err := h.inventory.CompletePurchase(r.Context(), req.HoldID, req.OrderID, req.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, completePurchaseResponse{
		RemainingInventory: res.RemainingInventory,
		Hold:               toHoldPayload(res.Hold),
	})
}

type confirmHoldRequest struct {
	SessionID    string `json:"session_id"`
	TicketTypeID string `json:"ticket_type_id"`
	OrderID      string `json:"order_id"`
}

func (h *HTTPHandler) ConfirmHold(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req confirmHoldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" || req.TicketTypeID == "" || req.OrderID == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	res, err := h.inventory.ConfirmHold(r.Context(), req.SessionID, req.TicketTypeID, req.OrderID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, completePurchaseResponse{
		RemainingInventory: res.RemainingInventory,
		Hold:               toHoldPayload(res.Hold),
	})
}

type releaseRequest struct {
	HoldID    string `json:"hold_id"`
	SessionID string `json:"session_id"`
}

type releaseResponse struct {
	Released int `json:"released"`
}

// Release frees a single hold or a whole checkout session. Releasing a hold
// that no longer exists is not an error; the response just reports zero.
func (h *HTTPHandler) Release(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req releaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	released := 0
	switch {
	case req.HoldID != "":
		if h.inventory.ReleaseHold(req.HoldID) {
			released = 1
		}
	case req.SessionID != "":
		released = h.inventory.ReleaseSession(req.SessionID)
	default:
		writeError(w, http.StatusBadRequest, "hold_id or session_id required")
		return
	}

	writeJSON(w, http.StatusOK, releaseResponse{Released: released})
}

type inventoryResponse struct {
	TicketTypeID      string `json:"ticket_type_id"`
	EventID           string `json:"event_id"`
	TotalQuantity     int    `json:"total_quantity"`
	SoldQuantity      int    `json:"sold_quantity"`
	HeldQuantity      int    `json:"held_quantity"`
	AvailableQuantity int    `json:"available_quantity"`
	Version           int64  `json:"version"`
}

func (h *HTTPHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ticketTypeID := r.URL.Query().Get("ticket_type_id")
	if ticketTypeID == "" {
		writeError(w, http.StatusBadRequest, "ticket_type_id required")
		return
	}

	rec, err := h.inventory.GetInventory(r.Context(), ticketTypeID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, inventoryResponse{
		TicketTypeID:      rec.TicketTypeID,
		EventID:           rec.EventID,
		TotalQuantity:     rec.TotalQuantity,
		SoldQuantity:      rec.SoldQuantity,
		HeldQuantity:      rec.HeldQuantity,
		AvailableQuantity: rec.AvailableForHold(),
		Version:           rec.Version,
	})
}

func (h *HTTPHandler) EventSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	eventID := r.URL.Query().Get("event_id")
	if eventID == "" {
		writeError(w, http.StatusBadRequest, "event_id required")
		return
	}

	writeJSON(w, http.StatusOK, h.inventory.EventSummary(eventID))
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RequestLogger logs one line per request.
func RequestLogger(next http.Handler, log zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

type errorResponse struct {
	Error             string `json:"error"`
	AvailableQuantity *int   `json:"available_quantity,omitempty"`
}

func writeServiceError(w http.ResponseWriter, err error) {
	var insufficient *domain.InsufficientInventoryError
	switch {
	case errors.As(err, &insufficient):
		// Surface the true remaining quantity so checkout can offer it.
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:             "insufficient inventory",
			AvailableQuantity: &insufficient.Available,
		})
	case errors.Is(err, domain.ErrTicketTypeNotFound), errors.Is(err, domain.ErrHoldNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrSessionRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func toHoldPayload(h domain.Hold) *holdPayload {
	if h.ID == "" {
		return nil
	}
	return &holdPayload{
		ID:           h.ID,
		TicketTypeID: h.TicketTypeID,
		EventID:      h.EventID,
		Quantity:     h.Quantity,
		SessionID:    h.SessionID,
		Channel:      string(h.Channel),
		Status:       string(h.Status),
		ExpiresAt:    h.ExpiresAt,
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
