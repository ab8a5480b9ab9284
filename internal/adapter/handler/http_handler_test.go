package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/iradwatkins/steppers-inventory/internal/clock"
	"github.com/iradwatkins/steppers-inventory/internal/core/service"
	"github.com/iradwatkins/steppers-inventory/internal/port"
)

type stubStore struct {
	rows map[string]port.TicketTypeRow
}

func (s *stubStore) GetTicketType(ctx context.Context, ticketTypeID string) (*port.TicketTypeRow, error) {
	row, ok := s.rows[ticketTypeID]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (s *stubStore) RecordSale(ctx context.Context, ticketTypeID string, quantity int) error {
	row := s.rows[ticketTypeID]
	row.SoldQuantity += quantity
	s.rows[ticketTypeID] = row
	return nil
}

func (s *stubStore) AdjustCapacity(ctx context.Context, ticketTypeID string, delta int) error {
	row := s.rows[ticketTypeID]
	row.TotalQuantity += delta
	s.rows[ticketTypeID] = row
	return nil
}

func newTestHandler() *HTTPHandler {
	store := &stubStore{rows: map[string]port.TicketTypeRow{
		"tt-1": {ID: "tt-1", EventID: "ev-1", TotalQuantity: 100},
	}}
	svc := service.NewInventoryService(store, service.NewNotifier(zerolog.Nop()), clock.NewSystem(), zerolog.Nop())
	return NewHTTPHandler(svc)
}

func postJSON(t *testing.T, handlerFunc http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	w := httptest.NewRecorder()
	handlerFunc(w, req)
	return w
}

func TestCreateHoldHandler(t *testing.T) {
	h := newTestHandler()

	w := postJSON(t, h.CreateHold, map[string]interface{}{
		"ticket_type_id": "tt-1",
		"quantity":       2,
		"channel":        "online",
		"session_id":     "sess-1",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		ID       string `json:"id"`
		Quantity int    `json:"quantity"`
		Status   string `json:"status"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID == "" || resp.Quantity != 2 || resp.Status != "active" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestCreateHoldHandler_InsufficientInventory(t *testing.T) {
	h := newTestHandler()

	w := postJSON(t, h.CreateHold, map[string]interface{}{
		"ticket_type_id": "tt-1",
		"quantity":       500,
		"channel":        "online",
		"session_id":     "sess-1",
	})

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}

	var resp struct {
		Error             string `json:"error"`
		AvailableQuantity *int   `json:"available_quantity"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.AvailableQuantity == nil || *resp.AvailableQuantity != 100 {
		t.Errorf("expected available_quantity 100 in error body, got %+v", resp.AvailableQuantity)
	}
}

func TestCreateHoldHandler_UnknownTicketType(t *testing.T) {
	h := newTestHandler()

	w := postJSON(t, h.CreateHold, map[string]interface{}{
		"ticket_type_id": "nope",
		"quantity":       1,
		"channel":        "online",
		"session_id":     "sess-1",
	})

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCompletePurchaseHandler(t *testing.T) {
	h := newTestHandler()

	w := postJSON(t, h.CreateHold, map[string]interface{}{
		"ticket_type_id": "tt-1",
		"quantity":       3,
		"channel":        "online",
		"session_id":     "sess-1",
	})
	var hold struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &hold); err != nil {
		t.Fatalf("decode hold: %v", err)
	}

	w = postJSON(t, h.CompletePurchase, map[string]string{
		"hold_id":  hold.ID,
		"order_id": "order-1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		RemainingInventory int `json:"remaining_inventory"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RemainingInventory != 97 {
		t.Errorf("expected remaining 97, got %d", resp.RemainingInventory)
	}

	// Completing again is a 404: the hold is terminal.
	w = postJSON(t, h.CompletePurchase, map[string]string{
		"hold_id":  hold.ID,
		"order_id": "order-2",
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on repeat completion, got %d", w.Code)
	}
}

func TestReleaseHandler_Session(t *testing.T) {
	h := newTestHandler()

	for i := 0; i < 2; i++ {
		postJSON(t, h.CreateHold, map[string]interface{}{
			"ticket_type_id": "tt-1",
			"quantity":       1,
			"channel":        "online",
			"session_id":     "sess-1",
		})
	}

	w := postJSON(t, h.Release, map[string]string{"session_id": "sess-1"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Released int `json:"released"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Released != 2 {
		t.Errorf("expected 2 released, got %d", resp.Released)
	}
}

func TestReleaseHandler_MissingIdentifiers(t *testing.T) {
	h := newTestHandler()

	w := postJSON(t, h.Release, map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAvailabilityHandler(t *testing.T) {
	h := newTestHandler()

	w := postJSON(t, h.CheckAvailability, map[string]interface{}{
		"ticket_type_id": "tt-1",
		"quantity":       10,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Available         bool   `json:"available"`
		AvailableQuantity int    `json:"available_quantity"`
		Status            string `json:"status"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Available || resp.AvailableQuantity != 100 || resp.Status != "available" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestGetInventoryHandler(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/inventory?ticket_type_id=tt-1", nil)
	w := httptest.NewRecorder()
	h.GetInventory(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		TicketTypeID      string `json:"ticket_type_id"`
		AvailableQuantity int    `json:"available_quantity"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TicketTypeID != "tt-1" || resp.AvailableQuantity != 100 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/holds", nil)
	w := httptest.NewRecorder()
	h.CreateHold(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}
