package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iradwatkins/steppers-inventory/internal/core/domain"
	"github.com/iradwatkins/steppers-inventory/internal/port"
)

func TestEventSummary(t *testing.T) {
	store := newMockStore()
	store.addRow(port.TicketTypeRow{ID: "ga", EventID: "ev-1", TotalQuantity: 100, SoldQuantity: 20})
	store.addRow(port.TicketTypeRow{ID: "vip", EventID: "ev-1", TotalQuantity: 50, SoldQuantity: 10})
	store.addRow(port.TicketTypeRow{ID: "other", EventID: "ev-2", TotalQuantity: 30})
	svc := NewInventoryService(store, NewNotifier(zerolog.Nop()), newFakeClock(), zerolog.Nop())

	// Hydrate all three, hold 5 of GA.
	svc.BulkStatus(context.Background(), []string{"ga", "vip", "other"})
	if _, err := svc.CreateHold(context.Background(), CreateHoldInput{
		TicketTypeID: "ga",
		Quantity:     5,
		Channel:      domain.ChannelOnline,
		SessionID:    "sess-1",
	}); err != nil {
		t.Fatalf("create hold: %v", err)
	}

	summary := svc.EventSummary("ev-1")
	if summary.TicketTypes != 2 {
		t.Errorf("expected 2 ticket types, got %d", summary.TicketTypes)
	}
	if summary.TotalCapacity != 150 {
		t.Errorf("expected capacity 150, got %d", summary.TotalCapacity)
	}
	if summary.TotalSold != 30 {
		t.Errorf("expected sold 30, got %d", summary.TotalSold)
	}
	if summary.TotalHeld != 5 {
		t.Errorf("expected held 5, got %d", summary.TotalHeld)
	}
	if summary.TotalAvailable != 115 {
		t.Errorf("expected available 115, got %d", summary.TotalAvailable)
	}
}

func TestBulkStatus(t *testing.T) {
	store := newMockStore()
	store.addRow(port.TicketTypeRow{ID: "ga", EventID: "ev-1", TotalQuantity: 100})
	store.addRow(port.TicketTypeRow{ID: "vip", EventID: "ev-1", TotalQuantity: 10, SoldQuantity: 10})
	svc := NewInventoryService(store, NewNotifier(zerolog.Nop()), newFakeClock(), zerolog.Nop())

	statuses := svc.BulkStatus(context.Background(), []string{"ga", "vip", "missing"})
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}

	if !statuses[0].Found || statuses[0].Status != domain.StatusAvailable {
		t.Errorf("unexpected ga status: %+v", statuses[0])
	}
	if !statuses[1].Found || statuses[1].Status != domain.StatusSoldOut {
		t.Errorf("unexpected vip status: %+v", statuses[1])
	}
	if statuses[2].Found {
		t.Errorf("missing ticket type reported as found: %+v", statuses[2])
	}
}

func TestIsLowInventory(t *testing.T) {
	store := newMockStore()
	store.addRow(port.TicketTypeRow{ID: "low", EventID: "ev-1", TotalQuantity: 100, SoldQuantity: 92})
	store.addRow(port.TicketTypeRow{ID: "plenty", EventID: "ev-1", TotalQuantity: 100})
	store.addRow(port.TicketTypeRow{ID: "gone", EventID: "ev-1", TotalQuantity: 10, SoldQuantity: 10})
	svc := NewInventoryService(store, NewNotifier(zerolog.Nop()), newFakeClock(), zerolog.Nop())

	cases := []struct {
		id   string
		want bool
	}{
		{"low", true},     // 8 left, at or under the threshold of 10
		{"plenty", false}, // 100 left
		{"gone", false},   // sold out is not "low", it is gone
	}
	for _, tc := range cases {
		got, err := svc.IsLowInventory(context.Background(), tc.id)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.id, err)
		}
		if got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.id, tc.want, got)
		}
	}

	if _, err := svc.IsLowInventory(context.Background(), "missing"); err == nil {
		t.Error("expected error for unknown ticket type")
	}
}

func TestActiveHoldsForSession(t *testing.T) {
	svc, _, clk := newTestService(t)

	first, _ := svc.CreateHold(context.Background(), CreateHoldInput{
		TicketTypeID: "tt-1", Quantity: 1, Channel: domain.ChannelOnline, SessionID: "sess-1",
	})
	clk.Advance(time.Second)
	second, _ := svc.CreateHold(context.Background(), CreateHoldInput{
		TicketTypeID: "tt-1", Quantity: 2, Channel: domain.ChannelOnline, SessionID: "sess-1",
	})
	svc.CreateHold(context.Background(), CreateHoldInput{
		TicketTypeID: "tt-1", Quantity: 1, Channel: domain.ChannelOnline, SessionID: "sess-2",
	})

	holds := svc.ActiveHoldsForSession("sess-1")
	if len(holds) != 2 {
		t.Fatalf("expected 2 holds, got %d", len(holds))
	}
	if holds[0].ID != first.ID || holds[1].ID != second.ID {
		t.Errorf("holds out of creation order: %s, %s", holds[0].ID, holds[1].ID)
	}
}
