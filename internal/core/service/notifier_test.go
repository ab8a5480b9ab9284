package service

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/iradwatkins/steppers-inventory/internal/core/domain"
)

func TestNotifier_FanOut(t *testing.T) {
	n := NewNotifier(zerolog.Nop())

	var first, second int
	n.Subscribe(func(domain.InventoryUpdate) { first++ })
	n.Subscribe(func(domain.InventoryUpdate) { second++ })

	n.Publish(domain.InventoryUpdate{Type: domain.UpdateHoldCreated, TicketTypeID: "tt-1"})

	if first != 1 || second != 1 {
		t.Errorf("expected both listeners called once, got %d and %d", first, second)
	}
}

func TestNotifier_Unsubscribe(t *testing.T) {
	n := NewNotifier(zerolog.Nop())

	var calls int
	unsubscribe := n.Subscribe(func(domain.InventoryUpdate) { calls++ })

	n.Publish(domain.InventoryUpdate{Type: domain.UpdateHoldCreated})
	unsubscribe()
	n.Publish(domain.InventoryUpdate{Type: domain.UpdateHoldExpired})

	if calls != 1 {
		t.Errorf("expected 1 call after unsubscribe, got %d", calls)
	}
}

func TestNotifier_PanickingListenerIsIsolated(t *testing.T) {
	n := NewNotifier(zerolog.Nop())

	var delivered int
	n.Subscribe(func(domain.InventoryUpdate) { panic("listener bug") })
	n.Subscribe(func(domain.InventoryUpdate) { delivered++ })

	n.Publish(domain.InventoryUpdate{Type: domain.UpdateInventoryChanged})

	if delivered != 1 {
		t.Errorf("expected healthy listener to receive the update, got %d calls", delivered)
	}
}

func TestNotifier_NoReplayForLateSubscriber(t *testing.T) {
	n := NewNotifier(zerolog.Nop())

	n.Publish(domain.InventoryUpdate{Type: domain.UpdateHoldCreated})

	var calls int
	n.Subscribe(func(domain.InventoryUpdate) { calls++ })

	if calls != 0 {
		t.Errorf("late subscriber must not see past events, got %d calls", calls)
	}
}
