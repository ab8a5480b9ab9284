package service

import (
	"context"
	"sort"

	"github.com/iradwatkins/steppers-inventory/internal/core/domain"
)

// EventSummary aggregates the cached ledger entries of one event.
type EventSummary struct {
	EventID        string
	TicketTypes    int
	TotalCapacity  int
	TotalSold      int
	TotalHeld      int
	TotalAvailable int
}

// EventSummary sums capacity, sold, held and available counts across every
// cached ticket type of an event. Only hydrated ticket types contribute;
// hydrate via GetInventory or BulkStatus first if completeness matters.
func (s *InventoryService) EventSummary(eventID string) EventSummary {
	summary := EventSummary{EventID: eventID}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.EventID != eventID {
			continue
		}
		summary.TicketTypes++
		summary.TotalCapacity += rec.TotalQuantity
		summary.TotalSold += rec.SoldQuantity
		summary.TotalHeld += rec.HeldQuantity
		summary.TotalAvailable += rec.AvailableForHold()
	}
	return summary
}

type TicketTypeStatus struct {
	TicketTypeID      string
	AvailableQuantity int
	Status            domain.InventoryStatus
	Found             bool
}

// BulkStatus resolves current availability and status for a list of ticket
// types, hydrating uncached ones on the way through. Unknown ticket types
// come back with Found false rather than failing the whole batch.
func (s *InventoryService) BulkStatus(ctx context.Context, ticketTypeIDs []string) []TicketTypeStatus {
	out := make([]TicketTypeStatus, 0, len(ticketTypeIDs))
	for _, id := range ticketTypeIDs {
		rec, err := s.GetInventory(ctx, id)
		if err != nil {
			out = append(out, TicketTypeStatus{TicketTypeID: id})
			continue
		}
		out = append(out, TicketTypeStatus{
			TicketTypeID:      id,
			AvailableQuantity: rec.AvailableForHold(),
			Status:            rec.Status(s.thresholds),
			Found:             true,
		})
	}
	return out
}

// IsLowInventory reports whether remaining stock is positive but at or below
// the configured low-inventory threshold.
func (s *InventoryService) IsLowInventory(ctx context.Context, ticketTypeID string) (bool, error) {
	rec, err := s.GetInventory(ctx, ticketTypeID)
	if err != nil {
		return false, err
	}
	available := rec.AvailableForHold()
	return available > 0 && available <= s.lowThreshold, nil
}

// ActiveHoldsForSession returns snapshots of a session's active holds,
// ordered by creation time.
func (s *InventoryService) ActiveHoldsForSession(sessionID string) []domain.Hold {
	s.mu.Lock()
	var holds []domain.Hold
	for _, h := range s.holds {
		if h.SessionID == sessionID {
			holds = append(holds, *h)
		}
	}
	s.mu.Unlock()

	sort.Slice(holds, func(i, j int) bool {
		return holds[i].CreatedAt.Before(holds[j].CreatedAt)
	})
	return holds
}
