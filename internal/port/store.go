package port

import (
	"context"
)

// TicketTypeRow is the durable baseline for one ticket type. Held quantities
// never reach the store; they are process state reconstructed from the hold
// manager.
type TicketTypeRow struct {
	ID            string
	EventID       string
	TotalQuantity int
	SoldQuantity  int
}

type InventoryStore interface {
	// GetTicketType returns the baseline row, or nil when the ticket type
	// is unknown.
	GetTicketType(ctx context.Context, ticketTypeID string) (*TicketTypeRow, error)

	// RecordSale moves quantity units to sold, guarded by a conditional
	// update so the store itself never oversells. Returns
	// domain.ErrConflict when the guard fails.
	RecordSale(ctx context.Context, ticketTypeID string, quantity int) error

	// AdjustCapacity applies an administrative capacity delta.
	AdjustCapacity(ctx context.Context, ticketTypeID string, delta int) error
}
