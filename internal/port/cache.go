package port

import "context"

// AvailabilityCache is a best-effort projection of current availability for
// fast UI reads. Writers must tolerate failures; the in-process ledger stays
// authoritative.
type AvailabilityCache interface {
	// SetAvailability stores the current available-for-hold count.
	SetAvailability(ctx context.Context, ticketTypeID string, available int) error

	// GetAvailability returns the cached count; found is false when the
	// ticket type has no projection yet.
	GetAvailability(ctx context.Context, ticketTypeID string) (available int, found bool, err error)
}
