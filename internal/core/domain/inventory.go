package domain

import "time"

// InventoryStatus classifies remaining stock for display purposes.
type InventoryStatus string

const (
	StatusAvailable    InventoryStatus = "available"
	StatusLowStock     InventoryStatus = "low_stock"
	StatusVeryLowStock InventoryStatus = "very_low_stock"
	StatusSoldOut      InventoryStatus = "sold_out"
)

// InventoryRecord is the in-memory ledger entry for one ticket type.
// AvailableQuantity excludes sold units but not held ones; subtract
// HeldQuantity to get what a new hold may claim.
type InventoryRecord struct {
	TicketTypeID      string
	EventID           string
	TotalQuantity     int
	SoldQuantity      int
	HeldQuantity      int
	AvailableQuantity int
	LastUpdated       time.Time
	Version           int64 // bumped on every mutation, staleness marker
}

// AvailableForHold returns the quantity a new hold may still claim.
func (r InventoryRecord) AvailableForHold() int {
	return r.AvailableQuantity - r.HeldQuantity
}

// StatusThresholds are absolute unit counts, not percentages.
type StatusThresholds struct {
	VeryLow int
	Low     int
}

func DefaultThresholds() StatusThresholds {
	return StatusThresholds{VeryLow: 5, Low: 25}
}

// Status classifies the record against the given thresholds.
func (r InventoryRecord) Status(t StatusThresholds) InventoryStatus {
	available := r.AvailableForHold()
	switch {
	case available <= 0:
		return StatusSoldOut
	case available <= t.VeryLow:
		return StatusVeryLowStock
	case available <= t.Low:
		return StatusLowStock
	default:
		return StatusAvailable
	}
}
