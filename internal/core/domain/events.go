package domain

import "time"

// UpdateType identifies the ledger mutation behind an InventoryUpdate.
type UpdateType string

const (
	UpdateHoldCreated       UpdateType = "hold_created"
	UpdateHoldExpired       UpdateType = "hold_expired"
	UpdatePurchaseCompleted UpdateType = "purchase_completed"
	UpdateInventoryChanged  UpdateType = "inventory_changed"
)

// InventoryUpdate is fanned out to subscribers after each ledger mutation.
// Inventory is a snapshot taken at publish time; the ledger remains the
// source of truth and subscribers may re-query it at any point.
type InventoryUpdate struct {
	Type         UpdateType
	TicketTypeID string
	EventID      string
	Inventory    InventoryRecord
	Timestamp    time.Time
}
