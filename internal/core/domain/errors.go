package domain

import (
	"errors"
	"fmt"
)

var (
	ErrTicketTypeNotFound = errors.New("ticket type not found")

	// ErrHoldNotFound covers both unknown hold IDs and holds that already
	// reached a terminal state; callers see a single condition.
	ErrHoldNotFound = errors.New("hold not found or expired")

	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrInvalidQuantity       = errors.New("invalid quantity")
	ErrSessionRequired       = errors.New("session id required")

	// ErrConflict means the durable store rejected a conditional update.
	ErrConflict = errors.New("inventory update conflict")
)

// InsufficientInventoryError carries the actual remaining count so checkout
// can offer the user a reduced quantity instead of a generic failure.
type InsufficientInventoryError struct {
	TicketTypeID string
	Requested    int
	Available    int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory for %s: requested %d, available %d",
		e.TicketTypeID, e.Requested, e.Available)
}

func (e *InsufficientInventoryError) Is(target error) bool {
	return target == ErrInsufficientInventory
}
