package domain

import "time"

type HoldStatus string

const (
	HoldStatusActive    HoldStatus = "active"
	HoldStatusCompleted HoldStatus = "completed"
	HoldStatusExpired   HoldStatus = "expired"
	HoldStatusReleased  HoldStatus = "released"
)

// Terminal reports whether the status is final. A hold never leaves a
// terminal state.
func (s HoldStatus) Terminal() bool {
	return s == HoldStatusCompleted || s == HoldStatusExpired || s == HoldStatusReleased
}

// Channel is the purchase channel a hold was created through. It determines
// how long the hold lives: in-person cash sales get an hours-based window,
// everything else a minutes-based one.
type Channel string

const (
	ChannelOnline    Channel = "online"
	ChannelCash      Channel = "cash"
	ChannelBoxOffice Channel = "box_office"
)

// Hold reserves inventory for a limited time while a checkout is in flight.
type Hold struct {
	ID           string
	TicketTypeID string
	EventID      string
	Quantity     int
	SessionID    string // groups holds created within one checkout attempt
	UserID       string
	OrderID      string // set on completion
	Channel      Channel
	Status       HoldStatus
	CreatedAt    time.Time
	ExpiresAt    time.Time
}
