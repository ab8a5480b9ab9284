package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iradwatkins/steppers-inventory/internal/core/domain"
	"github.com/iradwatkins/steppers-inventory/internal/port"
)

const projectionWriteTimeout = time.Second

// NewProjectionSubscriber returns a listener that mirrors every update's
// post-mutation available count into the cache, so stock badges read the
// projection instead of polling the engine. Writes are best-effort: a failure
// is logged and never affects the mutation that produced the update.
func NewProjectionSubscriber(cache port.AvailabilityCache, log zerolog.Logger) Listener {
	return func(u domain.InventoryUpdate) {
		ctx, cancel := context.WithTimeout(context.Background(), projectionWriteTimeout)
		defer cancel()
		if err := cache.SetAvailability(ctx, u.TicketTypeID, u.Inventory.AvailableForHold()); err != nil {
			log.Warn().Err(err).
				Str("ticket_type_id", u.TicketTypeID).
				Msg("availability projection write failed")
		}
	}
}
