package service

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/iradwatkins/steppers-inventory/internal/core/domain"
)

// Listener receives inventory updates. Delivery is synchronous and
// best-effort: there is no buffering or replay, so a listener that
// subscribes after an event missed it and should re-query the ledger.
type Listener func(domain.InventoryUpdate)

// Notifier fans ledger updates out to subscribers.
type Notifier struct {
	log zerolog.Logger

	mu        sync.Mutex
	listeners map[int]Listener
	nextID    int
}

func NewNotifier(log zerolog.Logger) *Notifier {
	return &Notifier{
		log:       log,
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers a listener and returns its unsubscribe function.
func (n *Notifier) Subscribe(l Listener) func() {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.listeners[id] = l
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.listeners, id)
		n.mu.Unlock()
	}
}

// Publish delivers the update to every current subscriber. A panicking
// listener is logged and skipped; it never blocks delivery to the others or
// the mutation that produced the update.
func (n *Notifier) Publish(update domain.InventoryUpdate) {
	n.mu.Lock()
	listeners := make([]Listener, 0, len(n.listeners))
	for _, l := range n.listeners {
		listeners = append(listeners, l)
	}
	n.mu.Unlock()

	for _, l := range listeners {
		n.deliver(l, update)
	}
}

func (n *Notifier) deliver(l Listener, update domain.InventoryUpdate) {
	defer func() {
		if r := recover(); r != nil {
			n.log.Error().
				Interface("panic", r).
				Str("type", string(update.Type)).
				Str("ticket_type_id", update.TicketTypeID).
				Msg("inventory listener panicked")
		}
	}()
	l(update)
}
