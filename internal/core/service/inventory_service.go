package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/iradwatkins/steppers-inventory/internal/clock"
	"github.com/iradwatkins/steppers-inventory/internal/core/domain"
	"github.com/iradwatkins/steppers-inventory/internal/port"
)

// ChannelTTLs maps purchase channels to hold durations. Cash sales settle in
// person, so their window is measured in hours rather than minutes.
type ChannelTTLs struct {
	Online    time.Duration
	Cash      time.Duration
	BoxOffice time.Duration
}

func DefaultChannelTTLs() ChannelTTLs {
	return ChannelTTLs{
		Online:    15 * time.Minute,
		Cash:      4 * time.Hour,
		BoxOffice: 30 * time.Minute,
	}
}

// For returns the hold duration for a channel; unknown channels get the
// online window.
func (t ChannelTTLs) For(c domain.Channel) time.Duration {
	switch c {
	case domain.ChannelCash:
		return t.Cash
	case domain.ChannelBoxOffice:
		return t.BoxOffice
	default:
		return t.Online
	}
}

const defaultLowInventoryThreshold = 10

// InventoryService is the ledger and hold manager in one: it keeps the
// per-ticket-type counters, issues expiring holds against them, and
// reconciles completed purchases into the durable store.
//
// The ledger is a soft reservation layer for a single instance. Each
// operation is atomic under the service mutex, but the durable store's
// conditional update at completion time is the real authority on sold
// counts; multiple instances sharing one store must not trust the
// in-memory counters.
type InventoryService struct {
	store        port.InventoryStore
	notifier     *Notifier
	clock        clock.Clock
	log          zerolog.Logger
	ttls         ChannelTTLs
	thresholds   domain.StatusThresholds
	lowThreshold int

	mu         sync.Mutex
	records    map[string]*domain.InventoryRecord
	holds      map[string]*domain.Hold // active holds only
	completing map[string]struct{}     // holds with a store write in flight
	notFound   map[string]struct{}     // negative lookup cache
}

type Option func(*InventoryService)

// WithChannelTTLs overrides the per-channel hold durations.
func WithChannelTTLs(t ChannelTTLs) Option {
	return func(s *InventoryService) {
		s.ttls = t
	}
}

// WithThresholds overrides the stock-status classification thresholds.
func WithThresholds(t domain.StatusThresholds) Option {
	return func(s *InventoryService) {
		s.thresholds = t
	}
}

// WithLowInventoryThreshold overrides the cutoff used by IsLowInventory.
func WithLowInventoryThreshold(n int) Option {
	return func(s *InventoryService) {
		if n > 0 {
			s.lowThreshold = n
		}
	}
}

func NewInventoryService(store port.InventoryStore, notifier *Notifier, clk clock.Clock, log zerolog.Logger, opts ...Option) *InventoryService {
	svc := &InventoryService{
		store:        store,
		notifier:     notifier,
		clock:        clk,
		log:          log,
		ttls:         DefaultChannelTTLs(),
		thresholds:   domain.DefaultThresholds(),
		lowThreshold: defaultLowInventoryThreshold,
		records:      make(map[string]*domain.InventoryRecord),
		holds:        make(map[string]*domain.Hold),
		completing:   make(map[string]struct{}),
		notFound:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// GetInventory returns a snapshot of the ledger entry for a ticket type,
// hydrating it from the durable store on first reference. Failed lookups are
// negative-cached so repeated calls short-circuit without re-querying; use
// ClearNegativeCache to retry.
func (s *InventoryService) GetInventory(ctx context.Context, ticketTypeID string) (domain.InventoryRecord, error) {
	s.mu.Lock()
	if rec, ok := s.records[ticketTypeID]; ok {
		snapshot := *rec
		s.mu.Unlock()
		return snapshot, nil
	}
	if _, ok := s.notFound[ticketTypeID]; ok {
		s.mu.Unlock()
		return domain.InventoryRecord{}, domain.ErrTicketTypeNotFound
	}
	s.mu.Unlock()

	row, err := s.store.GetTicketType(ctx, ticketTypeID)
	if err != nil {
		s.mu.Lock()
		s.notFound[ticketTypeID] = struct{}{}
		s.mu.Unlock()
		return domain.InventoryRecord{}, fmt.Errorf("fetch ticket type %s: %w", ticketTypeID, err)
	}
	if row == nil {
		s.mu.Lock()
		s.notFound[ticketTypeID] = struct{}{}
		s.mu.Unlock()
		return domain.InventoryRecord{}, domain.ErrTicketTypeNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[ticketTypeID]; ok {
		// Another caller hydrated while we were at the store.
		return *rec, nil
	}
	rec := &domain.InventoryRecord{
		TicketTypeID:      row.ID,
		EventID:           row.EventID,
		TotalQuantity:     row.TotalQuantity,
		SoldQuantity:      row.SoldQuantity,
		AvailableQuantity: row.TotalQuantity - row.SoldQuantity,
		LastUpdated:       s.clock.Now(),
		Version:           1,
	}
	s.records[ticketTypeID] = rec
	return *rec, nil
}

// ClearNegativeCache removes a ticket type from the negative lookup cache so
// the next GetInventory hits the durable store again.
func (s *InventoryService) ClearNegativeCache(ticketTypeID string) {
	s.mu.Lock()
	delete(s.notFound, ticketTypeID)
	s.mu.Unlock()
}

// AdjustInventory applies an administrative capacity change. The record must
// already be cached; the store write happens before the ledger mutation so a
// failed write leaves the ledger untouched. A shrink that would drop capacity
// below the units already sold or held is rejected with ErrConflict.
func (s *InventoryService) AdjustInventory(ctx context.Context, ticketTypeID string, delta int, reason string) error {
	s.mu.Lock()
	rec, ok := s.records[ticketTypeID]
	if ok && rec.TotalQuantity+delta < rec.SoldQuantity+rec.HeldQuantity {
		s.mu.Unlock()
		return fmt.Errorf("adjust capacity for %s: %w", ticketTypeID, domain.ErrConflict)
	}
	s.mu.Unlock()
	if !ok {
		return domain.ErrTicketTypeNotFound
	}

	if err := s.store.AdjustCapacity(ctx, ticketTypeID, delta); err != nil {
		return fmt.Errorf("adjust capacity for %s: %w", ticketTypeID, err)
	}

	s.mu.Lock()
	rec, ok = s.records[ticketTypeID]
	if !ok {
		s.mu.Unlock()
		return domain.ErrTicketTypeNotFound
	}
	rec.TotalQuantity += delta
	rec.AvailableQuantity += delta
	if rec.AvailableQuantity < 0 {
		rec.AvailableQuantity = 0
	}
	s.touch(rec)
	update := s.snapshotLocked(domain.UpdateInventoryChanged, rec)
	s.mu.Unlock()

	s.log.Info().
		Str("ticket_type_id", ticketTypeID).
		Int("delta", delta).
		Str("reason", reason).
		Msg("inventory adjusted")
	s.notifier.Publish(update)
	return nil
}

type CheckAvailabilityInput struct {
	TicketTypeID string
	Quantity     int
	CreateHold   bool // reserve in the same call when available
	Channel      domain.Channel
	SessionID    string
	UserID       string
}

type CheckAvailabilityResult struct {
	Available         bool
	AvailableQuantity int
	Status            domain.InventoryStatus
	Hold              *domain.Hold // set when CreateHold was requested and succeeded
}

// CheckAvailability reports whether a quantity can currently be held and,
// when asked, creates the hold in the same call so the caller gets
// check-plus-reserve without a second round trip.
func (s *InventoryService) CheckAvailability(ctx context.Context, in CheckAvailabilityInput) (CheckAvailabilityResult, error) {
	if in.Quantity <= 0 {
		return CheckAvailabilityResult{}, domain.ErrInvalidQuantity
	}

	rec, err := s.GetInventory(ctx, in.TicketTypeID)
	if err != nil {
		return CheckAvailabilityResult{}, err
	}

	res := CheckAvailabilityResult{
		Available:         rec.AvailableForHold() >= in.Quantity,
		AvailableQuantity: rec.AvailableForHold(),
		Status:            rec.Status(s.thresholds),
	}

	if res.Available && in.CreateHold && in.SessionID != "" {
		hold, err := s.CreateHold(ctx, CreateHoldInput{
			TicketTypeID: in.TicketTypeID,
			Quantity:     in.Quantity,
			Channel:      in.Channel,
			SessionID:    in.SessionID,
			UserID:       in.UserID,
		})
		if err != nil {
			var insufficient *domain.InsufficientInventoryError
			if errors.As(err, &insufficient) {
				// Availability moved between the check and the reserve.
				res.Available = false
				res.AvailableQuantity = insufficient.Available
				return res, nil
			}
			return CheckAvailabilityResult{}, err
		}
		res.Hold = &hold
	}
	return res, nil
}

type CreateHoldInput struct {
	TicketTypeID string
	Quantity     int
	Channel      domain.Channel
	SessionID    string
	UserID       string
}

// CreateHold reserves quantity units for the duration of the channel's hold
// window. Insufficient stock is reported as an InsufficientInventoryError
// carrying the real remaining count.
func (s *InventoryService) CreateHold(ctx context.Context, in CreateHoldInput) (domain.Hold, error) {
	if in.Quantity <= 0 {
		return domain.Hold{}, domain.ErrInvalidQuantity
	}
	if in.SessionID == "" {
		return domain.Hold{}, domain.ErrSessionRequired
	}

	// Hydrate before taking the mutation lock; the store round trip must
	// not hold up unrelated ticket types.
	if _, err := s.GetInventory(ctx, in.TicketTypeID); err != nil {
		return domain.Hold{}, err
	}

	now := s.clock.Now()

	s.mu.Lock()
	rec, ok := s.records[in.TicketTypeID]
	if !ok {
		s.mu.Unlock()
		return domain.Hold{}, domain.ErrTicketTypeNotFound
	}

	// Re-validate: availability may have moved since the caller's check.
	available := rec.AvailableQuantity - rec.HeldQuantity
	if available < in.Quantity {
		s.mu.Unlock()
		return domain.Hold{}, &domain.InsufficientInventoryError{
			TicketTypeID: in.TicketTypeID,
			Requested:    in.Quantity,
			Available:    available,
		}
	}

	hold := &domain.Hold{
		ID:           uuid.NewString(),
		TicketTypeID: in.TicketTypeID,
		EventID:      rec.EventID,
		Quantity:     in.Quantity,
		SessionID:    in.SessionID,
		UserID:       in.UserID,
		Channel:      in.Channel,
		Status:       domain.HoldStatusActive,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttls.For(in.Channel)),
	}
	rec.HeldQuantity += in.Quantity
	s.touch(rec)
	s.holds[hold.ID] = hold
	update := s.snapshotLocked(domain.UpdateHoldCreated, rec)
	snapshot := *hold
	s.mu.Unlock()

	s.notifier.Publish(update)
	return snapshot, nil
}

type CompletePurchaseResult struct {
	Hold               domain.Hold
	Inventory          domain.InventoryRecord
	RemainingInventory int
}

// CompletePurchase finalizes an active hold: the durable store records the
// sale first, then the hold's quantity moves from held to sold in the
// ledger. A failed store write leaves all in-memory state unchanged.
func (s *InventoryService) CompletePurchase(ctx context.Context, holdID, orderID, userID string) (CompletePurchaseResult, error) {
	s.mu.Lock()
	hold, ok := s.holds[holdID]
	if !ok || hold.Status != domain.HoldStatusActive {
		s.mu.Unlock()
		return CompletePurchaseResult{}, domain.ErrHoldNotFound
	}
	if _, busy := s.completing[holdID]; busy {
		// A concurrent completion already claimed this hold.
		s.mu.Unlock()
		return CompletePurchaseResult{}, domain.ErrHoldNotFound
	}
	s.completing[holdID] = struct{}{}
	ticketTypeID := hold.TicketTypeID
	quantity := hold.Quantity
	s.mu.Unlock()

	// Suspension point: the sweeper may expire the hold while this write is
	// in flight. The floor below keeps the counters consistent either way.
	if err := s.store.RecordSale(ctx, ticketTypeID, quantity); err != nil {
		s.mu.Lock()
		delete(s.completing, holdID)
		s.mu.Unlock()
		s.log.Error().Err(err).
			Str("hold_id", holdID).
			Str("order_id", orderID).
			Str("ticket_type_id", ticketTypeID).
			Msg("record sale failed")
		return CompletePurchaseResult{}, fmt.Errorf("record sale for %s: %w", ticketTypeID, err)
	}

	s.mu.Lock()
	delete(s.completing, holdID)
	rec, ok := s.records[ticketTypeID]
	if !ok {
		// Cannot happen: creating the hold hydrated the record and records
		// are never evicted.
		s.mu.Unlock()
		return CompletePurchaseResult{}, domain.ErrTicketTypeNotFound
	}
	rec.SoldQuantity += quantity
	rec.AvailableQuantity -= quantity
	if rec.AvailableQuantity < 0 {
		rec.AvailableQuantity = 0
	}

	var holdSnapshot domain.Hold
	hold, ok = s.holds[holdID]
	if ok && hold.Status == domain.HoldStatusActive {
		rec.HeldQuantity -= quantity
		if rec.HeldQuantity < 0 {
			rec.HeldQuantity = 0
		}
		hold.Status = domain.HoldStatusCompleted
		hold.OrderID = orderID
		if userID != "" {
			hold.UserID = userID
		}
		holdSnapshot = *hold
		delete(s.holds, holdID)
	}
	s.touch(rec)
	update := s.snapshotLocked(domain.UpdatePurchaseCompleted, rec)
	invSnapshot := *rec
	s.mu.Unlock()

	s.notifier.Publish(update)
	return CompletePurchaseResult{
		Hold:               holdSnapshot,
		Inventory:          invSnapshot,
		RemainingInventory: invSnapshot.AvailableForHold(),
	}, nil
}

// ConfirmHold finalizes the active hold belonging to a checkout session for
// one ticket type. The cash/offline workflow uses this once payment is
// collected in person.
func (s *InventoryService) ConfirmHold(ctx context.Context, sessionID, ticketTypeID, orderID string) (CompletePurchaseResult, error) {
	s.mu.Lock()
	var holdID string
	for id, h := range s.holds {
		if h.SessionID == sessionID && h.TicketTypeID == ticketTypeID {
			holdID = id
			break
		}
	}
	s.mu.Unlock()

	if holdID == "" {
		return CompletePurchaseResult{}, domain.ErrHoldNotFound
	}
	return s.CompletePurchase(ctx, holdID, orderID, "")
}

// ExpireHold transitions an active hold to EXPIRED and returns its quantity
// to the pool. Unknown or already-terminal holds are a no-op.
func (s *InventoryService) ExpireHold(holdID string) bool {
	return s.endHold(holdID, domain.HoldStatusExpired)
}

// ReleaseHold is the caller-triggered twin of ExpireHold, used on checkout
// abort. Same idempotency: operating on a terminal or unknown hold does
// nothing.
func (s *InventoryService) ReleaseHold(holdID string) bool {
	return s.endHold(holdID, domain.HoldStatusReleased)
}

// ReleaseSession releases every active hold created under a checkout
// session and returns how many it released.
func (s *InventoryService) ReleaseSession(sessionID string) int {
	s.mu.Lock()
	var ids []string
	for id, h := range s.holds {
		if h.SessionID == sessionID {
			ids = append(ids, id)
		}
	}
	s.mu.Unlock()

	released := 0
	for _, id := range ids {
		if s.ReleaseHold(id) {
			released++
		}
	}
	return released
}

func (s *InventoryService) endHold(holdID string, status domain.HoldStatus) bool {
	s.mu.Lock()
	hold, ok := s.holds[holdID]
	if !ok || hold.Status != domain.HoldStatusActive {
		s.mu.Unlock()
		return false
	}
	hold.Status = status
	delete(s.holds, holdID)

	rec, ok := s.records[hold.TicketTypeID]
	if !ok {
		s.mu.Unlock()
		return true
	}
	rec.HeldQuantity -= hold.Quantity
	if rec.HeldQuantity < 0 {
		rec.HeldQuantity = 0
	}
	s.touch(rec)
	update := s.snapshotLocked(domain.UpdateHoldExpired, rec)
	s.mu.Unlock()

	s.notifier.Publish(update)
	return true
}

// Hold returns a snapshot of an active hold.
func (s *InventoryService) Hold(holdID string) (domain.Hold, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hold, ok := s.holds[holdID]
	if !ok {
		return domain.Hold{}, false
	}
	return *hold, true
}

// ExpiredHoldIDs returns the IDs of active holds whose deadline has passed.
func (s *InventoryService) ExpiredHoldIDs(now time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, h := range s.holds {
		if !h.ExpiresAt.After(now) {
			ids = append(ids, id)
		}
	}
	return ids
}

// touch must be called with the mutex held.
func (s *InventoryService) touch(rec *domain.InventoryRecord) {
	rec.Version++
	rec.LastUpdated = s.clock.Now()
}

// snapshotLocked must be called with the mutex held.
func (s *InventoryService) snapshotLocked(t domain.UpdateType, rec *domain.InventoryRecord) domain.InventoryUpdate {
	return domain.InventoryUpdate{
		Type:         t,
		TicketTypeID: rec.TicketTypeID,
		EventID:      rec.EventID,
		Inventory:    *rec,
		Timestamp:    s.clock.Now(),
	}
}
