package console

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"kilofresh-admin/internal/backend"
	"kilofresh-admin/internal/domain"
)

const msgInvalidStatus = "حالة الطلب غير صالحة"

// OrderScreen drives the order management view. Orders have no form: they
// are listed, inspected in a detail view fetched fresh by id, transitioned
// through the fixed status enumeration, and deleted.
type OrderScreen struct {
	mu       sync.Mutex
	api      backend.OrderAPI
	store    *ListStore[domain.Order]
	notifier *Notifier
	detail   *domain.Order
	busy     bool
	log      zerolog.Logger
}

// NewOrderScreen wires an order screen against the backend API.
func NewOrderScreen(api backend.OrderAPI, notifier *Notifier, logger zerolog.Logger) *OrderScreen {
	return &OrderScreen{
		api:      api,
		store:    NewListStore(api.ListOrders),
		notifier: notifier,
		log:      logger.With().Str("screen", "order").Logger(),
	}
}

// Load refreshes the order snapshot.
func (s *OrderScreen) Load(ctx context.Context) error {
	if err := s.store.Load(ctx); err != nil {
		s.notifier.Error(backend.AsError(err).Message)
		return err
	}
	s.log.Debug().Int("count", s.store.Len()).Msg("orders loaded")
	return nil
}

// Orders returns the current snapshot in backend order.
func (s *OrderScreen) Orders() []domain.Order { return s.store.Snapshot() }

// Loaded reports whether an initial load ever succeeded.
func (s *OrderScreen) Loaded() bool { return s.store.Loaded() }

// OpenDetail fetches the order fresh by id and opens the detail view on it.
func (s *OrderScreen) OpenDetail(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.api.GetOrderByID(ctx, id)
	if err != nil {
		s.notifier.Error(backend.AsError(err).Message)
		return nil, err
	}

	s.mu.Lock()
	s.detail = order
	s.mu.Unlock()
	return order, nil
}

// Detail returns the order currently shown in the detail view, if any.
func (s *OrderScreen) Detail() (*domain.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detail == nil {
		return nil, false
	}
	d := *s.detail
	return &d, true
}

// CloseDetail closes the detail view.
func (s *OrderScreen) CloseDetail() {
	s.mu.Lock()
	s.detail = nil
	s.mu.Unlock()
}

// SetStatus moves an order to the given status; any status may move to any
// other. If the detail view shows the changed order its local copy is
// refreshed from the response.
func (s *OrderScreen) SetStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	if !status.IsValid() {
		s.notifier.Error(msgInvalidStatus)
		return ErrValidation
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.busy = true
	s.mu.Unlock()

	order, message, err := s.api.UpdateOrderStatus(ctx, id, status)

	s.mu.Lock()
	s.busy = false
	if err == nil && s.detail != nil && s.detail.ID == id {
		s.detail = order
	}
	s.mu.Unlock()

	if err != nil {
		s.notifier.Error(backend.AsError(err).Message)
		return err
	}
	s.notifier.Success(message)
	if err := s.store.Load(ctx); err != nil {
		s.notifier.Error(backend.AsError(err).Message)
	}
	return nil
}

// Delete removes an order and reloads the list. If the deleted order is the
// one shown in the detail view, the view closes.
func (s *OrderScreen) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.busy = true
	s.mu.Unlock()

	message, err := s.api.DeleteOrder(ctx, id)

	s.mu.Lock()
	s.busy = false
	if err == nil && s.detail != nil && s.detail.ID == id {
		s.detail = nil
	}
	s.mu.Unlock()

	if err != nil {
		s.notifier.Error(backend.AsError(err).Message)
		return err
	}
	s.notifier.Success(message)
	if err := s.store.Load(ctx); err != nil {
		s.notifier.Error(backend.AsError(err).Message)
	}
	return nil
}
