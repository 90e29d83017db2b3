package orders

import (
	"context"

	"github.com/ariefcatur/go-shop-orders/internal/apperr"
)

var (
	ErrEmptyOrder         = apperr.New(apperr.Validation, "Order must contain at least one item.")
	ErrAllItemsInvalid    = apperr.New(apperr.Validation, "All items have invalid quantity. Order must contain at least one item with quantity > 0.")
	ErrOrderNotFound      = apperr.New(apperr.NotFound, "Order not found.")
	ErrNotPendingUpdate   = apperr.New(apperr.InvalidState, "Only pending orders can be updated.")
	ErrNotPendingComplete = apperr.New(apperr.InvalidState, "Only pending orders can be completed.")
	ErrNotPendingCancel   = apperr.New(apperr.InvalidState, "Only pending orders can be cancelled.")
	ErrOrderVanished      = apperr.New(apperr.ConsistencyAnomaly, "Order not found after update.")
)

// Manager is the order aggregate. GetByID returns (nil, nil) for a missing
// order.
type Manager interface {
	Create(ctx context.Context, userID string, items []ItemInput, status Status) (*Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string, skip, take int) ([]Order, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	Update(ctx context.Context, id string, in OrderUpdate) (*Order, error)
	Complete(ctx context.Context, id string) (Status, error)
	Cancel(ctx context.Context, id string) (Status, error)
	Delete(ctx context.Context, id string) (*Order, error)
	RemoveProducts(ctx context.Context, orderID string, productIDs []string) (*Order, error)
	IncreaseItemsQuantity(ctx context.Context, orderID string, items []ItemDelta) (*Order, error)
}

// Service implements Manager on a Store, without caching.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create checks that at least one item has a positive quantity, then hands
// the full item list to the store. An empty status means pending.
func (s *Service) Create(ctx context.Context, userID string, items []ItemInput, status Status) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	valid := 0
	for _, it := range items {
		if it.Quantity > 0 {
			valid++
		}
	}
	if valid == 0 {
		return nil, ErrAllItemsInvalid
	}
	if status == "" {
		status = StatusPending
	}
	return s.store.Create(ctx, userID, items, status)
}

func (s *Service) GetByID(ctx context.Context, id string) (*Order, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID string, skip, take int) ([]Order, error) {
	return s.store.ListByUser(ctx, userID, skip, take)
}

func (s *Service) CountByUser(ctx context.Context, userID string) (int, error) {
	return s.store.CountByUser(ctx, userID)
}

func (s *Service) pending(ctx context.Context, id string, notPending error) (*Order, error) {
	o, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	if !o.Status.Mutable() {
		return nil, notPending
	}
	return o, nil
}

func (s *Service) Update(ctx context.Context, id string, in OrderUpdate) (*Order, error) {
	if _, err := s.pending(ctx, id, ErrNotPendingUpdate); err != nil {
		return nil, err
	}
	return s.store.Update(ctx, id, Patch{UserID: in.UserID})
}

func (s *Service) Complete(ctx context.Context, id string) (Status, error) {
	return s.transition(ctx, id, StatusCompleted, ErrNotPendingComplete)
}

func (s *Service) Cancel(ctx context.Context, id string) (Status, error) {
	return s.transition(ctx, id, StatusCancelled, ErrNotPendingCancel)
}

func (s *Service) transition(ctx context.Context, id string, to Status, notPending error) (Status, error) {
	o, err := s.pending(ctx, id, notPending)
	if err != nil {
		return "", err
	}
	if !CanTransition(o.Status, to) {
		return "", notPending
	}
	updated, err := s.store.Update(ctx, id, Patch{Status: &to})
	if err != nil {
		return "", err
	}
	return updated.Status, nil
}

// Delete removes the order whatever its status.
func (s *Service) Delete(ctx context.Context, id string) (*Order, error) {
	o, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// RemoveProducts drops the items of the given products. Unknown product ids
// are ignored. Unlike the other item mutations it does not require a pending
// order.
func (s *Service) RemoveProducts(ctx context.Context, orderID string, productIDs []string) (*Order, error) {
	if err := s.store.RemoveItems(ctx, orderID, productIDs); err != nil {
		return nil, err
	}
	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// IncreaseItemsQuantity adds each amount to the matching item, creating
// missing items. Amounts may be negative.
func (s *Service) IncreaseItemsQuantity(ctx context.Context, orderID string, items []ItemDelta) (*Order, error) {
	if _, err := s.pending(ctx, orderID, ErrNotPendingUpdate); err != nil {
		return nil, err
	}
	if err := s.store.IncrementItems(ctx, orderID, items); err != nil {
		return nil, err
	}
	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderVanished
	}
	return o, nil
}
