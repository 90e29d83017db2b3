package catalog

import (
	"context"
	"time"

	"github.com/ariefcatur/go-shop-orders/internal/apperr"
)

var (
	ErrProductNotFound = apperr.New(apperr.NotFound, "Product not found.")
	ErrProductDeleted  = apperr.New(apperr.InvalidState, "Cannot update state of a deleted product.")
)

// Manager is the product aggregate. GetByID returns (nil, nil) for a
// missing product.
type Manager interface {
	Create(ctx context.Context, in NewProduct) (*Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Update(ctx context.Context, id string, in ProductUpdate) (*Product, error)
	Delete(ctx context.Context, id string) (*Product, error)
	ListByState(ctx context.Context, state State, skip, take int) ([]Product, error)
	ListAll(ctx context.Context) ([]Product, error)
	CountByState(ctx context.Context, state State) (int, error)
}

// Service implements Manager on a Store, without caching.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) Create(ctx context.Context, in NewProduct) (*Product, error) {
	return s.store.Create(ctx, in)
}

func (s *Service) GetByID(ctx context.Context, id string) (*Product, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id string, in ProductUpdate) (*Product, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	if p.Deleted() {
		return nil, ErrProductDeleted
	}
	return s.store.Update(ctx, id, in.patch())
}

// Delete soft-deletes the product. Deleting it twice reports NotFound.
func (s *Service) Delete(ctx context.Context, id string) (*Product, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.Deleted() {
		return nil, ErrProductNotFound
	}
	state := StateDeleted
	now := s.now().UTC()
	return s.store.Update(ctx, id, Patch{State: &state, DeletedAt: &now})
}

func (s *Service) ListByState(ctx context.Context, state State, skip, take int) ([]Product, error) {
	return s.store.ListByState(ctx, state, skip, take)
}

func (s *Service) ListAll(ctx context.Context) ([]Product, error) {
	return s.store.List(ctx)
}

func (s *Service) CountByState(ctx context.Context, state State) (int, error) {
	return s.store.CountByState(ctx, state)
}
