package mocks

import (
	"context"

	"github.com/ariefcatur/go-shop-orders/internal/orders"
	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Create(ctx context.Context, userID string, items []orders.ItemInput, status orders.Status) (*orders.Order, error) {
	args := m.Called(ctx, userID, items, status)
	return order(args.Get(0)), args.Error(1)
}

func (m *MockStore) Get(ctx context.Context, id string) (*orders.Order, error) {
	args := m.Called(ctx, id)
	return order(args.Get(0)), args.Error(1)
}

func (m *MockStore) ListByUser(ctx context.Context, userID string, skip, take int) ([]orders.Order, error) {
	args := m.Called(ctx, userID, skip, take)
	return list(args.Get(0)), args.Error(1)
}

func (m *MockStore) CountByUser(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) Update(ctx context.Context, id string, p orders.Patch) (*orders.Order, error) {
	args := m.Called(ctx, id, p)
	return order(args.Get(0)), args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, id string) (*orders.Order, error) {
	args := m.Called(ctx, id)
	return order(args.Get(0)), args.Error(1)
}

func (m *MockStore) RemoveItems(ctx context.Context, orderID string, productIDs []string) error {
	return m.Called(ctx, orderID, productIDs).Error(0)
}

func (m *MockStore) IncrementItems(ctx context.Context, orderID string, items []orders.ItemDelta) error {
	return m.Called(ctx, orderID, items).Error(0)
}

type MockManager struct {
	mock.Mock
}

func (m *MockManager) Create(ctx context.Context, userID string, items []orders.ItemInput, status orders.Status) (*orders.Order, error) {
	args := m.Called(ctx, userID, items, status)
	return order(args.Get(0)), args.Error(1)
}

func (m *MockManager) GetByID(ctx context.Context, id string) (*orders.Order, error) {
	args := m.Called(ctx, id)
	return order(args.Get(0)), args.Error(1)
}

func (m *MockManager) ListByUser(ctx context.Context, userID string, skip, take int) ([]orders.Order, error) {
	args := m.Called(ctx, userID, skip, take)
	return list(args.Get(0)), args.Error(1)
}

func (m *MockManager) CountByUser(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockManager) Update(ctx context.Context, id string, in orders.OrderUpdate) (*orders.Order, error) {
	args := m.Called(ctx, id, in)
	return order(args.Get(0)), args.Error(1)
}

func (m *MockManager) Complete(ctx context.Context, id string) (orders.Status, error) {
	args := m.Called(ctx, id)
	return status(args.Get(0)), args.Error(1)
}

func (m *MockManager) Cancel(ctx context.Context, id string) (orders.Status, error) {
	args := m.Called(ctx, id)
	return status(args.Get(0)), args.Error(1)
}

func (m *MockManager) Delete(ctx context.Context, id string) (*orders.Order, error) {
	args := m.Called(ctx, id)
	return order(args.Get(0)), args.Error(1)
}

func (m *MockManager) RemoveProducts(ctx context.Context, orderID string, productIDs []string) (*orders.Order, error) {
	args := m.Called(ctx, orderID, productIDs)
	return order(args.Get(0)), args.Error(1)
}

func (m *MockManager) IncreaseItemsQuantity(ctx context.Context, orderID string, items []orders.ItemDelta) (*orders.Order, error) {
	args := m.Called(ctx, orderID, items)
	return order(args.Get(0)), args.Error(1)
}

// MockSink records emitted lifecycle events.
type MockSink struct {
	mock.Mock
}

func (m *MockSink) Emit(ctx context.Context, eventType string, o *orders.Order) {
	m.Called(ctx, eventType, o)
}

func order(v any) *orders.Order {
	if o, ok := v.(*orders.Order); ok {
		return o
	}
	return nil
}

func list(v any) []orders.Order {
	if l, ok := v.([]orders.Order); ok {
		return l
	}
	return nil
}

func status(v any) orders.Status {
	if s, ok := v.(orders.Status); ok {
		return s
	}
	return ""
}
