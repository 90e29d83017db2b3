package checkout_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ariefcatur/go-shop-orders/internal/apperr"
	"github.com/ariefcatur/go-shop-orders/internal/catalog"
	catalogmocks "github.com/ariefcatur/go-shop-orders/internal/catalog/mocks"
	"github.com/ariefcatur/go-shop-orders/internal/checkout"
	"github.com/ariefcatur/go-shop-orders/internal/orders"
	ordermocks "github.com/ariefcatur/go-shop-orders/internal/orders/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	products *catalogmocks.MockManager
	orders   *ordermocks.MockManager
	sink     *ordermocks.MockSink
	svc      *checkout.Service
}

func newFixture() *fixture {
	f := &fixture{
		products: new(catalogmocks.MockManager),
		orders:   new(ordermocks.MockManager),
		sink:     new(ordermocks.MockSink),
	}
	f.sink.On("Emit", mock.Anything, mock.Anything, mock.Anything).Maybe()
	f.svc = checkout.NewService(f.products, f.orders, f.sink, zap.NewNop())
	return f
}

func pendingOrder(qty map[string]int) *orders.Order {
	o := &orders.Order{ID: "o1", UserID: "u1", Status: orders.StatusPending}
	for pid, q := range qty {
		o.Items = append(o.Items, orders.OrderItem{OrderID: "o1", ProductID: pid, Quantity: q})
	}
	return o
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()
	items := []orders.ItemInput{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 1}, {ProductID: "p3", Quantity: 4}}

	t.Run("fails fast on the first unknown product", func(t *testing.T) {
		f := newFixture()
		f.products.On("GetByID", ctx, "p1").Return(&catalog.Product{ID: "p1"}, nil).Once()
		f.products.On("GetByID", ctx, "p2").Return(nil, nil).Once()

		_, err := f.svc.CreateOrder(ctx, "u1", items)
		assert.ErrorIs(t, err, apperr.ReferentialIntegrity)
		assert.EqualError(t, err, "Product with id p2 does not exist.")
		f.products.AssertNotCalled(t, "GetByID", mock.Anything, "p3")
		f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.sink.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("creates a pending order once every product exists", func(t *testing.T) {
		f := newFixture()
		for _, it := range items {
			f.products.On("GetByID", ctx, it.ProductID).Return(&catalog.Product{ID: it.ProductID}, nil).Once()
		}
		created := pendingOrder(map[string]int{"p1": 2, "p2": 1, "p3": 4})
		f.orders.On("Create", ctx, "u1", items, orders.StatusPending).Return(created, nil).Once()

		o, err := f.svc.CreateOrder(ctx, "u1", items)
		require.NoError(t, err)
		assert.Equal(t, "o1", o.ID)
		f.orders.AssertExpectations(t)
		f.sink.AssertCalled(t, "Emit", ctx, orders.EventOrderCreated, created)
	})

	t.Run("lookup error propagates unchanged", func(t *testing.T) {
		f := newFixture()
		boom := errors.New("redis and postgres both down")
		f.products.On("GetByID", ctx, "p1").Return(nil, boom).Once()

		_, err := f.svc.CreateOrder(ctx, "u1", items)
		assert.Equal(t, boom, err)
	})
}

func TestCancelOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the reloaded order", func(t *testing.T) {
		f := newFixture()
		cancelled := pendingOrder(nil)
		cancelled.Status = orders.StatusCancelled
		f.orders.On("Cancel", ctx, "o1").Return(orders.StatusCancelled, nil).Once()
		f.orders.On("GetByID", ctx, "o1").Return(cancelled, nil).Once()

		o, err := f.svc.CancelOrder(ctx, "o1")
		require.NoError(t, err)
		assert.Equal(t, orders.StatusCancelled, o.Status)
		f.sink.AssertCalled(t, "Emit", ctx, orders.EventOrderCancelled, cancelled)
	})

	t.Run("order gone after cancel", func(t *testing.T) {
		f := newFixture()
		f.orders.On("Cancel", ctx, "o1").Return(orders.StatusCancelled, nil).Once()
		f.orders.On("GetByID", ctx, "o1").Return(nil, nil).Once()

		_, err := f.svc.CancelOrder(ctx, "o1")
		assert.ErrorIs(t, err, apperr.NotFound)
	})

	t.Run("non pending", func(t *testing.T) {
		f := newFixture()
		f.orders.On("Cancel", ctx, "o1").Return(orders.Status(""), orders.ErrNotPendingCancel).Once()

		_, err := f.svc.CancelOrder(ctx, "o1")
		assert.ErrorIs(t, err, orders.ErrNotPendingCancel)
		f.orders.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestCompleteOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	completed := pendingOrder(map[string]int{"p1": 1})
	completed.Status = orders.StatusCompleted
	f.orders.On("Complete", ctx, "o1").Return(orders.StatusCompleted, nil).Once()
	f.orders.On("GetByID", ctx, "o1").Return(completed, nil).Once()

	o, err := f.svc.CompleteOrder(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCompleted, o.Status)
	f.sink.AssertCalled(t, "Emit", ctx, orders.EventOrderCompleted, completed)
}

func TestDeleteOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		f := newFixture()
		f.orders.On("Delete", ctx, "o1").Return(pendingOrder(nil), nil).Once()
		require.NoError(t, f.svc.DeleteOrder(ctx, "o1"))
	})

	t.Run("missing", func(t *testing.T) {
		f := newFixture()
		f.orders.On("Delete", ctx, "o1").Return(nil, orders.ErrOrderNotFound).Once()
		assert.ErrorIs(t, f.svc.DeleteOrder(ctx, "o1"), apperr.NotFound)
		f.sink.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestListUserOrders(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	page := []orders.Order{*pendingOrder(map[string]int{"p1": 1})}
	f.orders.On("ListByUser", ctx, "u1", 10, 5).Return(page, nil).Once()
	f.orders.On("CountByUser", ctx, "u1").Return(11, nil).Once()

	list, total, err := f.svc.ListUserOrders(ctx, "u1", 10, 5)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 11, total)
}

func TestUpdateOrderItems(t *testing.T) {
	ctx := context.Background()

	t.Run("batches one increment and one removal", func(t *testing.T) {
		f := newFixture()
		final := pendingOrder(map[string]int{"p1": 5})
		f.orders.On("GetByID", ctx, "o1").Return(pendingOrder(map[string]int{"p1": 2, "p2": 3}), nil).Once()
		f.orders.On("IncreaseItemsQuantity", ctx, "o1", []orders.ItemDelta{{ProductID: "p1", Amount: 3}}).
			Return(pendingOrder(map[string]int{"p1": 5, "p2": 3}), nil).Once()
		f.orders.On("RemoveProducts", ctx, "o1", []string{"p2"}).Return(final, nil).Once()
		f.orders.On("GetByID", ctx, "o1").Return(final, nil).Once()

		o, err := f.svc.UpdateOrderItems(ctx, "o1", []checkout.ItemTarget{
			{ProductID: "p1", NewQuantity: 5},
			{ProductID: "p2", NewQuantity: 0},
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"p1": 5}, o.Quantities())
		f.orders.AssertExpectations(t)
		f.orders.AssertNumberOfCalls(t, "IncreaseItemsQuantity", 1)
		f.orders.AssertNumberOfCalls(t, "RemoveProducts", 1)
		f.sink.AssertCalled(t, "Emit", ctx, orders.EventOrderItemsUpdated, final)
	})

	t.Run("no-op when nothing changes", func(t *testing.T) {
		f := newFixture()
		current := pendingOrder(map[string]int{"p1": 2, "p2": 3})
		f.orders.On("GetByID", ctx, "o1").Return(current, nil).Twice()

		o, err := f.svc.UpdateOrderItems(ctx, "o1", []checkout.ItemTarget{
			{ProductID: "p1", NewQuantity: 2},
			{ProductID: "p2", NewQuantity: 3},
			{ProductID: "p9", NewQuantity: 0},
		})
		require.NoError(t, err)
		assert.Equal(t, current.Quantities(), o.Quantities())
		f.orders.AssertNotCalled(t, "IncreaseItemsQuantity", mock.Anything, mock.Anything, mock.Anything)
		f.orders.AssertNotCalled(t, "RemoveProducts", mock.Anything, mock.Anything, mock.Anything)
		f.sink.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing order", func(t *testing.T) {
		f := newFixture()
		f.orders.On("GetByID", ctx, "o1").Return(nil, nil).Once()

		_, err := f.svc.UpdateOrderItems(ctx, "o1", []checkout.ItemTarget{{ProductID: "p1", NewQuantity: 1}})
		assert.ErrorIs(t, err, apperr.NotFound)
	})

	t.Run("increment failure skips removal", func(t *testing.T) {
		f := newFixture()
		f.orders.On("GetByID", ctx, "o1").Return(pendingOrder(map[string]int{"p2": 3}), nil).Once()
		f.orders.On("IncreaseItemsQuantity", ctx, "o1", mock.Anything).Return(nil, orders.ErrNotPendingUpdate).Once()

		_, err := f.svc.UpdateOrderItems(ctx, "o1", []checkout.ItemTarget{
			{ProductID: "p1", NewQuantity: 1},
			{ProductID: "p2", NewQuantity: 0},
		})
		assert.ErrorIs(t, err, apperr.InvalidState)
		f.orders.AssertNotCalled(t, "RemoveProducts", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("order gone on final reload", func(t *testing.T) {
		f := newFixture()
		f.orders.On("GetByID", ctx, "o1").Return(pendingOrder(map[string]int{"p1": 1}), nil).Once()
		f.orders.On("RemoveProducts", ctx, "o1", []string{"p1"}).Return(pendingOrder(nil), nil).Once()
		f.orders.On("GetByID", ctx, "o1").Return(nil, nil).Once()

		_, err := f.svc.UpdateOrderItems(ctx, "o1", []checkout.ItemTarget{{ProductID: "p1", NewQuantity: 0}})
		assert.ErrorIs(t, err, apperr.ConsistencyAnomaly)
	})
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name    string
		current map[string]int
		targets []checkout.ItemTarget
		deltas  []orders.ItemDelta
		removed []string
	}{
		{
			name:    "increase and add",
			current: map[string]int{"p1": 1},
			targets: []checkout.ItemTarget{{ProductID: "p1", NewQuantity: 4}, {ProductID: "p2", NewQuantity: 2}},
			deltas:  []orders.ItemDelta{{ProductID: "p1", Amount: 3}, {ProductID: "p2", Amount: 2}},
		},
		{
			name:    "decrease is a negative delta",
			current: map[string]int{"p1": 5},
			targets: []checkout.ItemTarget{{ProductID: "p1", NewQuantity: 2}},
			deltas:  []orders.ItemDelta{{ProductID: "p1", Amount: -3}},
		},
		{
			name:    "negative target removes",
			current: map[string]int{"p1": 5},
			targets: []checkout.ItemTarget{{ProductID: "p1", NewQuantity: -1}},
			removed: []string{"p1"},
		},
		{
			name:    "zero target on absent product",
			current: map[string]int{},
			targets: []checkout.ItemTarget{{ProductID: "p1", NewQuantity: 0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deltas, removed := checkout.Reconcile(tt.current, tt.targets)
			assert.Equal(t, tt.deltas, deltas)
			assert.Equal(t, tt.removed, removed)
		})
	}
}
