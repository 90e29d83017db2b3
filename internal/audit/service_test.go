package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	kafkax "github.com/ariefcatur/go-shop-orders/internal/kafka"
	"github.com/ariefcatur/go-shop-orders/internal/orders"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Insert(ctx context.Context, e Entry) error {
	return m.Called(ctx, e).Error(0)
}

func newService(t *testing.T) (*Service, *mockStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := new(mockStore)
	return NewService(store, rdb, zap.NewNop()), store, mr
}

func message(t *testing.T, eventType string) (kafkago.Message, orders.Envelope) {
	t.Helper()
	o := &orders.Order{ID: "o1", UserID: "u1", Status: orders.StatusCancelled,
		Items: []orders.OrderItem{{ProductID: "p1", Quantity: 2}}}
	env := orders.NewEnvelope(eventType, "shop-api", "req-1", o.ID, kafkax.MustMarshal(orders.PayloadOf(o)))
	return kafkago.Message{Key: orders.PartitionKey(o.ID), Value: kafkax.MustMarshal(env)}, env
}

func TestHandleOrderEvent_RecordsOnce(t *testing.T) {
	svc, store, mr := newService(t)
	ctx := context.Background()
	m, env := message(t, orders.EventOrderCancelled)
	store.On("Insert", ctx, mock.MatchedBy(func(e Entry) bool {
		return e.EventID == env.EventID && e.OrderID == "o1" && e.Status == "cancelled" &&
			e.EventType == orders.EventOrderCancelled && e.OccurredAt.Equal(env.OccurredAt)
	})).Return(nil).Once()

	require.NoError(t, svc.HandleOrderEvent(ctx, m))
	require.NoError(t, svc.HandleOrderEvent(ctx, m))

	store.AssertNumberOfCalls(t, "Insert", 1)
	assert.True(t, mr.Exists("dedup:audit:"+env.EventID))
}

func TestHandleOrderEvent_InsertFailureReleasesClaim(t *testing.T) {
	svc, store, mr := newService(t)
	ctx := context.Background()
	m, env := message(t, orders.EventOrderCreated)
	store.On("Insert", ctx, mock.Anything).Return(errors.New("db down")).Once()
	store.On("Insert", ctx, mock.Anything).Return(nil).Once()

	assert.Error(t, svc.HandleOrderEvent(ctx, m))
	assert.False(t, mr.Exists("dedup:audit:"+env.EventID))

	require.NoError(t, svc.HandleOrderEvent(ctx, m))
	store.AssertNumberOfCalls(t, "Insert", 2)
}

func TestHandleOrderEvent_Skips(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()

	other, _ := message(t, "StockReserved")
	require.NoError(t, svc.HandleOrderEvent(ctx, other))
	require.NoError(t, svc.HandleOrderEvent(ctx, kafkago.Message{Value: []byte("not json")}))

	store.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestHandleOrderEvent_RedisDown(t *testing.T) {
	svc, store, mr := newService(t)
	ctx := context.Background()
	m, _ := message(t, orders.EventOrderDeleted)
	store.On("Insert", ctx, mock.Anything).Return(nil).Once()
	mr.Close()

	require.NoError(t, svc.HandleOrderEvent(ctx, m))
	store.AssertExpectations(t)
}
