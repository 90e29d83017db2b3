package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	closed bool
}

func (w *memWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *memWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func TestProducer_FlushesOnShutdown(t *testing.T) {
	w := &memWriter{}
	p := newProducer(w, 8, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	for _, k := range []string{"a", "b", "c"} {
		p.Publish([]byte(k), []byte(`{}`), kafka.Header{Key: "x-event-type", Value: []byte("OrderCreated")})
	}
	cancel()
	p.WaitClosed()

	assert.Len(t, w.msgs, 3)
	assert.True(t, w.closed)
	assert.Equal(t, "x-event-type", w.msgs[0].Headers[0].Key)
}

func TestProducer_PublishDoesNotBlockWhenFull(t *testing.T) {
	p := newProducer(&memWriter{}, 1, zap.NewNop())

	done := make(chan struct{})
	go func() {
		p.Publish([]byte("a"), nil)
		p.Publish([]byte("b"), nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full inbox")
	}
	assert.Len(t, p.inbox, 1)
}

// sliceReader hands out msgs and then blocks until the context ends.
type sliceReader struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	committed []int64
	closed    bool
}

func (r *sliceReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.msgs) > 0 {
		m := r.msgs[0]
		r.msgs = r.msgs[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *sliceReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *sliceReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *sliceReader) commits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

func (r *sliceReader) commitLog() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

// attempts counts handler calls per offset.
type attempts struct {
	mu sync.Mutex
	n  map[int64]int
}

func (a *attempts) inc(off int64) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.n == nil {
		a.n = map[int64]int{}
	}
	a.n[off]++
	return a.n[off]
}

func (a *attempts) get(off int64) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.n[off]
}

func fastBackoff() retry.Backoff { return retry.NewConstant(time.Millisecond) }

func TestConsumer_RetriesFailedMessageBeforeCommitting(t *testing.T) {
	r := &sliceReader{msgs: []kafka.Message{{Offset: 1}, {Offset: 2}, {Offset: 3}}}
	c := newConsumer(r, 1, zap.NewNop())
	c.backoff = fastBackoff

	var calls attempts
	h := func(_ context.Context, m kafka.Message) error {
		if calls.inc(m.Offset) == 1 && m.Offset == 2 {
			return errors.New("db unavailable")
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- c.Start(ctx, h) }()

	require.Eventually(t, func() bool { return r.commits() == 3 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-errc)

	assert.Equal(t, []int64{1, 2, 3}, r.commitLog())
	assert.Equal(t, 2, calls.get(2))
	assert.Equal(t, 1, calls.get(3))
	assert.True(t, r.closed)
}

func TestConsumer_ShutdownWhileRetryingLeavesOffsetUncommitted(t *testing.T) {
	r := &sliceReader{msgs: []kafka.Message{
		{Partition: 0, Offset: 5},
		{Partition: 0, Offset: 6},
		{Partition: 1, Offset: 7},
	}}
	c := newConsumer(r, 2, zap.NewNop())
	c.backoff = fastBackoff

	var calls attempts
	h := func(_ context.Context, m kafka.Message) error {
		calls.inc(m.Offset)
		if m.Offset == 5 {
			return errors.New("db unavailable")
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- c.Start(ctx, h) }()

	require.Eventually(t, func() bool { return r.commits() == 1 && calls.get(5) >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-errc)

	// offset 6 shares the partition of 5 and waits behind it
	assert.Equal(t, []int64{7}, r.commitLog())
	assert.Equal(t, 0, calls.get(6))
}

func TestUnwrapPayload(t *testing.T) {
	type payload struct {
		OrderID string `json:"order_id"`
	}
	got, err := UnwrapPayload[payload](MustMarshal(payload{OrderID: "o1"}))
	require.NoError(t, err)
	assert.Equal(t, "o1", got.OrderID)

	_, err = UnwrapPayload[payload]([]byte(`{"order_id":`))
	assert.Error(t, err)
}
