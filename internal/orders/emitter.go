package orders

import (
	"context"

	kafkax "github.com/ariefcatur/go-shop-orders/internal/kafka"
	"github.com/go-chi/chi/v5/middleware"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Emitter turns order snapshots into lifecycle envelopes on Kafka.
type Emitter struct {
	pub     Publisher
	service string
}

func NewEmitter(pub Publisher, service string) *Emitter {
	return &Emitter{pub: pub, service: service}
}

func (e *Emitter) Emit(ctx context.Context, eventType string, o *Order) {
	ev := NewEnvelope(eventType, e.service, middleware.GetReqID(ctx), o.ID, kafkax.MustMarshal(PayloadOf(o)))
	e.pub.Publish(PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
