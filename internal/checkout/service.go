package checkout

import (
	"context"

	"github.com/ariefcatur/go-shop-orders/internal/apperr"
	"github.com/ariefcatur/go-shop-orders/internal/catalog"
	"github.com/ariefcatur/go-shop-orders/internal/orders"
	"go.uber.org/zap"
)

// ItemTarget is the desired quantity of one product in an order. Zero or
// less removes the product.
type ItemTarget struct {
	ProductID   string `json:"productId"`
	NewQuantity int    `json:"newQuantity"`
}

// EventSink receives a snapshot after every committed order mutation.
// Implementations must not block.
type EventSink interface {
	Emit(ctx context.Context, eventType string, o *orders.Order)
}

type noopSink struct{}

func (noopSink) Emit(context.Context, string, *orders.Order) {}

// Service coordinates the product and order managers for the order use
// cases exposed to users.
type Service struct {
	products catalog.Manager
	orders   orders.Manager
	events   EventSink
	log      *zap.Logger
}

func NewService(products catalog.Manager, om orders.Manager, events EventSink, log *zap.Logger) *Service {
	if events == nil {
		events = noopSink{}
	}
	return &Service{products: products, orders: om, events: events, log: log.Named("checkout")}
}

// CreateOrder checks every product in request order and stops at the first
// one that does not exist. Nothing is written until all of them do.
func (s *Service) CreateOrder(ctx context.Context, userID string, items []orders.ItemInput) (*orders.Order, error) {
	log := s.log.With(zap.String("user_id", userID))
	log.Info("creating order", zap.Int("items", len(items)))

	for _, it := range items {
		p, err := s.products.GetByID(ctx, it.ProductID)
		if err != nil {
			log.Error("product lookup failed", zap.String("product_id", it.ProductID), zap.Error(err))
			return nil, err
		}
		if p == nil {
			log.Warn("order references unknown product", zap.String("product_id", it.ProductID))
			return nil, apperr.Newf(apperr.ReferentialIntegrity, "Product with id %s does not exist.", it.ProductID)
		}
	}

	o, err := s.orders.Create(ctx, userID, items, orders.StatusPending)
	if err != nil {
		log.Error("create order failed", zap.Error(err))
		return nil, err
	}
	log.Info("order created", zap.String("order_id", o.ID))
	s.events.Emit(ctx, orders.EventOrderCreated, o)
	return o, nil
}

func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	log := s.log.With(zap.String("order_id", id))
	log.Info("deleting order")
	o, err := s.orders.Delete(ctx, id)
	if err != nil {
		log.Error("delete order failed", zap.Error(err))
		return err
	}
	log.Info("order deleted")
	s.events.Emit(ctx, orders.EventOrderDeleted, o)
	return nil
}

func (s *Service) CancelOrder(ctx context.Context, id string) (*orders.Order, error) {
	return s.finish(ctx, id, s.orders.Cancel, orders.EventOrderCancelled)
}

func (s *Service) CompleteOrder(ctx context.Context, id string) (*orders.Order, error) {
	return s.finish(ctx, id, s.orders.Complete, orders.EventOrderCompleted)
}

// finish runs a status transition and returns the order as stored after it.
func (s *Service) finish(ctx context.Context, id string, transition func(context.Context, string) (orders.Status, error), event string) (*orders.Order, error) {
	log := s.log.With(zap.String("order_id", id), zap.String("event", event))
	log.Info("changing order status")

	st, err := transition(ctx, id)
	if err != nil {
		log.Error("status change failed", zap.Error(err))
		return nil, err
	}
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		log.Error("reload after status change failed", zap.Error(err))
		return nil, err
	}
	if o == nil {
		log.Error("order disappeared after status change", zap.String("status", string(st)))
		return nil, orders.ErrOrderNotFound
	}
	log.Info("order status changed", zap.String("status", string(o.Status)))
	s.events.Emit(ctx, event, o)
	return o, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*orders.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		s.log.Error("get order failed", zap.String("order_id", id), zap.Error(err))
		return nil, err
	}
	return o, nil
}

// ListUserOrders returns one page of the user's orders, newest first, and the
// user's total order count.
func (s *Service) ListUserOrders(ctx context.Context, userID string, skip, take int) ([]orders.Order, int, error) {
	list, err := s.orders.ListByUser(ctx, userID, skip, take)
	if err != nil {
		s.log.Error("list orders failed", zap.String("user_id", userID), zap.Error(err))
		return nil, 0, err
	}
	total, err := s.orders.CountByUser(ctx, userID)
	if err != nil {
		s.log.Error("count orders failed", zap.String("user_id", userID), zap.Error(err))
		return nil, 0, err
	}
	return list, total, nil
}

// UpdateOrderItems moves the order towards the requested quantities. The
// differences against the current items are applied with at most one
// increment call and one removal call.
func (s *Service) UpdateOrderItems(ctx context.Context, id string, targets []ItemTarget) (*orders.Order, error) {
	log := s.log.With(zap.String("order_id", id))
	log.Info("updating order items", zap.Int("targets", len(targets)))

	current, err := s.orders.GetByID(ctx, id)
	if err != nil {
		log.Error("load order failed", zap.Error(err))
		return nil, err
	}
	if current == nil {
		log.Warn("order not found")
		return nil, orders.ErrOrderNotFound
	}

	deltas, removed := Reconcile(current.Quantities(), targets)

	if len(deltas) > 0 {
		if _, err := s.orders.IncreaseItemsQuantity(ctx, id, deltas); err != nil {
			log.Error("increment items failed", zap.Error(err))
			return nil, err
		}
	}
	if len(removed) > 0 {
		if _, err := s.orders.RemoveProducts(ctx, id, removed); err != nil {
			log.Error("remove items failed", zap.Error(err))
			return nil, err
		}
	}

	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		log.Error("reload order failed", zap.Error(err))
		return nil, err
	}
	if o == nil {
		log.Error("order disappeared after item update")
		return nil, orders.ErrOrderVanished
	}
	log.Info("order items updated", zap.Int("increments", len(deltas)), zap.Int("removals", len(removed)))
	if len(deltas) > 0 || len(removed) > 0 {
		s.events.Emit(ctx, orders.EventOrderItemsUpdated, o)
	}
	return o, nil
}

// Reconcile computes the signed increments and the removals that turn the
// current quantities into the targets. Products missing from current count
// as zero. Targets equal to the current quantity, and non-positive targets
// for products not in the order, produce nothing.
func Reconcile(current map[string]int, targets []ItemTarget) ([]orders.ItemDelta, []string) {
	var (
		deltas  []orders.ItemDelta
		removed []string
	)
	for _, t := range targets {
		have := current[t.ProductID]
		switch {
		case t.NewQuantity <= 0 && have > 0:
			removed = append(removed, t.ProductID)
		case t.NewQuantity > 0 && t.NewQuantity != have:
			deltas = append(deltas, orders.ItemDelta{ProductID: t.ProductID, Amount: t.NewQuantity - have})
		}
	}
	return deltas, removed
}
