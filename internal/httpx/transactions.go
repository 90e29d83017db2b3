package httpx

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/ariefcatur/go-shop-orders/internal/apperr"
	"github.com/ariefcatur/go-shop-orders/internal/auth"
	"github.com/ariefcatur/go-shop-orders/internal/checkout"
	"github.com/ariefcatur/go-shop-orders/internal/orders"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// OrderFlow is implemented by *checkout.Service.
type OrderFlow interface {
	CreateOrder(ctx context.Context, userID string, items []orders.ItemInput) (*orders.Order, error)
	DeleteOrder(ctx context.Context, id string) error
	CancelOrder(ctx context.Context, id string) (*orders.Order, error)
	CompleteOrder(ctx context.Context, id string) (*orders.Order, error)
	GetOrder(ctx context.Context, id string) (*orders.Order, error)
	UpdateOrderItems(ctx context.Context, id string, targets []checkout.ItemTarget) (*orders.Order, error)
	ListUserOrders(ctx context.Context, userID string, skip, take int) ([]orders.Order, int, error)
}

type TransactionsHandler struct {
	flow OrderFlow
	log  *zap.Logger
}

func NewTransactionsHandler(flow OrderFlow, log *zap.Logger) *TransactionsHandler {
	return &TransactionsHandler{flow: flow, log: log}
}

// Register mounts the order use cases. Callers wrap r with RequireBearer.
func (h *TransactionsHandler) Register(r chi.Router) {
	r.Route("/transactions/orders", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{orderId}", h.get)
		r.Delete("/{orderId}", h.delete)
		r.Post("/{orderId}/cancel", h.cancel)
		r.Post("/{orderId}/complete", h.complete)
		r.Put("/{orderId}/items", h.updateItems)
	})
}

type createOrderReq struct {
	Products []struct {
		ProductID string `json:"productId"`
		Quantity  *int   `json:"quantity"`
	} `json:"products"`
}

func (req createOrderReq) items() ([]orders.ItemInput, error) {
	if len(req.Products) == 0 {
		return nil, apperr.New(apperr.Validation, `"products" must contain at least 1 items`)
	}
	out := make([]orders.ItemInput, 0, len(req.Products))
	for i, p := range req.Products {
		switch {
		case strings.TrimSpace(p.ProductID) == "":
			return nil, apperr.Newf(apperr.Validation, `"[%d].productId" is required`, i)
		case p.Quantity == nil:
			return nil, apperr.Newf(apperr.Validation, `"[%d].quantity" is required`, i)
		case *p.Quantity < 1:
			return nil, apperr.Newf(apperr.Validation, `"[%d].quantity" must be greater than or equal to 1`, i)
		}
		out = append(out, orders.ItemInput{ProductID: p.ProductID, Quantity: *p.Quantity})
	}
	return out, nil
}

type updateItemsReq struct {
	Updates []struct {
		ProductID   string `json:"productId"`
		NewQuantity *int   `json:"newQuantity"`
	} `json:"updates"`
}

func (req updateItemsReq) targets() ([]checkout.ItemTarget, error) {
	if len(req.Updates) == 0 {
		return nil, apperr.New(apperr.Validation, `"updates" must contain at least 1 items`)
	}
	out := make([]checkout.ItemTarget, 0, len(req.Updates))
	for i, u := range req.Updates {
		switch {
		case strings.TrimSpace(u.ProductID) == "":
			return nil, apperr.Newf(apperr.Validation, `"[%d].productId" is required`, i)
		case u.NewQuantity == nil:
			return nil, apperr.Newf(apperr.Validation, `"[%d].newQuantity" is required`, i)
		case *u.NewQuantity < 0:
			return nil, apperr.Newf(apperr.Validation, `"[%d].newQuantity" must be greater than or equal to 0`, i)
		}
		out = append(out, checkout.ItemTarget{ProductID: u.ProductID, NewQuantity: *u.NewQuantity})
	}
	return out, nil
}

func caller(r *http.Request) (string, error) {
	c := auth.FromContext(r.Context())
	if c == nil || c.UserID == "" {
		return "", apperr.New(apperr.Unauthorized, "Unauthorized: Invalid or missing token")
	}
	return c.UserID, nil
}

func (h *TransactionsHandler) create(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req createOrderReq
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	items, err := req.items()
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	o, err := h.flow.CreateOrder(r.Context(), userID, items)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Data: o, Message: "Order created successfully"})
}

func (h *TransactionsHandler) list(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	pageNo, size, skip := paging(r)
	list, total, err := h.flow.ListUserOrders(r.Context(), userID, skip, size)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, page{
		Data:     list,
		Page:     pageNo,
		PageSize: size,
		Count:    len(list),
		Total:    total,
		Message:  "Orders found",
	})
}

func (h *TransactionsHandler) get(w http.ResponseWriter, r *http.Request) {
	o, err := h.flow.GetOrder(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if o == nil {
		fail(w, http.StatusNotFound, "Order not found")
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: o, Message: "Order fetched successfully"})
}

func (h *TransactionsHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.flow.DeleteOrder(r.Context(), chi.URLParam(r, "orderId")); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: nil, Message: "Order deleted successfully"})
}

func (h *TransactionsHandler) cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.flow.CancelOrder, "cancelled")
}

func (h *TransactionsHandler) complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.flow.CompleteOrder, "completed")
}

func (h *TransactionsHandler) transition(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) (*orders.Order, error), verb string) {
	o, err := fn(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: o, Message: fmt.Sprintf("Order %s successfully", verb)})
}

func (h *TransactionsHandler) updateItems(w http.ResponseWriter, r *http.Request) {
	var req updateItemsReq
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	targets, err := req.targets()
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	o, err := h.flow.UpdateOrderItems(r.Context(), chi.URLParam(r, "orderId"), targets)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: o, Message: "Order items updated successfully"})
}
