package httpx

import (
	"net/http"

	"github.com/ariefcatur/go-shop-orders/internal/orders"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type OrdersHandler struct {
	orders orders.Manager
	log    *zap.Logger
}

func NewOrdersHandler(om orders.Manager, log *zap.Logger) *OrdersHandler {
	return &OrdersHandler{orders: om, log: log}
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Get("/orders/{id}", h.getOrder)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if o == nil {
		fail(w, http.StatusNotFound, "Order not found")
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: o, Message: "Order found"})
}
