package httpx

import (
	"net/http"
	"strings"

	"github.com/ariefcatur/go-shop-orders/internal/apperr"
	"github.com/ariefcatur/go-shop-orders/internal/catalog"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductsHandler struct {
	products catalog.Manager
	log      *zap.Logger
}

func NewProductsHandler(products catalog.Manager, log *zap.Logger) *ProductsHandler {
	return &ProductsHandler{products: products, log: log}
}

// Register mounts the product routes. Callers wrap r with RequireBearer.
func (h *ProductsHandler) Register(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/available", h.listAvailable)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

type productBody struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	StockAmount *int             `json:"stockAmount"`
}

func (b productBody) validate() error {
	invalid := func(msg string) error { return apperr.New(apperr.Validation, msg) }
	switch {
	case b.Name == nil:
		return invalid(`"name" is required`)
	case strings.TrimSpace(*b.Name) == "":
		return invalid(`"name" is not allowed to be empty`)
	case b.Description == nil:
		return invalid(`"description" is required`)
	case strings.TrimSpace(*b.Description) == "":
		return invalid(`"description" is not allowed to be empty`)
	case b.Price == nil:
		return invalid(`"price" is required`)
	case !b.Price.IsPositive():
		return invalid(`"price" must be a positive number`)
	case !b.Price.Equal(b.Price.Round(2)):
		return invalid(`"price" must have no more than 2 decimal places`)
	case b.StockAmount == nil:
		return invalid(`"stockAmount" is required`)
	case *b.StockAmount < 0:
		return invalid(`"stockAmount" must be greater than or equal to 0`)
	}
	return nil
}

func (h *ProductsHandler) decodeProduct(w http.ResponseWriter, r *http.Request) (productBody, bool) {
	var b productBody
	err := decode(r, &b)
	if err == nil {
		err = b.validate()
	}
	if err != nil {
		writeError(w, r, h.log, err)
		return b, false
	}
	return b, true
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	b, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}
	p, err := h.products.Create(r.Context(), catalog.NewProduct{
		Name:        *b.Name,
		Description: *b.Description,
		Price:       *b.Price,
		StockAmount: *b.StockAmount,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Data: p, Message: "Product created"})
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if p == nil {
		fail(w, http.StatusNotFound, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: p, Message: "Product found"})
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	b, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}
	p, err := h.products.Update(r.Context(), chi.URLParam(r, "id"), catalog.ProductUpdate{
		Name:        b.Name,
		Description: b.Description,
		Price:       b.Price,
		StockAmount: b.StockAmount,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: p, Message: "Product updated"})
}

func (h *ProductsHandler) delete(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: p, Message: "Product deleted"})
}

func (h *ProductsHandler) listAvailable(w http.ResponseWriter, r *http.Request) {
	pageNo, size, skip := paging(r)
	ps, err := h.products.ListByState(r.Context(), catalog.StateActive, skip, size)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	total, err := h.products.CountByState(r.Context(), catalog.StateActive)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, page{
		Data:     ps,
		Page:     pageNo,
		PageSize: size,
		Count:    len(ps),
		Total:    total,
		Message:  "Products found",
	})
}
