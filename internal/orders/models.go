package orders

import "time"

type Order struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Status    Status      `json:"status"`
	Items     []OrderItem `json:"items"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

type OrderItem struct {
	ID        string `json:"id"`
	OrderID   string `json:"orderId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Quantities maps product id to the quantity currently in the order.
func (o *Order) Quantities() map[string]int {
	m := make(map[string]int, len(o.Items))
	for _, it := range o.Items {
		m[it.ProductID] = it.Quantity
	}
	return m
}

type ItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// ItemDelta is a signed quantity change for one product of an order.
type ItemDelta struct {
	ProductID string `json:"productId"`
	Amount    int    `json:"amount"`
}

// OrderUpdate carries the non-status fields a caller may change.
type OrderUpdate struct {
	UserID *string `json:"userId"`
}

// Patch is the column-level change set handed to the store.
type Patch struct {
	UserID *string
	Status *Status
}

func (p Patch) columns() map[string]any {
	m := map[string]any{}
	if p.UserID != nil {
		m["user_id"] = *p.UserID
	}
	if p.Status != nil {
		m["status"] = string(*p.Status)
	}
	return m
}
