package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type State string

const (
	StateActive  State = "active"
	StateDeleted State = "deleted"
)

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	StockAmount int             `json:"stockAmount"`
	State       State           `json:"state"`
	DeletedAt   *time.Time      `json:"deletedAt"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (p *Product) Deleted() bool { return p.State == StateDeleted }

type NewProduct struct {
	Name        string
	Description string
	Price       decimal.Decimal
	StockAmount int
}

// ProductUpdate carries the caller-editable fields. A nil field is left
// untouched.
type ProductUpdate struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	StockAmount *int             `json:"stockAmount"`
}

// Patch is the column-level change set handed to the store.
type Patch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	StockAmount *int
	State       *State
	DeletedAt   *time.Time
}

// patch converts u to a store patch. A price of zero counts as "not
// provided" and is dropped; a stock amount of zero is a real value and kept.
func (u ProductUpdate) patch() Patch {
	p := Patch{
		Name:        u.Name,
		Description: u.Description,
		StockAmount: u.StockAmount,
	}
	if u.Price != nil && !u.Price.IsZero() {
		p.Price = u.Price
	}
	return p
}

func (p Patch) columns() map[string]any {
	m := map[string]any{}
	if p.Name != nil {
		m["name"] = *p.Name
	}
	if p.Description != nil {
		m["description"] = *p.Description
	}
	if p.Price != nil {
		m["price"] = *p.Price
	}
	if p.StockAmount != nil {
		m["stock_amount"] = *p.StockAmount
	}
	if p.State != nil {
		m["state"] = string(*p.State)
	}
	if p.DeletedAt != nil {
		m["deleted_at"] = *p.DeletedAt
	}
	return m
}
