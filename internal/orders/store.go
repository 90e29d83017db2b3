package orders

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/ariefcatur/go-shop-orders/internal/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Store is the persistence contract of the order aggregate. Reads return
// (nil, nil) when the order does not exist.
type Store interface {
	// Create persists the order with items as given. Rows with a quantity
	// below one are ignored and repeated product ids are merged.
	Create(ctx context.Context, userID string, items []ItemInput, status Status) (*Order, error)
	Get(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string, skip, take int) ([]Order, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	Update(ctx context.Context, id string, p Patch) (*Order, error)
	// Delete removes the order and its items and returns the removed header.
	Delete(ctx context.Context, id string) (*Order, error)
	RemoveItems(ctx context.Context, orderID string, productIDs []string) error
	// IncrementItems adds each amount to the (order, product) row, creating
	// the row when it does not exist yet.
	IncrementItems(ctx context.Context, orderID string, items []ItemDelta) error
}

const (
	orderColumns = "id, user_id, status, created_at, updated_at"

	upsertItemSQL = `
		INSERT INTO order_items (id, order_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (order_id, product_id)
		DO UPDATE SET quantity = order_items.quantity + EXCLUDED.quantity`

	touchOrderSQL = `UPDATE orders SET updated_at = now() WHERE id = $1`
)

type PgStore struct {
	db postgres.DB
	sb sq.StatementBuilderType
}

func NewPgStore(db postgres.DB) *PgStore {
	return &PgStore{db: db, sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var status string
	if err := row.Scan(&o.ID, &o.UserID, &status, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Status = Status(status)
	o.Items = []OrderItem{}
	return &o, nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (s *PgStore) Create(ctx context.Context, userID string, items []ItemInput, status Status) (*Order, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	orderID := uuid.NewString()
	if _, err := tx.Exec(ctx,
		`INSERT INTO orders (id, user_id, status) VALUES ($1, $2, $3)`,
		orderID, userID, string(status)); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		if _, err := tx.Exec(ctx, upsertItemSQL, uuid.NewString(), orderID, it.ProductID, it.Quantity); err != nil {
			return nil, fmt.Errorf("insert order item %s: %w", it.ProductID, err)
		}
	}

	o, err := s.get(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *PgStore) Get(ctx context.Context, id string) (*Order, error) {
	if !validID(id) {
		return nil, nil
	}
	return s.get(ctx, s.db, id)
}

func (s *PgStore) get(ctx context.Context, q postgres.DBTX, id string) (*Order, error) {
	o, err := scanOrder(q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	items, err := s.items(ctx, q, []string{id})
	if err != nil {
		return nil, err
	}
	o.Items = append(o.Items, items[id]...)
	return o, nil
}

func (s *PgStore) items(ctx context.Context, q postgres.DBTX, orderIDs []string) (map[string][]OrderItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, order_id, product_id, quantity
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY product_id`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]OrderItem, len(orderIDs))
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity); err != nil {
			return nil, err
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}

func (s *PgStore) listByUserQuery(userID string, skip, take int) sq.SelectBuilder {
	q := s.sb.Select(orderColumns).From("orders").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC")
	if skip > 0 {
		q = q.Offset(uint64(skip))
	}
	if take > 0 {
		q = q.Limit(uint64(take))
	}
	return q
}

func (s *PgStore) ListByUser(ctx context.Context, userID string, skip, take int) ([]Order, error) {
	sql, args, err := s.listByUserQuery(userID, skip, take).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	out := []Order{}
	ids := []string{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}

	items, err := s.items(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Items = append(out[i].Items, items[out[i].ID]...)
	}
	return out, nil
}

func (s *PgStore) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

func (s *PgStore) updateQuery(id string, p Patch) sq.UpdateBuilder {
	return s.sb.Update("orders").
		SetMap(p.columns()).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id})
}

func (s *PgStore) Update(ctx context.Context, id string, p Patch) (*Order, error) {
	if !validID(id) {
		return nil, ErrOrderNotFound
	}
	sql, args, err := s.updateQuery(id, p).ToSql()
	if err != nil {
		return nil, err
	}
	ct, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("update order %s: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrOrderNotFound
	}
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderVanished
	}
	return o, nil
}

func (s *PgStore) Delete(ctx context.Context, id string) (*Order, error) {
	if !validID(id) {
		return nil, nil
	}
	o, err := scanOrder(s.db.QueryRow(ctx, `DELETE FROM orders WHERE id = $1 RETURNING `+orderColumns, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete order %s: %w", id, err)
	}
	return o, nil
}

func (s *PgStore) RemoveItems(ctx context.Context, orderID string, productIDs []string) error {
	if len(productIDs) == 0 || !validID(orderID) {
		return nil
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx,
		`DELETE FROM order_items WHERE order_id = $1 AND product_id = ANY($2)`,
		orderID, productIDs)
	if err != nil {
		return fmt.Errorf("remove order items: %w", err)
	}
	if ct.RowsAffected() > 0 {
		if _, err := tx.Exec(ctx, touchOrderSQL, orderID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *PgStore) IncrementItems(ctx context.Context, orderID string, items []ItemDelta) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, it := range items {
		if _, err := tx.Exec(ctx, upsertItemSQL, uuid.NewString(), orderID, it.ProductID, it.Amount); err != nil {
			return fmt.Errorf("increment order item %s: %w", it.ProductID, err)
		}
	}
	if _, err := tx.Exec(ctx, touchOrderSQL, orderID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
