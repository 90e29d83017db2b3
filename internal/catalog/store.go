package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/ariefcatur/go-shop-orders/internal/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Store is the persistence contract of the product aggregate. Reads return
// (nil, nil) when the product does not exist.
type Store interface {
	Create(ctx context.Context, p NewProduct) (*Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	Update(ctx context.Context, id string, p Patch) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	ListByState(ctx context.Context, state State, skip, take int) ([]Product, error)
	CountByState(ctx context.Context, state State) (int, error)
}

var productColumns = []string{
	"id", "name", "description", "price", "stock_amount", "state", "deleted_at", "created_at", "updated_at",
}

type PgStore struct {
	db postgres.DBTX
	sb sq.StatementBuilderType
}

func NewPgStore(db postgres.DBTX) *PgStore {
	return &PgStore{db: db, sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	var state string
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.StockAmount, &state,
		&p.DeletedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.State = State(state)
	return &p, nil
}

func (s *PgStore) Create(ctx context.Context, in NewProduct) (*Product, error) {
	sql, args, err := s.sb.Insert("products").
		Columns("id", "name", "description", "price", "stock_amount", "state").
		Values(uuid.NewString(), in.Name, in.Description, in.Price, in.StockAmount, string(StateActive)).
		Suffix("RETURNING " + joinColumns()).
		ToSql()
	if err != nil {
		return nil, err
	}
	p, err := scanProduct(s.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

func (s *PgStore) Get(ctx context.Context, id string) (*Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	sql, args, err := s.sb.Select(productColumns...).From("products").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	p, err := scanProduct(s.db.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

func (s *PgStore) updateQuery(id string, p Patch) sq.UpdateBuilder {
	return s.sb.Update("products").
		SetMap(p.columns()).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns())
}

func (s *PgStore) Update(ctx context.Context, id string, patch Patch) (*Product, error) {
	sql, args, err := s.updateQuery(id, patch).ToSql()
	if err != nil {
		return nil, err
	}
	p, err := scanProduct(s.db.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update product %s: %w", id, err)
	}
	return p, nil
}

func (s *PgStore) List(ctx context.Context) ([]Product, error) {
	return s.query(ctx, s.sb.Select(productColumns...).From("products").OrderBy("created_at"))
}

func (s *PgStore) listByStateQuery(state State, skip, take int) sq.SelectBuilder {
	q := s.sb.Select(productColumns...).From("products").
		Where(sq.Eq{"state": string(state)}).
		OrderBy("created_at")
	if skip > 0 {
		q = q.Offset(uint64(skip))
	}
	if take > 0 {
		q = q.Limit(uint64(take))
	}
	return q
}

func (s *PgStore) ListByState(ctx context.Context, state State, skip, take int) ([]Product, error) {
	return s.query(ctx, s.listByStateQuery(state, skip, take))
}

func (s *PgStore) CountByState(ctx context.Context, state State) (int, error) {
	sql, args, err := s.sb.Select("COUNT(*)").From("products").Where(sq.Eq{"state": string(state)}).ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

func (s *PgStore) query(ctx context.Context, q sq.SelectBuilder) ([]Product, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func joinColumns() string { return strings.Join(productColumns, ", ") }
