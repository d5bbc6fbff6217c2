package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/donprecious/pizza-order-api/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders (id, identifier, customer_id, status, currency, subtotal, extras_total, grand_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	createOrderLineSQL = `INSERT INTO order_lines (id, order_id, pizza_id, quantity, extra_ids, unit_base_price, unit_extras_total, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	getOrderByIDSQL = `SELECT id, identifier, customer_id, status, currency, subtotal, extras_total, grand_total, created_at
		FROM orders WHERE id = $1`

	listOrdersByIdentifierSQL = `SELECT id, identifier, customer_id, status, currency, subtotal, extras_total, grand_total, created_at
		FROM orders WHERE identifier = $1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`

	countOrdersByIdentifierSQL = `SELECT count(*) FROM orders WHERE identifier = $1`

	getOrderLinesSQL = `SELECT id, order_id, pizza_id, quantity, extra_ids, unit_base_price, unit_extras_total, line_total
		FROM order_lines WHERE order_id = ANY($1) ORDER BY id`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	store *Store
}

// NewOrderRepository returns an OrderRepository using the given store.
func NewOrderRepository(store *Store) *OrderRepository {
	return &OrderRepository{store: store}
}

// Create persists the order and its lines. The caller wraps the call in a
// transactional scope, so a failed line insert rolls back the order row too.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) (*order.Order, error) {
	db := r.store.db(ctx)

	err := db.QueryRow(ctx, createOrderSQL,
		o.ID, o.Identifier, o.CustomerID, o.Status, o.Currency,
		o.Subtotal, o.ExtrasTotal, o.GrandTotal,
	).Scan(&o.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating order %s: %w", o.ID, err)
	}

	for i := range o.Lines {
		l := &o.Lines[i]
		_, err := db.Exec(ctx, createOrderLineSQL,
			l.ID, o.ID, l.PizzaID, l.Quantity, extraIDsJSON(l.ExtraIDs),
			l.UnitBasePrice, l.UnitExtrasTotal, l.LineTotal,
		)
		if err != nil {
			return nil, fmt.Errorf("creating order line: %w", err)
		}
	}
	return o, nil
}

// Get returns the order with its lines, or *order.NotFoundError.
func (r *OrderRepository) Get(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	rows, err := r.store.db(ctx).Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %s: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &order.NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("getting order %s: %w", id, err)
	}

	if err := r.attachLines(ctx, []order.Order{o}); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByIdentifier returns one page of the identifier's orders, newest
// first, each with its lines.
func (r *OrderRepository) ListByIdentifier(ctx context.Context, identifier string, limit, offset int) ([]order.Order, error) {
	rows, err := r.store.db(ctx).Query(ctx, listOrdersByIdentifierSQL, identifier, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing orders for %q: %w", identifier, err)
	}

	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders for %q: %w", identifier, err)
	}
	if err := r.attachLines(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// CountByIdentifier returns the identifier's total order count.
func (r *OrderRepository) CountByIdentifier(ctx context.Context, identifier string) (int64, error) {
	var n int64
	err := r.store.db(ctx).QueryRow(ctx, countOrdersByIdentifierSQL, identifier).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting orders for %q: %w", identifier, err)
	}
	return n, nil
}

// attachLines loads the lines for the given orders in one query.
func (r *OrderRepository) attachLines(ctx context.Context, orders []order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(orders))
	byID := make(map[uuid.UUID]*order.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		byID[orders[i].ID] = &orders[i]
	}

	rows, err := r.store.db(ctx).Query(ctx, getOrderLinesSQL, ids)
	if err != nil {
		return fmt.Errorf("loading order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			l       order.Line
			orderID uuid.UUID
		)
		err := rows.Scan(&l.ID, &orderID, &l.PizzaID, &l.Quantity, &l.ExtraIDs,
			&l.UnitBasePrice, &l.UnitExtrasTotal, &l.LineTotal)
		if err != nil {
			return fmt.Errorf("scanning order line: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Lines = append(o.Lines, l)
		}
	}
	return rows.Err()
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(&o.ID, &o.Identifier, &o.CustomerID, &o.Status, &o.Currency,
		&o.Subtotal, &o.ExtrasTotal, &o.GrandTotal, &o.CreatedAt)
	return o, err
}
