package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/donprecious/pizza-order-api/internal/domain/cart"
)

const (
	getCartByIdentifierSQL = `SELECT id, identifier, created_at
		FROM carts WHERE identifier = $1`

	// ON CONFLICT DO NOTHING keeps a lost create race from aborting the
	// surrounding transaction; zero affected rows signals the loss.
	createCartSQL = `INSERT INTO carts (id, identifier)
		VALUES ($1, $2)
		ON CONFLICT (identifier) DO NOTHING`

	getCartLinesSQL = `SELECT id, pizza_id, quantity, extra_ids, created_at
		FROM cart_lines WHERE cart_id = $1 ORDER BY created_at, id`

	addCartLineSQL = `INSERT INTO cart_lines (id, cart_id, pizza_id, quantity, extra_ids)
		VALUES ($1, $2, $3, $4, $5)`

	clearCartSQL = `DELETE FROM cart_lines WHERE cart_id = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	store *Store
}

// NewCartRepository returns a CartRepository using the given store.
func NewCartRepository(store *Store) *CartRepository {
	return &CartRepository{store: store}
}

// FindByIdentifier returns the cart with its lines, or cart.ErrNotFound.
func (r *CartRepository) FindByIdentifier(ctx context.Context, identifier string) (*cart.Cart, error) {
	db := r.store.db(ctx)

	var c cart.Cart
	err := db.QueryRow(ctx, getCartByIdentifierSQL, identifier).
		Scan(&c.ID, &c.Identifier, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrNotFound
		}
		return nil, fmt.Errorf("finding cart %q: %w", identifier, err)
	}

	rows, err := db.Query(ctx, getCartLinesSQL, c.ID)
	if err != nil {
		return nil, fmt.Errorf("loading cart lines: %w", err)
	}
	c.Lines, err = pgx.CollectRows(rows, scanCartLine)
	if err != nil {
		return nil, fmt.Errorf("loading cart lines: %w", err)
	}
	return &c, nil
}

// Create inserts the cart row. A concurrent insert for the same identifier
// surfaces as cart.ErrAlreadyExists; callers retry the lookup.
func (r *CartRepository) Create(ctx context.Context, c *cart.Cart) error {
	tag, err := r.store.db(ctx).Exec(ctx, createCartSQL, c.ID, c.Identifier)
	if err != nil {
		return fmt.Errorf("creating cart %q: %w", c.Identifier, err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrAlreadyExists
	}
	return nil
}

// AddLine appends one line to the cart.
func (r *CartRepository) AddLine(ctx context.Context, cartID uuid.UUID, l *cart.Line) error {
	_, err := r.store.db(ctx).Exec(ctx, addCartLineSQL,
		l.ID, cartID, l.PizzaID, l.Quantity, extraIDsJSON(l.ExtraIDs),
	)
	if err != nil {
		return fmt.Errorf("adding cart line: %w", err)
	}
	return nil
}

// Clear deletes every line of the cart. The cart row itself stays.
func (r *CartRepository) Clear(ctx context.Context, cartID uuid.UUID) error {
	_, err := r.store.db(ctx).Exec(ctx, clearCartSQL, cartID)
	if err != nil {
		return fmt.Errorf("clearing cart %s: %w", cartID, err)
	}
	return nil
}

func scanCartLine(row pgx.CollectableRow) (cart.Line, error) {
	var l cart.Line
	err := row.Scan(&l.ID, &l.PizzaID, &l.Quantity, &l.ExtraIDs, &l.CreatedAt)
	return l, err
}

// extraIDsJSON normalizes a nil slice so the JSONB column stores [] rather
// than null.
func extraIDsJSON(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}
