package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/donprecious/pizza-order-api/internal/domain/catalog"
)

const (
	listPizzasSQL = `SELECT id, name, base_price, image_url, ingredients, is_active
		FROM pizzas WHERE is_active ORDER BY name`

	getPizzaByIDSQL = `SELECT id, name, base_price, image_url, ingredients, is_active
		FROM pizzas WHERE id = $1`

	listExtrasSQL = `SELECT id, name, price, is_active
		FROM extras WHERE is_active ORDER BY name`

	getExtraByIDSQL = `SELECT id, name, price, is_active
		FROM extras WHERE id = $1`

	getExtrasByIDsSQL = `SELECT id, name, price, is_active
		FROM extras WHERE id = ANY($1)`
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
type CatalogRepository struct {
	store *Store
}

// NewCatalogRepository returns a CatalogRepository using the given store.
func NewCatalogRepository(store *Store) *CatalogRepository {
	return &CatalogRepository{store: store}
}

// ListPizzas returns the active pizzas ordered by name.
func (r *CatalogRepository) ListPizzas(ctx context.Context) ([]catalog.Pizza, error) {
	rows, err := r.store.db(ctx).Query(ctx, listPizzasSQL)
	if err != nil {
		return nil, fmt.Errorf("listing pizzas: %w", err)
	}
	return pgx.CollectRows(rows, scanPizza)
}

// GetPizza returns a single pizza by id, active or not.
func (r *CatalogRepository) GetPizza(ctx context.Context, id uuid.UUID) (*catalog.Pizza, error) {
	rows, err := r.store.db(ctx).Query(ctx, getPizzaByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting pizza %s: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPizza)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &catalog.PizzaNotFoundError{ID: id}
		}
		return nil, fmt.Errorf("getting pizza %s: %w", id, err)
	}
	return &p, nil
}

// ListExtras returns the active extras ordered by name.
func (r *CatalogRepository) ListExtras(ctx context.Context) ([]catalog.Extra, error) {
	rows, err := r.store.db(ctx).Query(ctx, listExtrasSQL)
	if err != nil {
		return nil, fmt.Errorf("listing extras: %w", err)
	}
	return pgx.CollectRows(rows, scanExtra)
}

// GetExtra returns a single extra by id, active or not.
func (r *CatalogRepository) GetExtra(ctx context.Context, id uuid.UUID) (*catalog.Extra, error) {
	rows, err := r.store.db(ctx).Query(ctx, getExtraByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting extra %s: %w", id, err)
	}

	ex, err := pgx.CollectExactlyOneRow(rows, scanExtra)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &catalog.ExtraNotFoundError{ID: id}
		}
		return nil, fmt.Errorf("getting extra %s: %w", id, err)
	}
	return &ex, nil
}

// GetExtras returns the extras matching any of the given ids. Missing ids
// are not an error; callers detect gaps against the requested set.
func (r *CatalogRepository) GetExtras(ctx context.Context, ids []uuid.UUID) ([]catalog.Extra, error) {
	rows, err := r.store.db(ctx).Query(ctx, getExtrasByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting extras by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanExtra)
}

func scanPizza(row pgx.CollectableRow) (catalog.Pizza, error) {
	var p catalog.Pizza
	err := row.Scan(&p.ID, &p.Name, &p.BasePrice, &p.ImageURL, &p.Ingredients, &p.Active)
	return p, err
}

func scanExtra(row pgx.CollectableRow) (catalog.Extra, error) {
	var ex catalog.Extra
	err := row.Scan(&ex.ID, &ex.Name, &ex.Price, &ex.Active)
	return ex, err
}
