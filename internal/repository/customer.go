package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/donprecious/pizza-order-api/internal/domain/customer"
)

const (
	getCustomerByIdentifierSQL = `SELECT id, identifier, full_name, full_address, created_at, updated_at
		FROM customers WHERE identifier = $1`

	createCustomerSQL = `INSERT INTO customers (id, identifier, full_name, full_address)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (identifier) DO NOTHING`

	updateCustomerSQL = `UPDATE customers
		SET full_name = $2, full_address = $3, updated_at = now()
		WHERE id = $1`
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	store *Store
}

// NewCustomerRepository returns a CustomerRepository using the given store.
func NewCustomerRepository(store *Store) *CustomerRepository {
	return &CustomerRepository{store: store}
}

// FindByIdentifier returns the customer, or customer.ErrNotFound.
func (r *CustomerRepository) FindByIdentifier(ctx context.Context, identifier string) (*customer.Customer, error) {
	var c customer.Customer
	err := r.store.db(ctx).QueryRow(ctx, getCustomerByIdentifierSQL, identifier).
		Scan(&c.ID, &c.Identifier, &c.FullName, &c.FullAddress, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("finding customer %q: %w", identifier, err)
	}
	return &c, nil
}

// Create inserts the customer row. A concurrent insert for the same
// identifier surfaces as customer.ErrAlreadyExists; callers retry the lookup.
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	tag, err := r.store.db(ctx).Exec(ctx, createCustomerSQL,
		c.ID, c.Identifier, c.FullName, c.FullAddress,
	)
	if err != nil {
		return fmt.Errorf("creating customer %q: %w", c.Identifier, err)
	}
	if tag.RowsAffected() == 0 {
		return customer.ErrAlreadyExists
	}
	return nil
}

// Update refreshes the customer's name and address.
func (r *CustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	_, err := r.store.db(ctx).Exec(ctx, updateCustomerSQL, c.ID, c.FullName, c.FullAddress)
	if err != nil {
		return fmt.Errorf("updating customer %q: %w", c.Identifier, err)
	}
	return nil
}
