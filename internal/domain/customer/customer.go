// Package customer holds the customer entity, keyed by the same opaque
// identifier as carts.
package customer

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// ErrNotFound is returned when no customer exists for a lookup.
var ErrNotFound = errors.New("customer not found")

// ErrAlreadyExists is returned by Create when another customer already holds
// the identifier. Callers treat it as "someone else created it" and retry
// the lookup.
var ErrAlreadyExists = errors.New("customer already exists")

// ErrMissingIdentifier is returned when a workflow is invoked without the
// caller-supplied unique identifier.
var ErrMissingIdentifier = errors.New("unique identifier required")

// Customer is the order-owning party, upserted by identifier on checkout.
type Customer struct {
	ID          uuid.UUID
	Identifier  string
	FullName    string
	FullAddress string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Repository defines persistence operations for customers. At most one
// customer exists per identifier.
type Repository interface {
	FindByIdentifier(ctx context.Context, identifier string) (*Customer, error)
	Create(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error
}
