// Package cart owns the mutable pre-checkout aggregate: one cart per
// caller-supplied identifier, holding an ordered list of lines.
package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxQuantity is the largest quantity accepted on a single cart line.
const MaxQuantity = 99

// ErrNotFound is returned when no cart exists for a lookup.
var ErrNotFound = errors.New("cart not found")

// ErrAlreadyExists is returned by Create when another cart already holds the
// identifier. Callers treat it as "someone else created it" and retry the
// lookup.
var ErrAlreadyExists = errors.New("cart already exists")

// ErrMissingIdentifier is returned when a cart operation is invoked without
// the caller-supplied unique identifier.
var ErrMissingIdentifier = errors.New("unique identifier required")

// InvalidQuantityError indicates a line add with a quantity outside
// 1..MaxQuantity.
type InvalidQuantityError struct {
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity %d must be between 1 and %d", e.Quantity, MaxQuantity)
}

// Cart is the aggregate root. Lines are ordered by insertion.
type Cart struct {
	ID         uuid.UUID
	Identifier string
	Lines      []Line
	CreatedAt  time.Time
}

// Line is one (pizza, quantity, extras) selection. Two lines may reference
// the same pizza; every add appends a new line.
type Line struct {
	ID        uuid.UUID
	PizzaID   uuid.UUID
	Quantity  int
	ExtraIDs  []uuid.UUID
	CreatedAt time.Time
}

// LineView is a Line priced against the current catalog. UnitPrice includes
// the extras.
type LineView struct {
	Line
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// View is a cart with all lines priced. The cart models no charges beyond
// its lines, so GrandTotal always equals Subtotal.
type View struct {
	ID         uuid.UUID
	Identifier string
	Lines      []LineView
	Subtotal   decimal.Decimal
	GrandTotal decimal.Decimal
}

// Repository defines persistence operations for carts. At most one cart
// exists per identifier.
type Repository interface {
	// FindByIdentifier returns the cart with its lines, or ErrNotFound.
	FindByIdentifier(ctx context.Context, identifier string) (*Cart, error)
	// Create persists an empty cart, or returns ErrAlreadyExists when the
	// identifier is already taken.
	Create(ctx context.Context, c *Cart) error
	// AddLine appends a line to the cart.
	AddLine(ctx context.Context, cartID uuid.UUID, l *Line) error
	// Clear removes every line from the cart.
	Clear(ctx context.Context, cartID uuid.UUID) error
}
