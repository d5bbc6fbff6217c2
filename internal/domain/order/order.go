// Package order owns checkout: turning a priced set of lines into an
// immutable persisted order linked to its customer.
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatusCreated is the only status this core emits; no further lifecycle
// transitions are modeled.
const StatusCreated = "created"

// NotFoundError indicates a requested order does not exist.
type NotFoundError struct {
	ID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("order %s not found", e.ID)
}

// Order is an immutable checkout result. Totals and line prices are frozen
// at creation time and are never recomputed from the catalog.
type Order struct {
	ID          uuid.UUID
	Identifier  string
	CustomerID  uuid.UUID
	Status      string
	Currency    string
	Subtotal    decimal.Decimal
	ExtrasTotal decimal.Decimal
	GrandTotal  decimal.Decimal
	Lines       []Line
	CreatedAt   time.Time
}

// Line is one frozen order line. UnitBasePrice and UnitExtrasTotal are the
// per-unit amounts computed at quote time; LineTotal includes the quantity.
type Line struct {
	ID              uuid.UUID
	PizzaID         uuid.UUID
	Quantity        int
	ExtraIDs        []uuid.UUID
	UnitBasePrice   decimal.Decimal
	UnitExtrasTotal decimal.Decimal
	LineTotal       decimal.Decimal
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create persists the order and all its lines as one unit and returns
	// the stored aggregate.
	Create(ctx context.Context, o *Order) (*Order, error)
	// Get returns the order with its lines, or *NotFoundError.
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	// ListByIdentifier returns orders for the identifier, newest first.
	ListByIdentifier(ctx context.Context, identifier string, limit, offset int) ([]Order, error)
	// CountByIdentifier returns the total number of orders for the identifier.
	CountByIdentifier(ctx context.Context, identifier string) (int64, error)
}
