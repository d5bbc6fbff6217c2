// Package catalog holds the read-only pizza and extra reference entities.
// The catalog is owned by the seeding tools; the order-taking core only
// reads it.
package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Pizza is a catalog reference entity. BasePrice excludes any extras.
type Pizza struct {
	ID          uuid.UUID
	Name        string
	BasePrice   decimal.Decimal
	ImageURL    string
	Ingredients []string
	Active      bool
}

// Extra is an add-on (extra cheese, mushrooms, ...) priced per unit of the
// pizza it is attached to.
type Extra struct {
	ID     uuid.UUID
	Name   string
	Price  decimal.Decimal
	Active bool
}

// PizzaNotFoundError indicates a referenced pizza does not exist or is no
// longer active.
type PizzaNotFoundError struct {
	ID uuid.UUID
}

func (e *PizzaNotFoundError) Error() string {
	return fmt.Sprintf("pizza %s not found", e.ID)
}

// ExtraNotFoundError indicates a referenced extra does not exist or is no
// longer active.
type ExtraNotFoundError struct {
	ID uuid.UUID
}

func (e *ExtraNotFoundError) Error() string {
	return fmt.Sprintf("extra %s not found", e.ID)
}

// Repository defines read operations for the catalog.
type Repository interface {
	// GetPizza returns the pizza with the given id, or *PizzaNotFoundError.
	// The caller is responsible for checking the Active flag.
	GetPizza(ctx context.Context, id uuid.UUID) (*Pizza, error)
	// GetExtra returns the extra with the given id, or *ExtraNotFoundError.
	GetExtra(ctx context.Context, id uuid.UUID) (*Extra, error)
	// GetExtras returns the extras matching any of the given ids. Missing ids
	// produce no error; callers detect gaps by comparing against the request.
	GetExtras(ctx context.Context, ids []uuid.UUID) ([]Extra, error)
	ListPizzas(ctx context.Context) ([]Pizza, error)
	ListExtras(ctx context.Context) ([]Extra, error)
}
