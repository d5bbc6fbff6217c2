// Package quote prices an arbitrary list of order lines against the current
// catalog. It is the single pricing authority: both the pre-checkout quote
// endpoint and the checkout workflow go through Engine.Calculate, and the
// engine never writes, so quoting is idempotent against an unchanged catalog.
package quote

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/donprecious/pizza-order-api/internal/domain/catalog"
	"github.com/donprecious/pizza-order-api/internal/domain/pricing"
)

// MaxQuantity is the largest quantity accepted on a single line.
const MaxQuantity = 99

// ErrEmptyLines is returned when a quote is requested for zero lines.
var ErrEmptyLines = errors.New("lines required")

// InvalidQuantityError indicates a line with a quantity outside 1..MaxQuantity.
type InvalidQuantityError struct {
	PizzaID  uuid.UUID
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity %d for pizza %s must be between 1 and %d", e.Quantity, e.PizzaID, MaxQuantity)
}

// LineInput is one requested (pizza, quantity, extras) selection.
type LineInput struct {
	PizzaID  uuid.UUID
	Quantity int
	ExtraIDs []uuid.UUID
}

// Line is a priced line with unit amounts frozen at quote time.
type Line struct {
	PizzaID         uuid.UUID
	Quantity        int
	ExtraIDs        []uuid.UUID
	UnitBasePrice   decimal.Decimal
	UnitExtrasTotal decimal.Decimal
	LineTotal       decimal.Decimal
}

// Quote is a priced-but-not-persisted set of lines with aggregate totals.
// GrandTotal = Subtotal + ExtrasTotal always holds.
type Quote struct {
	Subtotal    decimal.Decimal
	ExtrasTotal decimal.Decimal
	GrandTotal  decimal.Decimal
	Lines       []Line
}

// Engine computes quotes from the catalog. It is stateless; a fresh catalog
// read backs every calculation, so price changes take effect on the next call.
type Engine struct {
	catalog catalog.Repository
}

// NewEngine creates a quote Engine reading from the given catalog.
func NewEngine(cat catalog.Repository) *Engine {
	return &Engine{catalog: cat}
}

// Calculate resolves and prices every line. Any pizza or extra id that does
// not resolve to an active catalog entity fails the whole quote with a
// not-found error naming the offending id; nothing is partially priced.
func (e *Engine) Calculate(ctx context.Context, lines []LineInput) (*Quote, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyLines
	}

	q := &Quote{
		Subtotal:    decimal.Zero,
		ExtrasTotal: decimal.Zero,
		Lines:       make([]Line, 0, len(lines)),
	}

	for _, in := range lines {
		if in.Quantity < 1 || in.Quantity > MaxQuantity {
			return nil, &InvalidQuantityError{PizzaID: in.PizzaID, Quantity: in.Quantity}
		}

		pizza, err := e.catalog.GetPizza(ctx, in.PizzaID)
		if err != nil {
			return nil, err
		}
		if !pizza.Active {
			return nil, &catalog.PizzaNotFoundError{ID: in.PizzaID}
		}

		extras, err := e.resolveExtras(ctx, in.ExtraIDs)
		if err != nil {
			return nil, err
		}

		qty := decimal.NewFromInt(int64(in.Quantity))
		line := Line{
			PizzaID:         in.PizzaID,
			Quantity:        in.Quantity,
			ExtraIDs:        in.ExtraIDs,
			UnitBasePrice:   pricing.Round2(pizza.BasePrice),
			UnitExtrasTotal: pricing.ExtrasTotal(extras),
			LineTotal:       pricing.LineTotal(pizza, extras, in.Quantity),
		}
		q.Lines = append(q.Lines, line)

		q.Subtotal = q.Subtotal.Add(pricing.Round2(line.UnitBasePrice.Mul(qty)))
		q.ExtrasTotal = q.ExtrasTotal.Add(pricing.Round2(line.UnitExtrasTotal.Mul(qty)))
	}

	q.GrandTotal = q.Subtotal.Add(q.ExtrasTotal)
	return q, nil
}

// resolveExtras fetches the requested extras in one batch and maps every
// requested occurrence back to its entity, so a repeated extra id is priced
// per occurrence. The first id that is missing or inactive fails the lookup.
func (e *Engine) resolveExtras(ctx context.Context, ids []uuid.UUID) ([]catalog.Extra, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	fetched, err := e.catalog.GetExtras(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]catalog.Extra, len(fetched))
	for _, ex := range fetched {
		byID[ex.ID] = ex
	}

	extras := make([]catalog.Extra, 0, len(ids))
	for _, id := range ids {
		ex, ok := byID[id]
		if !ok || !ex.Active {
			return nil, &catalog.ExtraNotFoundError{ID: id}
		}
		extras = append(extras, ex)
	}
	return extras, nil
}
