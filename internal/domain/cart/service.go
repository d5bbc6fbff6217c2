package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/donprecious/pizza-order-api/internal/domain/catalog"
	"github.com/donprecious/pizza-order-api/internal/domain/pricing"
)

// TxRunner executes a function within one transactional scope. The function
// receives a context bound to the transaction; every repository call made
// with it joins the same commit/rollback boundary.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service is the cart aggregate manager: lookup/creation by identifier,
// line appends, and priced cart materialization.
type Service struct {
	carts   Repository
	catalog catalog.Repository
	tx      TxRunner
}

// NewService creates a cart Service with the required dependencies.
func NewService(carts Repository, cat catalog.Repository, tx TxRunner) *Service {
	return &Service{
		carts:   carts,
		catalog: cat,
		tx:      tx,
	}
}

// AddLine resolves (or lazily creates) the identifier's cart, validates the
// referenced pizza and extras against the catalog, and appends a new line.
// It always appends: adding the same pizza twice yields two lines, since
// extras combinations are distinct selections. The returned view carries
// totals priced against the current catalog.
func (s *Service) AddLine(ctx context.Context, identifier string, pizzaID uuid.UUID, quantity int, extraIDs []uuid.UUID) (*View, error) {
	if identifier == "" {
		return nil, ErrMissingIdentifier
	}
	if quantity < 1 || quantity > MaxQuantity {
		return nil, &InvalidQuantityError{Quantity: quantity}
	}

	var view *View
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := s.getOrCreate(ctx, identifier)
		if err != nil {
			return err
		}

		// Validate every reference before any line is written.
		pizza, err := s.activePizza(ctx, pizzaID)
		if err != nil {
			return err
		}
		if _, err := s.activeExtras(ctx, extraIDs); err != nil {
			return err
		}

		line := &Line{
			ID:       uuid.New(),
			PizzaID:  pizza.ID,
			Quantity: quantity,
			ExtraIDs: extraIDs,
		}
		if err := s.carts.AddLine(ctx, c.ID, line); err != nil {
			return errors.Wrap(err, "add cart line")
		}
		c.Lines = append(c.Lines, *line)

		view, err = s.buildView(ctx, c)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Details returns the identifier's cart with every line priced. The cart is
// created lazily when absent, so a Details call on an unseen identifier
// returns an empty cart with an id.
func (s *Service) Details(ctx context.Context, identifier string) (*View, error) {
	if identifier == "" {
		return nil, ErrMissingIdentifier
	}

	var view *View
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := s.getOrCreate(ctx, identifier)
		if err != nil {
			return err
		}
		view, err = s.buildView(ctx, c)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Clear removes every line from the identifier's cart. Clearing an unseen
// identifier creates its empty cart and is a no-op beyond that.
func (s *Service) Clear(ctx context.Context, identifier string) error {
	if identifier == "" {
		return ErrMissingIdentifier
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := s.getOrCreate(ctx, identifier)
		if err != nil {
			return err
		}
		return s.carts.Clear(ctx, c.ID)
	})
}

// getOrCreate looks the cart up by identifier and creates it when absent.
// A lost create race (ErrAlreadyExists) is recovered by retrying the lookup
// exactly once; only a second miss surfaces as a failure.
func (s *Service) getOrCreate(ctx context.Context, identifier string) (*Cart, error) {
	c, err := s.carts.FindByIdentifier(ctx, identifier)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, errors.Wrap(err, "find cart")
	}

	c = &Cart{ID: uuid.New(), Identifier: identifier}
	err = s.carts.Create(ctx, c)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrAlreadyExists) {
		return nil, errors.Wrap(err, "create cart")
	}

	c, err = s.carts.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrAlreadyExists
		}
		return nil, errors.Wrap(err, "refind cart")
	}
	return c, nil
}

func (s *Service) activePizza(ctx context.Context, id uuid.UUID) (*catalog.Pizza, error) {
	pizza, err := s.catalog.GetPizza(ctx, id)
	if err != nil {
		return nil, err
	}
	if !pizza.Active {
		return nil, &catalog.PizzaNotFoundError{ID: id}
	}
	return pizza, nil
}

// activeExtras batch-fetches the requested extras and maps each requested
// occurrence to its entity; the first missing or inactive id fails the call.
func (s *Service) activeExtras(ctx context.Context, ids []uuid.UUID) ([]catalog.Extra, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	fetched, err := s.catalog.GetExtras(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get extras")
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

// buildView prices every line of the cart against the current catalog.
func (s *Service) buildView(ctx context.Context, c *Cart) (*View, error) {
	view := &View{
		ID:         c.ID,
		Identifier: c.Identifier,
		Lines:      make([]LineView, 0, len(c.Lines)),
		Subtotal:   decimal.Zero,
	}

	for _, line := range c.Lines {
		pizza, err := s.catalog.GetPizza(ctx, line.PizzaID)
		if err != nil {
			return nil, err
		}
		extras, err := s.activeExtras(ctx, line.ExtraIDs)
		if err != nil {
			return nil, err
		}

		lv := LineView{
			Line:       line,
			UnitPrice:  pricing.UnitPrice(pizza, extras),
			TotalPrice: pricing.LineTotal(pizza, extras, line.Quantity),
		}
		view.Lines = append(view.Lines, lv)
		view.Subtotal = pricing.Round2(view.Subtotal.Add(lv.TotalPrice))
	}

	view.GrandTotal = view.Subtotal
	return view, nil
}
