package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/donprecious/pizza-order-api/internal/domain/customer"
	"github.com/donprecious/pizza-order-api/internal/domain/quote"
)

// TxRunner executes a function within one transactional scope. The function
// receives a context bound to the transaction; every repository call made
// with it joins the same commit/rollback boundary.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// CreateInput holds the checkout request: who is ordering and what.
type CreateInput struct {
	Identifier      string
	CustomerName    string
	CustomerAddress string
	Lines           []quote.LineInput
}

// Service encapsulates the checkout workflow. Pricing is delegated entirely
// to the quote engine; the service never computes amounts itself.
type Service struct {
	customers customer.Repository
	orders    Repository
	quotes    *quote.Engine
	tx        TxRunner
	currency  string
}

// NewService creates an order Service with the required dependencies.
// currency is the shop's single configured currency code, stamped on every
// order.
func NewService(
	customers customer.Repository,
	orders Repository,
	quotes *quote.Engine,
	tx TxRunner,
	currency string,
) *Service {
	return &Service{
		customers: customers,
		orders:    orders,
		quotes:    quotes,
		tx:        tx,
		currency:  currency,
	}
}

// Create runs the checkout workflow as one atomic unit: upsert the customer
// by identifier, price the lines through the quote engine, and persist the
// order with its lines. Any failure rolls back the whole unit; no partial
// order or line rows survive.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Order, error) {
	if in.Identifier == "" {
		return nil, customer.ErrMissingIdentifier
	}

	var created *Order
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		cust, err := s.upsertCustomer(ctx, in)
		if err != nil {
			return err
		}

		q, err := s.quotes.Calculate(ctx, in.Lines)
		if err != nil {
			return err
		}

		o := &Order{
			ID:          uuid.New(),
			Identifier:  in.Identifier,
			CustomerID:  cust.ID,
			Status:      StatusCreated,
			Currency:    s.currency,
			Subtotal:    q.Subtotal,
			ExtrasTotal: q.ExtrasTotal,
			GrandTotal:  q.GrandTotal,
			Lines:       make([]Line, len(q.Lines)),
		}
		for i, ql := range q.Lines {
			o.Lines[i] = Line{
				ID:              uuid.New(),
				PizzaID:         ql.PizzaID,
				Quantity:        ql.Quantity,
				ExtraIDs:        ql.ExtraIDs,
				UnitBasePrice:   ql.UnitBasePrice,
				UnitExtrasTotal: ql.UnitExtrasTotal,
				LineTotal:       ql.LineTotal,
			}
		}

		created, err = s.orders.Create(ctx, o)
		if err != nil {
			return errors.Wrap(err, "create order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Quote prices the lines without persisting anything.
func (s *Service) Quote(ctx context.Context, lines []quote.LineInput) (*quote.Quote, error) {
	return s.quotes.Calculate(ctx, lines)
}

// Get returns an order by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.orders.Get(ctx, id)
}

// List returns one page of the identifier's orders, newest first, plus the
// total count for pagination.
func (s *Service) List(ctx context.Context, identifier string, page, size int) ([]Order, int64, error) {
	if identifier == "" {
		return nil, 0, customer.ErrMissingIdentifier
	}
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	orders, err := s.orders.ListByIdentifier(ctx, identifier, size, (page-1)*size)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list orders")
	}
	total, err := s.orders.CountByIdentifier(ctx, identifier)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count orders")
	}
	return orders, total, nil
}

// upsertCustomer resolves the customer by identifier, refreshing the name
// and address in place when they changed, and creates the row when absent.
// A lost create race is recovered by retrying the lookup exactly once.
func (s *Service) upsertCustomer(ctx context.Context, in CreateInput) (*customer.Customer, error) {
	cust, err := s.customers.FindByIdentifier(ctx, in.Identifier)
	switch {
	case err == nil:
		return s.refreshCustomer(ctx, cust, in)
	case !errors.Is(err, customer.ErrNotFound):
		return nil, errors.Wrap(err, "find customer")
	}

	cust = &customer.Customer{
		ID:          uuid.New(),
		Identifier:  in.Identifier,
		FullName:    in.CustomerName,
		FullAddress: in.CustomerAddress,
	}
	err = s.customers.Create(ctx, cust)
	if err == nil {
		return cust, nil
	}
	if !errors.Is(err, customer.ErrAlreadyExists) {
		return nil, errors.Wrap(err, "create customer")
	}

	cust, err = s.customers.FindByIdentifier(ctx, in.Identifier)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return nil, customer.ErrAlreadyExists
		}
		return nil, errors.Wrap(err, "refind customer")
	}
	return s.refreshCustomer(ctx, cust, in)
}

func (s *Service) refreshCustomer(ctx context.Context, cust *customer.Customer, in CreateInput) (*customer.Customer, error) {
	if cust.FullName == in.CustomerName && cust.FullAddress == in.CustomerAddress {
		return cust, nil
	}
	cust.FullName = in.CustomerName
	cust.FullAddress = in.CustomerAddress
	cust.UpdatedAt = time.Now()
	if err := s.customers.Update(ctx, cust); err != nil {
		return nil, errors.Wrap(err, "update customer")
	}
	return cust, nil
}
