// Package handler exposes the HTTP surface: catalog reads, cart
// manipulation, quoting and checkout. Every response is wrapped in the
// uniform envelope produced by response.go.
package handler

import (
	"net/http"

	"github.com/donprecious/pizza-order-api/internal/domain/cart"
	"github.com/donprecious/pizza-order-api/internal/domain/catalog"
	"github.com/donprecious/pizza-order-api/internal/domain/order"
)

// Handler routes HTTP requests to the domain services.
type Handler struct {
	catalog catalog.Repository
	carts   *cart.Service
	orders  *order.Service
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(cat catalog.Repository, carts *cart.Service, orders *order.Service) *Handler {
	return &Handler{
		catalog: cat,
		carts:   carts,
		orders:  orders,
	}
}

// RouteOptions carries per-route wrappers applied at registration time.
// Nil wrappers leave the route bare.
type RouteOptions struct {
	// CartWrite wraps the cart mutation endpoints.
	CartWrite func(http.Handler) http.Handler
	// Checkout wraps the order creation endpoint.
	Checkout func(http.Handler) http.Handler
}

// Routes registers every endpoint on the given mux.
func (h *Handler) Routes(mux *http.ServeMux, opts RouteOptions) {
	wrap := func(fn http.HandlerFunc, mw func(http.Handler) http.Handler) http.Handler {
		if mw == nil {
			return fn
		}
		return mw(fn)
	}

	mux.HandleFunc("GET /api/pizzas", h.ListPizzas)
	mux.HandleFunc("GET /api/pizzas/{id}", h.GetPizza)
	mux.HandleFunc("GET /api/extras", h.ListExtras)

	mux.Handle("POST /api/carts/items", wrap(h.AddCartItem, opts.CartWrite))
	mux.HandleFunc("GET /api/carts", h.GetCart)
	mux.Handle("DELETE /api/carts/items", wrap(h.ClearCart, opts.CartWrite))

	mux.Handle("POST /api/orders", wrap(h.CreateOrder, opts.Checkout))
	mux.HandleFunc("POST /api/orders/quote", h.QuoteOrder)
	mux.HandleFunc("GET /api/orders/{id}", h.GetOrder)
	mux.HandleFunc("GET /api/orders", h.ListOrders)
}
