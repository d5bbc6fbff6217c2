//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkoutRequest struct {
	Customer customerRequest `json:"customer"`
	Lines    []lineRequest   `json:"lines"`
}

type customerRequest struct {
	Identifier  string `json:"unique_identifier"`
	FullName    string `json:"fullname"`
	FullAddress string `json:"full_address"`
}

type lineRequest struct {
	PizzaID  string   `json:"pizza_id"`
	Quantity int      `json:"quantity"`
	Extras   []string `json:"extras,omitempty"`
}

type quoteRequest struct {
	Lines []lineRequest `json:"lines"`
}

func TestCheckout(t *testing.T) {
	pizzas, extras := findCatalog(t)
	identifier := fmt.Sprintf("order-%s", uuid.NewString())

	resp := doPost(t, "/api/orders", checkoutRequest{
		Customer: customerRequest{
			Identifier:  identifier,
			FullName:    "John Doe",
			FullAddress: "123 Test St",
		},
		Lines: []lineRequest{
			{PizzaID: pizzas["Margherita"].ID, Quantity: 2, Extras: []string{extras["Extra Cheese"].ID}},
			{PizzaID: pizzas["Pepperoni"].ID, Quantity: 1, Extras: []string{extras["Extra Cheese"].ID, extras["Mushrooms"].ID}},
		},
	})
	env := decodeEnvelope(t, resp)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "message: %s", env.Message)

	o := decodeData[orderResponse](t, env)
	assert.Equal(t, "created", o.Status)
	assert.Equal(t, "USD", o.Currency)
	assert.Equal(t, 41.97, o.Subtotal)
	assert.Equal(t, 9.25, o.ExtrasTotal)
	assert.Equal(t, 51.22, o.GrandTotal)
	require.Len(t, o.Lines, 2)
	assert.Equal(t, 30.98, o.Lines[0].LineTotal)
	assert.Equal(t, 20.24, o.Lines[1].LineTotal)

	// Retrievable by id with the totals frozen.
	env = decodeEnvelope(t, doGet(t, "/api/orders/"+o.ID))
	got := decodeData[orderResponse](t, env)
	assert.Equal(t, o.GrandTotal, got.GrandTotal)
	assert.Len(t, got.Lines, 2)
}

func TestCheckoutDoesNotClearCart(t *testing.T) {
	pizzas, _ := findCatalog(t)
	identifier := fmt.Sprintf("order-%s", uuid.NewString())

	resp := doPost(t, "/api/carts/items", addCartItemRequest{
		Identifier: identifier,
		PizzaID:    pizzas["Diavola"].ID,
		Quantity:   1,
	})
	decodeEnvelope(t, resp)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doPost(t, "/api/orders", checkoutRequest{
		Customer: customerRequest{Identifier: identifier, FullName: "Jane Doe", FullAddress: "5 High St"},
		Lines:    []lineRequest{{PizzaID: pizzas["Diavola"].ID, Quantity: 1}},
	})
	decodeEnvelope(t, resp)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	env := decodeEnvelope(t, doGet(t, "/api/carts?unique_identifier="+identifier))
	view := decodeData[cartResponse](t, env)
	assert.Len(t, view.Items, 1, "checkout leaves the cart untouched")
}

func TestCheckoutUpsertsCustomer(t *testing.T) {
	pizzas, _ := findCatalog(t)
	identifier := fmt.Sprintf("order-%s", uuid.NewString())

	for _, address := range []string{"123 Test St", "456 New Ave"} {
		resp := doPost(t, "/api/orders", checkoutRequest{
			Customer: customerRequest{Identifier: identifier, FullName: "John Doe", FullAddress: address},
			Lines:    []lineRequest{{PizzaID: pizzas["Margherita"].ID, Quantity: 1}},
		})
		decodeEnvelope(t, resp)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	// Both orders list under the one identifier.
	env := decodeEnvelope(t, doGet(t, "/api/orders?unique_identifier="+identifier))
	orders := decodeData[[]orderResponse](t, env)
	assert.Len(t, orders, 2)
	require.NotNil(t, env.Meta)
	assert.EqualValues(t, 2, env.Meta.Total)
}

func TestQuoteDoesNotPersist(t *testing.T) {
	pizzas, extras := findCatalog(t)
	identifier := fmt.Sprintf("quote-%s", uuid.NewString())

	resp := doPost(t, "/api/orders/quote", quoteRequest{
		Lines: []lineRequest{
			{PizzaID: pizzas["Margherita"].ID, Quantity: 2, Extras: []string{extras["Extra Cheese"].ID}},
		},
	})
	env := decodeEnvelope(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	q := decodeData[orderResponse](t, env)
	assert.Equal(t, 25.98, q.Subtotal)
	assert.Equal(t, 5.00, q.ExtrasTotal)
	assert.Equal(t, 30.98, q.GrandTotal)

	env = decodeEnvelope(t, doGet(t, "/api/orders?unique_identifier="+identifier))
	require.NotNil(t, env.Meta)
	assert.EqualValues(t, 0, env.Meta.Total)
}

func TestQuoteEmptyLines(t *testing.T) {
	resp := doPost(t, "/api/orders/quote", quoteRequest{Lines: []lineRequest{}})
	env := decodeEnvelope(t, resp)

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "validation_error", env.Error.Type)
}

func TestCheckoutUnknownExtra(t *testing.T) {
	pizzas, _ := findCatalog(t)
	identifier := fmt.Sprintf("order-%s", uuid.NewString())

	resp := doPost(t, "/api/orders", checkoutRequest{
		Customer: customerRequest{Identifier: identifier, FullName: "John Doe", FullAddress: "123 Test St"},
		Lines:    []lineRequest{{PizzaID: pizzas["Margherita"].ID, Quantity: 1, Extras: []string{uuid.NewString()}}},
	})
	env := decodeEnvelope(t, resp)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "not_found", env.Error.Type)

	// The failed checkout persisted nothing.
	env = decodeEnvelope(t, doGet(t, "/api/orders?unique_identifier="+identifier))
	require.NotNil(t, env.Meta)
	assert.EqualValues(t, 0, env.Meta.Total)
}

func TestGetOrderNotFound(t *testing.T) {
	resp := doGet(t, "/api/orders/"+uuid.NewString())
	env := decodeEnvelope(t, resp)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "not_found", env.Error.Type)
}

func TestListOrdersPagination(t *testing.T) {
	pizzas, _ := findCatalog(t)
	identifier := fmt.Sprintf("order-%s", uuid.NewString())

	for range 3 {
		resp := doPost(t, "/api/orders", checkoutRequest{
			Customer: customerRequest{Identifier: identifier, FullName: "John Doe", FullAddress: "123 Test St"},
			Lines:    []lineRequest{{PizzaID: pizzas["Margherita"].ID, Quantity: 1}},
		})
		decodeEnvelope(t, resp)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	env := decodeEnvelope(t, doGet(t, "/api/orders?unique_identifier="+identifier+"&page=2&size=2"))
	orders := decodeData[[]orderResponse](t, env)
	assert.Len(t, orders, 1)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 2, env.Meta.Page)
	assert.EqualValues(t, 3, env.Meta.Total)
}
