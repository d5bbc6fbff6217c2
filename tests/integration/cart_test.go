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

type addCartItemRequest struct {
	Identifier string   `json:"unique_identifier"`
	PizzaID    string   `json:"pizza_id"`
	Quantity   int      `json:"quantity"`
	Extras     []string `json:"extras,omitempty"`
}

func TestCartAddAndGet(t *testing.T) {
	pizzas, extras := findCatalog(t)
	identifier := fmt.Sprintf("cart-%s@example.com", uuid.NewString())

	resp := doPost(t, "/api/carts/items", addCartItemRequest{
		Identifier: identifier,
		PizzaID:    pizzas["Margherita"].ID,
		Quantity:   2,
		Extras:     []string{extras["Extra Cheese"].ID},
	})
	env := decodeEnvelope(t, resp)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, env.IsSuccess)

	view := decodeData[cartResponse](t, env)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 15.49, view.Items[0].UnitPrice)
	assert.Equal(t, 30.98, view.Items[0].TotalPrice)
	assert.Equal(t, 30.98, view.Subtotal)
	assert.Equal(t, view.Subtotal, view.GrandTotal)

	// The cart resolves to the same state on read.
	env = decodeEnvelope(t, doGet(t, "/api/carts?unique_identifier="+identifier))
	got := decodeData[cartResponse](t, env)
	assert.Equal(t, view.ID, got.ID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 30.98, got.GrandTotal)
}

func TestCartAppendsDuplicateSelections(t *testing.T) {
	pizzas, _ := findCatalog(t)
	identifier := fmt.Sprintf("cart-%s@example.com", uuid.NewString())

	req := addCartItemRequest{
		Identifier: identifier,
		PizzaID:    pizzas["Pepperoni"].ID,
		Quantity:   1,
	}
	for range 2 {
		resp := doPost(t, "/api/carts/items", req)
		env := decodeEnvelope(t, resp)
		require.Equal(t, http.StatusCreated, resp.StatusCode, "message: %s", env.Message)
	}

	env := decodeEnvelope(t, doGet(t, "/api/carts?unique_identifier="+identifier))
	view := decodeData[cartResponse](t, env)
	assert.Len(t, view.Items, 2, "identical selections stay separate lines")
}

func TestCartLazilyCreated(t *testing.T) {
	identifier := fmt.Sprintf("fresh-%s@example.com", uuid.NewString())

	env := decodeEnvelope(t, doGet(t, "/api/carts?unique_identifier="+identifier))
	require.True(t, env.IsSuccess)

	view := decodeData[cartResponse](t, env)
	assert.NotEmpty(t, view.ID)
	assert.Equal(t, identifier, view.Identifier)
	assert.Empty(t, view.Items)
	assert.Equal(t, 0.0, view.GrandTotal)
}

func TestCartMissingIdentifier(t *testing.T) {
	resp := doGet(t, "/api/carts")
	env := decodeEnvelope(t, resp)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "invalid_identity", env.Error.Type)
}

func TestCartUnknownPizza(t *testing.T) {
	identifier := fmt.Sprintf("cart-%s@example.com", uuid.NewString())

	resp := doPost(t, "/api/carts/items", addCartItemRequest{
		Identifier: identifier,
		PizzaID:    uuid.NewString(),
		Quantity:   1,
	})
	env := decodeEnvelope(t, resp)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "not_found", env.Error.Type)
}

func TestCartInvalidQuantity(t *testing.T) {
	pizzas, _ := findCatalog(t)
	identifier := fmt.Sprintf("cart-%s@example.com", uuid.NewString())

	for _, qty := range []int{0, 100} {
		resp := doPost(t, "/api/carts/items", addCartItemRequest{
			Identifier: identifier,
			PizzaID:    pizzas["Margherita"].ID,
			Quantity:   qty,
		})
		env := decodeEnvelope(t, resp)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, "quantity %d", qty)
		require.NotNil(t, env.Error)
		assert.Equal(t, "validation_error", env.Error.Type)
	}
}

func TestCartClear(t *testing.T) {
	pizzas, _ := findCatalog(t)
	identifier := fmt.Sprintf("cart-%s@example.com", uuid.NewString())

	resp := doPost(t, "/api/carts/items", addCartItemRequest{
		Identifier: identifier,
		PizzaID:    pizzas["Hawaiian"].ID,
		Quantity:   3,
	})
	decodeEnvelope(t, resp)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doDelete(t, "/api/carts/items?unique_identifier="+identifier)
	env := decodeEnvelope(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.IsSuccess)

	env = decodeEnvelope(t, doGet(t, "/api/carts?unique_identifier="+identifier))
	view := decodeData[cartResponse](t, env)
	assert.Empty(t, view.Items)
	assert.Equal(t, 0.0, view.GrandTotal)
}
