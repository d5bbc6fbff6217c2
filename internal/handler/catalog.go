package handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/donprecious/pizza-order-api/internal/domain/catalog"
)

// ListPizzas handles GET /api/pizzas.
func (h *Handler) ListPizzas(w http.ResponseWriter, r *http.Request) {
	pizzas, err := h.catalog.ListPizzas(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for i := range pizzas {
			encodePizza(e, &pizzas[i])
		}
		e.ArrEnd()
	})
}

// GetPizza handles GET /api/pizzas/{id}.
func (h *Handler) GetPizza(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID("id", r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	pizza, err := h.catalog.GetPizza(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !pizza.Active {
		writeError(w, r, &catalog.PizzaNotFoundError{ID: id})
		return
	}

	writeData(w, http.StatusOK, func(e *jx.Encoder) {
		encodePizza(e, pizza)
	})
}

// ListExtras handles GET /api/extras.
func (h *Handler) ListExtras(w http.ResponseWriter, r *http.Request) {
	extras, err := h.catalog.ListExtras(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for i := range extras {
			encodeExtra(e, &extras[i])
		}
		e.ArrEnd()
	})
}

func encodePizza(e *jx.Encoder, p *catalog.Pizza) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(p.ID.String())
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("base_price")
	encodeMoney(e, p.BasePrice)
	if p.ImageURL != "" {
		e.FieldStart("image_url")
		e.Str(p.ImageURL)
	}
	e.FieldStart("ingredients")
	e.ArrStart()
	for _, ing := range p.Ingredients {
		e.Str(ing)
	}
	e.ArrEnd()
	e.ObjEnd()
}

func encodeExtra(e *jx.Encoder, ex *catalog.Extra) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(ex.ID.String())
	e.FieldStart("name")
	e.Str(ex.Name)
	e.FieldStart("price")
	encodeMoney(e, ex.Price)
	e.ObjEnd()
}

// encodeMoney writes an amount as an exact two-digit decimal number.
// Amounts never pass through binary floats.
func encodeMoney(e *jx.Encoder, d decimal.Decimal) {
	e.Num(jx.Num(d.StringFixed(2)))
}
