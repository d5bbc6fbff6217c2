package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/donprecious/pizza-order-api/internal/domain/cart"
)

// AddCartItem handles POST /api/carts/items.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req, err := decodeAddCartItem(body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.carts.AddLine(r.Context(), req.Identifier, req.PizzaID, req.Quantity, req.ExtraIDs)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, func(e *jx.Encoder) {
		encodeCartView(e, view)
	})
}

// GetCart handles GET /api/carts?unique_identifier=...
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.carts.Details(r.Context(), r.URL.Query().Get("unique_identifier"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCartView(e, view)
	})
}

// ClearCart handles DELETE /api/carts/items?unique_identifier=...
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	identifier := r.URL.Query().Get("unique_identifier")
	if err := h.carts.Clear(r.Context(), identifier); err != nil {
		writeError(w, r, err)
		return
	}

	writeEnvelope(w, http.StatusOK, nil, "cart cleared", nil)
}

func encodeCartView(e *jx.Encoder, v *cart.View) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(v.ID.String())
	e.FieldStart("unique_identifier")
	e.Str(v.Identifier)
	e.FieldStart("items")
	e.ArrStart()
	for i := range v.Lines {
		encodeCartLine(e, &v.Lines[i])
	}
	e.ArrEnd()
	e.FieldStart("subtotal")
	encodeMoney(e, v.Subtotal)
	e.FieldStart("grand_total")
	encodeMoney(e, v.GrandTotal)
	e.ObjEnd()
}

func encodeCartLine(e *jx.Encoder, l *cart.LineView) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(l.ID.String())
	e.FieldStart("pizza_id")
	e.Str(l.PizzaID.String())
	e.FieldStart("quantity")
	e.Int(l.Quantity)
	e.FieldStart("extras")
	e.ArrStart()
	for _, id := range l.ExtraIDs {
		e.Str(id.String())
	}
	e.ArrEnd()
	e.FieldStart("unit_price")
	encodeMoney(e, l.UnitPrice)
	e.FieldStart("total_price")
	encodeMoney(e, l.TotalPrice)
	e.ObjEnd()
}
