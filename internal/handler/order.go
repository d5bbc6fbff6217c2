package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/jx"

	"github.com/donprecious/pizza-order-api/internal/domain/order"
	"github.com/donprecious/pizza-order-api/internal/domain/quote"
)

// CreateOrder handles POST /api/orders.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req, err := decodeCheckout(body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.orders.Create(r.Context(), order.CreateInput{
		Identifier:      req.Identifier,
		CustomerName:    req.CustomerName,
		CustomerAddress: req.CustomerAddress,
		Lines:           req.Lines,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, func(e *jx.Encoder) {
		encodeOrder(e, o)
	})
}

// QuoteOrder handles POST /api/orders/quote. Pricing only; nothing is
// persisted.
func (h *Handler) QuoteOrder(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	lines, err := decodeQuote(body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	q, err := h.orders.Quote(r.Context(), lines)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, func(e *jx.Encoder) {
		encodeQuote(e, q)
	})
}

// GetOrder handles GET /api/orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID("id", r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, func(e *jx.Encoder) {
		encodeOrder(e, o)
	})
}

// ListOrders handles GET /api/orders?unique_identifier=...&page=&size=.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := queryInt(q.Get("page"), 1)
	size := queryInt(q.Get("size"), 20)

	orders, total, err := h.orders.List(r.Context(), q.Get("unique_identifier"), page, size)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writePaged(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for i := range orders {
			encodeOrder(e, &orders[i])
		}
		e.ArrEnd()
	}, pageMeta{Page: page, Size: size, Total: total})
}

func queryInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID.String())
	e.FieldStart("unique_identifier")
	e.Str(o.Identifier)
	e.FieldStart("status")
	e.Str(o.Status)
	e.FieldStart("currency")
	e.Str(o.Currency)
	e.FieldStart("subtotal")
	encodeMoney(e, o.Subtotal)
	e.FieldStart("extras_total")
	encodeMoney(e, o.ExtrasTotal)
	e.FieldStart("grand_total")
	encodeMoney(e, o.GrandTotal)
	e.FieldStart("created_at")
	e.Str(o.CreatedAt.UTC().Format(time.RFC3339))
	e.FieldStart("lines")
	e.ArrStart()
	for i := range o.Lines {
		encodeOrderLine(e, &o.Lines[i])
	}
	e.ArrEnd()
	e.ObjEnd()
}

func encodeOrderLine(e *jx.Encoder, l *order.Line) {
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
	e.FieldStart("unit_base_price")
	encodeMoney(e, l.UnitBasePrice)
	e.FieldStart("unit_extras_total")
	encodeMoney(e, l.UnitExtrasTotal)
	e.FieldStart("line_total")
	encodeMoney(e, l.LineTotal)
	e.ObjEnd()
}

func encodeQuote(e *jx.Encoder, q *quote.Quote) {
	e.ObjStart()
	e.FieldStart("subtotal")
	encodeMoney(e, q.Subtotal)
	e.FieldStart("extras_total")
	encodeMoney(e, q.ExtrasTotal)
	e.FieldStart("grand_total")
	encodeMoney(e, q.GrandTotal)
	e.FieldStart("lines")
	e.ArrStart()
	for i := range q.Lines {
		l := &q.Lines[i]
		e.ObjStart()
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
		e.FieldStart("unit_base_price")
		encodeMoney(e, l.UnitBasePrice)
		e.FieldStart("unit_extras_total")
		encodeMoney(e, l.UnitExtrasTotal)
		e.FieldStart("line_total")
		encodeMoney(e, l.LineTotal)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
}
