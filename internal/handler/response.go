package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/donprecious/pizza-order-api/internal/domain/cart"
	"github.com/donprecious/pizza-order-api/internal/domain/catalog"
	"github.com/donprecious/pizza-order-api/internal/domain/customer"
	"github.com/donprecious/pizza-order-api/internal/domain/order"
	"github.com/donprecious/pizza-order-api/internal/domain/quote"
)

// Machine-readable error types carried in the envelope.
const (
	errTypeNotFound        = "not_found"
	errTypeValidation      = "validation_error"
	errTypeInvalidIdentity = "invalid_identity"
	errTypeConflict        = "conflict"
	errTypeInternal        = "internal_error"
)

// encodeFunc writes the data portion of a response envelope.
type encodeFunc func(e *jx.Encoder)

// pageMeta is the pagination block of list responses.
type pageMeta struct {
	Page  int
	Size  int
	Total int64
}

// writeData writes a success envelope with the encoded data payload.
func writeData(w http.ResponseWriter, status int, data encodeFunc) {
	writeEnvelope(w, status, data, "", nil)
}

// writePaged writes a success envelope with pagination metadata.
func writePaged(w http.ResponseWriter, status int, data encodeFunc, meta pageMeta) {
	writeEnvelope(w, status, data, "", &meta)
}

func writeEnvelope(w http.ResponseWriter, status int, data encodeFunc, message string, meta *pageMeta) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("is_success")
	e.Bool(status < http.StatusBadRequest)
	if data != nil {
		e.FieldStart("data")
		data(&e)
	}
	if message != "" {
		e.FieldStart("message")
		e.Str(message)
	}
	if meta != nil {
		e.FieldStart("meta")
		e.ObjStart()
		e.FieldStart("page")
		e.Int(meta.Page)
		e.FieldStart("size")
		e.Int(meta.Size)
		e.FieldStart("total")
		e.Int64(meta.Total)
		e.ObjEnd()
	}
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError maps a domain error onto the envelope's error taxonomy.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, errType, details := classify(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		// Internal details stay in the log, not on the wire.
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		message = "internal server error"
	}

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("is_success")
	e.Bool(false)
	e.FieldStart("message")
	e.Str(message)
	e.FieldStart("error")
	e.ObjStart()
	e.FieldStart("type")
	e.Str(errType)
	if len(details) > 0 {
		e.FieldStart("details")
		e.ObjStart()
		for _, d := range details {
			e.FieldStart(d.field)
			e.Str(d.message)
		}
		e.ObjEnd()
	}
	e.ObjEnd()
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

type fieldError struct {
	field   string
	message string
}

func classify(err error) (status int, errType string, details []fieldError) {
	var (
		pizzaNF    *catalog.PizzaNotFoundError
		extraNF    *catalog.ExtraNotFoundError
		orderNF    *order.NotFoundError
		cartQty    *cart.InvalidQuantityError
		quoteQty   *quote.InvalidQuantityError
		validation *validationError
	)
	switch {
	case errors.As(err, &pizzaNF) || errors.As(err, &extraNF) || errors.As(err, &orderNF):
		return http.StatusNotFound, errTypeNotFound, nil
	case errors.Is(err, cart.ErrNotFound) || errors.Is(err, customer.ErrNotFound):
		return http.StatusNotFound, errTypeNotFound, nil
	case errors.As(err, &cartQty) || errors.As(err, &quoteQty):
		return http.StatusUnprocessableEntity, errTypeValidation,
			[]fieldError{{field: "quantity", message: err.Error()}}
	case errors.Is(err, quote.ErrEmptyLines):
		return http.StatusUnprocessableEntity, errTypeValidation,
			[]fieldError{{field: "lines", message: err.Error()}}
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity, errTypeValidation, validation.details
	case errors.Is(err, cart.ErrMissingIdentifier) || errors.Is(err, customer.ErrMissingIdentifier):
		return http.StatusBadRequest, errTypeInvalidIdentity, nil
	case errors.Is(err, cart.ErrAlreadyExists) || errors.Is(err, customer.ErrAlreadyExists):
		return http.StatusConflict, errTypeConflict, nil
	default:
		return http.StatusInternalServerError, errTypeInternal, nil
	}
}
