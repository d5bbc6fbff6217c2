package handler

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/google/uuid"

	"github.com/donprecious/pizza-order-api/internal/domain/quote"
)

// maxBodySize bounds request bodies; carts and orders are small documents.
const maxBodySize = 1 << 20

// validationError aggregates per-field request decoding failures.
type validationError struct {
	details []fieldError
}

func (e *validationError) Error() string {
	parts := make([]string, len(e.details))
	for i, d := range e.details {
		parts[i] = d.field + ": " + d.message
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

func invalidField(field, message string) *validationError {
	return &validationError{details: []fieldError{{field: field, message: message}}}
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return nil, invalidField("body", "unreadable request body")
	}
	if len(body) == 0 {
		return nil, invalidField("body", "empty request body")
	}
	return body, nil
}

// parseUUID turns an unparsable id into a validation error naming the field.
func parseUUID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, invalidField(field, fmt.Sprintf("%q is not a valid UUID", raw))
	}
	return id, nil
}

// addCartItemRequest is the POST /api/carts/items body.
type addCartItemRequest struct {
	Identifier string
	PizzaID    uuid.UUID
	Quantity   int
	ExtraIDs   []uuid.UUID
}

func decodeAddCartItem(body []byte) (*addCartItemRequest, error) {
	var req addCartItemRequest
	d := jx.DecodeBytes(body)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "unique_identifier":
			v, err := d.Str()
			if err != nil {
				return invalidField("unique_identifier", "must be a string")
			}
			req.Identifier = v
		case "pizza_id":
			raw, err := d.Str()
			if err != nil {
				return invalidField("pizza_id", "must be a string UUID")
			}
			req.PizzaID, err = parseUUID("pizza_id", raw)
			return err
		case "quantity":
			v, err := d.Int()
			if err != nil {
				return invalidField("quantity", "must be an integer")
			}
			req.Quantity = v
		case "extras":
			ids, err := decodeExtraIDs(d)
			if err != nil {
				return err
			}
			req.ExtraIDs = ids
		default:
			return d.Skip()
		}
		return nil
	})
	if err != nil {
		var ve *validationError
		if errors.As(err, &ve) {
			return nil, ve
		}
		return nil, invalidField("body", "malformed JSON")
	}
	return &req, nil
}

// checkoutRequest is the POST /api/orders body.
type checkoutRequest struct {
	Identifier      string
	CustomerName    string
	CustomerAddress string
	Lines           []quote.LineInput
}

func decodeCheckout(body []byte) (*checkoutRequest, error) {
	var req checkoutRequest
	d := jx.DecodeBytes(body)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "customer":
			return d.Obj(func(d *jx.Decoder, key string) error {
				switch key {
				case "unique_identifier":
					v, err := d.Str()
					if err != nil {
						return invalidField("customer.unique_identifier", "must be a string")
					}
					req.Identifier = v
				case "fullname":
					v, err := d.Str()
					if err != nil {
						return invalidField("customer.fullname", "must be a string")
					}
					req.CustomerName = v
				case "full_address":
					v, err := d.Str()
					if err != nil {
						return invalidField("customer.full_address", "must be a string")
					}
					req.CustomerAddress = v
				default:
					return d.Skip()
				}
				return nil
			})
		case "lines":
			lines, err := decodeLines(d)
			if err != nil {
				return err
			}
			req.Lines = lines
		default:
			return d.Skip()
		}
		return nil
	})
	if err != nil {
		var ve *validationError
		if errors.As(err, &ve) {
			return nil, ve
		}
		return nil, invalidField("body", "malformed JSON")
	}
	return &req, nil
}

// decodeQuote parses the POST /api/orders/quote body, which carries only
// the lines array.
func decodeQuote(body []byte) ([]quote.LineInput, error) {
	var lines []quote.LineInput
	d := jx.DecodeBytes(body)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "lines" {
			return d.Skip()
		}
		var err error
		lines, err = decodeLines(d)
		return err
	})
	if err != nil {
		var ve *validationError
		if errors.As(err, &ve) {
			return nil, ve
		}
		return nil, invalidField("body", "malformed JSON")
	}
	return lines, nil
}

func decodeLines(d *jx.Decoder) ([]quote.LineInput, error) {
	var lines []quote.LineInput
	err := d.Arr(func(d *jx.Decoder) error {
		var line quote.LineInput
		err := d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "pizza_id":
				raw, err := d.Str()
				if err != nil {
					return invalidField("lines.pizza_id", "must be a string UUID")
				}
				line.PizzaID, err = parseUUID("lines.pizza_id", raw)
				return err
			case "quantity":
				v, err := d.Int()
				if err != nil {
					return invalidField("lines.quantity", "must be an integer")
				}
				line.Quantity = v
			case "extras":
				ids, err := decodeExtraIDs(d)
				if err != nil {
					return err
				}
				line.ExtraIDs = ids
			default:
				return d.Skip()
			}
			return nil
		})
		if err != nil {
			return err
		}
		lines = append(lines, line)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func decodeExtraIDs(d *jx.Decoder) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := d.Arr(func(d *jx.Decoder) error {
		raw, err := d.Str()
		if err != nil {
			return invalidField("extras", "must be string UUIDs")
		}
		id, err := parseUUID("extras", raw)
		if err != nil {
			return err
		}
		ids = append(ids, id)
		return nil
	})
	if err != nil {
		var ve *validationError
		if errors.As(err, &ve) {
			return nil, ve
		}
		return nil, invalidField("extras", "must be an array")
	}
	return ids, nil
}
