package kit

import (
	"encoding/json"
	"fmt"
)

// Error message constants.
const (
	ErrMsgUnknownCommand   = "unknown command type"
	ErrMsgMalformedPayload = "malformed command payload"
)

// CommandDecoder turns a raw JSON payload into a typed command.
type CommandDecoder[R any] func(payload []byte) (R, error)

type commandEntry[R any] struct {
	name   string
	decode CommandDecoder[R]
}

// CommandRouter decodes named commands received over the wire.
//
// Example:
//
//	router := kit.NewCommandRouter[logic.Action]("cart").
//	    On("ADD_TO_CART", kit.JSONCommand(toAddToCart)).
//	    On("CLEAR_CART", kit.JSONCommand(toClearCart))
//
//	action, err := router.Decode(req.Type, req.Payload)
type CommandRouter[R any] struct {
	domain  string
	entries []commandEntry[R]
}

// NewCommandRouter creates a command router for a domain.
func NewCommandRouter[R any](domain string) *CommandRouter[R] {
	return &CommandRouter[R]{domain: domain}
}

// On registers a decoder for a command name. Names match exactly.
func (r *CommandRouter[R]) On(name string, decode CommandDecoder[R]) *CommandRouter[R] {
	r.entries = append(r.entries, commandEntry[R]{name, decode})
	return r
}

// Decode finds the decoder registered for name and applies it to payload.
func (r *CommandRouter[R]) Decode(name string, payload []byte) (R, error) {
	for _, e := range r.entries {
		if e.name == name {
			return e.decode(payload)
		}
	}
	var zero R
	return zero, NewInvalidArgumentf("%s: %s", ErrMsgUnknownCommand, name)
}

// Domain returns the router's domain name.
func (r *CommandRouter[R]) Domain() string { return r.domain }

// Types returns registered command names in registration order.
func (r *CommandRouter[R]) Types() []string {
	result := make([]string, len(r.entries))
	for i, e := range r.entries {
		result[i] = e.name
	}
	return result
}

// JSONCommand builds a CommandDecoder that unmarshals the payload into T
// and converts it with build. An empty payload decodes as the zero T.
func JSONCommand[T any, R any](build func(T) R) CommandDecoder[R] {
	return func(payload []byte) (R, error) {
		var body T
		if len(payload) > 0 && string(payload) != "null" {
			if err := json.Unmarshal(payload, &body); err != nil {
				var zero R
				return zero, NewInvalidArgument(fmt.Sprintf("%s: %v", ErrMsgMalformedPayload, err))
			}
		}
		return build(body), nil
	}
}
