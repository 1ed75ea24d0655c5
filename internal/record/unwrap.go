package record

import (
	"errors"

	"github.com/tidwall/gjson"
)

// ErrInnerInvalid is returned when an envelope's inner record lacks a nodes array.
var ErrInnerInvalid = errors.New("inner content invalid: nodes missing or not an array")

// Unwrap returns the Flat record held by the envelope. The envelope key and
// any sibling keys are dropped; the inner text is kept byte for byte.
func (e Envelope) Unwrap() (Flat, error) {
	if !gjson.GetBytes(e.Inner, "nodes").IsArray() {
		return Flat{}, ErrInnerInvalid
	}
	return Flat{Doc: e.Inner, Fix: e.Fix}, nil
}
