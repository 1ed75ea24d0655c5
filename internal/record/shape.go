package record

import (
	"bytes"
	"errors"

	"github.com/tidwall/gjson"
)

// ErrNotObject is reported for valid JSON whose top-level value is not an object.
var ErrNotObject = errors.New("record is not a JSON object")

// DefaultEnvelopeKey is the wrapper key produced by workflow API exports.
const DefaultEnvelopeKey = "workflow"

// Options control how raw file text becomes a Shape.
type Options struct {
	// Repair enables the truncation heuristic for text that fails to parse.
	Repair bool
	// Strict refuses repairs whose discarded tail is Suspicious.
	Strict bool
	// EnvelopeKeys name the wrapper keys that mark an Envelope, in priority order.
	EnvelopeKeys []string
}

// Shape is the inspected form of a record: Flat, Envelope or Malformed.
type Shape interface {
	isShape()
}

// Flat is a JSON object that is not wrapped in an envelope.
type Flat struct {
	Doc []byte
	// Fix is non-nil when the text needed a truncation repair to parse.
	Fix *Fix
}

// Envelope is a JSON object whose Key holds the real record in Inner.
type Envelope struct {
	Key   string
	Doc   []byte
	Inner []byte
	Fix   *Fix
}

// Malformed is text that is not a JSON object.
type Malformed struct {
	Text []byte
	Err  error
}

func (Flat) isShape()      {}
func (Envelope) isShape()  {}
func (Malformed) isShape() {}

// Classify parses text, repairing it when opts allow, and inspects the result.
func Classify(text []byte, opts Options) Shape {
	doc := bytes.TrimSpace(text)
	_, err := Validate(doc)
	if err == nil {
		return Inspect(doc, nil, opts.EnvelopeKeys)
	}
	if !opts.Repair {
		return Malformed{Text: text, Err: &ParseError{Err: err}}
	}
	fixed, fix, rerr := Repair(doc)
	if rerr != nil {
		return Malformed{Text: text, Err: &ParseError{Err: err}}
	}
	if opts.Strict && fix.Suspicious() {
		return Malformed{Text: text, Err: &ParseError{Err: err, Refused: true}}
	}
	return Inspect(fixed, &fix, opts.EnvelopeKeys)
}

// Inspect classifies a document that is already known to be valid JSON.
func Inspect(doc []byte, fix *Fix, envelopeKeys []string) Shape {
	root := gjson.ParseBytes(doc)
	if !root.IsObject() {
		return Malformed{Text: doc, Err: ErrNotObject}
	}
	for _, key := range envelopeKeys {
		inner := root.Get(gjson.Escape(key))
		if inner.IsObject() {
			return Envelope{Key: key, Doc: doc, Inner: []byte(inner.Raw), Fix: fix}
		}
	}
	return Flat{Doc: doc, Fix: fix}
}
