package writeback

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/agentic-research/flowmend/internal/record"
	"github.com/tidwall/gjson"
)

// Verdict is the verification result for one record file.
type Verdict struct {
	Malformed    bool
	Enveloped    bool
	MissingID    bool
	MissingNodes bool
	// Reasons explain why the record is invalid, in check order.
	Reasons []string
	// Warnings never make a record invalid.
	Warnings []string
}

// Valid reports whether the record passed every check.
func (v Verdict) Valid() bool {
	return len(v.Reasons) == 0
}

// Verify classifies record text without repairing it. A record is valid iff
// it parses as a JSON object, is not enveloped, has an id and has a nodes
// array. An enveloped record is also checked for id and nodes at the top level.
func Verify(text []byte, envelopeKeys []string) Verdict {
	var v Verdict
	if len(bytes.TrimSpace(text)) == 0 {
		v.Malformed = true
		v.Reasons = append(v.Reasons, "empty file")
		return v
	}

	var doc []byte
	switch s := record.Classify(text, record.Options{EnvelopeKeys: envelopeKeys}).(type) {
	case record.Malformed:
		v.Malformed = true
		if errors.Is(s.Err, record.ErrNotObject) {
			v.Reasons = append(v.Reasons, s.Err.Error())
		} else {
			v.Reasons = append(v.Reasons, "invalid JSON: "+s.Err.Error())
		}
		return v
	case record.Envelope:
		v.Enveloped = true
		v.Reasons = append(v.Reasons, fmt.Sprintf(`still wrapped in {%q: {...}}`, s.Key))
		doc = s.Doc
	case record.Flat:
		doc = s.Doc
	}

	if !record.HasID(doc) {
		v.MissingID = true
		v.Reasons = append(v.Reasons, "missing id")
	}
	if !record.HasNodes(doc) {
		v.MissingNodes = true
		v.Reasons = append(v.Reasons, "missing nodes or nodes is not an array")
	} else if gjson.GetBytes(doc, "nodes.#").Int() == 0 {
		v.Warnings = append(v.Warnings, "nodes array is empty")
	}
	return v
}
