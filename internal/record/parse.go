package record

import (
	"bytes"
	"errors"

	"github.com/ohler55/ojg/oj"
	"github.com/tidwall/gjson"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

var errInvalid = errors.New("invalid JSON document")

// ParseError reports text that could not be parsed. Err is always the error
// from the strict parse of the original text, even when a repair was tried.
type ParseError struct {
	Err error
	// Refused is set when the truncated text parsed but strict mode rejected
	// the repair because the discarded tail looked like JSON content.
	Refused bool
}

func (e *ParseError) Error() string {
	if e.Refused {
		return e.Err.Error() + " (truncation repair refused: discarded tail looks like JSON content)"
	}
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Validate parses text strictly and returns the decoded value.
// Trailing content after the top-level value is an error.
func Validate(text []byte) (any, error) {
	v, err := oj.Parse(text)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(text) {
		return nil, errInvalid
	}
	return v, nil
}

// Fix describes a truncation repair that produced parseable text.
type Fix struct {
	// BOM is set when a leading byte-order mark was stripped.
	BOM bool
	// Discarded is the text that followed the last closing brace.
	Discarded []byte
}

// Suspicious reports whether the discarded tail contains JSON structure,
// meaning the truncation may have dropped real content (for example trailing
// array elements) instead of garbage.
func (f Fix) Suspicious() bool {
	return bytes.ContainsAny(f.Discarded, `[]{}":,`)
}

// Repair strips a leading byte-order mark, cuts the text after the last
// closing brace and parses the result again. It only helps with trailing
// garbage; unbalanced or truncated documents stay broken.
func Repair(text []byte) ([]byte, Fix, error) {
	var fix Fix
	fixed := bytes.TrimSpace(text)
	if bytes.HasPrefix(fixed, bom) {
		fixed = bytes.TrimSpace(fixed[len(bom):])
		fix.BOM = true
	}
	if i := bytes.LastIndexByte(fixed, '}'); i >= 0 {
		fix.Discarded = bytes.TrimSpace(fixed[i+1:])
		fixed = fixed[:i+1]
	}
	if _, err := Validate(fixed); err != nil {
		return nil, fix, err
	}
	return fixed, fix, nil
}
