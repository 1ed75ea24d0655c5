package writeback

import (
	"github.com/tidwall/pretty"
)

var canonicalOptions = &pretty.Options{Width: 80, Indent: "  "}

// Canonical renders a JSON document in its on-disk form: two-space
// indentation, keys in received order, trailing newline. The result
// re-parses to a value equal to doc.
func Canonical(doc []byte) []byte {
	return pretty.PrettyOptions(doc, canonicalOptions)
}
