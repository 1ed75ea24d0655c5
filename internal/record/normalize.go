package record

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/agentic-research/flowmend/api"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const maxSynthesizedID = 20

var (
	numericPrefix = regexp.MustCompile(`^(\d+)_`)
	nonAlnum      = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// IDFromFilename derives a record id from its file name. "<digits>_<rest>.json"
// yields the digit run; anything else yields the base name without extension
// with every non-alphanumeric character replaced by '_', cut to 20 characters.
func IDFromFilename(name string) string {
	base := filepath.Base(name)
	if m := numericPrefix.FindStringSubmatch(base); m != nil {
		return m[1]
	}
	id := nonAlnum.ReplaceAllString(strings.TrimSuffix(base, filepath.Ext(base)), "_")
	if len(id) > maxSynthesizedID {
		id = id[:maxSynthesizedID]
	}
	if id == "" {
		id = "workflow"
	}
	return id
}

// HasID reports whether doc carries a usable top-level id. Missing, null,
// false, 0 and "" all count as absent.
func HasID(doc []byte) bool {
	id := gjson.GetBytes(doc, "id")
	switch id.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.String:
		return id.Str != ""
	case gjson.Number:
		return id.Num != 0
	default:
		return true
	}
}

// HasNodes reports whether doc has a top-level nodes array.
func HasNodes(doc []byte) bool {
	return gjson.GetBytes(doc, "nodes").IsArray()
}

// ID returns the record id as text, or "" when absent.
func ID(doc []byte) string {
	if !HasID(doc) {
		return ""
	}
	return gjson.GetBytes(doc, "id").String()
}

// Normalize fills the required top-level fields of a flat record: an id
// derived from filename when absent, and an empty nodes array when nodes is
// absent or not an array. Existing keys keep their order; added keys are
// appended. Node contents and connections are never touched.
func Normalize(f Flat, filename string) (Flat, []api.Action, error) {
	doc := f.Doc
	var actions []api.Action

	if !HasID(doc) {
		out, err := sjson.SetBytes(doc, "id", IDFromFilename(filename))
		if err != nil {
			return f, nil, fmt.Errorf("set id: %w", err)
		}
		doc = out
		actions = append(actions, api.ActionAddedID)
	}
	if !HasNodes(doc) {
		out, err := sjson.SetRawBytes(doc, "nodes", []byte("[]"))
		if err != nil {
			return f, nil, fmt.Errorf("set nodes: %w", err)
		}
		doc = out
		actions = append(actions, api.ActionAddedNodes)
	}
	return Flat{Doc: doc, Fix: f.Fix}, actions, nil
}
