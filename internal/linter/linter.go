// Package linter checks whether a workflow record would be accepted by a
// workflow importer, which is stricter than the repair pass: every node needs
// a name, a type and a position, and every connection entry needs a main list.
package linter

import (
	"fmt"
	"sort"

	"github.com/agentic-research/flowmend/internal/record"
	"github.com/ohler55/ojg/jp"
)

// Level ranks a Diagnostic.
type Level string

const (
	Info  Level = "info"
	Warn  Level = "warn"
	Error Level = "error"
)

type Diagnostic struct {
	Level   Level
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Level, d.Message)
}

// Report is the outcome of the import compatibility check for one record.
type Report struct {
	Pass bool
	// Violation is the first failed requirement; empty when Pass is true.
	Violation   string
	Nodes       int
	Diagnostics []Diagnostic
}

var (
	idPath          = jp.MustParseString("$.id")
	nodesPath       = jp.MustParseString("$.nodes")
	connectionsPath = jp.MustParseString("$.connections")
)

// CheckImportBytes parses text strictly (no repair) and checks it.
func CheckImportBytes(text []byte) Report {
	doc, err := record.Validate(text)
	if err != nil {
		return fail("invalid JSON: " + err.Error())
	}
	return CheckImport(doc)
}

// CheckImport runs the compatibility rules in order and stops at the first
// violation. Non-fatal findings are collected as diagnostics either way.
func CheckImport(doc any) Report {
	if _, ok := doc.(map[string]any); !ok {
		return fail(record.ErrNotObject.Error())
	}

	var r Report
	r.Diagnostics = nodeDiagnostics(doc)

	if id, ok := idPath.First(doc).(string); !ok || id == "" {
		r.Violation = "invalid workflow id: must be a non-empty string"
		return r
	}

	nodes, ok := nodesPath.First(doc).([]any)
	if !ok || len(nodes) == 0 {
		r.Violation = "invalid or empty nodes array"
		return r
	}
	r.Nodes = len(nodes)

	for i, n := range nodes {
		if msg := checkNode(i, n); msg != "" {
			r.Violation = msg
			return r
		}
	}

	raw := connectionsPath.First(doc)
	if raw == nil {
		r.Diagnostics = append(r.Diagnostics, Diagnostic{Level: Info, Message: "no connections (standalone workflow)"})
		r.Pass = true
		return r
	}
	conns, ok := raw.(map[string]any)
	if !ok {
		r.Violation = "invalid connections: must be an object"
		return r
	}
	for _, src := range sortedKeys(conns) {
		entry, ok := conns[src].(map[string]any)
		if !ok {
			r.Violation = fmt.Sprintf("invalid connections for %q: must be an object", src)
			return r
		}
		if _, ok := entry["main"].([]any); !ok {
			r.Violation = fmt.Sprintf(`invalid connections for %q: missing "main" list`, src)
			return r
		}
	}

	r.Pass = true
	return r
}

// IncompleteNodes counts nodes lacking a name, a type or a two-element position.
func IncompleteNodes(doc any) (incomplete, total int) {
	nodes, _ := nodesPath.First(doc).([]any)
	for i, n := range nodes {
		if checkNode(i, n) != "" {
			incomplete++
		}
	}
	return incomplete, len(nodes)
}

func nodeDiagnostics(doc any) []Diagnostic {
	incomplete, total := IncompleteNodes(doc)
	if incomplete == 0 {
		return nil
	}
	return []Diagnostic{{
		Level:   Warn,
		Message: fmt.Sprintf("%d of %d nodes lack name, type or position", incomplete, total),
	}}
}

func checkNode(i int, n any) string {
	node, ok := n.(map[string]any)
	if !ok {
		return fmt.Sprintf("node %d is not an object", i)
	}
	label := fmt.Sprintf("node %d", i)
	name, _ := node["name"].(string)
	if name == "" {
		return label + ` missing required field "name"`
	}
	label = fmt.Sprintf("node %q", name)
	if typ, _ := node["type"].(string); typ == "" {
		return label + ` missing required field "type"`
	}
	pos, ok := node["position"].([]any)
	if !ok || len(pos) != 2 || !isNumber(pos[0]) || !isNumber(pos[1]) {
		return label + ` has invalid "position": want [x, y]`
	}
	return ""
}

func isNumber(v any) bool {
	switch v.(type) {
	case int64, float64, int:
		return true
	default:
		return false
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func fail(violation string) Report {
	return Report{Violation: violation}
}
