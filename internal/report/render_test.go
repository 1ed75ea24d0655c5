package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/agentic-research/flowmend/api"
	"github.com/agentic-research/flowmend/internal/ingest"
	"github.com/agentic-research/flowmend/internal/linter"
)

func TestPrinter_Summary(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Summary(Fold([]api.Result{
		{File: "a.json", Outcome: api.OutcomeWrittenBack, Actions: []api.Action{api.ActionUnwrapped}},
		{File: "b.json", Outcome: api.OutcomeUnrepairable, Reason: "unexpected character"},
	}))

	out := buf.String()
	assert.Contains(t, out, "=== Repair summary ===")
	assert.Contains(t, out, "Success rate:     50.0%")
	assert.Contains(t, out, "unwrapped_envelope=1")
	assert.Contains(t, out, "b.json [unrepairable]")
	assert.Contains(t, out, "unexpected character")
}

func TestPrinter_VerificationSample(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Verification(Verification{
		Checked: 2, Population: 10, Sampled: true, Valid: 1, Invalid: 1, MissingNodes: 1,
		Problems: []api.Problem{{File: "x.json", Reasons: []string{"missing nodes or nodes is not an array"}}},
	})

	out := buf.String()
	assert.Contains(t, out, "2 of 10 files (random sample)")
	assert.Contains(t, out, "(50.0%)")
	assert.Contains(t, out, "x.json")
	assert.Contains(t, out, "missing nodes or nodes is not an array")
}

func TestPrinter_Checks(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Checks(FoldChecks([]ingest.CheckResult{
		{File: "ok.json", Report: linter.Report{Pass: true, Nodes: 3}},
		{File: "bad.json", Report: linter.Report{Violation: `node "a" missing required field "type"`}},
	}))

	out := buf.String()
	assert.Contains(t, out, "ok.json (3 nodes)")
	assert.Contains(t, out, `bad.json: node "a" missing required field "type"`)
}

func TestPrinter_Conflicts(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Conflicts(&ingest.ConflictError{Conflicts: []ingest.Conflict{
		{Filename: "a.json", ExistingPath: "a.json", NewPath: "sub/a.json"},
	}})
	assert.Contains(t, buf.String(), "new:      sub/a.json")
}

func TestPrinter_History(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.History(nil)
	assert.Contains(t, buf.String(), "No runs recorded.")

	buf.Reset()
	p.History([]ingest.Run{{ID: 3, Command: "verify", Dir: "wf", StartedAt: time.Now(), Total: 4, Failed: 1}})
	assert.Contains(t, buf.String(), "verify")
	assert.Contains(t, buf.String(), "wf")
}
