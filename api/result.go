package api

// Outcome is the terminal state of one record after a repair pass.
type Outcome string

const (
	// OutcomeUnchanged means the record was already complete; nothing was written.
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeWrittenBack means at least one Action was applied and the file was replaced.
	OutcomeWrittenBack Outcome = "written_back"
	// OutcomeUnrepairable means the text is not JSON (or not an object) even after repair.
	OutcomeUnrepairable Outcome = "unrepairable"
	// OutcomeInnerInvalid means an envelope was found but its inner record had no usable nodes.
	OutcomeInnerInvalid Outcome = "inner_invalid"
	// OutcomeSkipped means the file was empty.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means reading or writing the file failed.
	OutcomeFailed Outcome = "failed"
)

// IsError reports whether the outcome counts against the run.
func (o Outcome) IsError() bool {
	switch o {
	case OutcomeUnrepairable, OutcomeInnerInvalid, OutcomeFailed:
		return true
	default:
		return false
	}
}

// Action is one mutation applied to a record during a repair pass.
type Action string

const (
	ActionRepaired   Action = "repaired_json"
	ActionUnwrapped  Action = "unwrapped_envelope"
	ActionAddedID    Action = "added_id"
	ActionAddedNodes Action = "added_nodes"
)

// Result is the per-record value produced by the repair pipeline.
// Results are folded into a report; no counters are shared between records.
type Result struct {
	// File is the record's file name relative to the workflows directory.
	File    string   `json:"file"`
	Outcome Outcome  `json:"outcome"`
	Actions []Action `json:"actions,omitempty"`
	// ID is the record id after normalization, when known.
	ID string `json:"id,omitempty"`
	// Reason explains error outcomes (the original parse error for unrepairable text).
	Reason   string   `json:"reason,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Mutated reports whether any Action was applied.
func (r Result) Mutated() bool {
	return len(r.Actions) > 0
}

// Problem lists why one record failed verification.
type Problem struct {
	File    string   `json:"file"`
	Reasons []string `json:"reasons"`
}
