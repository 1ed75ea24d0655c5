package ingest

import (
	"bytes"
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/agentic-research/flowmend/api"
	"github.com/agentic-research/flowmend/internal/linter"
	"github.com/agentic-research/flowmend/internal/record"
	"github.com/agentic-research/flowmend/internal/writeback"
)

// Stage names accepted by ParseStages.
const (
	StageRepair    = "repair"
	StageUnwrap    = "unwrap"
	StageNormalize = "normalize"
)

// Stages selects which parts of the repair pipeline run.
type Stages struct {
	Repair    bool
	Unwrap    bool
	Normalize bool
}

// AllStages runs repair, unwrap and normalize.
var AllStages = Stages{Repair: true, Unwrap: true, Normalize: true}

// ParseStages builds a Stages from stage names.
func ParseStages(names []string) (Stages, error) {
	var s Stages
	for _, n := range names {
		switch n {
		case StageRepair:
			s.Repair = true
		case StageUnwrap:
			s.Unwrap = true
		case StageNormalize:
			s.Normalize = true
		default:
			return Stages{}, fmt.Errorf("unknown stage %q (want %s, %s or %s)", n, StageRepair, StageUnwrap, StageNormalize)
		}
	}
	return s, nil
}

// Engine drives the repair pass over one workflows directory.
type Engine struct {
	FS           billy.Filesystem
	Stages       Stages
	StrictRepair bool
	EnvelopeKeys []string
	Log          *log.Logger
}

func NewEngine(fsys billy.Filesystem, stages Stages, envelopeKeys []string, logger *log.Logger) *Engine {
	if len(envelopeKeys) == 0 {
		envelopeKeys = []string{record.DefaultEnvelopeKey}
	}
	return &Engine{
		FS:           fsys,
		Stages:       stages,
		EnvelopeKeys: envelopeKeys,
		Log:          logger,
	}
}

// Run processes names one at a time, in order. A cancelled context stops the
// batch between records; results gathered so far are returned with the error.
func (e *Engine) Run(ctx context.Context, names []string) ([]api.Result, error) {
	results := make([]api.Result, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, e.Process(name))
	}
	return results, nil
}

// Process reads, fixes and (when mutated) rewrites one record. I/O failures
// become an OutcomeFailed result.
func (e *Engine) Process(name string) api.Result {
	text, err := util.ReadFile(e.FS, name)
	if err != nil {
		e.Log.Error("read failed", "file", name, "err", err)
		return api.Result{File: name, Outcome: api.OutcomeFailed, Reason: fmt.Sprintf("read: %v", err)}
	}

	res, out := e.Fix(name, text)
	if out != nil {
		if err := writeback.Replace(e.FS, name, out); err != nil {
			e.Log.Error("write failed", "file", name, "err", err)
			res.Outcome = api.OutcomeFailed
			res.Reason = fmt.Sprintf("write: %v", err)
			return res
		}
	}
	e.logResult(res)
	return res
}

// Fix is the I/O-free part of the pipeline. It returns the record's result
// and, when the outcome is OutcomeWrittenBack, the bytes to persist.
func (e *Engine) Fix(name string, text []byte) (api.Result, []byte) {
	res := api.Result{File: name}
	if len(bytes.TrimSpace(text)) == 0 {
		res.Outcome = api.OutcomeSkipped
		res.Reason = "empty file"
		return res, nil
	}

	opts := record.Options{
		Repair:       e.Stages.Repair,
		Strict:       e.StrictRepair,
		EnvelopeKeys: e.EnvelopeKeys,
	}

	var flat record.Flat
	normalize := e.Stages.Normalize
	switch s := record.Classify(text, opts).(type) {
	case record.Malformed:
		res.Outcome = api.OutcomeUnrepairable
		res.Reason = s.Err.Error()
		return res, nil
	case record.Envelope:
		noteFix(&res, s.Fix)
		if !e.Stages.Unwrap {
			res.Warnings = append(res.Warnings, fmt.Sprintf("still wrapped in %q, unwrap stage disabled", s.Key))
			flat = record.Flat{Doc: s.Doc, Fix: s.Fix}
			normalize = false
			break
		}
		inner, err := s.Unwrap()
		if err != nil {
			return api.Result{File: name, Outcome: api.OutcomeInnerInvalid, Reason: err.Error(), Warnings: res.Warnings}, nil
		}
		flat = inner
		res.Actions = append(res.Actions, api.ActionUnwrapped)
	case record.Flat:
		noteFix(&res, s.Fix)
		flat = s
	}

	if normalize {
		out, actions, err := record.Normalize(flat, name)
		if err != nil {
			return api.Result{File: name, Outcome: api.OutcomeFailed, Reason: err.Error()}, nil
		}
		flat = out
		res.Actions = append(res.Actions, actions...)
	}

	res.ID = record.ID(flat.Doc)
	if doc, err := record.Validate(flat.Doc); err == nil {
		if incomplete, total := linter.IncompleteNodes(doc); incomplete > 0 {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%d of %d nodes lack name, type or position", incomplete, total))
		}
	}

	if !res.Mutated() {
		res.Outcome = api.OutcomeUnchanged
		return res, nil
	}
	res.Outcome = api.OutcomeWrittenBack
	return res, writeback.Canonical(flat.Doc)
}

func noteFix(res *api.Result, fix *record.Fix) {
	if fix == nil {
		return
	}
	res.Actions = append(res.Actions, api.ActionRepaired)
	if fix.Suspicious() {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("truncation repair discarded %d bytes that look like JSON content", len(fix.Discarded)))
	}
}

func (e *Engine) logResult(res api.Result) {
	switch {
	case res.Outcome.IsError():
		e.Log.Error(string(res.Outcome), "file", res.File, "reason", res.Reason)
	case res.Outcome == api.OutcomeSkipped:
		e.Log.Warn("skipped", "file", res.File, "reason", res.Reason)
	case res.Outcome == api.OutcomeWrittenBack:
		e.Log.Info("fixed", "file", res.File, "actions", res.Actions, "id", res.ID)
	default:
		e.Log.Debug("unchanged", "file", res.File)
	}
	for _, w := range res.Warnings {
		e.Log.Warn(w, "file", res.File)
	}
}
