package ingest

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/agentic-research/flowmend/internal/linter"
	"github.com/agentic-research/flowmend/internal/writeback"
)

// FileVerdict pairs a record file with its verification verdict.
type FileVerdict struct {
	File string
	writeback.Verdict
}

// Verification is the raw outcome of a verification scan.
type Verification struct {
	// Population is the number of record files in the directory.
	Population int
	// Sampled is true when only a random subset was checked.
	Sampled  bool
	Verdicts []FileVerdict
}

// Verifier re-scans a workflows directory without modifying it.
type Verifier struct {
	FS           billy.Filesystem
	Pattern      string
	EnvelopeKeys []string
	// Sample > 0 checks a random subset of at most min(Sample, MaxSample) files.
	Sample int
	Seed   uint64
	Log    *log.Logger
}

func (v *Verifier) Run(ctx context.Context) (*Verification, error) {
	names, err := Enumerate(v.FS, v.Pattern)
	if err != nil {
		return nil, err
	}
	out := &Verification{Population: len(names)}
	if v.Sample > 0 {
		if idx := sampleIndices(len(names), v.Sample, v.Seed); len(idx) < len(names) {
			picked := make([]string, len(idx))
			for i, j := range idx {
				picked[i] = names[j]
			}
			out.Sampled = true
			names = picked
		}
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		out.Verdicts = append(out.Verdicts, v.verifyFile(name))
	}
	return out, nil
}

func (v *Verifier) verifyFile(name string) FileVerdict {
	text, err := util.ReadFile(v.FS, name)
	if err != nil {
		v.Log.Error("read failed", "file", name, "err", err)
		return FileVerdict{File: name, Verdict: writeback.Verdict{
			Malformed: true,
			Reasons:   []string{fmt.Sprintf("read: %v", err)},
		}}
	}
	verdict := writeback.Verify(text, v.EnvelopeKeys)
	if !verdict.Valid() {
		v.Log.Debug("invalid", "file", name, "reasons", verdict.Reasons)
	}
	return FileVerdict{File: name, Verdict: verdict}
}

// CheckResult is the import compatibility verdict for one file.
type CheckResult struct {
	File string
	linter.Report
}

// Check runs the import compatibility check on names, or on every record
// file when names is empty.
func Check(ctx context.Context, fsys billy.Filesystem, pattern string, names []string) ([]CheckResult, error) {
	if len(names) == 0 {
		all, err := Enumerate(fsys, pattern)
		if err != nil {
			return nil, err
		}
		names = all
	}
	results := make([]CheckResult, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		text, err := util.ReadFile(fsys, name)
		if err != nil {
			results = append(results, CheckResult{File: name, Report: linter.Report{Violation: fmt.Sprintf("read: %v", err)}})
			continue
		}
		results = append(results, CheckResult{File: name, Report: linter.CheckImportBytes(text)})
	}
	return results, nil
}
