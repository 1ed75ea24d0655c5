// Package report folds per-record results into aggregate reports and
// renders them for the console.
package report

import (
	"github.com/agentic-research/flowmend/api"
	"github.com/agentic-research/flowmend/internal/ingest"
)

// Summary aggregates the results of one repair pass.
type Summary struct {
	Total     int `json:"total"`
	Fixed     int `json:"fixed"`
	Unchanged int `json:"unchanged"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
	// Warned counts records with at least one warning.
	Warned  int                `json:"warned"`
	Actions map[api.Action]int `json:"actions"`
	// Problems are the error results, in input order.
	Problems []api.Result `json:"problems,omitempty"`
}

// Fold aggregates results. It never inspects files; every count comes from
// the per-record values.
func Fold(results []api.Result) Summary {
	s := Summary{Total: len(results), Actions: map[api.Action]int{}}
	for _, r := range results {
		switch {
		case r.Outcome == api.OutcomeWrittenBack:
			s.Fixed++
		case r.Outcome == api.OutcomeUnchanged:
			s.Unchanged++
		case r.Outcome == api.OutcomeSkipped:
			s.Skipped++
		case r.Outcome.IsError():
			s.Errors++
			s.Problems = append(s.Problems, r)
		}
		if len(r.Warnings) > 0 {
			s.Warned++
		}
		if r.Outcome == api.OutcomeWrittenBack {
			for _, a := range r.Actions {
				s.Actions[a]++
			}
		}
	}
	return s
}

// SuccessRate is fixed / (fixed + errors) as a percentage; 100 when neither
// occurred.
func (s Summary) SuccessRate() float64 {
	return percent(s.Fixed, s.Fixed+s.Errors)
}

// Verification aggregates a verification scan.
type Verification struct {
	// Checked is the number of files examined; Population the number present.
	Checked      int  `json:"checked"`
	Population   int  `json:"population"`
	Sampled      bool `json:"sampled"`
	Valid        int  `json:"valid"`
	Invalid      int  `json:"invalid"`
	MissingID    int  `json:"missing_id"`
	MissingNodes int  `json:"missing_nodes"`
	Enveloped    int  `json:"enveloped"`
	Malformed    int  `json:"malformed"`
	// EmptyNodes counts valid records whose nodes array is empty.
	EmptyNodes int           `json:"empty_nodes"`
	Problems   []api.Problem `json:"problems,omitempty"`
}

func FoldVerification(v *ingest.Verification) Verification {
	out := Verification{Population: v.Population, Sampled: v.Sampled, Checked: len(v.Verdicts)}
	for _, fv := range v.Verdicts {
		if fv.Valid() {
			out.Valid++
			if len(fv.Warnings) > 0 {
				out.EmptyNodes++
			}
			continue
		}
		out.Invalid++
		if fv.MissingID {
			out.MissingID++
		}
		if fv.MissingNodes {
			out.MissingNodes++
		}
		if fv.Enveloped {
			out.Enveloped++
		}
		if fv.Malformed {
			out.Malformed++
		}
		out.Problems = append(out.Problems, api.Problem{File: fv.File, Reasons: fv.Reasons})
	}
	return out
}

// ValidRate is valid / checked as a percentage.
func (v Verification) ValidRate() float64 {
	return percent(v.Valid, v.Checked)
}

// Checks aggregates import compatibility results.
type Checks struct {
	Passed  int
	Failed  int
	Results []ingest.CheckResult
}

func FoldChecks(results []ingest.CheckResult) Checks {
	c := Checks{Results: results}
	for _, r := range results {
		if r.Pass {
			c.Passed++
		} else {
			c.Failed++
		}
	}
	return c
}

func percent(n, d int) float64 {
	if d == 0 {
		return 100
	}
	return float64(n) * 100 / float64(d)
}
