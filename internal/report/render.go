package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/agentic-research/flowmend/api"
	"github.com/agentic-research/flowmend/internal/ingest"
)

// Printer renders reports as human-readable text. The layout is for people,
// not for parsing.
type Printer struct {
	w       io.Writer
	heading lipgloss.Style
	good    lipgloss.Style
	bad     lipgloss.Style
	muted   lipgloss.Style
}

// NewPrinter styles output for w; colour is dropped when w is not a terminal.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		heading: r.NewStyle().Bold(true),
		good:    r.NewStyle().Foreground(lipgloss.Color("#4CAF50")),
		bad:     r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color("#888888")),
	}
}

func (p *Printer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) title(s string) {
	p.printf("\n%s\n", p.heading.Render("=== "+s+" ==="))
}

func (p *Printer) count(label string, n int, style lipgloss.Style) {
	p.printf("%-17s %s\n", label+":", style.Render(fmt.Sprint(n)))
}

func (p *Printer) Summary(s Summary) {
	p.title("Repair summary")
	p.count("Total files", s.Total, p.heading)
	p.count("Fixed", s.Fixed, p.good)
	p.count("Unchanged", s.Unchanged, p.muted)
	if s.Skipped > 0 {
		p.count("Skipped (empty)", s.Skipped, p.muted)
	}
	p.count("Errors", s.Errors, p.severity(s.Errors))
	if s.Warned > 0 {
		p.count("With warnings", s.Warned, p.muted)
	}
	p.printf("%-17s %.1f%%\n", "Success rate:", s.SuccessRate())

	if len(s.Actions) > 0 {
		actions := make([]string, 0, len(s.Actions))
		for a := range s.Actions {
			actions = append(actions, string(a))
		}
		sort.Strings(actions)
		parts := make([]string, len(actions))
		for i, a := range actions {
			parts[i] = fmt.Sprintf("%s=%d", a, s.Actions[api.Action(a)])
		}
		p.printf("%-17s %s\n", "Actions:", strings.Join(parts, " "))
	}

	if len(s.Problems) > 0 {
		p.printf("\n%s\n", p.bad.Render("Files with errors:"))
		for _, r := range s.Problems {
			p.printf("  - %s [%s]\n", r.File, r.Outcome)
			p.printf("      %s\n", p.muted.Render(r.Reason))
		}
	}
}

func (p *Printer) Verification(v Verification) {
	p.title("Verification")
	if v.Sampled {
		p.printf("%-17s %d of %d files (random sample)\n", "Checked:", v.Checked, v.Population)
	} else {
		p.count("Checked", v.Checked, p.heading)
	}
	p.printf("%-17s %s (%.1f%%)\n", "Valid:", p.good.Render(fmt.Sprint(v.Valid)), v.ValidRate())
	p.count("Invalid", v.Invalid, p.severity(v.Invalid))
	if v.Invalid > 0 {
		p.count("  Missing id", v.MissingID, p.muted)
		p.count("  Missing nodes", v.MissingNodes, p.muted)
		p.count("  Still wrapped", v.Enveloped, p.muted)
		p.count("  Malformed", v.Malformed, p.muted)
	}
	if v.EmptyNodes > 0 {
		p.count("Empty nodes", v.EmptyNodes, p.muted)
	}

	if len(v.Problems) > 0 {
		p.printf("\n%s\n", p.bad.Render("Problem files:"))
		for _, pr := range v.Problems {
			p.printf("  - %s\n", pr.File)
			for _, reason := range pr.Reasons {
				p.printf("      %s\n", p.muted.Render(reason))
			}
		}
	} else {
		p.printf("\n%s\n", p.good.Render("All checked files are valid."))
	}
}

func (p *Printer) Checks(c Checks) {
	p.title("Import compatibility")
	for _, r := range c.Results {
		if r.Pass {
			p.printf("%s %s (%d nodes)\n", p.good.Render("PASS"), r.File, r.Nodes)
		} else {
			p.printf("%s %s: %s\n", p.bad.Render("FAIL"), r.File, r.Violation)
		}
		for _, d := range r.Diagnostics {
			p.printf("     %s\n", p.muted.Render(d.String()))
		}
	}
	p.printf("\n")
	p.count("Passed", c.Passed, p.good)
	p.count("Failed", c.Failed, p.severity(c.Failed))
}

func (p *Printer) Flatten(res *ingest.FlattenResult) {
	p.title("Flatten")
	p.count("Moved", len(res.Moved), p.good)
	p.count("Removed dirs", len(res.RemovedDirs), p.muted)
	p.count("Failed", len(res.Failed), p.severity(len(res.Failed)))
	for _, f := range res.Failed {
		p.printf("  - %s: %s\n", f.File, strings.Join(f.Reasons, "; "))
	}
}

func (p *Printer) Conflicts(err *ingest.ConflictError) {
	p.printf("%s\n", p.bad.Render("Filename conflicts found, nothing was moved:"))
	for _, c := range err.Conflicts {
		p.printf("  - %s\n", c.Filename)
		p.printf("      existing: %s\n", c.ExistingPath)
		p.printf("      new:      %s\n", c.NewPath)
	}
	p.printf("Resolve these conflicts and run flatten again.\n")
}

func (p *Printer) History(runs []ingest.Run) {
	if len(runs) == 0 {
		p.printf("No runs recorded.\n")
		return
	}
	p.printf("%s\n", p.heading.Render(fmt.Sprintf("%-5s %-8s %-20s %7s %7s  %s", "ID", "COMMAND", "STARTED", "TOTAL", "FAILED", "DIR")))
	for _, r := range runs {
		p.printf("%-5d %-8s %-20s %7d %7d  %s\n",
			r.ID, r.Command, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Total, r.Failed, r.Dir)
	}
}

func (p *Printer) severity(n int) lipgloss.Style {
	if n > 0 {
		return p.bad
	}
	return p.good
}
