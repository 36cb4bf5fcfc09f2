// This file implements the run report: per-class outcomes, run totals, and
// terminal rendering.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/hearthloom/grimoire/internal/schema"
	"github.com/hearthloom/grimoire/internal/source"
)

// DuplicateIDError reports two source files declaring the same srd_id
// within one run. The second file is skipped with zero writes.
type DuplicateIDError struct {
	SRDID  string
	First  string
	Second string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate srd_id %q: declared by both %s and %s", e.SRDID, e.First, e.Second)
}

// ClassResult is the outcome for one class source file.
type ClassResult struct {
	File  string
	SRDID string
	Name  string

	// Err is the parse-adjacent failure that skipped this class entirely
	// (validation, slug collision, duplicate id). Nil on success.
	Err error

	ClassCreated    bool
	FeaturesCreated int
	FeaturesUpdated int

	// Conflicts lists feature slugs whose writes lost to a concurrent
	// run. The rest of the class still proceeded.
	Conflicts []string
}

// Failed reports whether the class was skipped without writes.
func (r ClassResult) Failed() bool {
	return r.Err != nil
}

// RunReport aggregates one ingest run.
type RunReport struct {
	RunID     string
	SourceDir string
	StartedAt time.Time
	Duration  time.Duration

	ParseErrors []source.ParseError
	Classes     []ClassResult

	// Store totals after the run; they reflect the idempotent end state.
	ClassTotal   int64
	FeatureTotal int64
}

// Failed reports whether any source file was rejected. Per-feature write
// conflicts do not fail a run; rejected files do.
func (r *RunReport) Failed() bool {
	return r.FailureCount() > 0
}

// FailureCount returns the number of rejected source files.
func (r *RunReport) FailureCount() int {
	n := len(r.ParseErrors)
	for _, c := range r.Classes {
		if c.Failed() {
			n++
		}
	}
	return n
}

// Totals sums the per-class write counters.
func (r *RunReport) Totals() (created, updated, conflicts int) {
	for _, c := range r.Classes {
		created += c.FeaturesCreated
		updated += c.FeaturesUpdated
		conflicts += len(c.Conflicts)
	}
	return created, updated, conflicts
}

var (
	reportGood = color.New(color.FgGreen)
	reportBad  = color.New(color.FgRed)
	reportWarn = color.New(color.FgYellow)
	reportDim  = color.New(color.Faint)
)

// Render writes the human-readable ingest report.
func (r *RunReport) Render(w io.Writer) {
	fmt.Fprintln(w, "Ingest report")
	fmt.Fprintln(w, "-------------")

	for _, pe := range r.ParseErrors {
		reportBad.Fprintf(w, "%s: parse error: %v\n", pe.Name, pe.Err)
	}

	for _, c := range r.Classes {
		if c.Failed() {
			var verr *schema.ValidationError
			if errors.As(c.Err, &verr) {
				reportBad.Fprintf(w, "%s: %d schema violation(s)\n", c.File, len(verr.Violations))
				for _, v := range verr.Violations {
					fmt.Fprintf(w, "  - %s\n", v)
				}
				continue
			}
			reportBad.Fprintf(w, "%s: %v\n", c.File, c.Err)
			continue
		}

		verb := "updated"
		if c.ClassCreated {
			verb = "created"
		}
		reportGood.Fprintf(w, "%s: %s %s", c.File, c.Name, verb)
		fmt.Fprintf(w, " (%d features new, %d refreshed)\n", c.FeaturesCreated, c.FeaturesUpdated)
		for _, slug := range c.Conflicts {
			reportWarn.Fprintf(w, "  conflict: %s lost to a concurrent writer\n", slug)
		}
	}

	created, updated, conflicts := r.Totals()
	fmt.Fprintf(w, "\nStore totals -> classes: %d, features: %d\n", r.ClassTotal, r.FeatureTotal)
	fmt.Fprintf(w, "This run     -> created: %d, refreshed: %d, conflicts: %d, rejected files: %d\n",
		created, updated, conflicts, r.FailureCount())
	reportDim.Fprintf(w, "run %s in %s\n", r.RunID, r.Duration.Round(time.Millisecond))
}
