package syncer

import (
	"fmt"
	"io"
)

// WriteDecision prints the per-file line for d.
func WriteDecision(w io.Writer, d Decision) {
	switch d.Action {
	case ActionSkip:
		fmt.Fprintf(w, "Skipped %s: not modified.\n", d.Name)
	case ActionCreate, ActionUpdate:
		fmt.Fprintf(w, "Uploaded %s\n", d.Name)
	case ActionDelete:
		fmt.Fprintf(w, "Deleted %s\n", d.Name)
	}
}

// WriteSummary prints the final tally of a run.
func WriteSummary(w io.Writer, res *Result) {
	fmt.Fprintln(w)
	if res.DryRun {
		fmt.Fprintln(w, "Test run complete with the following results:")
	}
	fmt.Fprintln(w, Summary(res.Tally))
}

// WritePartialSummary prints the tally of a run that stopped on an error, so
// the changes already applied are visible.
func WritePartialSummary(w io.Writer, res *Result) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Sync stopped on error. Completed before stopping:")
	fmt.Fprintln(w, Summary(res.Tally))
}

// Summary is the one-line tally.
func Summary(t Tally) string {
	return fmt.Sprintf("Skipped %d. Created %d. Updated %d. Deleted %d.", t.Skipped, t.Created, t.Updated, t.Deleted)
}
