package pipeline

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// WriteSummary prints the per-step tally of a run as an aligned table.
func WriteSummary(w io.Writer, s RunSummary) error {
	p := message.NewPrinter(language.English)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintf(w, "run %s  started %s  took %s\n\n", s.RunID,
		s.StartedAt.Format(time.RFC3339), s.FinishedAt.Sub(s.StartedAt).Round(time.Second))

	fmt.Fprintln(tw, "step\ttable\tstatus\tread\tsucceeded\tfailed\tskipped\tduration\t")
	var total StepResult
	for _, r := range s.Steps {
		p.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%d\t%s\t\n",
			r.Number, r.Table, r.Status, r.Read, r.Succeeded, r.Failed, r.Skipped(), r.Duration.Round(time.Millisecond))
		total.Read += r.Read
		total.Succeeded += r.Succeeded
		total.Failed += r.Failed
		total.Rejected += r.Skipped()
	}
	p.Fprintf(tw, "\ttotal\t\t%d\t%d\t%d\t%d\t\t\n", total.Read, total.Succeeded, total.Failed, total.Rejected)

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	for _, r := range s.Steps {
		if r.Error != "" {
			fmt.Fprintf(w, "\nstep %d (%s): %s", r.Number, r.Table, r.Error)
		}
		if r.Evicted > 0 {
			p.Fprintf(w, "\nstep %d (%s): dedup key cap evicted %d keys; later duplicates of them were written", r.Number, r.Table, r.Evicted)
		}
	}
	fmt.Fprintln(w)
	return nil
}
