package dataset

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/civicdata/cpahealth/internal/registry"
)

// WriteReport writes a human-readable rendering of the analysis: the
// correlation matrix with strength bands, then the per-metric summaries.
// Metric labels come from the registry.
func WriteReport(out io.Writer, a *Analysis, reg *registry.MetricRegistry) {
	fmt.Fprintf(out, "Snapshot %s (%s), %d towns\n\n", a.SnapshotID, a.Source, len(a.Records))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "HEALTH METRIC\tFUNDING (PER CAPITA)\tR\tSTRENGTH\tDIRECTION\tN")
	fmt.Fprintln(w, "-------------\t--------------------\t-\t--------\t---------\t-")
	for _, c := range a.Matrix.Cells {
		fmt.Fprintf(w, "%s\t%s\t%+.3f\t%s\t%s\t%d\n",
			reg.Label(string(c.Health)),
			reg.Label(string(c.Funding)),
			c.R,
			c.Strength,
			c.Direction,
			c.SampleCount,
		)
	}
	_ = w.Flush()

	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "HEALTH METRIC\tMEAN\tMIN\tMIN TOWN\tMAX\tMAX TOWN\tEXCLUDED")
	fmt.Fprintln(w, "-------------\t----\t---\t--------\t---\t--------\t--------")
	for _, s := range a.Summaries {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%s\t%.2f\t%s\t%d\n",
			reg.Label(string(s.Metric)),
			s.Mean,
			s.Min.Value, s.Min.Town,
			s.Max.Value, s.Max.Town,
			s.Excluded,
		)
	}
	_ = w.Flush()
}
