package cmd

import (
	"fmt"
	"io"

	"github.com/eykd/bidscheck/internal/domain"
	"github.com/eykd/bidscheck/internal/report"
)

// formatHuman writes findings grouped by category, followed by the
// OUTPUT line. Empty categories are omitted.
func formatHuman(w io.Writer, r domain.Report) {
	for _, c := range domain.Categories {
		findings := r.ByCategory(c)
		if len(findings) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s (%d):\n", c.Label(), len(findings))
		for _, f := range findings {
			fmt.Fprintf(w, "  - %s\n", f.Message)
		}
	}
	fmt.Fprintf(w, "OUTPUT: %t\n", r.Passed())
}

// writeJSON encodes the report document to w, handling I/O errors at the boundary.
func writeJSON(w io.Writer, doc report.Document) {
	if err := report.Encode(w, doc); err != nil {
		fmt.Fprintf(w, "{\"error\":%q}\n", err.Error())
	}
}
