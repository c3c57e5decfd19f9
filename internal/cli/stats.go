package cli

import (
	"fmt"
	"io"

	"github.com/raphaelgruber/procview/internal/metrics"
)

// printStats displays the timings recorded during this invocation.
func printStats(w io.Writer, snap metrics.Snapshot) {
	if len(snap.Operations) == 0 {
		return
	}
	fmt.Fprintf(w, "\nOperation Timings (%.2fs)\n", snap.UptimeSeconds)
	fmt.Fprintf(w, "═══════════════════════════════════════\n")
	for _, op := range snap.Operations {
		printOpStats(w, op)
	}
}

// printOpStats displays timing statistics for an operation.
func printOpStats(w io.Writer, op metrics.OperationSnapshot) {
	fmt.Fprintf(w, "%-13s calls %d", op.Name, op.Count)
	if op.Errors > 0 {
		fmt.Fprintf(w, ", errors %d", op.Errors)
	}
	fmt.Fprintf(w, ", avg %.1fms, min %dms, max %dms\n", op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
}
