package telemetry

import (
	"fmt"
	"io"
	"time"

	"github.com/robinvdvleuten/compta/output"
)

// slowOperation is the duration from which a timing is highlighted.
const slowOperation = 100 * time.Millisecond

// formatTimingTree writes a timing tree:
//
//	compta report: 12ms
//	└─ ledger.statements (20 entries): 3ms
//	   ├─ ledger.income_statement: 0ms
//	   ├─ ledger.cashflow: 1ms
//	   └─ ledger.balance_sheet: 0ms
func formatTimingTree(w io.Writer, root *timerNode, styles *output.Styles) {
	name := root.name
	if styles != nil {
		name = styles.Keyword(name)
	}
	_, _ = fmt.Fprintf(w, "%s: %s\n", name, formatDuration(root.end.Sub(root.start)))

	for i, child := range root.children {
		formatNode(w, child, "", i == len(root.children)-1, styles)
	}
}

func formatNode(w io.Writer, node *timerNode, prefix string, isLast bool, styles *output.Styles) {
	duration := node.end.Sub(node.start)

	branch, extension := "├─ ", "│  "
	if isLast {
		branch, extension = "└─ ", "   "
	}

	timing := formatDuration(duration)
	if styles != nil {
		timing = styles.Timing(timing, duration >= slowOperation)
		_, _ = fmt.Fprintf(w, "%s%s: %s\n", styles.Dim(prefix+branch), node.name, timing)
	} else {
		_, _ = fmt.Fprintf(w, "%s%s%s: %s\n", prefix, branch, node.name, timing)
	}

	for i, child := range node.children {
		formatNode(w, child, prefix+extension, i == len(node.children)-1, styles)
	}
}

// formatDuration shows milliseconds below one second and seconds above.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.2fs", float64(d)/float64(time.Second))
}
