package retention

import (
	"fmt"
	"strings"
)

// Format renders the human-readable report written to stdout by the CLI.
func (m Metrics) Format(workspaceName string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Code origin report for %s\n", workspaceName)
	fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 24+len(workspaceName)))
	fmt.Fprintf(&b, "Lines scanned:        %d\n", m.TotalLocalLines)
	fmt.Fprintf(&b, "AI lines recorded:    %d (%.2f%% of scanned)\n", m.AiGeneratedLinesCount, m.AiGeneratedLinesPercent)
	fmt.Fprintf(&b, "Retained AI lines:    %d (%.2f%%)\n", m.RetainedCount, m.RetainedPercent)
	fmt.Fprintf(&b, "Removed AI lines:     %d (%.2f%%)\n", m.RemovedCount, m.RemovedPercent)
	fmt.Fprintf(&b, "AI share of code:     %.3f%%\n", m.PercentAi)
	fmt.Fprintf(&b, "Human share of code:  %.3f%%\n", m.PercentHuman)

	return b.String()
}
