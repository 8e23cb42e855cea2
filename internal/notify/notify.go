// Package notify delivers out-of-band alerts when a confirmed mutation has
// been attempted. Alerts are best-effort: a failed delivery is logged by
// the confirmation machine and never affects the call outcome.
package notify

import (
	"fmt"
	"strings"

	"github.com/toolgate/toolgate/internal/schema"
)

// formatEntry renders one audit entry as a short alert line.
func formatEntry(e schema.AuditEntry) string {
	var sb strings.Builder
	status := "succeeded"
	if !e.Success {
		status = "FAILED"
	}
	fmt.Fprintf(&sb, "toolgate: confirmed mutation %s %s", e.Tool, status)
	if len(e.Old) > 0 {
		fmt.Fprintf(&sb, "\nold: %s", kvLine(e.Old))
	}
	if len(e.New) > 0 {
		fmt.Fprintf(&sb, "\nnew: %s", kvLine(e.New))
	}
	if e.Error != "" {
		fmt.Fprintf(&sb, "\nerror: %s", e.Error)
	}
	return sb.String()
}

func kvLine(m map[string]any) string {
	parts := make([]string, 0, len(m))
	for k, v := range m {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return strings.Join(parts, " ")
}
