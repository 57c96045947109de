package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/rulesmith/pkg/runner"
)

// Report renders a run summary as markdown. rules are listed in order,
// one fenced block each.
func Report(s runner.Summary, elapsed time.Duration, rules []string) string {
	var sb strings.Builder
	sb.WriteString("# Generation report\n\n")
	sb.WriteString("| outcome | count |\n|---|---|\n")
	fmt.Fprintf(&sb, "| generated | %d |\n", s.Generated)
	fmt.Fprintf(&sb, "| saved | %d |\n", s.Saved)
	fmt.Fprintf(&sb, "| filtered | %d |\n", s.Filtered)
	fmt.Fprintf(&sb, "| empty | %d |\n", s.Empty)
	fmt.Fprintf(&sb, "| timeouts | %d |\n", s.Timeouts)
	fmt.Fprintf(&sb, "| failed | %d |\n", s.Failed)
	fmt.Fprintf(&sb, "\nElapsed: `%s`\n", elapsed.Round(time.Millisecond))

	if len(rules) > 0 {
		sb.WriteString("\n## Rules\n")
		for _, r := range rules {
			sb.WriteString("\n```\n")
			sb.WriteString(r)
			sb.WriteString("\n```\n")
		}
	}
	return sb.String()
}
