package domain

import (
	"fmt"
	"strings"
)

// bodyMarker tags issue bodies written by git-epic with the epic's local ID.
const bodyMarker = "<!-- git-epic:local-id=%s -->"

// RenderIssueBody builds the remote issue body for an epic:
// description, sub-issue checklist and journey timeline.
func RenderIssueBody(e *Epic) string {
	var b strings.Builder

	if d := strings.TrimSpace(e.Description); d != "" {
		b.WriteString(d)
		b.WriteString("\n")
	}

	if len(e.SubIssues) > 0 {
		b.WriteString("\n## Tasks\n\n")
		for _, s := range e.SubIssues {
			check := " "
			if s.State == StateClosed {
				check = "x"
			}
			if s.Number > 0 {
				fmt.Fprintf(&b, "- [%s] #%d %s\n", check, s.Number, s.Title)
			} else {
				fmt.Fprintf(&b, "- [%s] %s\n", check, s.Title)
			}
		}
	}

	if len(e.Journey) > 0 {
		b.WriteString("\n## Journey\n\n")
		for _, j := range e.Journey {
			fmt.Fprintf(&b, "- %s `%s` %s", j.Timestamp.UTC().Format("2006-01-02 15:04 MST"), j.Event, j.Message)
			if j.Agent != "" {
				fmt.Fprintf(&b, " (%s)", j.Agent)
			}
			b.WriteString("\n")
		}
	}

	if e.LocalID != "" {
		b.WriteString("\n")
		fmt.Fprintf(&b, bodyMarker, e.LocalID)
		b.WriteString("\n")
	}

	return strings.TrimLeft(b.String(), "\n")
}
