// Package report renders a human-readable summary of a finished run.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/forgeflow/forgeflow/internal/auto"
	"github.com/forgeflow/forgeflow/internal/score"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	goodStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	badStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// Render produces the run summary for a terminal AutomationContext.
func Render(session *auto.AutomationContext) string {
	if session == nil {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("ForgeFlow Run Summary") + "\n\n")
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Session:"), session.SessionID))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("State:"), stateStyle(session.State).Render(string(session.State))))
	b.WriteString(fmt.Sprintf("%s %q\n", labelStyle.Render("Prompt:"), session.Prompt))
	if session.Plan != nil {
		b.WriteString(fmt.Sprintf("%s %d tasks, %s complexity\n",
			labelStyle.Render("Plan:"), len(session.Plan.Tasks), session.Plan.Complexity))
	}
	b.WriteString(fmt.Sprintf("%s %d\n\n", labelStyle.Render("Retries:"), session.RetryCount))

	if latest := session.LatestScore(); latest != nil {
		renderScore(&b, latest)
	}

	if len(session.Decisions) > 0 {
		b.WriteString(labelStyle.Render("Decision Trail:") + "\n")
		for i, record := range session.Decisions {
			b.WriteString(fmt.Sprintf("  %d. %s — %s\n", i+1, string(record.Decision), record.Reason))
		}
		b.WriteString("\n")
	}

	if session.OutputDir != "" && session.State == auto.StateCompleted {
		b.WriteString(fmt.Sprintf("Artifacts written to %s\n", session.OutputDir))
	}
	return b.String()
}

func renderScore(b *strings.Builder, latest *score.Score) {
	b.WriteString(labelStyle.Render("Quality:") + " " + bandStyle(latest.Overall).Render(fmt.Sprintf("%d/100", latest.Overall)) + "\n")
	rows := []struct {
		name  string
		value int
	}{
		{"tests", latest.Dimensions.Tests},
		{"accessibility", latest.Dimensions.Accessibility},
		{"performance", latest.Dimensions.Performance},
		{"security", latest.Dimensions.Security},
		{"codeQuality", latest.Dimensions.CodeQuality},
	}
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("  %-14s %s\n", row.name, bandStyle(row.value).Render(fmt.Sprintf("%d", row.value))))
	}
	b.WriteString("\n")

	if counts := countBySeverity(latest.Issues); len(counts) > 0 {
		b.WriteString(labelStyle.Render("Issues:") + "\n")
		for _, severity := range []score.Severity{score.SeverityCritical, score.SeverityHigh, score.SeverityMedium, score.SeverityLow} {
			if counts[severity] > 0 {
				b.WriteString(fmt.Sprintf("  %-9s %d\n", string(severity), counts[severity]))
			}
		}
		b.WriteString("\n")
	}

	if len(latest.Recommendations) > 0 {
		b.WriteString(labelStyle.Render("Recommendations:") + "\n")
		for _, rec := range latest.Recommendations {
			b.WriteString("  - " + rec + "\n")
		}
		b.WriteString("\n")
	}
}

func countBySeverity(issues []score.Issue) map[score.Severity]int {
	counts := make(map[score.Severity]int)
	for _, issue := range issues {
		counts[issue.Severity]++
	}
	return counts
}

func bandStyle(value int) lipgloss.Style {
	switch {
	case value >= 90:
		return goodStyle
	case value >= 70:
		return warnStyle
	default:
		return badStyle
	}
}

func stateStyle(state auto.State) lipgloss.Style {
	switch state {
	case auto.StateCompleted:
		return goodStyle
	case auto.StateAwaitingInput:
		return warnStyle
	default:
		return badStyle
	}
}
