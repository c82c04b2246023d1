// Package report renders classified feature buckets and portfolio summaries
// for terminal display. Rendering only; no classification logic lives here.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"intakr/internal/feature"
	"intakr/internal/intake"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1)

	bucketStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	highStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	mediumStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	lowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	summaryBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 1)
)

func priorityBadge(p feature.Priority) string {
	switch p {
	case feature.PriorityHigh:
		return highStyle.Render("high")
	case feature.PriorityLow:
		return lowStyle.Render("low")
	default:
		return mediumStyle.Render("medium")
	}
}

// Buckets renders category buckets with their member features.
func Buckets(buckets []feature.Bucket) string {
	var b strings.Builder

	for _, bucket := range buckets {
		b.WriteString(bucketStyle.Render(fmt.Sprintf("%s (%d)", bucket.Name, len(bucket.Features))))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("  " + bucket.Description))
		b.WriteString("\n")

		for _, f := range bucket.Features {
			b.WriteString(fmt.Sprintf("  %-8s %-10s %3dh  %s\n",
				priorityBadge(f.Priority), f.Complexity, f.EstimatedHours, f.Text))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// Summary renders the portfolio summary box.
func Summary(s feature.Summary) string {
	content := fmt.Sprintf(
		"Features: %d   Estimated: %dh\nPriority: %d high / %d medium / %d low\nComplexity: %d complex / %d moderate / %d simple",
		s.TotalFeatures, s.TotalEstimatedHours,
		s.Priorities.High, s.Priorities.Medium, s.Priorities.Low,
		s.Complexities.Complex, s.Complexities.Moderate, s.Complexities.Simple,
	)
	return summaryBox.Render(content) + "\n"
}

// Intake renders a full ingest report: title, buckets, then summary.
func Intake(title string, buckets []feature.Bucket, s feature.Summary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(Buckets(buckets))
	b.WriteString(Summary(s))
	return b.String()
}

// BatchResults renders per-item batch conversion outcomes.
func BatchResults(results []intake.BatchResult) string {
	var b strings.Builder
	for _, r := range results {
		if r.Success {
			b.WriteString(fmt.Sprintf("  %s  %s  project %s\n",
				lowStyle.Render("ok"), r.RequestID, r.AdminProjectID))
			continue
		}
		b.WriteString(fmt.Sprintf("  %s  %s  %s\n",
			highStyle.Render("failed"), r.RequestID, r.Error))
	}
	return b.String()
}

// RequestLine renders one intake request for list output.
func RequestLine(r intake.Request) string {
	status := string(r.Status)
	switch r.Status {
	case intake.StatusPending:
		status = mediumStyle.Render(status)
	case intake.StatusAccepted, intake.StatusInProgress:
		status = lowStyle.Render(status)
	case intake.StatusCancelled:
		status = dimStyle.Render(status)
	}

	project := ""
	if r.AdminProjectID != "" {
		project = dimStyle.Render("  → " + r.AdminProjectID)
	}
	return fmt.Sprintf("  %-38s %-12s %s%s", r.ID, status, r.ProjectName, project)
}
