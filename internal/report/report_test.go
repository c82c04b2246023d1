package report

import (
	"strings"
	"testing"

	"intakr/internal/feature"
	"intakr/internal/intake"
)

func TestIntakeReportContent(t *testing.T) {
	raw := "Add login page (high priority)\nAdd a settings icon\nIntegrate Stripe payments (medium priority)"
	buckets, summary := feature.Aggregate(feature.ClassifyAll(feature.Parse(raw)))

	out := Intake("Feature Intake", buckets, summary)
	for _, want := range []string{
		"Feature Intake",
		"Authentication & Security",
		"Payment & Billing",
		"User Interface & Design",
		"Add login page",
		"Features: 3",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestBatchResultsMixedOutcomes(t *testing.T) {
	out := BatchResults([]intake.BatchResult{
		{RequestID: "r1", Success: true, AdminProjectID: "p1"},
		{RequestID: "r2", Error: "project request not found"},
	})

	if !strings.Contains(out, "p1") {
		t.Error("missing project id for successful item")
	}
	if !strings.Contains(out, "project request not found") {
		t.Error("missing error for failed item")
	}
}

func TestRequestLineShowsProjectLink(t *testing.T) {
	line := RequestLine(intake.Request{
		ID:             "r1",
		Status:         intake.StatusAccepted,
		ProjectName:    "Customer Portal",
		AdminProjectID: "p1",
	})
	if !strings.Contains(line, "Customer Portal") || !strings.Contains(line, "p1") {
		t.Errorf("unexpected line: %q", line)
	}
}
