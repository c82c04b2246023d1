package calendar

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"intakr/internal/feature"
	"intakr/internal/intake"
)

func TestWriteMilestones(t *testing.T) {
	p := intake.Project{
		Name: "Customer Portal",
		Milestones: []intake.Milestone{
			{
				Title:          "High priority features",
				Priority:       feature.PriorityHigh,
				FeatureIndexes: []int{0},
				TargetDate:     time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC),
			},
			{
				Title:          "Low priority features",
				Priority:       feature.PriorityLow,
				FeatureIndexes: []int{1, 2},
				TargetDate:     time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
			},
		},
	}

	var buf bytes.Buffer
	if err := WriteMilestones(&buf, "proj-1", p); err != nil {
		t.Fatalf("WriteMilestones: %v", err)
	}

	out := buf.String()
	if got := strings.Count(out, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("expected 2 events, found %d", got)
	}
	if !strings.Contains(out, "Customer Portal") {
		t.Error("summary missing project name")
	}
	if !strings.Contains(out, "proj-1-milestone-0@intakr") {
		t.Error("missing stable event UID")
	}
}
