package intake

import (
	"fmt"
	"time"
	"unicode/utf8"

	"intakr/internal/feature"
)

const defaultDeadlineDays = 30

// Milestone target dates are fixed offsets from the conversion time, one
// tier per declared priority. Iterated in order so milestone output is
// deterministic.
var milestoneTiers = []struct {
	priority feature.Priority
	title    string
	days     int
}{
	{feature.PriorityHigh, "High priority features", 14},
	{feature.PriorityMedium, "Medium priority features", 21},
	{feature.PriorityLow, "Low priority features", 28},
}

// materialize derives the full project record from a request. Features are
// classified as a flat list (no bucketing); tasks mirror features 1:1 and
// stay index-aligned with the parsed line order.
func (s *Service) materialize(req *Request, tr TransitionRequest, now time.Time) Project {
	classified := feature.ClassifyAll(feature.Parse(req.Features))

	features := make([]ProjectFeature, len(classified))
	tasks := make([]Task, len(classified))
	totalHours := 0
	for i, c := range classified {
		features[i] = ProjectFeature{
			Index:          i,
			Text:           c.Text,
			Priority:       c.Priority,
			Completed:      c.Completed,
			EstimatedHours: c.EstimatedHours,
		}
		tasks[i] = Task{
			Index:          i,
			Title:          "Implement: " + truncate(c.Text, 60),
			Description:    fmt.Sprintf("%s (%s, %s complexity)", c.Text, c.Category, c.Complexity),
			Status:         "todo",
			EstimatedHours: c.EstimatedHours,
		}
		totalHours += c.EstimatedHours
	}

	var milestones []Milestone
	for _, tier := range milestoneTiers {
		var indexes []int
		for i, c := range classified {
			if c.Priority == tier.priority {
				indexes = append(indexes, i)
			}
		}
		if len(indexes) == 0 {
			continue
		}
		milestones = append(milestones, Milestone{
			Title:          tier.title,
			Priority:       tier.priority,
			FeatureIndexes: indexes,
			TargetDate:     now.AddDate(0, 0, tier.days),
		})
	}

	deadline := tr.Deadline
	if deadline.IsZero() {
		deadline = now.AddDate(0, 0, defaultDeadlineDays)
	}

	return Project{
		Name:        req.ProjectName,
		Description: req.Description,
		AssignedTo:  []string{},
		CreatedBy:   tr.Operator,
		Status:      "planning",
		Priority:    projectPriority(classified),
		Deadline:    deadline,
		Features:    features,
		Tasks:       tasks,
		Milestones:  milestones,
		WorkLogs: []WorkLogEntry{{
			Timestamp: now,
			Actor:     tr.Operator,
			Action:    "converted",
			Note:      fmt.Sprintf("Converted from intake request %s", req.ID),
		}},
		TotalEstimatedHours: totalHours,
		OriginalRequestID:   req.ID,
		Type:                "user-requested",
		CreatedAt:           now,
	}
}

// projectPriority is the highest priority tier present among the features,
// defaulting to medium for an empty feature list.
func projectPriority(classified []feature.Classified) feature.Priority {
	if len(classified) == 0 {
		return feature.PriorityMedium
	}
	best := feature.PriorityLow
	for _, c := range classified {
		switch c.Priority {
		case feature.PriorityHigh:
			return feature.PriorityHigh
		case feature.PriorityMedium:
			best = feature.PriorityMedium
		}
	}
	return best
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}
