// Package intake governs the lifecycle of project requests: validating
// status transitions and materializing, exactly once per request, a fully
// structured project from the request's raw feature text.
package intake

import (
	"time"

	"intakr/internal/feature"
)

// Status of an intake request.
type Status string

const (
	StatusPending    Status = "pending"
	StatusAccepted   Status = "accepted"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Collections in the backing document store.
const (
	CollectionRequests = "project_requests"
	CollectionProjects = "admin_projects"
)

// Request is a user-submitted project request. The store owns the record;
// the conversion service reads it and proposes patches. AdminProjectID being
// set is the guard that prevents a second materialization.
type Request struct {
	ID              string     `json:"id,omitempty"`
	Status          Status     `json:"status"`
	ProjectName     string     `json:"projectName"`
	Description     string     `json:"description"`
	Features        string     `json:"features"` // raw text, one feature per line
	RequestedBy     string     `json:"requestedBy"`
	RequestedByName string     `json:"requestedByName,omitempty"`
	AdminProjectID  string     `json:"adminProjectId,omitempty"`
	CreatedAt       time.Time  `json:"createdAt,omitempty"`
	UpdatedAt       time.Time  `json:"updatedAt,omitempty"`
	AcceptedAt      *time.Time `json:"acceptedAt,omitempty"`
	AcceptedBy      string     `json:"acceptedBy,omitempty"`
	StartedAt       *time.Time `json:"startedAt,omitempty"`
	StartedBy       string     `json:"startedBy,omitempty"`
}

// Project is the internal record materialized from an accepted request.
type Project struct {
	Name                string           `json:"name"`
	Description         string           `json:"description"`
	AssignedTo          []string         `json:"assignedTo"`
	CreatedBy           string           `json:"createdBy"`
	Status              string           `json:"status"`
	Priority            feature.Priority `json:"priority"`
	Progress            int              `json:"progress"`
	Deadline            time.Time        `json:"deadline"`
	Features            []ProjectFeature `json:"features"`
	Tasks               []Task           `json:"tasks"`
	Milestones          []Milestone      `json:"milestones"`
	WorkLogs            []WorkLogEntry   `json:"workLogs"`
	TotalEstimatedHours int              `json:"totalEstimatedHours"`
	TotalActualHours    int              `json:"totalActualHours"`
	OriginalRequestID   string           `json:"originalRequestId"`
	Type                string           `json:"type"`
	CreatedAt           time.Time        `json:"createdAt"`
}

// ProjectFeature is one feature line carried into the project. Index is the
// position in the parsed line list and is referenced by tasks and milestones.
type ProjectFeature struct {
	Index          int              `json:"index"`
	Text           string           `json:"text"`
	Priority       feature.Priority `json:"priority"`
	Completed      bool             `json:"completed"`
	EstimatedHours int              `json:"estimatedHours"`
	ActualHours    int              `json:"actualHours"`
	WorkLog        string           `json:"workLog"`
}

// Task mirrors a project feature 1:1 with a human-readable title.
type Task struct {
	Index          int    `json:"index"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	AssignedTo     string `json:"assignedTo"`
	Status         string `json:"status"`
	EstimatedHours int    `json:"estimatedHours"`
}

// Milestone groups the feature indexes of one priority tier with a fixed
// target-date offset. Tiers with no features get no milestone.
type Milestone struct {
	Title          string           `json:"title"`
	Priority       feature.Priority `json:"priority"`
	FeatureIndexes []int            `json:"featureIndexes"`
	TargetDate     time.Time        `json:"targetDate"`
	Completed      bool             `json:"completed"`
}

// WorkLogEntry is an append-only record of an action taken on a project.
type WorkLogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Note      string    `json:"note"`
}
