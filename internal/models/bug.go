package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusOpen       = "open"
	StatusInProgress = "in-progress"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"

	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"

	SeverityMinor   = "minor"
	SeverityMajor   = "major"
	SeverityBlocker = "blocker"

	DefaultReporter = "Anonymous"
)

var (
	Statuses   = []string{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}
	Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
	Severities = []string{SeverityMinor, SeverityMajor, SeverityBlocker}
)

// Environment describes where a bug was observed.
type Environment struct {
	OS      string `json:"os,omitempty"`
	Browser string `json:"browser,omitempty"`
	Device  string `json:"device,omitempty"`
	Version string `json:"version,omitempty"`
}

type Bug struct {
	BaseModel

	Title            string                          `gorm:"not null;size:200" json:"title"`
	Description      string                          `gorm:"not null" json:"description"`
	ProjectID        *uint                           `gorm:"index" json:"project_id"`
	ProjectKey       string                          `json:"project_key,omitempty"`
	Status           string                          `gorm:"not null;default:open;index:idx_bug_status_priority" json:"status"`
	Priority         string                          `gorm:"not null;default:medium;index:idx_bug_status_priority" json:"priority"`
	Severity         string                          `gorm:"not null;default:minor" json:"severity"`
	Type             string                          `gorm:"not null" json:"type"`
	StepsToReproduce datatypes.JSONSlice[string]     `json:"steps_to_reproduce"`
	ExpectedBehavior string                          `json:"expected_behavior,omitempty"`
	ActualBehavior   string                          `json:"actual_behavior,omitempty"`
	Reporter         string                          `gorm:"not null" json:"reporter"`
	Assignee         string                          `json:"assignee,omitempty"`
	DueDate          *time.Time                      `json:"due_date,omitempty"`
	EstimatedHours   *float64                        `json:"estimated_hours,omitempty"`
	ActualHours      *float64                        `json:"actual_hours,omitempty"`
	Tags             datatypes.JSONSlice[string]     `json:"tags"`
	Environment      datatypes.JSONType[Environment] `json:"environment"`
	BugNumber        string                          `gorm:"uniqueIndex;not null" json:"bug_number"`

	// Relationships
	Project *Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func IsValidStatus(status string) bool {
	return contains(Statuses, status)
}

func IsValidPriority(priority string) bool {
	return contains(Priorities, priority)
}

func IsValidSeverity(severity string) bool {
	return contains(Severities, severity)
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
