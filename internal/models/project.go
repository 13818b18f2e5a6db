package models

import (
	"gorm.io/datatypes"
)

const (
	ProjectStatusActive    = "active"
	ProjectStatusArchived  = "archived"
	ProjectStatusCompleted = "completed"

	DefaultBugTypeColor = "#6B7280"
)

var ProjectStatuses = []string{ProjectStatusActive, ProjectStatusArchived, ProjectStatusCompleted}

// BugType is a project specific issue category.
type BugType struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color"`
}

type Project struct {
	BaseModel

	Name        string `gorm:"not null"`
	Description string `gorm:"not null"`
	ProjectKey  string `gorm:"uniqueIndex;not null"`
	CreatedByID uint   `gorm:"not null;index"`
	BugTypes    datatypes.JSONSlice[BugType]
	Status      string `gorm:"not null;default:active;index"`

	// BugSequence is the last sequence number handed out to a bug of this
	// project. Only the numbering assigner touches it.
	BugSequence int `gorm:"not null;default:0"`

	// Relationships
	CreatedBy   User   `gorm:"foreignKey:CreatedByID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	TeamMembers []User `gorm:"many2many:project_members;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// BugTypeNames returns the names of the project's custom bug types.
func (p *Project) BugTypeNames() []string {
	names := make([]string, 0, len(p.BugTypes))
	for _, t := range p.BugTypes {
		names = append(names, t.Name)
	}
	return names
}

// MemberIDs returns the ids of the project's team members.
func (p *Project) MemberIDs() []uint {
	ids := make([]uint, 0, len(p.TeamMembers))
	for _, m := range p.TeamMembers {
		ids = append(ids, m.ID)
	}
	return ids
}

func IsValidProjectStatus(status string) bool {
	switch status {
	case ProjectStatusActive, ProjectStatusArchived, ProjectStatusCompleted:
		return true
	}
	return false
}
