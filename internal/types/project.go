package types

import (
	"time"

	"github.com/monocle-dev/bugtrack/internal/models"
)

type ProjectResponse struct {
	ID          uint             `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	ProjectKey  string           `json:"project_key"`
	Status      string           `json:"status"`
	CreatedBy   UserSummary      `json:"created_by"`
	TeamMembers []UserSummary    `json:"team_members"`
	BugTypes    []models.BugType `json:"bug_types"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type ProjectListItem struct {
	ProjectResponse
	BugCount     int64 `json:"bug_count"`
	OpenBugCount int64 `json:"open_bug_count"`
}

type ProjectDetail struct {
	ProjectResponse
	BugStats  []models.GroupCount `json:"bug_stats"`
	TotalBugs int64               `json:"total_bugs"`
}

// ProjectRef is the short project view embedded in bugs.
type ProjectRef struct {
	ID          uint             `json:"id"`
	Name        string           `json:"name"`
	ProjectKey  string           `json:"project_key"`
	Description string           `json:"description,omitempty"`
	BugTypes    []models.BugType `json:"bug_types,omitempty"`
}

type ProjectBugsResponse struct {
	Project    ProjectRef    `json:"project"`
	Bugs       []BugResponse `json:"bugs"`
	TotalCount int           `json:"total_count"`
}

type ProjectStatsResponse struct {
	StatusStats   []models.GroupCount `json:"status_stats"`
	PriorityStats []models.GroupCount `json:"priority_stats"`
	TypeStats     []models.GroupCount `json:"type_stats"`
	TotalBugs     int64               `json:"total_bugs"`
}

func NewProjectResponse(p *models.Project) ProjectResponse {
	members := make([]UserSummary, 0, len(p.TeamMembers))
	for _, m := range p.TeamMembers {
		members = append(members, NewUserSummary(m))
	}

	bugTypes := []models.BugType(p.BugTypes)
	if bugTypes == nil {
		bugTypes = []models.BugType{}
	}

	return ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		ProjectKey:  p.ProjectKey,
		Status:      p.Status,
		CreatedBy:   NewUserSummary(p.CreatedBy),
		TeamMembers: members,
		BugTypes:    bugTypes,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func NewProjectRef(p *models.Project, withTypes bool) *ProjectRef {
	if p == nil {
		return nil
	}

	ref := &ProjectRef{
		ID:         p.ID,
		Name:       p.Name,
		ProjectKey: p.ProjectKey,
	}

	if withTypes {
		ref.Description = p.Description
		ref.BugTypes = p.BugTypes
	}

	return ref
}
