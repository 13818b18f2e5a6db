package types

import (
	"github.com/monocle-dev/bugtrack/internal/models"
)

type BugResponse struct {
	models.Bug
	Environment      models.Environment `json:"environment"`
	StepsToReproduce []string           `json:"steps_to_reproduce"`
	Tags             []string           `json:"tags"`
	Project          *ProjectRef        `json:"project,omitempty"`
}

type DeleteBugResponse struct {
	Message    string      `json:"message"`
	DeletedBug BugResponse `json:"deleted_bug"`
}

func NewBugResponse(b *models.Bug) BugResponse {
	steps := []string(b.StepsToReproduce)
	if steps == nil {
		steps = []string{}
	}

	tags := []string(b.Tags)
	if tags == nil {
		tags = []string{}
	}

	return BugResponse{
		Bug:              *b,
		Environment:      b.Environment.Data(),
		StepsToReproduce: steps,
		Tags:             tags,
		Project:          NewProjectRef(b.Project, false),
	}
}

func NewBugResponses(bugs []models.Bug) []BugResponse {
	out := make([]BugResponse, 0, len(bugs))
	for i := range bugs {
		out = append(out, NewBugResponse(&bugs[i]))
	}
	return out
}
