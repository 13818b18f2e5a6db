package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/monocle-dev/bugtrack/internal/access"
	"github.com/monocle-dev/bugtrack/internal/apperr"
	"github.com/monocle-dev/bugtrack/internal/models"
	"github.com/monocle-dev/bugtrack/internal/store"
	"github.com/monocle-dev/bugtrack/internal/types"
	"github.com/monocle-dev/bugtrack/internal/utils"
	"github.com/monocle-dev/bugtrack/internal/validation"
)

type CreateProjectRequest struct {
	Name        string           `json:"name" binding:"required,max=100"`
	Description string           `json:"description" binding:"required"`
	ProjectKey  string           `json:"project_key" binding:"required"`
	TeamMembers []uint           `json:"team_members"`
	BugTypes    []models.BugType `json:"bug_types"`
}

type UpdateProjectRequest struct {
	Name        *string           `json:"name" binding:"omitempty,max=100"`
	Description *string           `json:"description"`
	TeamMembers *[]uint           `json:"team_members"`
	BugTypes    *[]models.BugType `json:"bug_types"`
	Status      *string           `json:"status"`
}

func (h *Handler) CreateProject(ctx *gin.Context) {
	user, ok := h.currentUser(ctx)

	if !ok {
		return
	}

	var body CreateProjectRequest

	if !h.bindJSON(ctx, &body) {
		return
	}

	name := strings.TrimSpace(body.Name)
	description := strings.TrimSpace(body.Description)

	if name == "" || description == "" {
		h.respondError(ctx, apperr.Validation("Validation failed", "Project name and description are required"))
		return
	}

	key, err := validation.NormalizeProjectKey(body.ProjectKey)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	bugTypes, err := validation.NormalizeBugTypes(body.BugTypes)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	members, err := h.teamMembers(ctx, body.TeamMembers)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	if _, err := h.store.ProjectByKey(ctx.Request.Context(), key); err == nil {
		h.respondError(ctx, apperr.Conflict("Project key already exists"))
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		h.respondError(ctx, err)
		return
	}

	project := models.Project{
		Name:        name,
		Description: description,
		ProjectKey:  key,
		CreatedByID: user.ID,
		BugTypes:    bugTypes,
		Status:      models.ProjectStatusActive,
		TeamMembers: members,
	}

	if err := h.store.CreateProject(ctx.Request.Context(), &project); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			h.respondError(ctx, apperr.Conflict("Project key already exists"))
			return
		}
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, types.NewProjectResponse(&project))
}

// ListProjects returns the caller's active projects with their bug counts.
func (h *Handler) ListProjects(ctx *gin.Context) {
	user, ok := h.currentUser(ctx)

	if !ok {
		return
	}

	projects, err := h.store.ProjectsForUser(ctx.Request.Context(), user.ID)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	counts, err := h.store.BugCounts(ctx.Request.Context(), projects)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	response := make([]types.ProjectListItem, 0, len(projects))

	for i := range projects {
		response = append(response, types.ProjectListItem{
			ProjectResponse: types.NewProjectResponse(&projects[i]),
			BugCount:        counts[i].BugCount,
			OpenBugCount:    counts[i].OpenBugCount,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *Handler) GetProject(ctx *gin.Context) {
	user, ok := h.currentUser(ctx)

	if !ok {
		return
	}

	project, ok := h.accessibleProject(ctx, user)

	if !ok {
		return
	}

	stats, err := h.store.ProjectBugStats(ctx.Request.Context(), project.ID, "status")

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	total, err := h.store.CountProjectBugs(ctx.Request.Context(), project.ID)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.ProjectDetail{
		ProjectResponse: types.NewProjectResponse(project),
		BugStats:        stats,
		TotalBugs:       total,
	})
}

func (h *Handler) UpdateProject(ctx *gin.Context) {
	user, ok := h.currentUser(ctx)

	if !ok {
		return
	}

	project, ok := h.ownedProject(ctx, user, "update")

	if !ok {
		return
	}

	var body UpdateProjectRequest

	if !h.bindJSON(ctx, &body) {
		return
	}

	var update store.ProjectUpdate

	if body.Name != nil {
		if name := strings.TrimSpace(*body.Name); name != "" {
			update.Name = &name
		}
	}

	if body.Description != nil {
		if description := strings.TrimSpace(*body.Description); description != "" {
			update.Description = &description
		}
	}

	if body.Status != nil && *body.Status != "" {
		if !models.IsValidProjectStatus(*body.Status) {
			h.respondError(ctx, apperr.Validation("Validation failed", "Status must be one of: "+strings.Join(models.ProjectStatuses, ", ")))
			return
		}
		update.Status = body.Status
	}

	if body.BugTypes != nil {
		bugTypes, err := validation.NormalizeBugTypes(*body.BugTypes)

		if err != nil {
			h.respondError(ctx, err)
			return
		}

		update.BugTypes = &bugTypes
	}

	if body.TeamMembers != nil {
		members, err := h.teamMembers(ctx, *body.TeamMembers)

		if err != nil {
			h.respondError(ctx, err)
			return
		}

		update.TeamMembers = &members
	}

	if err := h.store.UpdateProject(ctx.Request.Context(), project, update); err != nil {
		h.respondError(ctx, err)
		return
	}

	h.hub.BroadcastRefresh(project.ID, EventProjectUpdated)

	ctx.JSON(http.StatusOK, types.NewProjectResponse(project))
}

func (h *Handler) DeleteProject(ctx *gin.Context) {
	user, ok := h.currentUser(ctx)

	if !ok {
		return
	}

	project, ok := h.ownedProject(ctx, user, "delete")

	if !ok {
		return
	}

	if err := h.store.DeleteProject(ctx.Request.Context(), project.ID); err != nil {
		h.respondError(ctx, err)
		return
	}

	h.hub.BroadcastRefresh(project.ID, EventProjectDeleted)

	ctx.JSON(http.StatusOK, types.MessageResponse{Message: "Project and associated bugs deleted successfully"})
}

// ownedProject loads the :project_id project and requires the user to be
// its creator.
func (h *Handler) ownedProject(ctx *gin.Context, user *models.User, action string) (*models.Project, bool) {
	projectID, err := utils.ParseIDParam(ctx, "project_id")

	if err != nil {
		h.respondError(ctx, apperr.Validation("Invalid project ID"))
		return nil, false
	}

	project, err := h.store.ProjectByID(ctx.Request.Context(), projectID)

	if errors.Is(err, store.ErrNotFound) {
		h.respondError(ctx, apperr.NotFound("Project not found"))
		return nil, false
	}

	if err != nil {
		h.respondError(ctx, err)
		return nil, false
	}

	if !access.IsOwner(user.ID, project) {
		h.respondError(ctx, apperr.Forbidden("Only project creator can "+action+" the project"))
		return nil, false
	}

	return project, true
}

func (h *Handler) teamMembers(ctx *gin.Context, ids []uint) ([]models.User, error) {
	members, err := h.store.UsersByIDs(ctx.Request.Context(), ids)

	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Validation("Validation failed", "One or more team members do not exist")
	}

	return members, err
}
