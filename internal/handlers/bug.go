package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/monocle-dev/bugtrack/internal/apperr"
	"github.com/monocle-dev/bugtrack/internal/models"
	"github.com/monocle-dev/bugtrack/internal/query"
	"github.com/monocle-dev/bugtrack/internal/store"
	"github.com/monocle-dev/bugtrack/internal/types"
	"github.com/monocle-dev/bugtrack/internal/utils"
	"github.com/monocle-dev/bugtrack/internal/validation"
)

type CreateBugRequest struct {
	Title            string              `json:"title" binding:"required,max=200"`
	Description      string              `json:"description" binding:"required"`
	ProjectID        *uint               `json:"project_id"`
	Status           string              `json:"status" binding:"omitempty,oneof=open in-progress resolved closed"`
	Priority         string              `json:"priority" binding:"omitempty,oneof=low medium high critical"`
	Severity         string              `json:"severity" binding:"omitempty,oneof=minor major blocker"`
	Type             string              `json:"type"`
	StepsToReproduce []string            `json:"steps_to_reproduce"`
	ExpectedBehavior string              `json:"expected_behavior"`
	ActualBehavior   string              `json:"actual_behavior"`
	Reporter         string              `json:"reporter" binding:"max=100"`
	Assignee         string              `json:"assignee" binding:"max=100"`
	DueDate          *time.Time          `json:"due_date"`
	EstimatedHours   *float64            `json:"estimated_hours" binding:"omitempty,gte=0"`
	ActualHours      *float64            `json:"actual_hours" binding:"omitempty,gte=0"`
	Tags             []string            `json:"tags"`
	Environment      *models.Environment `json:"environment"`
}

// UpdateBugRequest changes only the fields present in the body.
type UpdateBugRequest struct {
	Title            *string             `json:"title" binding:"omitempty,max=200"`
	Description      *string             `json:"description"`
	ProjectID        *uint               `json:"project_id"`
	Status           *string             `json:"status" binding:"omitempty,oneof=open in-progress resolved closed"`
	Priority         *string             `json:"priority" binding:"omitempty,oneof=low medium high critical"`
	Severity         *string             `json:"severity" binding:"omitempty,oneof=minor major blocker"`
	Type             *string             `json:"type"`
	StepsToReproduce *[]string           `json:"steps_to_reproduce"`
	ExpectedBehavior *string             `json:"expected_behavior"`
	ActualBehavior   *string             `json:"actual_behavior"`
	Reporter         *string             `json:"reporter" binding:"omitempty,max=100"`
	Assignee         *string             `json:"assignee" binding:"omitempty,max=100"`
	DueDate          *time.Time          `json:"due_date"`
	EstimatedHours   *float64            `json:"estimated_hours" binding:"omitempty,gte=0"`
	ActualHours      *float64            `json:"actual_hours" binding:"omitempty,gte=0"`
	Tags             *[]string           `json:"tags"`
	Environment      *models.Environment `json:"environment"`
}

func (h *Handler) ListBugs(ctx *gin.Context) {
	var params query.Params

	if err := ctx.ShouldBindQuery(&params); err != nil {
		h.respondError(ctx, validation.FromBinding(err))
		return
	}

	filter, err := query.BuildFilter(params)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	bugs, err := h.store.ListBugs(ctx.Request.Context(), filter)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewBugResponses(bugs))
}

func (h *Handler) GetBug(ctx *gin.Context) {
	bug, ok := h.loadBug(ctx)

	if !ok {
		return
	}

	response := types.NewBugResponse(bug)
	response.Project = types.NewProjectRef(bug.Project, true)

	ctx.JSON(http.StatusOK, response)
}

func (h *Handler) CreateBug(ctx *gin.Context) {
	var req CreateBugRequest

	if !h.bindJSON(ctx, &req) {
		return
	}

	project, err := h.referencedProject(ctx, req.ProjectID)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	bug := models.Bug{
		Title:            validation.Sanitize(req.Title),
		Description:      validation.Sanitize(req.Description),
		ProjectID:        req.ProjectID,
		Status:           defaultString(req.Status, models.StatusOpen),
		Priority:         defaultString(req.Priority, models.PriorityMedium),
		Severity:         defaultString(req.Severity, models.SeverityMinor),
		Type:             strings.TrimSpace(req.Type),
		StepsToReproduce: cleanList(req.StepsToReproduce),
		ExpectedBehavior: validation.Sanitize(req.ExpectedBehavior),
		ActualBehavior:   validation.Sanitize(req.ActualBehavior),
		Reporter:         strings.TrimSpace(req.Reporter),
		Assignee:         strings.TrimSpace(req.Assignee),
		DueDate:          req.DueDate,
		EstimatedHours:   req.EstimatedHours,
		ActualHours:      req.ActualHours,
		Tags:             cleanList(req.Tags),
	}

	if req.Environment != nil {
		bug.Environment = datatypes.NewJSONType(*req.Environment)
	}

	if bug.Title == "" || bug.Description == "" {
		h.respondError(ctx, apperr.Validation("Validation failed", "Title and description are required"))
		return
	}

	if bug.Type == "" {
		bug.Type = validation.DefaultBugType(project)
	} else if project != nil {
		if err := validation.ValidateBugType(project, bug.Type); err != nil {
			h.respondError(ctx, err)
			return
		}
	}

	if bug.Reporter == "" {
		bug.Reporter = models.DefaultReporter

		if user, err := utils.GetCurrentUser(ctx); err == nil {
			bug.Reporter = user.Username
		}
	}

	if err := h.store.CreateBug(ctx.Request.Context(), &bug); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			h.respondError(ctx, apperr.Conflict("Bug number already exists"))
			return
		}
		h.respondError(ctx, err)
		return
	}

	h.broadcastBug(&bug, EventBugCreated)

	ctx.JSON(http.StatusCreated, types.NewBugResponse(&bug))
}

func (h *Handler) UpdateBug(ctx *gin.Context) {
	bug, ok := h.loadBug(ctx)

	if !ok {
		return
	}

	var req UpdateBugRequest

	if !h.bindJSON(ctx, &req) {
		return
	}

	previousProjectID := bug.ProjectID
	project := bug.Project

	if req.ProjectID != nil && (bug.ProjectID == nil || *req.ProjectID != *bug.ProjectID) {
		moved, err := h.referencedProject(ctx, req.ProjectID)

		if err != nil {
			h.respondError(ctx, err)
			return
		}

		project = moved
		bug.ProjectID = req.ProjectID
		bug.ProjectKey = moved.ProjectKey
		bug.Project = moved
	}

	if err := applyBugUpdate(bug, &req); err != nil {
		h.respondError(ctx, err)
		return
	}

	if req.Type != nil && project != nil {
		if err := validation.ValidateBugType(project, bug.Type); err != nil {
			h.respondError(ctx, err)
			return
		}
	}

	if err := h.store.SaveBug(ctx.Request.Context(), bug); err != nil {
		h.respondError(ctx, err)
		return
	}

	if previousProjectID != nil && (bug.ProjectID == nil || *previousProjectID != *bug.ProjectID) {
		h.hub.BroadcastRefresh(*previousProjectID, EventBugUpdated)
	}

	h.broadcastBug(bug, EventBugUpdated)

	ctx.JSON(http.StatusOK, types.NewBugResponse(bug))
}

func (h *Handler) DeleteBug(ctx *gin.Context) {
	id, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		h.respondError(ctx, apperr.Validation("Invalid bug ID"))
		return
	}

	bug, err := h.store.DeleteBug(ctx.Request.Context(), id)

	if errors.Is(err, store.ErrNotFound) {
		h.respondError(ctx, apperr.NotFound("Bug not found"))
		return
	}

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.broadcastBug(bug, EventBugDeleted)

	ctx.JSON(http.StatusOK, types.DeleteBugResponse{
		Message:    "Bug deleted successfully",
		DeletedBug: types.NewBugResponse(bug),
	})
}

func (h *Handler) loadBug(ctx *gin.Context) (*models.Bug, bool) {
	id, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		h.respondError(ctx, apperr.Validation("Invalid bug ID"))
		return nil, false
	}

	bug, err := h.store.BugByID(ctx.Request.Context(), id)

	if errors.Is(err, store.ErrNotFound) {
		h.respondError(ctx, apperr.NotFound("Bug not found"))
		return nil, false
	}

	if err != nil {
		h.respondError(ctx, err)
		return nil, false
	}

	return bug, true
}

// referencedProject loads the project a bug points at. A nil id means no
// project.
func (h *Handler) referencedProject(ctx *gin.Context, id *uint) (*models.Project, error) {
	if id == nil {
		return nil, nil
	}

	project, err := h.store.ProjectByID(ctx.Request.Context(), *id)

	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Validation("Project not found")
	}

	return project, err
}

func applyBugUpdate(bug *models.Bug, req *UpdateBugRequest) error {
	if req.Title != nil {
		if bug.Title = validation.Sanitize(*req.Title); bug.Title == "" {
			return apperr.Validation("Validation failed", "Title is required")
		}
	}

	if req.Description != nil {
		if bug.Description = validation.Sanitize(*req.Description); bug.Description == "" {
			return apperr.Validation("Validation failed", "Description is required")
		}
	}

	if req.Status != nil && *req.Status != "" {
		bug.Status = *req.Status
	}

	if req.Priority != nil && *req.Priority != "" {
		bug.Priority = *req.Priority
	}

	if req.Severity != nil && *req.Severity != "" {
		bug.Severity = *req.Severity
	}

	if req.Type != nil {
		if bug.Type = strings.TrimSpace(*req.Type); bug.Type == "" {
			return apperr.Validation("Validation failed", "Type cannot be empty")
		}
	}

	if req.StepsToReproduce != nil {
		bug.StepsToReproduce = cleanList(*req.StepsToReproduce)
	}

	if req.ExpectedBehavior != nil {
		bug.ExpectedBehavior = validation.Sanitize(*req.ExpectedBehavior)
	}

	if req.ActualBehavior != nil {
		bug.ActualBehavior = validation.Sanitize(*req.ActualBehavior)
	}

	if req.Reporter != nil && strings.TrimSpace(*req.Reporter) != "" {
		bug.Reporter = strings.TrimSpace(*req.Reporter)
	}

	if req.Assignee != nil {
		bug.Assignee = strings.TrimSpace(*req.Assignee)
	}

	if req.DueDate != nil {
		bug.DueDate = req.DueDate
	}

	if req.EstimatedHours != nil {
		bug.EstimatedHours = req.EstimatedHours
	}

	if req.ActualHours != nil {
		bug.ActualHours = req.ActualHours
	}

	if req.Tags != nil {
		bug.Tags = cleanList(*req.Tags)
	}

	if req.Environment != nil {
		bug.Environment = datatypes.NewJSONType(*req.Environment)
	}

	return nil
}

func (h *Handler) broadcastBug(bug *models.Bug, event string) {
	if bug.ProjectID != nil {
		h.hub.BroadcastRefresh(*bug.ProjectID, event)
	}
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// cleanList trims the entries and drops the empty ones.
func cleanList(values []string) datatypes.JSONSlice[string] {
	out := make(datatypes.JSONSlice[string], 0, len(values))

	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}

	return out
}
