package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/monocle-dev/bugtrack/internal/access"
	"github.com/monocle-dev/bugtrack/internal/apperr"
	"github.com/monocle-dev/bugtrack/internal/auth"
	"github.com/monocle-dev/bugtrack/internal/config"
	"github.com/monocle-dev/bugtrack/internal/models"
	"github.com/monocle-dev/bugtrack/internal/store"
	"github.com/monocle-dev/bugtrack/internal/types"
	"github.com/monocle-dev/bugtrack/internal/utils"
	"github.com/monocle-dev/bugtrack/internal/validation"
)

type Handler struct {
	store  *store.Store
	tokens *auth.JWTManager
	hub    *Hub
	cfg    *config.Config
	log    *slog.Logger
}

func New(st *store.Store, tokens *auth.JWTManager, hub *Hub, cfg *config.Config, log *slog.Logger) *Handler {
	return &Handler{
		store:  st,
		tokens: tokens,
		hub:    hub,
		cfg:    cfg,
		log:    log,
	}
}

// respondError writes err as JSON. Errors outside the apperr taxonomy are
// logged and reported as 500s.
func (h *Handler) respondError(ctx *gin.Context, err error) {
	if appErr, ok := apperr.As(err); ok && appErr.Kind != apperr.KindInternal {
		ctx.AbortWithStatusJSON(appErr.Status(), types.ErrorResponse{
			Error:   appErr.Message,
			Details: appErr.Details,
		})
		return
	}

	if errors.Is(err, store.ErrNotFound) {
		ctx.AbortWithStatusJSON(http.StatusNotFound, types.ErrorResponse{Error: "Resource not found"})
		return
	}

	h.log.Error("request failed",
		slog.String("method", ctx.Request.Method),
		slog.String("route", ctx.FullPath()),
		slog.String("request_id", ctx.GetString(types.ContextRequestIDKey)),
		slog.Any("error", err),
	)

	body := types.ErrorResponse{Error: "Internal server error"}

	if h.cfg.IsDevelopment() {
		body.Message = err.Error()
	}

	ctx.AbortWithStatusJSON(http.StatusInternalServerError, body)
}

// bindJSON decodes the body into req, answering 400 on failure.
func (h *Handler) bindJSON(ctx *gin.Context, req any) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		h.respondError(ctx, validation.FromBinding(err))
		return false
	}
	return true
}

func (h *Handler) currentUser(ctx *gin.Context) (*models.User, bool) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		h.respondError(ctx, apperr.Unauthenticated("User not authenticated"))
		return nil, false
	}

	return user, true
}

// accessibleProject loads the :project_id project and checks that the user
// may see it: unknown ids are 404, projects of other teams 403.
func (h *Handler) accessibleProject(ctx *gin.Context, user *models.User) (*models.Project, bool) {
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

	if !access.HasAccess(user.ID, project) {
		h.respondError(ctx, apperr.Forbidden("Access denied"))
		return nil, false
	}

	return project, true
}
