package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/monocle-dev/bugtrack/internal/apperr"
	"github.com/monocle-dev/bugtrack/internal/query"
	"github.com/monocle-dev/bugtrack/internal/types"
	"github.com/monocle-dev/bugtrack/internal/validation"
)

// ListProjectBugs lists the bugs of one project. The project query
// parameter is ignored; the path decides the project.
func (h *Handler) ListProjectBugs(ctx *gin.Context) {
	user, ok := h.currentUser(ctx)

	if !ok {
		return
	}

	project, ok := h.accessibleProject(ctx, user)

	if !ok {
		return
	}

	var params query.Params

	if err := ctx.ShouldBindQuery(&params); err != nil {
		h.respondError(ctx, validation.FromBinding(err))
		return
	}

	params.Project = ""

	filter, err := query.BuildFilter(params)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	filter.ProjectID = project.ID

	bugs, err := h.store.ListBugs(ctx.Request.Context(), filter)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.ProjectBugsResponse{
		Project:    *types.NewProjectRef(project, true),
		Bugs:       types.NewBugResponses(bugs),
		TotalCount: len(bugs),
	})
}

func (h *Handler) ProjectBugStats(ctx *gin.Context) {
	user, ok := h.currentUser(ctx)

	if !ok {
		return
	}

	project, ok := h.accessibleProject(ctx, user)

	if !ok {
		return
	}

	var response types.ProjectStatsResponse

	g, gctx := errgroup.WithContext(ctx.Request.Context())

	g.Go(func() (err error) {
		response.StatusStats, err = h.store.ProjectBugStats(gctx, project.ID, "status")
		return err
	})

	g.Go(func() (err error) {
		response.PriorityStats, err = h.store.ProjectBugStats(gctx, project.ID, "priority")
		return err
	})

	g.Go(func() (err error) {
		response.TypeStats, err = h.store.ProjectBugStats(gctx, project.ID, "type")
		return err
	})

	g.Go(func() (err error) {
		response.TotalBugs, err = h.store.CountProjectBugs(gctx, project.ID)
		return err
	})

	if err := g.Wait(); err != nil {
		h.respondError(ctx, apperr.Internal("failed to compute project stats", err))
		return
	}

	ctx.JSON(http.StatusOK, response)
}
