package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/monocle-dev/bugtrack/internal/auth"
	"github.com/monocle-dev/bugtrack/internal/config"
	"github.com/monocle-dev/bugtrack/internal/handlers"
	"github.com/monocle-dev/bugtrack/internal/middleware"
	"github.com/monocle-dev/bugtrack/internal/types"
)

type Dependencies struct {
	Config  *config.Config
	Handler *handlers.Handler
	Tokens  *auth.JWTManager
	Users   middleware.UserProvider
	Metrics *middleware.Metrics
	Log     *slog.Logger
}

func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	h := deps.Handler

	r.Use(
		middleware.Recovery(deps.Log),
		middleware.RequestID(),
		middleware.Logger(deps.Log),
		deps.Metrics.Middleware(),
		middleware.SecurityHeaders(),
	)

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins(deps.Config.HTTP.AllowedOrigins, deps.Config.HTTP.ClientURL),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With", types.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", types.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/metrics", deps.Metrics.Handler())

	requireAuth := middleware.RequireAuth(deps.Tokens, deps.Users, deps.Log)
	optionalAuth := middleware.OptionalAuth(deps.Tokens, deps.Users, deps.Log)
	limiter := middleware.NewRateLimiter(deps.Config.HTTP.RateLimitRPS, deps.Config.HTTP.RateLimitBurst)

	api := r.Group("/api", limiter.Middleware())
	{
		api.GET("/health", h.Health)
		api.GET("/ws/:project_id", requireAuth, h.WebSocket)

		account := api.Group("/auth")
		{
			account.POST("/register", h.Register)
			account.POST("/login", h.Login)
			account.GET("/me", requireAuth, h.Me)
			account.PUT("/profile", requireAuth, h.UpdateProfile)
			account.PUT("/password", requireAuth, h.ChangePassword)
		}

		bugs := api.Group("/bugs", optionalAuth)
		{
			bugs.GET("", h.ListBugs)
			bugs.POST("", h.CreateBug)
			bugs.GET("/:id", h.GetBug)
			bugs.PUT("/:id", h.UpdateBug)
			bugs.DELETE("/:id", h.DeleteBug)
		}

		projects := api.Group("/projects", requireAuth)
		{
			projects.GET("", h.ListProjects)
			projects.POST("", h.CreateProject)
			projects.GET("/:project_id", h.GetProject)
			projects.PUT("/:project_id", h.UpdateProject)
			projects.DELETE("/:project_id", h.DeleteProject)

			projects.GET("/:project_id/bugs", h.ListProjectBugs)
			projects.GET("/:project_id/bugs/stats", h.ProjectBugStats)
		}
	}

	r.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Route not found"})
	})

	return r
}
