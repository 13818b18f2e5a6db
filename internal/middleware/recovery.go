package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/monocle-dev/bugtrack/internal/types"
)

// Recovery turns a panic into a 500 response.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic while handling request",
					slog.Any("panic", rec),
					slog.String("path", ctx.Request.URL.Path),
					slog.String("request_id", ctx.GetString(types.ContextRequestIDKey)),
					slog.String("stack", string(debug.Stack())),
				)

				abortJSON(ctx, http.StatusInternalServerError, "Internal server error")
			}
		}()

		ctx.Next()
	}
}
