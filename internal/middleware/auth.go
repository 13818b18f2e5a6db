package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/monocle-dev/bugtrack/internal/auth"
	"github.com/monocle-dev/bugtrack/internal/models"
	"github.com/monocle-dev/bugtrack/internal/store"
	"github.com/monocle-dev/bugtrack/internal/types"
)

// UserProvider resolves the user a token was issued to.
type UserProvider interface {
	UserByID(ctx context.Context, id uint) (*models.User, error)
}

var errInactive = errors.New("account is deactivated")

// RequireAuth rejects requests without a valid bearer token for an active
// user. The user is stored on the context under types.ContextUserKey.
func RequireAuth(tokens *auth.JWTManager, users UserProvider, log *slog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, err := authenticate(ctx, tokens, users)

		switch {
		case err == nil:
			ctx.Set(types.ContextUserKey, user)
			ctx.Next()
		case errors.Is(err, auth.ErrMissingToken):
			abortJSON(ctx, http.StatusUnauthorized, "No token, authorization denied")
		case errors.Is(err, errInactive):
			abortJSON(ctx, http.StatusUnauthorized, "Account is deactivated")
		case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, store.ErrNotFound):
			abortJSON(ctx, http.StatusUnauthorized, "Token is not valid")
		default:
			log.Error("failed to authenticate request", slog.String("path", ctx.FullPath()), slog.Any("error", err))
			abortJSON(ctx, http.StatusInternalServerError, "Internal server error")
		}
	}
}

// OptionalAuth sets the user when the request carries a valid token and
// lets every other request through anonymously.
func OptionalAuth(tokens *auth.JWTManager, users UserProvider, log *slog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, err := authenticate(ctx, tokens, users)

		if err == nil {
			ctx.Set(types.ContextUserKey, user)
		} else if !errors.Is(err, auth.ErrMissingToken) {
			log.Debug("ignoring invalid credentials", slog.Any("error", err))
		}

		ctx.Next()
	}
}

func authenticate(ctx *gin.Context, tokens *auth.JWTManager, users UserProvider) (*models.User, error) {
	header := ctx.GetHeader("Authorization")

	// Browsers cannot set headers on websocket handshakes.
	if header == "" && websocket.IsWebSocketUpgrade(ctx.Request) && ctx.Query("token") != "" {
		header = "Bearer " + ctx.Query("token")
	}

	tokenString, err := bearerToken(header)

	if err != nil {
		return nil, err
	}

	claims, err := tokens.Verify(tokenString)

	if err != nil {
		return nil, err
	}

	user, err := users.UserByID(ctx.Request.Context(), claims.UserID)

	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, errInactive
	}

	return user, nil
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", auth.ErrMissingToken
	}

	parts := strings.SplitN(header, " ", 2)

	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", auth.ErrInvalidToken
	}

	return strings.TrimSpace(parts[1]), nil
}

func abortJSON(ctx *gin.Context, status int, message string) {
	ctx.AbortWithStatusJSON(status, types.ErrorResponse{Error: message})
}
