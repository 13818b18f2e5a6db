package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/monocle-dev/bugtrack/internal/models"
	"github.com/monocle-dev/bugtrack/internal/types"
)

// GetCurrentUser returns the user the auth middleware stored on the context.
func GetCurrentUser(ctx *gin.Context) (*models.User, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return nil, fmt.Errorf("user not authenticated")
	}

	authenticatedUser, ok := user.(*models.User)

	if !ok || authenticatedUser == nil {
		return nil, fmt.Errorf("invalid user type in context")
	}

	return authenticatedUser, nil
}
