// Package access decides who may see and who may change a project.
//
// Both checks expect the project's creator id and team members to be
// loaded. Read access covers the project and every bug filed against it;
// ownership is required to update or delete the project itself.
package access

import (
	"slices"

	"github.com/monocle-dev/bugtrack/internal/models"
)

// HasAccess reports whether the user is the project's creator or one of its
// team members.
func HasAccess(userID uint, project *models.Project) bool {
	if project == nil || userID == 0 {
		return false
	}

	if IsOwner(userID, project) {
		return true
	}

	return slices.Contains(project.MemberIDs(), userID)
}

// IsOwner reports whether the user created the project.
func IsOwner(userID uint, project *models.Project) bool {
	return project != nil && userID != 0 && project.CreatedByID == userID
}
