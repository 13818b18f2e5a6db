package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/monocle-dev/bugtrack/internal/models"
)

func member(id uint) models.User {
	return models.User{BaseModel: models.BaseModel{ID: id}}
}

func TestHasAccess(t *testing.T) {
	project := &models.Project{
		CreatedByID: 1,
		TeamMembers: []models.User{member(2), member(3)},
	}

	t.Run("creator", func(t *testing.T) {
		assert.True(t, HasAccess(1, project))
	})

	t.Run("team members", func(t *testing.T) {
		assert.True(t, HasAccess(2, project))
		assert.True(t, HasAccess(3, project))
	})

	t.Run("outsider", func(t *testing.T) {
		assert.False(t, HasAccess(4, project))
	})

	t.Run("anonymous", func(t *testing.T) {
		assert.False(t, HasAccess(0, project))
	})

	t.Run("nil project", func(t *testing.T) {
		assert.False(t, HasAccess(1, nil))
	})
}

func TestIsOwner(t *testing.T) {
	project := &models.Project{
		CreatedByID: 1,
		TeamMembers: []models.User{member(2)},
	}

	assert.True(t, IsOwner(1, project))
	assert.False(t, IsOwner(2, project), "team members do not own the project")
	assert.False(t, IsOwner(3, project))
	assert.False(t, IsOwner(0, &models.Project{}))
}
