package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monocle-dev/bugtrack/internal/models"
	"github.com/monocle-dev/bugtrack/internal/types"
)

func newContext() *gin.Context {
	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	return ctx
}

func TestGetCurrentUser(t *testing.T) {
	ctx := newContext()

	_, err := GetCurrentUser(ctx)
	assert.Error(t, err)

	ctx.Set(types.ContextUserKey, "not a user")
	_, err = GetCurrentUser(ctx)
	assert.Error(t, err)

	user := &models.User{BaseModel: models.BaseModel{ID: 7}}
	ctx.Set(types.ContextUserKey, user)

	got, err := GetCurrentUser(ctx)
	require.NoError(t, err)
	assert.Same(t, user, got)
}

func TestParseIDParam(t *testing.T) {
	tests := []struct {
		value string
		want  uint
		ok    bool
	}{
		{"12", 12, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		ctx := newContext()
		ctx.Params = gin.Params{{Key: "id", Value: tt.value}}

		got, err := ParseIDParam(ctx, "id")

		if tt.ok {
			require.NoError(t, err, tt.value)
			assert.Equal(t, tt.want, got)
		} else {
			assert.Error(t, err, tt.value)
		}
	}
}
