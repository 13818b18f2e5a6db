package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/monocle-dev/bugtrack/internal/apperr"
	"github.com/monocle-dev/bugtrack/internal/models"
	"github.com/monocle-dev/bugtrack/internal/testutil"
)

func TestBuildFilterAllMeansNoFilter(t *testing.T) {
	withAll, err := BuildFilter(Params{Status: "all", Priority: "high"})
	require.NoError(t, err)

	without, err := BuildFilter(Params{Priority: "high"})
	require.NoError(t, err)

	assert.Equal(t, without, withAll)
	assert.Empty(t, withAll.Status)
	assert.Equal(t, "high", withAll.Priority)
}

func TestBuildFilterProject(t *testing.T) {
	f, err := BuildFilter(Params{Project: "12"})
	require.NoError(t, err)
	assert.Equal(t, uint(12), f.ProjectID)

	f, err = BuildFilter(Params{Project: "all"})
	require.NoError(t, err)
	assert.Zero(t, f.ProjectID)

	_, err = BuildFilter(Params{Project: "abc"})
	assert.Error(t, err)
}

func TestBuildFilterRejectsUnknownEnums(t *testing.T) {
	_, err := BuildFilter(Params{Status: "done", Priority: "urgent", Severity: "fatal"})
	require.Error(t, err)

	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Len(t, appErr.Details, 3)
}

func TestBuildFilterTrimsSearch(t *testing.T) {
	f, err := BuildFilter(Params{Search: "  login  "})
	require.NoError(t, err)
	assert.Equal(t, "login", f.Search)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `snake\_case`, escapeLike("snake_case"))
	assert.Equal(t, `a\\b`, escapeLike(`a\b`))
}

func seedBugs(t *testing.T, db *gorm.DB) {
	t.Helper()

	bugs := []models.Bug{
		{Title: "Login button broken", Description: "nothing happens", Status: models.StatusOpen, Priority: models.PriorityHigh, Severity: models.SeverityBlocker, Type: "Functional", Reporter: "a", BugNumber: "WEB-001"},
		{Title: "Slow dashboard", Description: "takes 10s after LOGIN", Status: models.StatusResolved, Priority: models.PriorityLow, Type: "Performance", Reporter: "a", BugNumber: "WEB-002"},
		{Title: "Typo", Description: "footer says 100% free", Status: models.StatusOpen, Priority: models.PriorityLow, Type: "Visual", Reporter: "a", BugNumber: "API-001"},
	}
	require.NoError(t, db.Create(&bugs).Error)
}

func find(t *testing.T, db *gorm.DB, params Params) []string {
	t.Helper()

	f, err := BuildFilter(params)
	require.NoError(t, err)

	var bugs []models.Bug
	require.NoError(t, db.Scopes(f.Scope).Order("bug_number").Find(&bugs).Error)

	numbers := make([]string, 0, len(bugs))
	for _, b := range bugs {
		numbers = append(numbers, b.BugNumber)
	}
	return numbers
}

func TestScope(t *testing.T) {
	db := testutil.NewDB(t)
	seedBugs(t, db)

	t.Run("search is case insensitive across fields", func(t *testing.T) {
		assert.Equal(t, []string{"WEB-001", "WEB-002"}, find(t, db, Params{Search: "login"}))
	})

	t.Run("search matches bug number", func(t *testing.T) {
		assert.Equal(t, []string{"API-001"}, find(t, db, Params{Search: "api-"}))
	})

	t.Run("search treats wildcards literally", func(t *testing.T) {
		assert.Equal(t, []string{"API-001"}, find(t, db, Params{Search: "100%"}))
		assert.Empty(t, find(t, db, Params{Search: "_ogin"}))
	})

	t.Run("filters combine with AND", func(t *testing.T) {
		assert.Equal(t, []string{"API-001"}, find(t, db, Params{Status: "open", Priority: "low"}))
		assert.Equal(t, []string{"WEB-002"}, find(t, db, Params{Priority: "low", Search: "login"}))
	})

	t.Run("severity filter", func(t *testing.T) {
		assert.Equal(t, []string{"WEB-001"}, find(t, db, Params{Severity: "blocker"}))
		assert.Equal(t, []string{"API-001", "WEB-002"}, find(t, db, Params{Severity: "minor"}))
	})

	t.Run("type filter", func(t *testing.T) {
		assert.Equal(t, []string{"WEB-002"}, find(t, db, Params{Type: "Performance"}))
	})

	t.Run("all returns everything", func(t *testing.T) {
		assert.Len(t, find(t, db, Params{Status: "all", Priority: "all", Severity: "all", Project: "all", Type: "all"}), 3)
	})
}
