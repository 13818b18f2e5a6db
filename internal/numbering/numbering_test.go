package numbering

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/monocle-dev/bugtrack/internal/models"
	"github.com/monocle-dev/bugtrack/internal/testutil"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var fallbackPattern = regexp.MustCompile(`^BUG-\d+$`)

func seedProject(t *testing.T, db *gorm.DB, key string) *models.Project {
	t.Helper()

	owner := models.User{FirstName: "Ada", LastName: "L", Username: "ada-" + key, Email: key + "@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&owner).Error)

	project := models.Project{Name: "Web", Description: "site", ProjectKey: key, CreatedByID: owner.ID}
	require.NoError(t, db.Omit("CreatedBy").Create(&project).Error)

	return &project
}

func TestNextSequentialPerProject(t *testing.T) {
	db := testutil.NewDB(t)
	project := seedProject(t, db, "WEB")
	a := New(nil)

	first, key, err := a.Next(db, &project.ID)
	require.NoError(t, err)
	assert.Equal(t, "WEB-001", first)
	assert.Equal(t, "WEB", key)

	second, _, err := a.Next(db, &project.ID)
	require.NoError(t, err)
	assert.Equal(t, "WEB-002", second)

	other := seedProject(t, db, "API")
	n, _, err := a.Next(db, &other.ID)
	require.NoError(t, err)
	assert.Equal(t, "API-001", n, "sequences are per project")
}

func TestNextInsideTransaction(t *testing.T) {
	db := testutil.NewDB(t)
	project := seedProject(t, db, "TX")
	a := New(nil)

	err := db.Transaction(func(tx *gorm.DB) error {
		n, _, err := a.Next(tx, &project.ID)
		assert.Equal(t, "TX-001", n)
		return err
	})
	require.NoError(t, err)

	var stored models.Project
	require.NoError(t, db.First(&stored, project.ID).Error)
	assert.Equal(t, 1, stored.BugSequence)
}

func TestNextSkipsTakenNumbers(t *testing.T) {
	db := testutil.NewDB(t)
	project := seedProject(t, db, "WEB")
	a := New(nil)

	for _, taken := range []string{"WEB-001", "WEB-002"} {
		bug := models.Bug{Title: "moved", Description: "d", Type: "Functional", Reporter: "x", BugNumber: taken}
		require.NoError(t, db.Omit("Project").Create(&bug).Error)
	}

	n, _, err := a.Next(db, &project.ID)
	require.NoError(t, err)
	assert.Equal(t, "WEB-003", n)

	var stored models.Project
	require.NoError(t, db.First(&stored, project.ID).Error)
	assert.Equal(t, 3, stored.BugSequence)

	n, _, err = a.Next(db, &project.ID)
	require.NoError(t, err)
	assert.Equal(t, "WEB-004", n)
}

func TestNextFallsBackWithoutProject(t *testing.T) {
	db := testutil.NewDB(t)
	a := New(fixedClock{time.UnixMilli(1700000000000)})

	n, key, err := a.Next(db, nil)
	require.NoError(t, err)
	assert.Equal(t, "BUG-1700000000000", n)
	assert.Empty(t, key)
}

func TestNextFallsBackForUnknownProject(t *testing.T) {
	db := testutil.NewDB(t)
	a := New(nil)
	missing := uint(999)

	n, key, err := a.Next(db, &missing)
	require.NoError(t, err)
	assert.Regexp(t, fallbackPattern, n)
	assert.Empty(t, key)
}

func TestFallbackNumbersAreDistinct(t *testing.T) {
	db := testutil.NewDB(t)
	a := New(fixedClock{time.UnixMilli(42)})

	first, _, err := a.Next(db, nil)
	require.NoError(t, err)
	second, _, err := a.Next(db, nil)
	require.NoError(t, err)

	assert.Regexp(t, fallbackPattern, first)
	assert.Regexp(t, fallbackPattern, second)
	assert.NotEqual(t, first, second)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "WEB-001", Format("WEB", 1))
	assert.Equal(t, "WEB-042", Format("WEB", 42))
	assert.Equal(t, "WEB-1234", Format("WEB", 1234))
}
