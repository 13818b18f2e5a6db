package validation

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monocle-dev/bugtrack/internal/apperr"
	"github.com/monocle-dev/bugtrack/internal/models"
)

func TestValidateBugTypeAgainstProjectTypes(t *testing.T) {
	project := &models.Project{
		BugTypes: []models.BugType{{Name: "Crash"}, {Name: "UI"}},
	}

	assert.NoError(t, ValidateBugType(project, "Crash"))

	err := ValidateBugType(project, "Functional")
	require.Error(t, err)

	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Equal(t, "Invalid bug type. Available types: Crash, UI", appErr.Message)
}

func TestValidateBugTypeDefaults(t *testing.T) {
	empty := &models.Project{}

	assert.NoError(t, ValidateBugType(empty, "Security"))
	assert.NoError(t, ValidateBugType(nil, "Visual"))

	err := ValidateBugType(empty, "Crash")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Functional, Visual, Performance, Security, Usability, Compatibility")
}

func TestDefaultBugType(t *testing.T) {
	assert.Equal(t, "Functional", DefaultBugType(nil))
	assert.Equal(t, "Crash", DefaultBugType(&models.Project{BugTypes: []models.BugType{{Name: "Crash"}}}))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "hello", Sanitize("  hello  "))
	assert.Equal(t, "before  after", Sanitize(`before <script type="text/javascript">alert("x")</script> after`))
	assert.Equal(t, "a  b", Sanitize("a <SCRIPT>evil()</SCRIPT> b"))
	assert.Equal(t, "<b>bold</b>", Sanitize("<b>bold</b>"))
}

type bugInput struct {
	Title    string `validate:"required,max=5"`
	Priority string `validate:"omitempty,oneof=low medium high critical"`
}

func TestFromBindingListsFieldMessages(t *testing.T) {
	v := validator.New()

	err := v.Struct(bugInput{Priority: "urgent"})
	require.Error(t, err)

	appErr := FromBinding(err)
	assert.Equal(t, "Validation failed", appErr.Message)
	assert.ElementsMatch(t, []string{
		"Title is required",
		"Priority must be one of: low, medium, high, critical",
	}, appErr.Details)
}

func TestFromBindingMalformedBody(t *testing.T) {
	appErr := FromBinding(errors.New("unexpected EOF"))
	assert.Equal(t, "Invalid request body", appErr.Message)
	assert.Empty(t, appErr.Details)
}

func TestNormalizeProjectKey(t *testing.T) {
	key, err := NormalizeProjectKey("  web1 ")
	require.NoError(t, err)
	assert.Equal(t, "WEB1", key)

	for _, bad := range []string{"", "   ", "WEB-1", "ABCDEFGHIJK"} {
		_, err := NormalizeProjectKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestNormalizeBugTypes(t *testing.T) {
	types, err := NormalizeBugTypes([]models.BugType{{Name: " Crash "}, {Name: "UI", Color: "#fff"}})
	require.NoError(t, err)
	assert.Equal(t, []models.BugType{
		{Name: "Crash", Color: models.DefaultBugTypeColor},
		{Name: "UI", Color: "#fff"},
	}, types)

	_, err = NormalizeBugTypes([]models.BugType{{Name: " "}})
	assert.Error(t, err)

	_, err = NormalizeBugTypes([]models.BugType{{Name: "A"}, {Name: "A"}})
	assert.Error(t, err)
}
