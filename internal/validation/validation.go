package validation

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/monocle-dev/bugtrack/internal/apperr"
	"github.com/monocle-dev/bugtrack/internal/models"
)

// DefaultBugTypes apply to bugs without a project and to projects that did
// not declare their own types.
var DefaultBugTypes = []string{"Functional", "Visual", "Performance", "Security", "Usability", "Compatibility"}

// AllowedBugTypes returns the bug type names valid for the project.
func AllowedBugTypes(project *models.Project) []string {
	if project != nil && len(project.BugTypes) > 0 {
		return project.BugTypeNames()
	}
	return DefaultBugTypes
}

// ValidateBugType rejects a type the project does not allow.
func ValidateBugType(project *models.Project, bugType string) error {
	allowed := AllowedBugTypes(project)

	if slices.Contains(allowed, bugType) {
		return nil
	}

	return apperr.Validation(fmt.Sprintf("Invalid bug type. Available types: %s", strings.Join(allowed, ", ")))
}

// DefaultBugType is the type given to a bug created without one.
func DefaultBugType(project *models.Project) string {
	return AllowedBugTypes(project)[0]
}

var scriptTag = regexp.MustCompile(`(?is)<script\b[^<]*(?:<[^<]*)*?</script>`)

// Sanitize trims s and strips script blocks.
func Sanitize(s string) string {
	return strings.TrimSpace(scriptTag.ReplaceAllString(s, ""))
}

// FromBinding converts a request binding error into a validation error with
// one message per failed field.
func FromBinding(err error) *apperr.Error {
	var verrs validator.ValidationErrors

	if !errors.As(err, &verrs) {
		return apperr.Validation("Invalid request body")
	}

	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fieldMessage(fe))
	}

	return apperr.Validation("Validation failed", details...)
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot be more than %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "alphanum":
		return field + " must contain only letters and digits"
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

var keyValidator = validator.New()

// NormalizeProjectKey trims and upper-cases a project key and checks that
// it is 1 to 10 letters or digits.
func NormalizeProjectKey(key string) (string, error) {
	key = strings.ToUpper(strings.TrimSpace(key))

	if err := keyValidator.Var(key, "required,alphanum,max=10"); err != nil {
		return "", apperr.Validation("Validation failed", "Project key must be 1 to 10 letters or digits")
	}

	return key, nil
}

// NormalizeBugTypes trims bug type names and fills in the default color.
func NormalizeBugTypes(in []models.BugType) ([]models.BugType, error) {
	out := make([]models.BugType, 0, len(in))
	seen := make(map[string]struct{}, len(in))

	for _, t := range in {
		t.Name = strings.TrimSpace(t.Name)
		t.Description = strings.TrimSpace(t.Description)

		if t.Name == "" {
			return nil, apperr.Validation("Validation failed", "Bug type name is required")
		}

		if _, dup := seen[t.Name]; dup {
			return nil, apperr.Validation("Validation failed", fmt.Sprintf("Duplicate bug type %q", t.Name))
		}
		seen[t.Name] = struct{}{}

		if t.Color == "" {
			t.Color = models.DefaultBugTypeColor
		}

		out = append(out, t)
	}

	return out, nil
}
