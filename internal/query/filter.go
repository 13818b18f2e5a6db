// Package query turns bug list parameters into a store filter.
package query

import (
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/monocle-dev/bugtrack/internal/apperr"
	"github.com/monocle-dev/bugtrack/internal/models"
)

// All is the parameter value meaning "do not filter on this field".
const All = "all"

// Params are the raw, optional filter values of a list request.
type Params struct {
	Status   string `form:"status"`
	Priority string `form:"priority"`
	Severity string `form:"severity"`
	Project  string `form:"project"`
	Type     string `form:"type"`
	Search   string `form:"search"`
}

// Filter is a validated bug filter. Zero fields do not constrain the result.
// Filters are comparable: two Params that select the same bugs build equal
// Filters.
type Filter struct {
	Status    string
	Priority  string
	Severity  string
	Type      string
	ProjectID uint
	Search    string
}

// BuildFilter validates params and builds the filter. "all" and the empty
// string are equivalent for every field except search.
func BuildFilter(params Params) (Filter, error) {
	var f Filter
	var details []string

	if v := normalize(params.Status); v != "" {
		if !models.IsValidStatus(v) {
			details = append(details, "Status must be one of: "+strings.Join(models.Statuses, ", "))
		}
		f.Status = v
	}

	if v := normalize(params.Priority); v != "" {
		if !models.IsValidPriority(v) {
			details = append(details, "Priority must be one of: "+strings.Join(models.Priorities, ", "))
		}
		f.Priority = v
	}

	if v := normalize(params.Severity); v != "" {
		if !models.IsValidSeverity(v) {
			details = append(details, "Severity must be one of: "+strings.Join(models.Severities, ", "))
		}
		f.Severity = v
	}

	if v := normalize(params.Project); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil || id == 0 {
			details = append(details, "Invalid project ID")
		}
		f.ProjectID = uint(id)
	}

	f.Type = normalize(params.Type)
	f.Search = strings.TrimSpace(params.Search)

	if len(details) > 0 {
		return Filter{}, apperr.Validation("Invalid filter", details...)
	}

	return f, nil
}

// Scope applies the filter to a query over bugs.
func (f Filter) Scope(db *gorm.DB) *gorm.DB {
	if f.Status != "" {
		db = db.Where("bugs.status = ?", f.Status)
	}

	if f.Priority != "" {
		db = db.Where("bugs.priority = ?", f.Priority)
	}

	if f.Severity != "" {
		db = db.Where("bugs.severity = ?", f.Severity)
	}

	if f.Type != "" {
		db = db.Where("bugs.type = ?", f.Type)
	}

	if f.ProjectID != 0 {
		db = db.Where("bugs.project_id = ?", f.ProjectID)
	}

	if f.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(f.Search)) + "%"
		db = db.Where(
			`(LOWER(bugs.title) LIKE ? ESCAPE '\' OR LOWER(bugs.description) LIKE ? ESCAPE '\' OR LOWER(bugs.bug_number) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern,
		)
	}

	return db
}

func normalize(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, All) {
		return ""
	}
	return v
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
