// Package numbering hands out human readable bug numbers.
//
// A bug filed against a project gets "{KEY}-{seq}" where seq comes from a
// per-project counter stored on the project row. The increment runs inside
// the caller's transaction, so the row lock it takes serializes concurrent
// creations against the same project until the bug insert commits. A number
// already held by another bug, such as one moved out of a project whose key
// was later reused, is skipped. Bugs
// without a project, or whose project row is gone, get "BUG-{unix millis}".
package numbering

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/monocle-dev/bugtrack/internal/models"
	"gorm.io/gorm"
)

const FallbackPrefix = "BUG"

// Clock supplies the time used for fallback numbers.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type Assigner struct {
	clock Clock

	// lastFallback is the last millisecond value handed out, so two
	// fallbacks in the same millisecond still differ.
	lastFallback atomic.Int64
}

func New(clock Clock) *Assigner {
	if clock == nil {
		clock = systemClock{}
	}
	return &Assigner{clock: clock}
}

// Next returns the number for a new bug and the key of its project. It must
// be called with the transaction that will insert the bug.
func (a *Assigner) Next(tx *gorm.DB, projectID *uint) (number string, projectKey string, err error) {
	if projectID == nil || *projectID == 0 {
		return a.fallback(), "", nil
	}

	result := tx.Model(&models.Project{}).
		Where("id = ?", *projectID).
		UpdateColumn("bug_sequence", gorm.Expr("bug_sequence + ?", 1))

	if result.Error != nil {
		return "", "", fmt.Errorf("failed to increment bug sequence: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return a.fallback(), "", nil
	}

	var project models.Project

	err = tx.Select("id", "project_key", "bug_sequence").First(&project, *projectID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return a.fallback(), "", nil
	}

	if err != nil {
		return "", "", fmt.Errorf("failed to read bug sequence: %w", err)
	}

	seq := project.BugSequence
	number = Format(project.ProjectKey, seq)

	for {
		var taken int64

		if err := tx.Model(&models.Bug{}).Where("bug_number = ?", number).Count(&taken).Error; err != nil {
			return "", "", fmt.Errorf("failed to check bug number %s: %w", number, err)
		}

		if taken == 0 {
			break
		}

		seq++
		number = Format(project.ProjectKey, seq)
	}

	if seq != project.BugSequence {
		err = tx.Model(&models.Project{}).Where("id = ?", project.ID).UpdateColumn("bug_sequence", seq).Error

		if err != nil {
			return "", "", fmt.Errorf("failed to advance bug sequence: %w", err)
		}
	}

	return number, project.ProjectKey, nil
}

// Format renders a project scoped bug number, zero padding the sequence to
// three digits.
func Format(projectKey string, seq int) string {
	return fmt.Sprintf("%s-%03d", projectKey, seq)
}

func (a *Assigner) fallback() string {
	now := a.clock.Now().UnixMilli()

	for {
		last := a.lastFallback.Load()
		next := now
		if next <= last {
			next = last + 1
		}
		if a.lastFallback.CompareAndSwap(last, next) {
			return fmt.Sprintf("%s-%d", FallbackPrefix, next)
		}
	}
}
