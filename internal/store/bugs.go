package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/monocle-dev/bugtrack/internal/models"
	"github.com/monocle-dev/bugtrack/internal/query"
)

func preloadBug(db *gorm.DB) *gorm.DB {
	return db.Preload("Project")
}

// CreateBug numbers and inserts the bug in one transaction. Any bug number
// set by the caller is replaced.
func (s *Store) CreateBug(ctx context.Context, bug *models.Bug) error {
	const op = "store.CreateBug"

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, projectKey, err := s.numbers.Next(tx, bug.ProjectID)

		if err != nil {
			return err
		}

		bug.BugNumber = number
		bug.ProjectKey = projectKey

		// The project vanished before the insert; file the bug without it.
		if projectKey == "" {
			bug.ProjectID = nil
		}

		return tx.Omit(clause.Associations).Create(bug).Error
	})

	if err != nil {
		return classify(op, err)
	}

	return s.reloadBug(ctx, op, bug)
}

func (s *Store) BugByID(ctx context.Context, id uint) (*models.Bug, error) {
	const op = "store.BugByID"

	var bug models.Bug

	if err := s.db.WithContext(ctx).Scopes(preloadBug).First(&bug, id).Error; err != nil {
		return nil, classify(op, err)
	}

	return &bug, nil
}

// ListBugs returns the bugs matching the filter, newest first.
func (s *Store) ListBugs(ctx context.Context, filter query.Filter) ([]models.Bug, error) {
	const op = "store.ListBugs"

	bugs := []models.Bug{}

	err := s.db.WithContext(ctx).
		Scopes(preloadBug, filter.Scope).
		Order("bugs.created_at DESC").
		Order("bugs.id DESC").
		Find(&bugs).Error

	if err != nil {
		return nil, classify(op, err)
	}

	return bugs, nil
}

// SaveBug writes every column of an existing bug. The bug number is never
// changed after creation.
func (s *Store) SaveBug(ctx context.Context, bug *models.Bug) error {
	const op = "store.SaveBug"

	err := s.db.WithContext(ctx).Omit(clause.Associations, "bug_number").Save(bug).Error

	if err != nil {
		return classify(op, err)
	}

	return s.reloadBug(ctx, op, bug)
}

// DeleteBug removes the bug and returns it as it was before deletion.
func (s *Store) DeleteBug(ctx context.Context, id uint) (*models.Bug, error) {
	const op = "store.DeleteBug"

	bug, err := s.BugByID(ctx, id)

	if err != nil {
		return nil, classify(op, err)
	}

	result := s.db.WithContext(ctx).Delete(&models.Bug{}, id)

	if result.Error != nil {
		return nil, classify(op, result.Error)
	}

	if result.RowsAffected == 0 {
		return nil, classify(op, gorm.ErrRecordNotFound)
	}

	return bug, nil
}

func (s *Store) reloadBug(ctx context.Context, op string, bug *models.Bug) error {
	loaded, err := s.BugByID(ctx, bug.ID)

	if err != nil {
		return classify(op, err)
	}

	*bug = *loaded

	return nil
}
