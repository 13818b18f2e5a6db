package store

import (
	"context"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/monocle-dev/bugtrack/internal/models"
)

// OpenStatuses are the bug statuses counted as open work.
var OpenStatuses = []string{models.StatusOpen, models.StatusInProgress}

// countConcurrency bounds the parallel count queries of ProjectsForUser.
const countConcurrency = 8

// ProjectCounts holds the bug counters shown next to a project.
type ProjectCounts struct {
	BugCount     int64
	OpenBugCount int64
}

func preloadProject(db *gorm.DB) *gorm.DB {
	return db.Preload("CreatedBy").Preload("TeamMembers")
}

// CreateProject inserts the project and links its team members. The
// members must already exist; the users themselves are not written.
func (s *Store) CreateProject(ctx context.Context, project *models.Project) error {
	const op = "store.CreateProject"

	err := s.db.WithContext(ctx).Omit("CreatedBy", "TeamMembers.*").Create(project).Error

	if err != nil {
		return classify(op, err)
	}

	return s.reloadProject(ctx, op, project)
}

// ProjectByID loads the project with its creator and team members.
func (s *Store) ProjectByID(ctx context.Context, id uint) (*models.Project, error) {
	const op = "store.ProjectByID"

	var project models.Project

	if err := s.db.WithContext(ctx).Scopes(preloadProject).First(&project, id).Error; err != nil {
		return nil, classify(op, err)
	}

	return &project, nil
}

func (s *Store) ProjectByKey(ctx context.Context, key string) (*models.Project, error) {
	const op = "store.ProjectByKey"

	var project models.Project

	if err := s.db.WithContext(ctx).Where("project_key = ?", key).First(&project).Error; err != nil {
		return nil, classify(op, err)
	}

	return &project, nil
}

// ProjectsForUser lists the active projects the user created or belongs to,
// newest first.
func (s *Store) ProjectsForUser(ctx context.Context, userID uint) ([]models.Project, error) {
	const op = "store.ProjectsForUser"

	var projects []models.Project

	memberOf := s.db.Table("project_members").Select("project_id").Where("user_id = ?", userID)

	err := s.db.WithContext(ctx).
		Scopes(preloadProject).
		Where("status = ?", models.ProjectStatusActive).
		Where(s.db.Where("created_by_id = ?", userID).Or("id IN (?)", memberOf)).
		Order("created_at DESC").
		Order("id DESC").
		Find(&projects).Error

	if err != nil {
		return nil, classify(op, err)
	}

	return projects, nil
}

// BugCounts computes the bug counters of each project. Each count is an
// independent query; they run concurrently and all must succeed.
func (s *Store) BugCounts(ctx context.Context, projects []models.Project) ([]ProjectCounts, error) {
	const op = "store.BugCounts"

	counts := make([]ProjectCounts, len(projects))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(countConcurrency)

	for i := range projects {
		projectID := projects[i].ID

		g.Go(func() error {
			return s.db.WithContext(gctx).Model(&models.Bug{}).
				Where("project_id = ?", projectID).
				Count(&counts[i].BugCount).Error
		})

		g.Go(func() error {
			return s.db.WithContext(gctx).Model(&models.Bug{}).
				Where("project_id = ? AND status IN ?", projectID, OpenStatuses).
				Count(&counts[i].OpenBugCount).Error
		})
	}

	if err := g.Wait(); err != nil {
		return nil, classify(op, err)
	}

	return counts, nil
}

// ProjectUpdate carries the changed fields of a project. Nil fields are left
// untouched.
type ProjectUpdate struct {
	Name        *string
	Description *string
	Status      *string
	BugTypes    *[]models.BugType
	TeamMembers *[]models.User
}

func (s *Store) UpdateProject(ctx context.Context, project *models.Project, update ProjectUpdate) error {
	const op = "store.UpdateProject"

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		columns := map[string]interface{}{}

		if update.Name != nil {
			columns["name"] = *update.Name
		}

		if update.Description != nil {
			columns["description"] = *update.Description
		}

		if update.Status != nil {
			columns["status"] = *update.Status
		}

		if update.BugTypes != nil {
			project.BugTypes = *update.BugTypes
			columns["bug_types"] = project.BugTypes
		}

		if len(columns) > 0 {
			if err := tx.Model(project).Omit("CreatedBy", "TeamMembers").Updates(columns).Error; err != nil {
				return err
			}
		}

		if update.TeamMembers != nil {
			if err := tx.Model(project).Association("TeamMembers").Replace(*update.TeamMembers); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return classify(op, err)
	}

	return s.reloadProject(ctx, op, project)
}

// DeleteProject removes the project, its member links and every bug filed
// against it in one transaction.
func (s *Store) DeleteProject(ctx context.Context, id uint) error {
	const op = "store.DeleteProject"

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.Bug{}).Error; err != nil {
			return err
		}

		project := models.Project{BaseModel: models.BaseModel{ID: id}}

		if err := tx.Model(&project).Association("TeamMembers").Clear(); err != nil {
			return err
		}

		result := tx.Delete(&project)

		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})

	return classify(op, err)
}

// ProjectBugStats groups the project's bugs by column. column must be one
// of status, priority, type or severity.
func (s *Store) ProjectBugStats(ctx context.Context, projectID uint, column string) ([]models.GroupCount, error) {
	const op = "store.ProjectBugStats"

	switch column {
	case "status", "priority", "type", "severity":
	default:
		return nil, classify(op, gorm.ErrInvalidField)
	}

	stats := []models.GroupCount{}

	err := s.db.WithContext(ctx).Model(&models.Bug{}).
		Select(column+" AS value, COUNT(*) AS count").
		Where("project_id = ?", projectID).
		Group(column).
		Order(column).
		Scan(&stats).Error

	if err != nil {
		return nil, classify(op, err)
	}

	return stats, nil
}

func (s *Store) CountProjectBugs(ctx context.Context, projectID uint) (int64, error) {
	const op = "store.CountProjectBugs"

	var total int64

	err := s.db.WithContext(ctx).Model(&models.Bug{}).Where("project_id = ?", projectID).Count(&total).Error

	return total, classify(op, err)
}

func (s *Store) reloadProject(ctx context.Context, op string, project *models.Project) error {
	loaded, err := s.ProjectByID(ctx, project.ID)

	if err != nil {
		return classify(op, err)
	}

	*project = *loaded

	return nil
}
