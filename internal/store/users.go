package store

import (
	"context"

	"github.com/monocle-dev/bugtrack/internal/models"
)

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	const op = "store.CreateUser"

	return classify(op, s.db.WithContext(ctx).Create(user).Error)
}

func (s *Store) UserByID(ctx context.Context, id uint) (*models.User, error) {
	const op = "store.UserByID"

	var user models.User

	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, classify(op, err)
	}

	return &user, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "store.UserByEmail"

	var user models.User

	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, classify(op, err)
	}

	return &user, nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "store.UserByUsername"

	var user models.User

	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, classify(op, err)
	}

	return &user, nil
}

// UsersByIDs loads the given users. Missing ids are reported as ErrNotFound.
func (s *Store) UsersByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	const op = "store.UsersByIDs"

	unique := dedupe(ids)

	if len(unique) == 0 {
		return []models.User{}, nil
	}

	var users []models.User

	if err := s.db.WithContext(ctx).Where("id IN ?", unique).Find(&users).Error; err != nil {
		return nil, classify(op, err)
	}

	if len(users) != len(unique) {
		return nil, classify(op, ErrNotFound)
	}

	return users, nil
}

// UpdateUser applies the given column updates and reloads the user.
func (s *Store) UpdateUser(ctx context.Context, user *models.User, updates map[string]interface{}) error {
	const op = "store.UpdateUser"

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return classify(op, err)
	}

	return classify(op, s.db.WithContext(ctx).First(user, user.ID).Error)
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}
