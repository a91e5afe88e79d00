package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

// FakeUserRepository is an in-memory identity provider
type FakeUserRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewFakeUserRepository() *FakeUserRepository {
	return &FakeUserRepository{users: make(map[string]*models.User)}
}

// Add registers a user and returns it
func (f *FakeUserRepository) Add(id, name, email string, role models.UserRole) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	user := &models.User{ID: id, FullName: name, Email: email, Role: role}
	f.users[id] = user
	return user
}

func (f *FakeUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if user, ok := f.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, fmt.Errorf("user %s: %w", id, repositories.ErrUserNotFound)
}

func (f *FakeUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, user := range f.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user with email %s: %w", email, repositories.ErrUserNotFound)
}

func (f *FakeUserRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	users := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		if user, err := f.GetByID(ctx, id); err == nil {
			users = append(users, user)
		}
	}
	return users, nil
}

func (f *FakeUserRepository) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	f.mu.RLock()
	var matched []*models.User
	for _, user := range f.users {
		if filters.Role != nil && user.Role != *filters.Role {
			continue
		}
		if filters.Query != "" &&
			!strings.Contains(strings.ToLower(user.Email), strings.ToLower(filters.Query)) &&
			!strings.Contains(strings.ToLower(user.FullName), strings.ToLower(filters.Query)) {
			continue
		}
		copied := *user
		matched = append(matched, &copied)
	}
	f.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	total := int64(len(matched))

	start := min(filters.Offset, len(matched))
	end := len(matched)
	if filters.Limit > 0 {
		end = min(start+filters.Limit, len(matched))
	}
	return matched[start:end], total, nil
}

func (f *FakeUserRepository) CountByRole(ctx context.Context) (map[models.UserRole]int64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	counts := map[models.UserRole]int64{
		models.RoleStudent: 0,
		models.RoleTeacher: 0,
		models.RoleParent:  0,
		models.RoleAdmin:   0,
	}
	for _, user := range f.users {
		counts[user.Role]++
	}
	return counts, nil
}

func (f *FakeUserRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.users[id]
	return ok, nil
}

func (f *FakeUserRepository) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	user, err := f.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return user.Role == role, nil
}
