package casdoor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

// CasdoorConfig holds the configuration for Casdoor connection
type CasdoorConfig struct {
	Endpoint         string
	ClientID         string
	ClientSecret     string
	Certificate      string
	OrganizationName string
	ApplicationName  string
}

type UserCasdoor struct {
	client *casdoorsdk.Client
	cache  *cache.CacheHelper
	config CasdoorConfig
}

func NewUserCasdoor(config CasdoorConfig, redisClient *redis.Client) repositories.UserRepository {
	client := casdoorsdk.NewClient(
		config.Endpoint,
		config.ClientID,
		config.ClientSecret,
		config.Certificate,
		config.OrganizationName,
		config.ApplicationName,
	)

	return &UserCasdoor{
		client: client,
		cache:  cache.NewCacheHelper(redisClient, cache.UserCacheConfig.Prefix),
		config: config,
	}
}

// ===== CACHE METHODS =====

func (u *UserCasdoor) getUserFromCache(ctx context.Context, key string) *models.User {
	var user models.User
	if err := u.cache.Get(ctx, key, &user); err != nil {
		if !errors.Is(err, cache.ErrCacheNotFound) && !errors.Is(err, cache.ErrCacheNotAvailable) {
			slog.WarnContext(ctx, "Failed to read cached user", "error", err, "key", key)
		}
		return nil
	}
	return &user
}

func (u *UserCasdoor) cacheUser(ctx context.Context, user *models.User) {
	ttl := cache.UserCacheConfig.TTL
	if err := u.cache.Set(ctx, "id:"+user.ID, user, ttl); err != nil {
		slog.WarnContext(ctx, "Failed to cache user", "error", err, "user_id", user.ID, "index", "id")
	}
	if user.Email != "" {
		if err := u.cache.Set(ctx, "email:"+strings.ToLower(user.Email), user, ttl); err != nil {
			slog.WarnContext(ctx, "Failed to cache user", "error", err, "user_id", user.ID, "index", "email")
		}
	}
}

// ===== CONVERSION METHODS =====

func (u *UserCasdoor) convertCasdoorUserToModel(casdoorUser *casdoorsdk.User) *models.User {
	if casdoorUser == nil {
		return nil
	}

	var createdAt, updatedAt time.Time
	if casdoorUser.CreatedTime != "" {
		createdAt, _ = time.Parse(time.RFC3339, casdoorUser.CreatedTime)
	}
	if casdoorUser.UpdatedTime != "" {
		updatedAt, _ = time.Parse(time.RFC3339, casdoorUser.UpdatedTime)
	}

	var avatar *string
	if casdoorUser.Avatar != "" {
		avatar = &casdoorUser.Avatar
	}

	return &models.User{
		ID:            casdoorUser.Id,
		FullName:      casdoorUser.DisplayName,
		Email:         casdoorUser.Email,
		Role:          ResolveRole(casdoorUser),
		AvatarURL:     avatar,
		EmailVerified: casdoorUser.EmailVerified,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}
}

// ResolveRole picks the platform role of a Casdoor account. Admin wins over
// every other role; accounts without a recognised role are students.
func ResolveRole(casdoorUser *casdoorsdk.User) models.UserRole {
	var roles []models.UserRole
	for _, casdoorRole := range casdoorUser.Roles {
		if casdoorRole == nil {
			continue
		}
		mapped := MapRoleName(casdoorRole.Name)
		if !slices.Contains(roles, mapped) {
			roles = append(roles, mapped)
		}
	}

	if casdoorUser.IsAdmin || slices.Contains(roles, models.RoleAdmin) {
		return models.RoleAdmin
	}
	if len(roles) == 0 {
		return MapRoleName(casdoorUser.Type)
	}
	return roles[0]
}

// MapRoleName maps a Casdoor role or user type name to a platform role
func MapRoleName(name string) models.UserRole {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "teacher", "instructor":
		return models.RoleTeacher
	case "parent", "guardian":
		return models.RoleParent
	case "admin", "administrator":
		return models.RoleAdmin
	default:
		return models.RoleStudent
	}
}

// ===== BASIC READ OPERATIONS =====

func (u *UserCasdoor) GetByID(ctx context.Context, id string) (*models.User, error) {
	if cached := u.getUserFromCache(ctx, "id:"+id); cached != nil {
		return cached, nil
	}

	casdoorUser, err := u.client.GetUserByUserId(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user from Casdoor: %w", err)
	}
	if casdoorUser == nil {
		return nil, fmt.Errorf("user %s: %w", id, repositories.ErrUserNotFound)
	}

	user := u.convertCasdoorUserToModel(casdoorUser)
	u.cacheUser(ctx, user)
	return user, nil
}

func (u *UserCasdoor) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	key := "email:" + strings.ToLower(email)
	if cached := u.getUserFromCache(ctx, key); cached != nil {
		return cached, nil
	}

	casdoorUser, err := u.client.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email from Casdoor: %w", err)
	}
	if casdoorUser == nil {
		return nil, fmt.Errorf("user with email %s: %w", email, repositories.ErrUserNotFound)
	}

	user := u.convertCasdoorUserToModel(casdoorUser)
	u.cacheUser(ctx, user)
	return user, nil
}

// GetByIDs skips ids that cannot be resolved
func (u *UserCasdoor) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	users := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		user, err := u.GetByID(ctx, id)
		if err != nil {
			slog.WarnContext(ctx, "Skipping unresolved user", "user_id", id, "error", err)
			continue
		}
		users = append(users, user)
	}
	return users, nil
}

// ===== VALIDATION AND CHECKS =====

func (u *UserCasdoor) ExistsByID(ctx context.Context, id string) (bool, error) {
	_, err := u.GetByID(ctx, id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, repositories.ErrUserNotFound) {
		return false, nil
	}
	return false, err
}

func (u *UserCasdoor) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	user, err := u.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return role == user.Role, nil
}

// ===== LIST AND SEARCH OPERATIONS =====

// List pages through Casdoor users. A role filter is applied to the fetched page.
func (u *UserCasdoor) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	_, limit := models.NormalizePage(1, filters.Limit)
	page := (filters.Offset / limit) + 1

	queryMap := make(map[string]string)
	if filters.Query != "" {
		queryMap["field"] = "email"
		queryMap["value"] = filters.Query
	}

	casdoorUsers, count, err := u.client.GetPaginationUsers(page, limit, queryMap)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get users from Casdoor: %w", err)
	}

	users := make([]*models.User, 0, len(casdoorUsers))
	for _, casdoorUser := range casdoorUsers {
		user := u.convertCasdoorUserToModel(casdoorUser)
		if user == nil {
			continue
		}
		if filters.Role != nil && user.Role != *filters.Role {
			continue
		}
		u.cacheUser(ctx, user)
		users = append(users, user)
	}

	return users, int64(count), nil
}

func (u *UserCasdoor) CountByRole(ctx context.Context) (map[models.UserRole]int64, error) {
	casdoorUsers, err := u.client.GetUsers()
	if err != nil {
		return nil, fmt.Errorf("failed to get users from Casdoor: %w", err)
	}

	counts := map[models.UserRole]int64{
		models.RoleStudent: 0,
		models.RoleTeacher: 0,
		models.RoleParent:  0,
		models.RoleAdmin:   0,
	}
	for _, casdoorUser := range casdoorUsers {
		if casdoorUser == nil {
			continue
		}
		counts[ResolveRole(casdoorUser)]++
	}
	return counts, nil
}
