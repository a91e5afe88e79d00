package repositories

import (
	"context"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

// UserFilters defines filters for user queries
type UserFilters struct {
	Query  string // name or email fragment
	Role   *models.UserRole
	Limit  int
	Offset int
}

// UserRepository is a read-only view of the identity provider
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)

	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)
	CountByRole(ctx context.Context) (map[models.UserRole]int64, error)

	ExistsByID(ctx context.Context, id string) (bool, error)
	HasRole(ctx context.Context, id string, role models.UserRole) (bool, error)
}
