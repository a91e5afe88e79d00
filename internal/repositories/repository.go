package repositories

import (
	"context"

	"github.com/SAP-F-2025/learning-service/internal/cache"
)

// Repository aggregates every repository of the learning domain
type Repository interface {
	// Catalog
	Class() ClassRepository
	Subject() SubjectRepository
	Chapter() ChapterRepository
	Content() ContentRepository

	// Quizzes
	Quiz() QuizRepository
	QuizAttempt() QuizAttemptRepository

	// Notices
	Notice() NoticeRepository

	// Progress and membership
	Progress() ProgressRepository
	Enrollment() EnrollmentRepository
	ParentChild() ParentChildRepository

	// Users live in the identity provider
	User() UserRepository

	// Cache returns the shared cache manager (never nil, possibly disabled)
	Cache() *cache.CacheManager

	WithTransaction(ctx context.Context, fn func(Repository) error) error
	Ping(ctx context.Context) error
	Close() error
}

// RepositoryManager owns the repository lifecycle
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
