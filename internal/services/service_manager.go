package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	Progress  ServiceConfig
	Dashboard ServiceConfig

	DefaultTimeout time.Duration
}

type ServiceConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// DefaultServiceManagerConfig caches progress briefly and dashboard counters a little longer
func DefaultServiceManagerConfig() ServiceManagerConfig {
	return ServiceManagerConfig{
		Progress: ServiceConfig{
			CacheEnabled: true,
			CacheTTL:     cache.ProgressCacheConfig.TTL,
		},
		Dashboard: ServiceConfig{
			CacheEnabled: true,
			CacheTTL:     cache.StatsCacheConfig.TTL,
		},
		DefaultTimeout: 30 * time.Second,
	}
}

// Validate validates the service manager configuration
func (config *ServiceManagerConfig) Validate() error {
	if config.DefaultTimeout <= 0 {
		return fmt.Errorf("configuration validation failed: default timeout must be positive")
	}
	if config.Progress.CacheTTL < 0 {
		return fmt.Errorf("configuration validation failed: progress cache TTL cannot be negative")
	}
	if config.Dashboard.CacheTTL < 0 {
		return fmt.Errorf("configuration validation failed: dashboard cache TTL cannot be negative")
	}
	return nil
}

type serviceManager struct {
	db        *gorm.DB
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	config    ServiceManagerConfig

	contentService    ContentService
	progressService   ProgressService
	classService      ClassService
	enrollmentService EnrollmentService
	teacherService    TeacherService
	noticeService     NoticeService
	quizService       QuizService
	parentService     ParentService
	dashboardService  DashboardService
	exportService     ExportService

	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager; a nil publisher disables events
func NewServiceManager(db *gorm.DB, repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator, config ServiceManagerConfig) ServiceManager {
	if publisher == nil {
		publisher = events.NewNoopPublisher()
	}
	return &serviceManager{
		db:        db,
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		config:    config,
	}
}

func NewDefaultServiceManager(db *gorm.DB, repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) ServiceManager {
	return NewServiceManager(db, repo, publisher, logger, validator, DefaultServiceManagerConfig())
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if err := sm.config.Validate(); err != nil {
		return err
	}
	sm.initializeServices()

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")
	return nil
}

func (sm *serviceManager) initializeServices() {
	var progressCache, statsCache *cache.CacheHelper
	if cm := sm.repo.Cache(); cm.Enabled() {
		if sm.config.Progress.CacheEnabled {
			progressCache = cm.Progress
		}
		if sm.config.Dashboard.CacheEnabled {
			statsCache = cm.Stats
		}
	}

	sm.contentService = NewContentService(sm.repo, sm.db, sm.publisher, sm.logger)
	sm.logger.Info("Content service initialized")

	sm.progressService = NewProgressService(sm.repo, sm.db, sm.logger, progressCache, sm.config.Progress.CacheTTL)
	sm.logger.Info("Progress service initialized", "cache_enabled", progressCache != nil)

	sm.classService = NewClassService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.logger.Info("Class service initialized")

	sm.enrollmentService = NewEnrollmentService(sm.repo, sm.db, sm.publisher, sm.logger, sm.validator)
	sm.logger.Info("Enrollment service initialized")

	sm.teacherService = NewTeacherService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.logger.Info("Teacher service initialized")

	sm.noticeService = NewNoticeService(sm.repo, sm.db, sm.publisher, sm.logger, sm.validator)
	sm.logger.Info("Notice service initialized")

	sm.quizService = NewQuizService(sm.repo, sm.db, sm.publisher, sm.logger, sm.validator)
	sm.logger.Info("Quiz service initialized")

	sm.parentService = NewParentService(sm.repo, sm.db, sm.progressService, sm.contentService, sm.publisher, sm.logger, sm.validator)
	sm.logger.Info("Parent service initialized")

	sm.dashboardService = NewDashboardService(sm.repo, sm.db, sm.contentService, sm.progressService, sm.logger, statsCache, sm.config.Dashboard.CacheTTL)
	sm.logger.Info("Dashboard service initialized", "cache_enabled", statsCache != nil)

	sm.exportService = NewExportService(sm.progressService, sm.dashboardService, sm.logger)
	sm.logger.Info("Export service initialized")
}

// getService guards every getter against use before Initialize
func getService[T any](sm *serviceManager, svc *T) T {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return *svc
}

func (sm *serviceManager) Content() ContentService {
	return getService(sm, &sm.contentService)
}

func (sm *serviceManager) Progress() ProgressService {
	return getService(sm, &sm.progressService)
}

func (sm *serviceManager) Class() ClassService {
	return getService(sm, &sm.classService)
}

func (sm *serviceManager) Enrollment() EnrollmentService {
	return getService(sm, &sm.enrollmentService)
}

func (sm *serviceManager) Teacher() TeacherService {
	return getService(sm, &sm.teacherService)
}

func (sm *serviceManager) Notice() NoticeService {
	return getService(sm, &sm.noticeService)
}

func (sm *serviceManager) Quiz() QuizService {
	return getService(sm, &sm.quizService)
}

func (sm *serviceManager) Parent() ParentService {
	return getService(sm, &sm.parentService)
}

func (sm *serviceManager) Dashboard() DashboardService {
	return getService(sm, &sm.dashboardService)
}

func (sm *serviceManager) Export() ExportService {
	return getService(sm, &sm.exportService)
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if repoManager, ok := sm.repo.(repositories.RepositoryManager); ok {
		if err := repoManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("repository health check failed: %w", err)
		}
		return nil
	}
	return sm.repo.Ping(ctx)
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if err := sm.publisher.Close(); err != nil {
		sm.logger.Error("Failed to close event publisher", "error", err)
	}

	if repoManager, ok := sm.repo.(repositories.RepositoryManager); ok {
		if err := repoManager.Shutdown(ctx); err != nil {
			sm.logger.Error("Failed to shutdown repository manager", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")
	return nil
}

// WithTimeout creates a context with the default timeout
func (sm *serviceManager) WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, sm.config.DefaultTimeout)
}
