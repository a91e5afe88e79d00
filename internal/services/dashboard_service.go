package services

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

const (
	dashboardRecentNotices = 5
	reportTopClasses       = 5
	teacherHomeRecent      = 5
)

type dashboardService struct {
	repo     repositories.Repository
	db       *gorm.DB
	content  ContentService
	progress ProgressService
	logger   *slog.Logger
	cache    *cache.CacheHelper
	cacheTTL time.Duration
}

// NewDashboardService aggregates counters concurrently. A nil helper disables caching.
func NewDashboardService(repo repositories.Repository, db *gorm.DB, content ContentService, progress ProgressService, logger *slog.Logger, helper *cache.CacheHelper, cacheTTL time.Duration) DashboardService {
	if cacheTTL <= 0 {
		cacheTTL = cache.StatsCacheConfig.TTL
	}
	return &dashboardService{
		repo:     repo,
		db:       db,
		content:  content,
		progress: progress,
		logger:   logger,
		cache:    helper,
		cacheTTL: cacheTTL,
	}
}

// ===== ADMIN =====

func (s *dashboardService) AdminDashboard(ctx context.Context) (*AdminDashboard, error) {
	return cache.Remember(ctx, s.cache, "dashboard", s.cacheTTL, func() (*AdminDashboard, error) {
		stats := &AdminDashboard{}
		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			counts, err := s.repo.User().CountByRole(gctx)
			if err != nil {
				return err
			}
			stats.TotalStudents = counts[models.RoleStudent]
			stats.TotalTeachers = counts[models.RoleTeacher]
			stats.TotalParents = counts[models.RoleParent]
			return nil
		})
		g.Go(func() (err error) {
			stats.TotalClasses, err = s.repo.Class().Count(gctx, nil)
			return err
		})
		g.Go(func() (err error) {
			stats.TotalSubjects, err = s.repo.Subject().Count(gctx, nil)
			return err
		})
		g.Go(func() (err error) {
			stats.TotalChapters, err = s.repo.Chapter().Count(gctx, nil)
			return err
		})
		g.Go(func() (err error) {
			stats.TotalQuizzes, err = s.repo.Quiz().Count(gctx, nil)
			return err
		})
		g.Go(func() (err error) {
			stats.RecentNotices, err = s.repo.Notice().ListRecent(gctx, nil, dashboardRecentNotices)
			return err
		})

		if err := g.Wait(); err != nil {
			s.logger.Error("Failed to build admin dashboard", "error", err)
			return nil, err
		}
		return stats, nil
	})
}

func (s *dashboardService) Reports(ctx context.Context) (*AdminReports, error) {
	return cache.Remember(ctx, s.cache, "reports", s.cacheTTL, func() (*AdminReports, error) {
		reports := &AdminReports{GeneratedAt: time.Now()}
		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			counts, err := s.repo.User().CountByRole(gctx)
			if err != nil {
				return err
			}
			for _, n := range counts {
				reports.TotalUsers += n
			}
			return nil
		})
		g.Go(func() (err error) {
			reports.TotalContents, err = s.repo.Content().Count(gctx, nil)
			return err
		})
		g.Go(func() (err error) {
			reports.TotalQuizAttempts, err = s.repo.QuizAttempt().Count(gctx, nil)
			return err
		})
		g.Go(func() (err error) {
			reports.ActiveStudents, err = s.repo.Progress().CountStudentsWithCompletion(gctx, nil)
			return err
		})
		g.Go(func() error {
			avg, err := s.repo.QuizAttempt().AveragePercent(gctx, nil)
			reports.AverageQuizPercentage = models.Round1(avg)
			return err
		})
		g.Go(func() (err error) {
			reports.TopClasses, err = s.repo.Class().TopByEnrollment(gctx, nil, reportTopClasses)
			return err
		})

		if err := g.Wait(); err != nil {
			s.logger.Error("Failed to build reports", "error", err)
			return nil, err
		}
		return reports, nil
	})
}

// ===== HOME PAGES =====

func (s *dashboardService) StudentHome(ctx context.Context, studentID string) (*StudentHome, error) {
	home := &StudentHome{}
	var recent []models.QuizAttempt
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		home.Classes, err = s.content.ClassesForStudent(gctx, studentID)
		return err
	})
	g.Go(func() (err error) {
		home.OverallProgress, err = s.progress.OverallProgressPercentage(gctx, studentID)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.progress.RecentQuizAttempts(gctx, studentID, defaultRecentAttempts)
		return err
	})
	g.Go(func() (err error) {
		home.Notices, err = s.content.NoticesForStudent(gctx, studentID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	home.RecentAttempts = make([]QuizAttemptResponse, 0, len(recent))
	for i := range recent {
		home.RecentAttempts = append(home.RecentAttempts, NewQuizAttemptResponse(&recent[i]))
	}
	return home, nil
}

func (s *dashboardService) TeacherHome(ctx context.Context, teacherID string) (*TeacherHome, error) {
	home := &TeacherHome{RecentLimit: teacherHomeRecent, GeneratedAt: time.Now()}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		home.Contents, err = s.repo.Content().ListByCreator(gctx, nil, teacherID)
		return err
	})
	g.Go(func() (err error) {
		home.Quizzes, err = s.repo.Quiz().ListByCreator(gctx, nil, teacherID)
		return err
	})
	g.Go(func() (err error) {
		home.Notices, err = s.repo.Notice().ListByCreator(gctx, nil, teacherID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	home.TotalContents = len(home.Contents)
	home.TotalQuizzes = len(home.Quizzes)
	home.TotalNotices = len(home.Notices)
	home.Contents = firstN(home.Contents, teacherHomeRecent)
	home.Quizzes = firstN(home.Quizzes, teacherHomeRecent)
	home.Notices = firstN(home.Notices, teacherHomeRecent)
	return home, nil
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
