package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

const (
	defaultRecentAttempts = 5
	reportRecentAttempts  = 10

	unknownStudentName = "Unknown Student"
	noClassName        = "No Class"
)

type progressService struct {
	repo     repositories.Repository
	db       *gorm.DB
	logger   *slog.Logger
	cache    *cache.CacheHelper
	cacheTTL time.Duration
	now      func() time.Time
}

// NewProgressService builds the progress aggregator. A nil helper disables caching.
func NewProgressService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, helper *cache.CacheHelper, cacheTTL time.Duration) ProgressService {
	if cacheTTL <= 0 {
		cacheTTL = cache.ProgressCacheConfig.TTL
	}
	return &progressService{
		repo:     repo,
		db:       db,
		logger:   logger,
		cache:    helper,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// ===== PERCENTAGES =====

func (s *progressService) SubjectProgressPercentage(ctx context.Context, studentID string, subjectID uint) (float64, error) {
	key := cache.StudentProgressKey(studentID, "subject:"+strconv.FormatUint(uint64(subjectID), 10))
	return cache.Remember(ctx, s.cache, key, s.cacheTTL, func() (float64, error) {
		total, err := s.repo.Chapter().CountBySubject(ctx, nil, subjectID)
		if err != nil {
			return 0, fmt.Errorf("failed to count chapters: %w", err)
		}
		if total == 0 {
			return 0, nil
		}

		completed, err := s.repo.Progress().CountCompletedInSubject(ctx, nil, studentID, subjectID)
		if err != nil {
			return 0, err
		}
		return models.Percent(completed, total), nil
	})
}

// OverallProgressPercentage is completed over distinct chapters of every enrolled class
func (s *progressService) OverallProgressPercentage(ctx context.Context, studentID string) (float64, error) {
	key := cache.StudentProgressKey(studentID, "overall")
	return cache.Remember(ctx, s.cache, key, s.cacheTTL, func() (float64, error) {
		total, err := s.repo.Chapter().CountForStudent(ctx, nil, studentID)
		if err != nil {
			return 0, fmt.Errorf("failed to count enrolled chapters: %w", err)
		}
		if total == 0 {
			return 0, nil
		}

		completed, err := s.repo.Progress().CountCompletedForStudent(ctx, nil, studentID)
		if err != nil {
			return 0, err
		}
		return models.Percent(completed, total), nil
	})
}

func (s *progressService) SubjectProgresses(ctx context.Context, studentID string, subjectIDs []uint) (map[uint]float64, error) {
	progresses := make(map[uint]float64, len(subjectIDs))
	for _, subjectID := range subjectIDs {
		if _, ok := progresses[subjectID]; ok {
			continue
		}
		percentage, err := s.SubjectProgressPercentage(ctx, studentID, subjectID)
		if err != nil {
			return nil, err
		}
		progresses[subjectID] = percentage
	}
	return progresses, nil
}

// ===== HISTORY =====

func (s *progressService) StudentProgress(ctx context.Context, studentID string) ([]models.StudentProgress, error) {
	return s.repo.Progress().ListByStudent(ctx, nil, studentID)
}

func (s *progressService) StudentQuizAttempts(ctx context.Context, studentID string) ([]models.QuizAttempt, error) {
	return s.repo.QuizAttempt().ListByStudent(ctx, nil, studentID, 0)
}

func (s *progressService) RecentQuizAttempts(ctx context.Context, studentID string, count int) ([]models.QuizAttempt, error) {
	if count <= 0 {
		count = defaultRecentAttempts
	}
	return s.repo.QuizAttempt().ListByStudent(ctx, nil, studentID, count)
}

// ===== REPORT =====

func (s *progressService) DetailedProgress(ctx context.Context, studentID string) (*DetailedProgressReport, error) {
	report := &DetailedProgressReport{
		StudentID:   studentID,
		StudentName: unknownStudentName,
		ClassName:   noClassName,
		GeneratedAt: s.now(),
	}

	if user, err := s.repo.User().GetByID(ctx, studentID); err == nil {
		report.StudentName = user.DisplayName()
	} else if !repositories.IsNotFoundError(err) {
		s.logger.Warn("Failed to resolve student name", "student_id", studentID, "error", err)
	}

	enrollment, err := s.repo.Enrollment().FirstForStudent(ctx, nil, studentID)
	switch {
	case err == nil && enrollment.Class != nil:
		report.ClassName = enrollment.Class.Name
	case err != nil && !repositories.IsNotFoundError(err):
		return nil, err
	}

	overall, err := s.OverallProgressPercentage(ctx, studentID)
	if err != nil {
		return nil, err
	}
	report.OverallProgress = overall

	subjects, err := s.subjectDetails(ctx, studentID)
	if err != nil {
		return nil, err
	}
	report.Subjects = subjects

	summaries, err := s.repo.QuizAttempt().RecentSummaries(ctx, nil, studentID, reportRecentAttempts)
	if err != nil {
		return nil, err
	}
	report.RecentAttempts = make([]AttemptSummaryResponse, 0, len(summaries))
	for _, a := range summaries {
		report.RecentAttempts = append(report.RecentAttempts, AttemptSummaryResponse{
			AttemptID:      a.AttemptID,
			QuizID:         a.QuizID,
			QuizTitle:      a.QuizTitle,
			SubjectName:    a.SubjectName,
			Score:          a.Score,
			TotalQuestions: a.TotalQuestions,
			Percentage:     models.Percent(int64(a.Score), int64(a.TotalQuestions)),
			AttemptedAt:    a.AttemptedAt,
		})
	}

	return report, nil
}

// subjectDetails lists one entry per subject id across the student's enrolled classes
func (s *progressService) subjectDetails(ctx context.Context, studentID string) ([]SubjectProgressDetail, error) {
	counts, err := s.repo.Subject().ChapterCountsForStudent(ctx, nil, studentID)
	if err != nil {
		return nil, err
	}
	completed, err := s.repo.Progress().CompletedBySubject(ctx, nil, studentID)
	if err != nil {
		return nil, err
	}

	details := make([]SubjectProgressDetail, 0, len(counts))
	seen := make(map[uint]bool, len(counts))
	for _, row := range counts {
		if seen[row.SubjectID] {
			continue
		}
		seen[row.SubjectID] = true

		done := completed[row.SubjectID]
		details = append(details, SubjectProgressDetail{
			SubjectID:         row.SubjectID,
			SubjectName:       row.SubjectName,
			ClassID:           row.ClassID,
			ClassName:         row.ClassName,
			CompletedChapters: done,
			TotalChapters:     row.TotalChapters,
			Percentage:        models.Percent(done, row.TotalChapters),
		})
	}
	return details, nil
}
