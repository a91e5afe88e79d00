package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

type contentService struct {
	repo      repositories.Repository
	db        *gorm.DB
	publisher events.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewContentService(repo repositories.Repository, db *gorm.DB, publisher events.EventPublisher, logger *slog.Logger) ContentService {
	return &contentService{
		repo:      repo,
		db:        db,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// ===== NAVIGATION =====

func (s *contentService) ClassesForStudent(ctx context.Context, studentID string) ([]models.Class, error) {
	classes, err := s.repo.Class().ListByStudent(ctx, nil, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list classes for student: %w", err)
	}
	return classes, nil
}

func (s *contentService) SubjectsForClass(ctx context.Context, classID uint) ([]models.Subject, error) {
	subjects, err := s.repo.Subject().ListByClass(ctx, nil, classID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	return subjects, nil
}

func (s *contentService) ChaptersForSubject(ctx context.Context, subjectID uint) ([]models.Chapter, error) {
	chapters, err := s.repo.Chapter().ListBySubject(ctx, nil, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	return chapters, nil
}

func (s *contentService) ContentForChapter(ctx context.Context, chapterID uint) ([]models.Content, error) {
	contents, err := s.repo.Content().ListByChapter(ctx, nil, chapterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contents: %w", err)
	}
	return contents, nil
}

func (s *contentService) QuizzesForChapter(ctx context.Context, chapterID uint) ([]models.Quiz, error) {
	quizzes, err := s.repo.Quiz().ListByChapter(ctx, nil, chapterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	return quizzes, nil
}

// QuizWithQuestions returns nil without error when the quiz does not exist
func (s *contentService) QuizWithQuestions(ctx context.Context, quizID uint) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetWithQuestions(ctx, nil, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return quiz, nil
}

// ChapterDetail bundles a chapter with its contents, quizzes and the student's completion flag
func (s *contentService) ChapterDetail(ctx context.Context, studentID string, chapterID uint) (*ChapterDetail, error) {
	chapter, err := s.repo.Chapter().GetByID(ctx, nil, chapterID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrChapterNotFound
		}
		return nil, fmt.Errorf("failed to get chapter: %w", err)
	}

	contents, err := s.ContentForChapter(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	quizzes, err := s.QuizzesForChapter(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	completed, err := s.IsChapterCompleted(ctx, studentID, chapterID)
	if err != nil {
		return nil, err
	}

	// Students see the quiz list, never the answer key
	for i := range quizzes {
		quizzes[i].Questions = nil
	}

	chapter.IsCompleted = completed
	return &ChapterDetail{
		Chapter:     chapter,
		Contents:    contents,
		Quizzes:     quizzes,
		IsCompleted: completed,
	}, nil
}

// ===== COMPLETION =====

// MarkChapterCompleted moves the student's chapter to completed. Repeated calls
// only refresh last_accessed_at; a completed chapter never goes back.
func (s *contentService) MarkChapterCompleted(ctx context.Context, studentID string, chapterID uint) error {
	s.logger.Info("Marking chapter completed", "student_id", studentID, "chapter_id", chapterID)

	var newlyCompleted bool
	var completedAt time.Time

	err := s.withTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.Chapter().GetByID(ctx, tx, chapterID); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrChapterNotFound
			}
			return fmt.Errorf("failed to get chapter: %w", err)
		}

		now := s.now()
		progress, err := s.repo.Progress().FindForUpdate(ctx, tx, studentID, chapterID)
		if err != nil && !repositories.IsNotFoundError(err) {
			return err
		}

		if progress == nil {
			created, err := s.repo.Progress().CreateIfAbsent(ctx, tx, &models.StudentProgress{
				StudentID:      studentID,
				ChapterID:      chapterID,
				IsCompleted:    true,
				CompletedAt:    &now,
				LastAccessedAt: now,
			})
			if err != nil {
				return err
			}
			if created {
				newlyCompleted, completedAt = true, now
				return nil
			}

			// Another request inserted the row first
			progress, err = s.repo.Progress().FindForUpdate(ctx, tx, studentID, chapterID)
			if err != nil {
				return err
			}
		}

		if !progress.IsCompleted {
			progress.IsCompleted = true
			progress.CompletedAt = &now
			newlyCompleted, completedAt = true, now
		}
		progress.LastAccessedAt = now
		return s.repo.Progress().Save(ctx, tx, progress)
	})
	if err != nil {
		return err
	}

	cache.InvalidateStudentProgress(ctx, s.repo.Cache(), studentID)

	if newlyCompleted {
		s.publish(ctx, events.ChapterCompleted, events.ChapterCompletedData{
			StudentID:   studentID,
			ChapterID:   chapterID,
			CompletedAt: completedAt,
		})
	}
	return nil
}

func (s *contentService) IsChapterCompleted(ctx context.Context, studentID string, chapterID uint) (bool, error) {
	progress, err := s.repo.Progress().Find(ctx, nil, studentID, chapterID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	return progress.IsCompleted, nil
}

// ChapterCompletionMap answers IsChapterCompleted for many chapters in one query
func (s *contentService) ChapterCompletionMap(ctx context.Context, studentID string, chapterIDs []uint) (map[uint]bool, error) {
	completion := make(map[uint]bool, len(chapterIDs))
	for _, id := range chapterIDs {
		completion[id] = false
	}
	if len(chapterIDs) == 0 {
		return completion, nil
	}

	completed, err := s.repo.Progress().CompletedChapterIDs(ctx, nil, studentID, chapterIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range completed {
		completion[id] = true
	}
	return completion, nil
}

// ===== NOTICES =====

func (s *contentService) NoticesForStudent(ctx context.Context, studentID string) ([]models.Notice, error) {
	classIDs, err := s.repo.Enrollment().ClassIDsForStudent(ctx, nil, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get enrolled classes: %w", err)
	}

	notices, err := s.repo.Notice().ListForClasses(ctx, nil, classIDs)
	if err != nil {
		return nil, err
	}
	return notices, nil
}

// ===== HELPERS =====

func (s *contentService) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

func (s *contentService) publish(ctx context.Context, eventType events.EventType, data interface{}) {
	publishEvent(ctx, s.publisher, s.logger, eventType, data)
}

// publishEvent never fails the caller; the state change is already committed
func publishEvent(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, eventType events.EventType, data interface{}) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, eventType, data); err != nil {
		logger.Error("Failed to publish event", "event_type", eventType, "error", err)
	}
}

// notFoundAs maps a repository not-found error to the given service sentinel
func notFoundAs(err error, sentinel error, action string) error {
	if repositories.IsNotFoundError(err) {
		return sentinel
	}
	if errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
