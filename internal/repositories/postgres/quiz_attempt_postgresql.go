package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

type QuizAttemptPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewQuizAttemptPostgreSQL(db *gorm.DB) repositories.QuizAttemptRepository {
	return &QuizAttemptPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (r *QuizAttemptPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *QuizAttemptPostgreSQL) Create(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) error {
	if err := r.getDB(tx).WithContext(ctx).Omit("Quiz").Create(attempt).Error; err != nil {
		return fmt.Errorf("failed to create quiz attempt: %w", err)
	}
	return nil
}

func (r *QuizAttemptPostgreSQL) ListByStudent(ctx context.Context, tx *gorm.DB, studentID string, limit int) ([]models.QuizAttempt, error) {
	query := r.getDB(tx).WithContext(ctx).
		Preload("Quiz").
		Where("student_id = ?", studentID).
		Order("attempted_at DESC, id DESC")

	var attempts []models.QuizAttempt
	if err := r.helpers.ApplyPagination(query, limit, 0).Find(&attempts).Error; err != nil {
		return nil, fmt.Errorf("failed to list quiz attempts: %w", err)
	}
	return attempts, nil
}

// RecentSummaries joins each attempt with its quiz title and subject, newest first
func (r *QuizAttemptPostgreSQL) RecentSummaries(ctx context.Context, tx *gorm.DB, studentID string, limit int) ([]repositories.AttemptSummary, error) {
	query := r.getDB(tx).WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Select(`quiz_attempts.id AS attempt_id, quiz_attempts.quiz_id, quizzes.title AS quiz_title,
			subjects.id AS subject_id, subjects.name AS subject_name,
			quiz_attempts.score, quiz_attempts.total_questions, quiz_attempts.attempted_at`).
		Joins("JOIN quizzes ON quizzes.id = quiz_attempts.quiz_id").
		Joins("JOIN chapters ON chapters.id = quizzes.chapter_id").
		Joins("JOIN subjects ON subjects.id = chapters.subject_id").
		Where("quiz_attempts.student_id = ?", studentID).
		Order("quiz_attempts.attempted_at DESC, quiz_attempts.id DESC")

	var rows []repositories.AttemptSummary
	if err := r.helpers.ApplyPagination(query, limit, 0).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get recent attempt summaries: %w", err)
	}
	return rows, nil
}

func (r *QuizAttemptPostgreSQL) PerformanceBySubject(ctx context.Context, tx *gorm.DB, studentID string) ([]repositories.SubjectQuizPerformance, error) {
	var rows []repositories.SubjectQuizPerformance
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Select(fmt.Sprintf(`subjects.id AS subject_id, subjects.name AS subject_name,
			COUNT(quiz_attempts.id) AS attempts,
			AVG(%[1]s) AS average_percent,
			MAX(%[1]s) AS best_percent`, attemptPercentExpr)).
		Joins("JOIN quizzes ON quizzes.id = quiz_attempts.quiz_id").
		Joins("JOIN chapters ON chapters.id = quizzes.chapter_id").
		Joins("JOIN subjects ON subjects.id = chapters.subject_id").
		Where("quiz_attempts.student_id = ?", studentID).
		Group("subjects.id, subjects.name").
		Order("subjects.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz performance by subject: %w", err)
	}
	return rows, nil
}

func (r *QuizAttemptPostgreSQL) StatsByStudents(ctx context.Context, tx *gorm.DB, studentIDs []string) (map[string]repositories.AttemptStats, error) {
	stats := make(map[string]repositories.AttemptStats, len(studentIDs))
	if len(studentIDs) == 0 {
		return stats, nil
	}

	var rows []struct {
		StudentID      string
		Attempts       int64
		AveragePercent float64
	}
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Select("student_id, COUNT(*) AS attempts, AVG(" + attemptPercentExpr + ") AS average_percent").
		Where("student_id IN ?", studentIDs).
		Group("student_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt stats: %w", err)
	}

	for _, row := range rows {
		stats[row.StudentID] = repositories.AttemptStats{
			Attempts:       row.Attempts,
			AveragePercent: row.AveragePercent,
		}
	}
	return stats, nil
}

func (r *QuizAttemptPostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	return countModel(r.getDB(tx).WithContext(ctx), &models.QuizAttempt{}, "quiz attempts")
}

func (r *QuizAttemptPostgreSQL) AveragePercent(ctx context.Context, tx *gorm.DB) (float64, error) {
	var avg float64
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Select("COALESCE(AVG(" + attemptPercentExpr + "), 0)").
		Row().Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("failed to get average quiz percentage: %w", err)
	}
	return avg, nil
}
