package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

type QuizPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewQuizPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.QuizRepository {
	return &QuizPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
	}
}

func (r *QuizPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func orderQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("quiz_questions.order_index ASC, quiz_questions.id ASC")
}

// Create inserts the quiz and its Questions in one statement batch
func (r *QuizPostgreSQL) Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	if err := r.getDB(tx).WithContext(ctx).Omit("Chapter", "Attempts").Create(quiz).Error; err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	cache.InvalidateStats(ctx, r.cacheManager)
	return nil
}

// Delete removes the quiz; questions and attempts cascade, which also moves the attempt averages
func (r *QuizPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := deleteByID(r.getDB(tx).WithContext(ctx), &models.Quiz{}, id, "quiz"); err != nil {
		return err
	}
	cache.InvalidateStats(ctx, r.cacheManager)
	return nil
}

func (r *QuizPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := r.getDB(tx).WithContext(ctx).First(&quiz, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return &quiz, nil
}

func (r *QuizPostgreSQL) GetWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := r.getDB(tx).WithContext(ctx).
		Preload("Questions", orderQuestions).
		First(&quiz, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz with questions: %w", err)
	}
	return &quiz, nil
}

func (r *QuizPostgreSQL) ListByChapter(ctx context.Context, tx *gorm.DB, chapterID uint) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := r.getDB(tx).WithContext(ctx).
		Preload("Questions", orderQuestions).
		Where("chapter_id = ?", chapterID).
		Order("created_at ASC, id ASC").
		Find(&quizzes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	return quizzes, nil
}

func (r *QuizPostgreSQL) ListByCreator(ctx context.Context, tx *gorm.DB, creatorID string) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := r.getDB(tx).WithContext(ctx).
		Preload("Chapter").
		Preload("Chapter.Subject").
		Preload("Questions", orderQuestions).
		Where("created_by = ?", creatorID).
		Order("created_at DESC, id DESC").
		Find(&quizzes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes by creator: %w", err)
	}
	return quizzes, nil
}

// ListForStudent returns quizzes of every chapter the student can reach, newest first
func (r *QuizPostgreSQL) ListForStudent(ctx context.Context, tx *gorm.DB, studentID string) ([]models.Quiz, error) {
	db := r.getDB(tx)
	var quizzes []models.Quiz
	err := db.WithContext(ctx).
		Preload("Chapter").
		Preload("Chapter.Subject").
		Where("chapter_id IN (?)", r.helpers.EnrolledChapterIDs(db, studentID)).
		Order("created_at DESC, id DESC").
		Find(&quizzes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes for student: %w", err)
	}
	return quizzes, nil
}

func (r *QuizPostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	return countModel(r.getDB(tx).WithContext(ctx), &models.Quiz{}, "quizzes")
}
