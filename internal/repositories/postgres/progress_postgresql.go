package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

type ProgressPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewProgressPostgreSQL(db *gorm.DB) repositories.ProgressRepository {
	return &ProgressPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (r *ProgressPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// FindForUpdate takes a row lock (SELECT ... FOR UPDATE on postgres)
func (r *ProgressPostgreSQL) FindForUpdate(ctx context.Context, tx *gorm.DB, studentID string, chapterID uint) (*models.StudentProgress, error) {
	var progress models.StudentProgress
	err := r.getDB(tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("student_id = ? AND chapter_id = ?", studentID, chapterID).
		First(&progress).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock progress: %w", err)
	}
	return &progress, nil
}

func (r *ProgressPostgreSQL) Find(ctx context.Context, tx *gorm.DB, studentID string, chapterID uint) (*models.StudentProgress, error) {
	var progress models.StudentProgress
	err := r.getDB(tx).WithContext(ctx).
		Where("student_id = ? AND chapter_id = ?", studentID, chapterID).
		First(&progress).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return &progress, nil
}

// CreateIfAbsent relies on idx_student_chapter so concurrent inserts collapse into one row
func (r *ProgressPostgreSQL) CreateIfAbsent(ctx context.Context, tx *gorm.DB, progress *models.StudentProgress) (bool, error) {
	result := r.getDB(tx).WithContext(ctx).
		Omit("Chapter").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "chapter_id"}},
			DoNothing: true,
		}).
		Create(progress)
	if result.Error != nil {
		return false, fmt.Errorf("failed to create progress: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *ProgressPostgreSQL) Save(ctx context.Context, tx *gorm.DB, progress *models.StudentProgress) error {
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.StudentProgress{ID: progress.ID}).
		Select("is_completed", "completed_at", "last_accessed_at").
		Updates(progress).Error
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

func (r *ProgressPostgreSQL) ListByStudent(ctx context.Context, tx *gorm.DB, studentID string) ([]models.StudentProgress, error) {
	var rows []models.StudentProgress
	err := r.getDB(tx).WithContext(ctx).
		Preload("Chapter").
		Where("student_id = ?", studentID).
		Order("last_accessed_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	return rows, nil
}

func (r *ProgressPostgreSQL) CompletedChapterIDs(ctx context.Context, tx *gorm.DB, studentID string, chapterIDs []uint) ([]uint, error) {
	if len(chapterIDs) == 0 {
		return nil, nil
	}

	var ids []uint
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.StudentProgress{}).
		Where("student_id = ? AND is_completed = ? AND chapter_id IN ?", studentID, true, chapterIDs).
		Pluck("chapter_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get completed chapters: %w", err)
	}
	return ids, nil
}

func (r *ProgressPostgreSQL) CountCompletedInSubject(ctx context.Context, tx *gorm.DB, studentID string, subjectID uint) (int64, error) {
	var count int64
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.StudentProgress{}).
		Joins("JOIN chapters ON chapters.id = student_progress.chapter_id").
		Where("student_progress.student_id = ? AND student_progress.is_completed = ? AND chapters.subject_id = ?",
			studentID, true, subjectID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count completed chapters in subject: %w", err)
	}
	return count, nil
}

func (r *ProgressPostgreSQL) CountCompletedForStudent(ctx context.Context, tx *gorm.DB, studentID string) (int64, error) {
	db := r.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.StudentProgress{}).
		Where("student_id = ? AND is_completed = ?", studentID, true).
		Where("chapter_id IN (?)", r.helpers.EnrolledChapterIDs(db, studentID)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count completed chapters: %w", err)
	}
	return count, nil
}

// CompletedBySubject maps subject id to completed chapters for the student's enrolled classes
func (r *ProgressPostgreSQL) CompletedBySubject(ctx context.Context, tx *gorm.DB, studentID string) (map[uint]int64, error) {
	db := r.getDB(tx)
	var rows []struct {
		SubjectID uint
		Completed int64
	}
	err := db.WithContext(ctx).
		Model(&models.StudentProgress{}).
		Select("chapters.subject_id AS subject_id, COUNT(*) AS completed").
		Joins("JOIN chapters ON chapters.id = student_progress.chapter_id").
		Where("student_progress.student_id = ? AND student_progress.is_completed = ?", studentID, true).
		Where("student_progress.chapter_id IN (?)", r.helpers.EnrolledChapterIDs(db, studentID)).
		Group("chapters.subject_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count completed chapters by subject: %w", err)
	}

	completed := make(map[uint]int64, len(rows))
	for _, row := range rows {
		completed[row.SubjectID] = row.Completed
	}
	return completed, nil
}

func (r *ProgressPostgreSQL) CountCompletedByStudents(ctx context.Context, tx *gorm.DB, studentIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(studentIDs))
	if len(studentIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		StudentID string
		Completed int64
	}
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.StudentProgress{}).
		Select("student_id, COUNT(*) AS completed").
		Where("student_id IN ? AND is_completed = ?", studentIDs, true).
		Group("student_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count completed chapters by student: %w", err)
	}

	for _, row := range rows {
		counts[row.StudentID] = row.Completed
	}
	return counts, nil
}

func (r *ProgressPostgreSQL) CountStudentsWithCompletion(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.StudentProgress{}).
		Where("is_completed = ?", true).
		Distinct("student_id").
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active students: %w", err)
	}
	return count, nil
}
