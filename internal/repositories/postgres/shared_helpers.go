package postgres

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

// attemptPercentExpr is the per-row percentage of a quiz attempt, safe for empty quizzes
const attemptPercentExpr = "CASE WHEN quiz_attempts.total_questions > 0 THEN quiz_attempts.score * 100.0 / quiz_attempts.total_questions ELSE 0 END"

// SharedHelpers contains query fragments reused across repositories
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

func (h *SharedHelpers) newQuery(db *gorm.DB) *gorm.DB {
	if db == nil {
		db = h.db
	}
	return db.Session(&gorm.Session{NewDB: true})
}

// EnrolledClassIDs is a subquery selecting the class ids a student is enrolled in
func (h *SharedHelpers) EnrolledClassIDs(db *gorm.DB, studentID string) *gorm.DB {
	return h.newQuery(db).
		Model(&models.StudentClass{}).
		Select("class_id").
		Where("student_id = ?", studentID)
}

// EnrolledChapterIDs is a subquery selecting every chapter reachable through a student's enrollments
func (h *SharedHelpers) EnrolledChapterIDs(db *gorm.DB, studentID string) *gorm.DB {
	return h.newQuery(db).
		Model(&models.Chapter{}).
		Select("chapters.id").
		Joins("JOIN subjects ON subjects.id = chapters.subject_id").
		Where("subjects.class_id IN (?)", h.EnrolledClassIDs(db, studentID))
}

// ApplyPagination applies limit and offset when set
func (h *SharedHelpers) ApplyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}

// deleteByID deletes one row and reports gorm.ErrRecordNotFound when nothing matched
func deleteByID(db *gorm.DB, model interface{}, id uint, what string) error {
	result := db.Delete(model, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete %s: %w", what, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to delete %s %d: %w", what, id, gorm.ErrRecordNotFound)
	}
	return nil
}

func countModel(db *gorm.DB, model interface{}, what string) (int64, error) {
	var count int64
	if err := db.Model(model).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", what, err)
	}
	return count, nil
}
