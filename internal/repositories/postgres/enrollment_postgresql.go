package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

type EnrollmentPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewEnrollmentPostgreSQL(db *gorm.DB) repositories.EnrollmentRepository {
	return &EnrollmentPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (r *EnrollmentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *EnrollmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, enrollment *models.StudentClass) error {
	if err := r.getDB(tx).WithContext(ctx).Omit("Class").Create(enrollment).Error; err != nil {
		return fmt.Errorf("failed to create enrollment: %w", err)
	}
	return nil
}

func (r *EnrollmentPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return deleteByID(r.getDB(tx).WithContext(ctx), &models.StudentClass{}, id, "enrollment")
}

func (r *EnrollmentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.StudentClass, error) {
	var enrollment models.StudentClass
	if err := r.getDB(tx).WithContext(ctx).Preload("Class").First(&enrollment, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return &enrollment, nil
}

func (r *EnrollmentPostgreSQL) Exists(ctx context.Context, tx *gorm.DB, studentID string, classID uint) (bool, error) {
	var count int64
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.StudentClass{}).
		Where("student_id = ? AND class_id = ?", studentID, classID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return count > 0, nil
}

func (r *EnrollmentPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.EnrollmentFilters) ([]models.StudentClass, int64, error) {
	query := r.getDB(tx).WithContext(ctx).Model(&models.StudentClass{})
	if filters.ClassID != nil {
		query = query.Where("class_id = ?", *filters.ClassID)
	}
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count enrollments: %w", err)
	}

	var enrollments []models.StudentClass
	query = query.Preload("Class").Order("enrolled_at DESC, id DESC")
	if err := r.helpers.ApplyPagination(query, filters.Limit, filters.Offset).Find(&enrollments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list enrollments: %w", err)
	}

	return enrollments, total, nil
}

func (r *EnrollmentPostgreSQL) ClassIDsForStudent(ctx context.Context, tx *gorm.DB, studentID string) ([]uint, error) {
	var ids []uint
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.StudentClass{}).
		Where("student_id = ?", studentID).
		Order("enrolled_at ASC, id ASC").
		Pluck("class_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get class ids for student: %w", err)
	}
	return ids, nil
}

func (r *EnrollmentPostgreSQL) FirstForStudent(ctx context.Context, tx *gorm.DB, studentID string) (*models.StudentClass, error) {
	var enrollment models.StudentClass
	err := r.getDB(tx).WithContext(ctx).
		Preload("Class").
		Where("student_id = ?", studentID).
		Order("enrolled_at ASC, id ASC").
		First(&enrollment).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get first enrollment: %w", err)
	}
	return &enrollment, nil
}

func (r *EnrollmentPostgreSQL) DistinctStudentIDs(ctx context.Context, tx *gorm.DB) ([]string, error) {
	var ids []string
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.StudentClass{}).
		Distinct("student_id").
		Order("student_id ASC").
		Pluck("student_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list enrolled students: %w", err)
	}
	return ids, nil
}
