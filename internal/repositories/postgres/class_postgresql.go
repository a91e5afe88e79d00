package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

type ClassPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewClassPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.ClassRepository {
	return &ClassPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (r *ClassPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *ClassPostgreSQL) Create(ctx context.Context, tx *gorm.DB, class *models.Class) error {
	if err := r.getDB(tx).WithContext(ctx).Omit(clause.Associations).Create(class).Error; err != nil {
		return fmt.Errorf("failed to create class: %w", err)
	}
	cache.InvalidateStats(ctx, r.cacheManager)
	return nil
}

func (r *ClassPostgreSQL) Update(ctx context.Context, tx *gorm.DB, class *models.Class) error {
	result := r.getDB(tx).WithContext(ctx).
		Model(&models.Class{ID: class.ID}).
		Select("name", "description").
		Updates(class)
	if result.Error != nil {
		return fmt.Errorf("failed to update class: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update class %d: %w", class.ID, gorm.ErrRecordNotFound)
	}
	cache.InvalidateCatalog(ctx, r.cacheManager)
	return nil
}

// Delete removes the class; subjects, chapters and enrollments cascade and class notices become global
func (r *ClassPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := deleteByID(r.getDB(tx).WithContext(ctx), &models.Class{}, id, "class"); err != nil {
		return err
	}
	cache.InvalidateCatalog(ctx, r.cacheManager)
	return nil
}

func (r *ClassPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Class, error) {
	var class models.Class
	if err := r.getDB(tx).WithContext(ctx).First(&class, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get class: %w", err)
	}
	return &class, nil
}

// ExistsByName compares names case-insensitively, ignoring excludeID when it is set
func (r *ClassPostgreSQL) ExistsByName(ctx context.Context, tx *gorm.DB, name string, excludeID uint) (bool, error) {
	query := r.getDB(tx).WithContext(ctx).
		Model(&models.Class{}).
		Where("LOWER(name) = LOWER(?)", name)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check class name: %w", err)
	}
	return count > 0, nil
}

func (r *ClassPostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]models.Class, error) {
	var classes []models.Class
	if err := r.getDB(tx).WithContext(ctx).Order("name ASC").Find(&classes).Error; err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}
	return classes, nil
}

func (r *ClassPostgreSQL) ListSummaries(ctx context.Context, tx *gorm.DB) ([]repositories.ClassSummary, error) {
	var rows []repositories.ClassSummary
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.Class{}).
		Select(`classes.id, classes.name, classes.description, classes.created_at,
			(SELECT COUNT(*) FROM subjects WHERE subjects.class_id = classes.id) AS subject_count,
			(SELECT COUNT(*) FROM student_classes WHERE student_classes.class_id = classes.id) AS student_count`).
		Order("classes.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list class summaries: %w", err)
	}
	return rows, nil
}

func (r *ClassPostgreSQL) ListByStudent(ctx context.Context, tx *gorm.DB, studentID string) ([]models.Class, error) {
	db := r.getDB(tx)
	var classes []models.Class
	err := db.WithContext(ctx).
		Where("id IN (?)", r.helpers.EnrolledClassIDs(db, studentID)).
		Order("name ASC").
		Find(&classes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list classes for student: %w", err)
	}
	return classes, nil
}

func (r *ClassPostgreSQL) ListTree(ctx context.Context, tx *gorm.DB) ([]models.Class, error) {
	var classes []models.Class
	err := r.getDB(tx).WithContext(ctx).
		Preload("Subjects", func(db *gorm.DB) *gorm.DB {
			return db.Order("subjects.name ASC")
		}).
		Preload("Subjects.Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Order("chapters.order_index ASC, chapters.title ASC")
		}).
		Preload("Subjects.Chapters.Quizzes", func(db *gorm.DB) *gorm.DB {
			return db.Order("quizzes.created_at ASC, quizzes.id ASC")
		}).
		Order("name ASC").
		Find(&classes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load class tree: %w", err)
	}
	return classes, nil
}

func (r *ClassPostgreSQL) TopByEnrollment(ctx context.Context, tx *gorm.DB, limit int) ([]repositories.ClassEnrollmentCount, error) {
	var rows []repositories.ClassEnrollmentCount
	query := r.getDB(tx).WithContext(ctx).
		Model(&models.Class{}).
		Select("classes.id AS class_id, classes.name AS class_name, COUNT(student_classes.id) AS student_count").
		Joins("LEFT JOIN student_classes ON student_classes.class_id = classes.id").
		Group("classes.id, classes.name").
		Order("student_count DESC, classes.name ASC")
	if err := r.helpers.ApplyPagination(query, limit, 0).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get top classes: %w", err)
	}
	return rows, nil
}

func (r *ClassPostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	return countModel(r.getDB(tx).WithContext(ctx), &models.Class{}, "classes")
}
