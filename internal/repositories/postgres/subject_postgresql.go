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

type SubjectPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewSubjectPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.SubjectRepository {
	return &SubjectPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
	}
}

func (r *SubjectPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *SubjectPostgreSQL) Create(ctx context.Context, tx *gorm.DB, subject *models.Subject) error {
	if err := r.getDB(tx).WithContext(ctx).Omit(clause.Associations).Create(subject).Error; err != nil {
		return fmt.Errorf("failed to create subject: %w", err)
	}
	cache.InvalidateCatalog(ctx, r.cacheManager)
	return nil
}

func (r *SubjectPostgreSQL) Update(ctx context.Context, tx *gorm.DB, subject *models.Subject) error {
	result := r.getDB(tx).WithContext(ctx).
		Model(&models.Subject{ID: subject.ID}).
		Select("name", "description").
		Updates(subject)
	if result.Error != nil {
		return fmt.Errorf("failed to update subject: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update subject %d: %w", subject.ID, gorm.ErrRecordNotFound)
	}
	cache.InvalidateCatalog(ctx, r.cacheManager)
	return nil
}

func (r *SubjectPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := deleteByID(r.getDB(tx).WithContext(ctx), &models.Subject{}, id, "subject"); err != nil {
		return err
	}
	cache.InvalidateCatalog(ctx, r.cacheManager)
	return nil
}

func (r *SubjectPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Subject, error) {
	var subject models.Subject
	if err := r.getDB(tx).WithContext(ctx).Preload("Class").First(&subject, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}
	return &subject, nil
}

// ListByClass returns the class's subjects by name. Reads outside a transaction are cached.
func (r *SubjectPostgreSQL) ListByClass(ctx context.Context, tx *gorm.DB, classID uint) ([]models.Subject, error) {
	load := func() ([]models.Subject, error) {
		var subjects []models.Subject
		err := r.getDB(tx).WithContext(ctx).
			Where("class_id = ?", classID).
			Order("name ASC").
			Find(&subjects).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list subjects: %w", err)
		}
		return subjects, nil
	}

	if tx != nil {
		return load()
	}
	return cache.Remember(ctx, r.cacheManager.Catalog, cache.ClassSubjectsKey(classID), cache.CatalogCacheConfig.TTL, load)
}

func (r *SubjectPostgreSQL) ChapterCountsForStudent(ctx context.Context, tx *gorm.DB, studentID string) ([]repositories.SubjectChapterCount, error) {
	db := r.getDB(tx)
	var rows []repositories.SubjectChapterCount
	err := db.WithContext(ctx).
		Model(&models.Subject{}).
		Select(`subjects.id AS subject_id, subjects.name AS subject_name,
			classes.id AS class_id, classes.name AS class_name,
			COUNT(chapters.id) AS total_chapters`).
		Joins("JOIN classes ON classes.id = subjects.class_id").
		Joins("LEFT JOIN chapters ON chapters.subject_id = subjects.id").
		Where("subjects.class_id IN (?)", r.helpers.EnrolledClassIDs(db, studentID)).
		Group("subjects.id, subjects.name, classes.id, classes.name").
		Order("classes.name ASC, subjects.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count chapters per subject: %w", err)
	}
	return rows, nil
}

func (r *SubjectPostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	return countModel(r.getDB(tx).WithContext(ctx), &models.Subject{}, "subjects")
}
