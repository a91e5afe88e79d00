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

type ChapterPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewChapterPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.ChapterRepository {
	return &ChapterPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
	}
}

func (r *ChapterPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *ChapterPostgreSQL) Create(ctx context.Context, tx *gorm.DB, chapter *models.Chapter) error {
	if err := r.getDB(tx).WithContext(ctx).Omit(clause.Associations).Create(chapter).Error; err != nil {
		return fmt.Errorf("failed to create chapter: %w", err)
	}
	// a new chapter changes every percentage of its subject
	cache.InvalidateCatalog(ctx, r.cacheManager)
	return nil
}

func (r *ChapterPostgreSQL) Update(ctx context.Context, tx *gorm.DB, chapter *models.Chapter) error {
	result := r.getDB(tx).WithContext(ctx).
		Model(&models.Chapter{ID: chapter.ID}).
		Select("title", "description", "order_index").
		Updates(chapter)
	if result.Error != nil {
		return fmt.Errorf("failed to update chapter: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update chapter %d: %w", chapter.ID, gorm.ErrRecordNotFound)
	}
	cache.InvalidateCatalog(ctx, r.cacheManager)
	return nil
}

func (r *ChapterPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := deleteByID(r.getDB(tx).WithContext(ctx), &models.Chapter{}, id, "chapter"); err != nil {
		return err
	}
	cache.InvalidateCatalog(ctx, r.cacheManager)
	return nil
}

// GetByID loads the chapter with its subject and class
func (r *ChapterPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Chapter, error) {
	var chapter models.Chapter
	err := r.getDB(tx).WithContext(ctx).
		Preload("Subject").
		Preload("Subject.Class").
		First(&chapter, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get chapter: %w", err)
	}
	return &chapter, nil
}

// ListBySubject orders by (order_index, title). Reads outside a transaction are cached.
func (r *ChapterPostgreSQL) ListBySubject(ctx context.Context, tx *gorm.DB, subjectID uint) ([]models.Chapter, error) {
	load := func() ([]models.Chapter, error) {
		var chapters []models.Chapter
		err := r.getDB(tx).WithContext(ctx).
			Where("subject_id = ?", subjectID).
			Order("order_index ASC, title ASC").
			Find(&chapters).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list chapters: %w", err)
		}
		return chapters, nil
	}

	if tx != nil {
		return load()
	}
	return cache.Remember(ctx, r.cacheManager.Catalog, cache.SubjectChaptersKey(subjectID), cache.CatalogCacheConfig.TTL, load)
}

func (r *ChapterPostgreSQL) CountBySubject(ctx context.Context, tx *gorm.DB, subjectID uint) (int64, error) {
	var count int64
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.Chapter{}).
		Where("subject_id = ?", subjectID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count chapters in subject: %w", err)
	}
	return count, nil
}

func (r *ChapterPostgreSQL) CountForStudent(ctx context.Context, tx *gorm.DB, studentID string) (int64, error) {
	db := r.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Chapter{}).
		Where("id IN (?)", r.helpers.EnrolledChapterIDs(db, studentID)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count chapters for student: %w", err)
	}
	return count, nil
}

func (r *ChapterPostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	return countModel(r.getDB(tx).WithContext(ctx), &models.Chapter{}, "chapters")
}
