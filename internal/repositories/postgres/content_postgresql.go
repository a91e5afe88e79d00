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

type ContentPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewContentPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.ContentRepository {
	return &ContentPostgreSQL{db: db, cacheManager: cacheManager}
}

func (r *ContentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *ContentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, content *models.Content) error {
	if err := r.getDB(tx).WithContext(ctx).Omit(clause.Associations).Create(content).Error; err != nil {
		return fmt.Errorf("failed to create content: %w", err)
	}
	cache.InvalidateStats(ctx, r.cacheManager)
	return nil
}

func (r *ContentPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := deleteByID(r.getDB(tx).WithContext(ctx), &models.Content{}, id, "content"); err != nil {
		return err
	}
	cache.InvalidateStats(ctx, r.cacheManager)
	return nil
}

func (r *ContentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Content, error) {
	var content models.Content
	if err := r.getDB(tx).WithContext(ctx).First(&content, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get content: %w", err)
	}
	return &content, nil
}

func (r *ContentPostgreSQL) ListByChapter(ctx context.Context, tx *gorm.DB, chapterID uint) ([]models.Content, error) {
	var contents []models.Content
	err := r.getDB(tx).WithContext(ctx).
		Where("chapter_id = ?", chapterID).
		Order("order_index ASC, created_at ASC, id ASC").
		Find(&contents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list contents: %w", err)
	}
	return contents, nil
}

// ListByCreator returns the creator's contents newest first with chapter and subject
func (r *ContentPostgreSQL) ListByCreator(ctx context.Context, tx *gorm.DB, creatorID string) ([]models.Content, error) {
	var contents []models.Content
	err := r.getDB(tx).WithContext(ctx).
		Preload("Chapter").
		Preload("Chapter.Subject").
		Where("created_by = ?", creatorID).
		Order("created_at DESC, id DESC").
		Find(&contents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list contents by creator: %w", err)
	}
	return contents, nil
}

func (r *ContentPostgreSQL) CountByChapter(ctx context.Context, tx *gorm.DB, chapterID uint) (int64, error) {
	var count int64
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.Content{}).
		Where("chapter_id = ?", chapterID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count contents: %w", err)
	}
	return count, nil
}

func (r *ContentPostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	return countModel(r.getDB(tx).WithContext(ctx), &models.Content{}, "contents")
}
