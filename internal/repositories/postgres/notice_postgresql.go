package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

type NoticePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewNoticePostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.NoticeRepository {
	return &NoticePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
	}
}

func (r *NoticePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *NoticePostgreSQL) Create(ctx context.Context, tx *gorm.DB, notice *models.Notice) error {
	if err := r.getDB(tx).WithContext(ctx).Omit("Class").Create(notice).Error; err != nil {
		return fmt.Errorf("failed to create notice: %w", err)
	}
	// the admin dashboard lists recent notices
	cache.InvalidateStats(ctx, r.cacheManager)
	return nil
}

func (r *NoticePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := deleteByID(r.getDB(tx).WithContext(ctx), &models.Notice{}, id, "notice"); err != nil {
		return err
	}
	cache.InvalidateStats(ctx, r.cacheManager)
	return nil
}

func (r *NoticePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Notice, error) {
	var notice models.Notice
	if err := r.getDB(tx).WithContext(ctx).Preload("Class").First(&notice, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get notice: %w", err)
	}
	return &notice, nil
}

func (r *NoticePostgreSQL) ListForClasses(ctx context.Context, tx *gorm.DB, classIDs []uint) ([]models.Notice, error) {
	query := r.getDB(tx).WithContext(ctx).Preload("Class")
	if len(classIDs) == 0 {
		query = query.Where("class_id IS NULL")
	} else {
		query = query.Where("class_id IS NULL OR class_id IN ?", classIDs)
	}

	var notices []models.Notice
	if err := query.Order("created_at DESC, id DESC").Find(&notices).Error; err != nil {
		return nil, fmt.Errorf("failed to list notices: %w", err)
	}
	return notices, nil
}

func (r *NoticePostgreSQL) ListByCreator(ctx context.Context, tx *gorm.DB, creatorID string) ([]models.Notice, error) {
	var notices []models.Notice
	err := r.getDB(tx).WithContext(ctx).
		Preload("Class").
		Where("created_by = ?", creatorID).
		Order("created_at DESC, id DESC").
		Find(&notices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notices by creator: %w", err)
	}
	return notices, nil
}

func (r *NoticePostgreSQL) ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]models.Notice, error) {
	query := r.getDB(tx).WithContext(ctx).
		Preload("Class").
		Order("created_at DESC, id DESC")

	var notices []models.Notice
	if err := r.helpers.ApplyPagination(query, limit, 0).Find(&notices).Error; err != nil {
		return nil, fmt.Errorf("failed to list recent notices: %w", err)
	}
	return notices, nil
}
