package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

type ParentChildPostgreSQL struct {
	db *gorm.DB
}

func NewParentChildPostgreSQL(db *gorm.DB) repositories.ParentChildRepository {
	return &ParentChildPostgreSQL{db: db}
}

func (r *ParentChildPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *ParentChildPostgreSQL) Create(ctx context.Context, tx *gorm.DB, link *models.ParentChild) error {
	if err := r.getDB(tx).WithContext(ctx).Create(link).Error; err != nil {
		return fmt.Errorf("failed to create parent link: %w", err)
	}
	return nil
}

func (r *ParentChildPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return deleteByID(r.getDB(tx).WithContext(ctx), &models.ParentChild{}, id, "parent link")
}

func (r *ParentChildPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ParentChild, error) {
	var link models.ParentChild
	if err := r.getDB(tx).WithContext(ctx).First(&link, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get parent link: %w", err)
	}
	return &link, nil
}

func (r *ParentChildPostgreSQL) Exists(ctx context.Context, tx *gorm.DB, parentID, childID string) (bool, error) {
	var count int64
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.ParentChild{}).
		Where("parent_id = ? AND child_id = ?", parentID, childID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check parent link: %w", err)
	}
	return count > 0, nil
}

func (r *ParentChildPostgreSQL) ListByParent(ctx context.Context, tx *gorm.DB, parentID string) ([]models.ParentChild, error) {
	var links []models.ParentChild
	err := r.getDB(tx).WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("linked_at ASC, id ASC").
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	return links, nil
}
