package services

import (
	"context"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

type noticeService struct {
	repo      repositories.Repository
	db        *gorm.DB
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewNoticeService(repo repositories.Repository, db *gorm.DB, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) NoticeService {
	return &noticeService{
		repo:      repo,
		db:        db,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

func (s *noticeService) ListByCreator(ctx context.Context, creatorID string) ([]models.Notice, error) {
	return s.repo.Notice().ListByCreator(ctx, nil, creatorID)
}

// Create posts a notice; without a class it is visible to every student
func (s *noticeService) Create(ctx context.Context, req *CreateNoticeRequest, creatorID string) (*models.Notice, error) {
	s.logger.Info("Creating notice", "creator_id", creatorID, "class_id", req.ClassID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if req.ClassID != nil {
		if _, err := s.repo.Class().GetByID(ctx, nil, *req.ClassID); err != nil {
			return nil, notFoundAs(err, ErrClassNotFound, "get class")
		}
	}

	notice := &models.Notice{
		Title:     strings.TrimSpace(req.Title),
		Content:   req.Content,
		ClassID:   req.ClassID,
		CreatedBy: creatorID,
	}
	if err := s.repo.Notice().Create(ctx, nil, notice); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.publisher, s.logger, events.NoticePublished, events.NoticePublishedData{
		NoticeID:  notice.ID,
		Title:     notice.Title,
		ClassID:   notice.ClassID,
		CreatedBy: notice.CreatedBy,
	})

	s.logger.Info("Notice created successfully", "notice_id", notice.ID)
	return notice, nil
}

func (s *noticeService) Delete(ctx context.Context, id uint, userID string, role models.UserRole) error {
	notice, err := s.repo.Notice().GetByID(ctx, nil, id)
	if err != nil {
		return notFoundAs(err, ErrNoticeNotFound, "get notice")
	}
	if !canManage(notice.CreatedBy, userID, role) {
		return NewPermissionError(userID, id, "notice", "delete", "not the owner")
	}

	if err := s.repo.Notice().Delete(ctx, nil, id); err != nil {
		return notFoundAs(err, ErrNoticeNotFound, "delete notice")
	}
	s.logger.Info("Notice deleted", "notice_id", id, "user_id", userID)
	return nil
}
