package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

type classService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewClassService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) ClassService {
	return &classService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// ===== CLASSES =====

func (s *classService) ListClasses(ctx context.Context) ([]ClassSummary, error) {
	return s.repo.Class().ListSummaries(ctx, nil)
}

func (s *classService) GetClass(ctx context.Context, id uint) (*models.Class, error) {
	class, err := s.repo.Class().GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFoundAs(err, ErrClassNotFound, "get class")
	}
	return class, nil
}

func (s *classService) CreateClass(ctx context.Context, req *CreateClassRequest) (*models.Class, error) {
	s.logger.Info("Creating class", "name", req.Name)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	taken, err := s.repo.Class().ExistsByName(ctx, nil, name, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check class name: %w", err)
	}
	if taken {
		return nil, ErrClassNameTaken
	}

	class := &models.Class{Name: name, Description: req.Description}
	if err := s.repo.Class().Create(ctx, nil, class); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrClassNameTaken
		}
		return nil, err
	}

	s.logger.Info("Class created successfully", "class_id", class.ID)
	return class, nil
}

func (s *classService) UpdateClass(ctx context.Context, id uint, req *UpdateClassRequest) (*models.Class, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var class *models.Class
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		var err error
		class, err = s.repo.Class().GetByID(ctx, tx, id)
		if err != nil {
			return notFoundAs(err, ErrClassNotFound, "get class")
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			taken, err := s.repo.Class().ExistsByName(ctx, tx, name, id)
			if err != nil {
				return fmt.Errorf("failed to check class name: %w", err)
			}
			if taken {
				return ErrClassNameTaken
			}
			class.Name = name
		}
		if req.Description != nil {
			class.Description = req.Description
		}

		if err := s.repo.Class().Update(ctx, tx, class); err != nil {
			if repositories.IsDuplicateKeyError(err) {
				return ErrClassNameTaken
			}
			return notFoundAs(err, ErrClassNotFound, "update class")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Class updated successfully", "class_id", id)
	return class, nil
}

// DeleteClass cascades to subjects, chapters, contents, quizzes and enrollments
func (s *classService) DeleteClass(ctx context.Context, id uint) error {
	if err := s.repo.Class().Delete(ctx, nil, id); err != nil {
		return notFoundAs(err, ErrClassNotFound, "delete class")
	}
	s.logger.Info("Class deleted", "class_id", id)
	return nil
}

// ===== SUBJECTS =====

func (s *classService) ListSubjects(ctx context.Context, classID uint) ([]models.Subject, error) {
	if _, err := s.GetClass(ctx, classID); err != nil {
		return nil, err
	}
	return s.repo.Subject().ListByClass(ctx, nil, classID)
}

func (s *classService) CreateSubject(ctx context.Context, req *CreateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.GetClass(ctx, req.ClassID); err != nil {
		return nil, err
	}

	subject := &models.Subject{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		ClassID:     req.ClassID,
	}
	if err := s.repo.Subject().Create(ctx, nil, subject); err != nil {
		return nil, err
	}

	s.logger.Info("Subject created successfully", "subject_id", subject.ID, "class_id", subject.ClassID)
	return subject, nil
}

func (s *classService) UpdateSubject(ctx context.Context, id uint, req *UpdateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	subject, err := s.repo.Subject().GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFoundAs(err, ErrSubjectNotFound, "get subject")
	}
	if req.Name != nil {
		subject.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		subject.Description = req.Description
	}

	if err := s.repo.Subject().Update(ctx, nil, subject); err != nil {
		return nil, notFoundAs(err, ErrSubjectNotFound, "update subject")
	}
	return subject, nil
}

func (s *classService) DeleteSubject(ctx context.Context, id uint) error {
	if err := s.repo.Subject().Delete(ctx, nil, id); err != nil {
		return notFoundAs(err, ErrSubjectNotFound, "delete subject")
	}
	s.logger.Info("Subject deleted", "subject_id", id)
	return nil
}

// ===== CHAPTERS =====

func (s *classService) CreateChapter(ctx context.Context, req *CreateChapterRequest) (*models.Chapter, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.repo.Subject().GetByID(ctx, nil, req.SubjectID); err != nil {
		return nil, notFoundAs(err, ErrSubjectNotFound, "get subject")
	}

	orderIndex := req.OrderIndex
	if orderIndex <= 0 {
		orderIndex = 1
	}

	chapter := &models.Chapter{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		OrderIndex:  orderIndex,
		SubjectID:   req.SubjectID,
	}
	if err := s.repo.Chapter().Create(ctx, nil, chapter); err != nil {
		return nil, err
	}

	s.logger.Info("Chapter created successfully", "chapter_id", chapter.ID, "subject_id", chapter.SubjectID)
	return chapter, nil
}

func (s *classService) UpdateChapter(ctx context.Context, id uint, req *UpdateChapterRequest) (*models.Chapter, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	chapter, err := s.repo.Chapter().GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFoundAs(err, ErrChapterNotFound, "get chapter")
	}
	if req.Title != nil {
		chapter.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		chapter.Description = req.Description
	}
	if req.OrderIndex != nil {
		chapter.OrderIndex = *req.OrderIndex
	}

	if err := s.repo.Chapter().Update(ctx, nil, chapter); err != nil {
		return nil, notFoundAs(err, ErrChapterNotFound, "update chapter")
	}
	return chapter, nil
}

func (s *classService) DeleteChapter(ctx context.Context, id uint) error {
	if err := s.repo.Chapter().Delete(ctx, nil, id); err != nil {
		return notFoundAs(err, ErrChapterNotFound, "delete chapter")
	}
	s.logger.Info("Chapter deleted", "chapter_id", id)
	return nil
}

func (s *classService) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}
