package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

type enrollmentService struct {
	repo      repositories.Repository
	db        *gorm.DB
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewEnrollmentService(repo repositories.Repository, db *gorm.DB, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) EnrollmentService {
	return &enrollmentService{
		repo:      repo,
		db:        db,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

func (s *enrollmentService) List(ctx context.Context, classID *uint, page, size int) (*models.ListResponse[EnrollmentResponse], error) {
	page, size = models.NormalizePage(page, size)

	rows, total, err := s.repo.Enrollment().List(ctx, nil, repositories.EnrollmentFilters{
		ClassID: classID,
		Limit:   size,
		Offset:  (page - 1) * size,
	})
	if err != nil {
		return nil, err
	}

	studentIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		studentIDs = append(studentIDs, row.StudentID)
	}
	users, err := s.repo.User().GetByIDs(ctx, studentIDs)
	if err != nil {
		s.logger.Warn("Failed to resolve enrolled students", "error", err)
	}
	byID := make(map[string]*models.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}

	items := make([]EnrollmentResponse, 0, len(rows))
	for _, row := range rows {
		item := EnrollmentResponse{StudentClass: row, StudentName: unknownStudentName}
		if user, ok := byID[row.StudentID]; ok {
			item.StudentName = user.DisplayName()
			item.StudentEmail = user.Email
		}
		items = append(items, item)
	}

	return &models.ListResponse[EnrollmentResponse]{
		Items: items,
		Total: total,
		Page:  page,
		Size:  size,
	}, nil
}

// Enroll adds a student to a class. The student must exist with the student role.
func (s *enrollmentService) Enroll(ctx context.Context, req *EnrollStudentRequest) (*models.StudentClass, error) {
	s.logger.Info("Enrolling student", "student_id", req.StudentID, "class_id", req.ClassID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	student, err := s.repo.User().GetByID(ctx, req.StudentID)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound, "get student")
	}
	if student.Role != models.RoleStudent {
		return nil, NewBusinessRuleError("student_role_required", "only students can be enrolled in a class", map[string]interface{}{
			"user_id": student.ID,
			"role":    student.Role,
		})
	}

	var enrollment *models.StudentClass
	err = s.withTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.Class().GetByID(ctx, tx, req.ClassID); err != nil {
			return notFoundAs(err, ErrClassNotFound, "get class")
		}

		exists, err := s.repo.Enrollment().Exists(ctx, tx, req.StudentID, req.ClassID)
		if err != nil {
			return fmt.Errorf("failed to check enrollment: %w", err)
		}
		if exists {
			return ErrAlreadyEnrolled
		}

		enrollment = &models.StudentClass{
			StudentID:  req.StudentID,
			ClassID:    req.ClassID,
			EnrolledAt: time.Now(),
		}
		if err := s.repo.Enrollment().Create(ctx, tx, enrollment); err != nil {
			if repositories.IsDuplicateKeyError(err) {
				return ErrAlreadyEnrolled
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateStudentProgress(ctx, s.repo.Cache(), req.StudentID)
	publishEvent(ctx, s.publisher, s.logger, events.StudentEnrolled, events.StudentEnrolledData{
		EnrollmentID: enrollment.ID,
		StudentID:    enrollment.StudentID,
		ClassID:      enrollment.ClassID,
	})

	s.logger.Info("Student enrolled successfully", "enrollment_id", enrollment.ID)
	return enrollment, nil
}

func (s *enrollmentService) Unenroll(ctx context.Context, id uint) error {
	enrollment, err := s.repo.Enrollment().GetByID(ctx, nil, id)
	if err != nil {
		return notFoundAs(err, ErrEnrollmentNotFound, "get enrollment")
	}
	if err := s.repo.Enrollment().Delete(ctx, nil, id); err != nil {
		return notFoundAs(err, ErrEnrollmentNotFound, "delete enrollment")
	}

	cache.InvalidateStudentProgress(ctx, s.repo.Cache(), enrollment.StudentID)
	s.logger.Info("Student unenrolled", "enrollment_id", id, "student_id", enrollment.StudentID)
	return nil
}

func (s *enrollmentService) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}
