package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

const childSummaryAttempts = 3

type parentService struct {
	repo      repositories.Repository
	db        *gorm.DB
	progress  ProgressService
	content   ContentService
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewParentService(repo repositories.Repository, db *gorm.DB, progress ProgressService, content ContentService, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) ParentService {
	return &parentService{
		repo:      repo,
		db:        db,
		progress:  progress,
		content:   content,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// ===== CHILDREN =====

// ChildrenSummary reports overall progress and the average of the child's latest attempts
func (s *parentService) ChildrenSummary(ctx context.Context, parentID string) ([]ChildSummary, error) {
	links, err := s.repo.ParentChild().ListByParent(ctx, nil, parentID)
	if err != nil {
		return nil, err
	}

	summaries := make([]ChildSummary, 0, len(links))
	for _, link := range links {
		summary := ChildSummary{
			LinkID:    link.ID,
			ChildID:   link.ChildID,
			ChildName: unknownStudentName,
			ClassName: noClassName,
		}

		if child, err := s.repo.User().GetByID(ctx, link.ChildID); err == nil {
			summary.ChildName = child.DisplayName()
			summary.ChildEmail = child.Email
		} else if !repositories.IsNotFoundError(err) {
			s.logger.Warn("Failed to resolve child", "child_id", link.ChildID, "error", err)
		}

		enrollment, err := s.repo.Enrollment().FirstForStudent(ctx, nil, link.ChildID)
		if err == nil && enrollment.Class != nil {
			summary.ClassName = enrollment.Class.Name
		} else if err != nil && !repositories.IsNotFoundError(err) {
			return nil, err
		}

		if summary.OverallProgress, err = s.progress.OverallProgressPercentage(ctx, link.ChildID); err != nil {
			return nil, err
		}

		recent, err := s.progress.RecentQuizAttempts(ctx, link.ChildID, childSummaryAttempts)
		if err != nil {
			return nil, err
		}
		summary.RecentAttemptCount = len(recent)
		summary.RecentAverage = averagePercentage(recent)

		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// LinkChild links the parent to a student account found by email
func (s *parentService) LinkChild(ctx context.Context, parentID string, req *LinkChildRequest) (*models.ParentChild, error) {
	s.logger.Info("Linking child", "parent_id", parentID, "child_email", req.ChildEmail)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	child, err := s.repo.User().GetByEmail(ctx, strings.TrimSpace(req.ChildEmail))
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound, "find child")
	}
	if child.Role != models.RoleStudent {
		return nil, NewBusinessRuleError("child_must_be_student", "only student accounts can be linked as children", map[string]interface{}{
			"child_email": req.ChildEmail,
			"role":        child.Role,
		})
	}
	if child.ID == parentID {
		return nil, NewBusinessRuleError("self_link", "a user cannot be linked to themselves", nil)
	}

	var link *models.ParentChild
	err = s.withTx(ctx, func(tx *gorm.DB) error {
		exists, err := s.repo.ParentChild().Exists(ctx, tx, parentID, child.ID)
		if err != nil {
			return fmt.Errorf("failed to check parent link: %w", err)
		}
		if exists {
			return ErrAlreadyLinked
		}

		link = &models.ParentChild{ParentID: parentID, ChildID: child.ID, LinkedAt: time.Now()}
		if err := s.repo.ParentChild().Create(ctx, tx, link); err != nil {
			if repositories.IsDuplicateKeyError(err) {
				return ErrAlreadyLinked
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.publisher, s.logger, events.ParentLinked, events.ParentLinkedData{
		LinkID:   link.ID,
		ParentID: parentID,
		ChildID:  child.ID,
	})

	s.logger.Info("Child linked successfully", "link_id", link.ID)
	return link, nil
}

func (s *parentService) UnlinkChild(ctx context.Context, parentID string, linkID uint) error {
	link, err := s.repo.ParentChild().GetByID(ctx, nil, linkID)
	if err != nil {
		return notFoundAs(err, ErrLinkNotFound, "get parent link")
	}
	if link.ParentID != parentID {
		return NewPermissionError(parentID, linkID, "parent_link", "delete", "link belongs to another parent")
	}

	if err := s.repo.ParentChild().Delete(ctx, nil, linkID); err != nil {
		return notFoundAs(err, ErrLinkNotFound, "delete parent link")
	}
	s.logger.Info("Child unlinked", "link_id", linkID, "parent_id", parentID)
	return nil
}

// ===== CHILD VIEWS =====

func (s *parentService) VerifyLink(ctx context.Context, parentID, childID string) error {
	linked, err := s.repo.ParentChild().Exists(ctx, nil, parentID, childID)
	if err != nil {
		return fmt.Errorf("failed to check parent link: %w", err)
	}
	if !linked {
		return ErrNotLinkedToChild
	}
	return nil
}

func (s *parentService) ChildProgress(ctx context.Context, parentID, childID string) (*DetailedProgressReport, error) {
	if err := s.VerifyLink(ctx, parentID, childID); err != nil {
		return nil, err
	}
	return s.progress.DetailedProgress(ctx, childID)
}

func (s *parentService) ChildNotices(ctx context.Context, parentID, childID string) ([]models.Notice, error) {
	if err := s.VerifyLink(ctx, parentID, childID); err != nil {
		return nil, err
	}
	return s.content.NoticesForStudent(ctx, childID)
}

func (s *parentService) ChildQuizPerformance(ctx context.Context, parentID, childID string) ([]SubjectQuizPerformance, error) {
	if err := s.VerifyLink(ctx, parentID, childID); err != nil {
		return nil, err
	}

	rows, err := s.repo.QuizAttempt().PerformanceBySubject(ctx, nil, childID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].AveragePercent = models.Round1(rows[i].AveragePercent)
		rows[i].BestPercent = models.Round1(rows[i].BestPercent)
	}
	return rows, nil
}

func (s *parentService) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

// averagePercentage is the rounded mean of attempt percentages, 0 for no attempts
func averagePercentage(attempts []models.QuizAttempt) float64 {
	if len(attempts) == 0 {
		return 0
	}
	var sum float64
	for _, attempt := range attempts {
		sum += attempt.Percentage()
	}
	return models.Round1(sum / float64(len(attempts)))
}
