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

type teacherService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewTeacherService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) TeacherService {
	return &teacherService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// ===== CONTENT =====

func (s *teacherService) ListContents(ctx context.Context, teacherID string) ([]models.Content, error) {
	return s.repo.Content().ListByCreator(ctx, nil, teacherID)
}

// CreateContent appends the content to the end of its chapter
func (s *teacherService) CreateContent(ctx context.Context, req *CreateContentRequest, teacherID string) (*models.Content, error) {
	s.logger.Info("Creating content", "teacher_id", teacherID, "chapter_id", req.ChapterID, "type", req.Type.String())

	if errs := s.validator.GetBusinessValidator().ValidateContentCreate(req); len(errs) > 0 {
		return nil, errs
	}

	var content *models.Content
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.Chapter().GetByID(ctx, tx, req.ChapterID); err != nil {
			return notFoundAs(err, ErrChapterNotFound, "get chapter")
		}

		count, err := s.repo.Content().CountByChapter(ctx, tx, req.ChapterID)
		if err != nil {
			return err
		}

		content = &models.Content{
			Title:       strings.TrimSpace(req.Title),
			Description: req.Description,
			Type:        req.Type,
			OrderIndex:  int(count) + 1,
			ChapterID:   req.ChapterID,
			CreatedBy:   teacherID,
		}
		// Only the payload matching the type is stored
		switch req.Type {
		case models.ContentText:
			content.TextContent = req.TextContent
		case models.ContentPDF, models.ContentLink:
			content.FileURL = req.FileURL
		case models.ContentVideo:
			content.VideoURL = req.VideoURL
		}

		return s.repo.Content().Create(ctx, tx, content)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Content created successfully", "content_id", content.ID)
	return content, nil
}

func (s *teacherService) DeleteContent(ctx context.Context, id uint, userID string, role models.UserRole) error {
	content, err := s.repo.Content().GetByID(ctx, nil, id)
	if err != nil {
		return notFoundAs(err, ErrContentNotFound, "get content")
	}
	if !canManage(content.CreatedBy, userID, role) {
		return NewPermissionError(userID, id, "content", "delete", "not the owner")
	}

	if err := s.repo.Content().Delete(ctx, nil, id); err != nil {
		return notFoundAs(err, ErrContentNotFound, "delete content")
	}
	s.logger.Info("Content deleted", "content_id", id, "user_id", userID)
	return nil
}

// ===== QUIZZES =====

func (s *teacherService) QuizTree(ctx context.Context) ([]models.Class, error) {
	return s.repo.Class().ListTree(ctx, nil)
}

func (s *teacherService) CreateQuiz(ctx context.Context, req *CreateQuizRequest, teacherID string) (*models.Quiz, error) {
	s.logger.Info("Creating quiz", "teacher_id", teacherID, "chapter_id", req.ChapterID, "questions", len(req.Questions))

	if errs := s.validator.GetBusinessValidator().ValidateQuizCreate(req); len(errs) > 0 {
		return nil, errs
	}

	timeLimit := req.TimeLimit
	if timeLimit <= 0 {
		timeLimit = models.DefaultQuizTimeLimit
	}

	quiz := &models.Quiz{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		TimeLimit:   timeLimit,
		ChapterID:   req.ChapterID,
		CreatedBy:   teacherID,
		Questions:   make([]models.QuizQuestion, 0, len(req.Questions)),
	}
	for i, q := range req.Questions {
		quiz.Questions = append(quiz.Questions, models.QuizQuestion{
			Question:      strings.TrimSpace(q.Question),
			OptionA:       q.OptionA,
			OptionB:       q.OptionB,
			OptionC:       q.OptionC,
			OptionD:       q.OptionD,
			CorrectAnswer: strings.ToUpper(q.CorrectAnswer),
			OrderIndex:    i + 1,
		})
	}

	err := s.withTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.Chapter().GetByID(ctx, tx, req.ChapterID); err != nil {
			return notFoundAs(err, ErrChapterNotFound, "get chapter")
		}
		return s.repo.Quiz().Create(ctx, tx, quiz)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Quiz created successfully", "quiz_id", quiz.ID)
	return quiz, nil
}

func (s *teacherService) DeleteQuiz(ctx context.Context, id uint, userID string, role models.UserRole) error {
	quiz, err := s.repo.Quiz().GetByID(ctx, nil, id)
	if err != nil {
		return notFoundAs(err, ErrQuizNotFound, "get quiz")
	}
	if !canManage(quiz.CreatedBy, userID, role) {
		return NewPermissionError(userID, id, "quiz", "delete", "not the owner")
	}

	if err := s.repo.Quiz().Delete(ctx, nil, id); err != nil {
		return notFoundAs(err, ErrQuizNotFound, "delete quiz")
	}
	s.logger.Info("Quiz deleted", "quiz_id", id, "user_id", userID)
	return nil
}

// ===== STUDENTS =====

// StudentEngagement summarizes every enrolled student, ordered by student id
func (s *teacherService) StudentEngagement(ctx context.Context) ([]StudentEngagement, error) {
	studentIDs, err := s.repo.Enrollment().DistinctStudentIDs(ctx, nil)
	if err != nil {
		return nil, err
	}
	if len(studentIDs) == 0 {
		return []StudentEngagement{}, nil
	}

	completed, err := s.repo.Progress().CountCompletedByStudents(ctx, nil, studentIDs)
	if err != nil {
		return nil, err
	}
	stats, err := s.repo.QuizAttempt().StatsByStudents(ctx, nil, studentIDs)
	if err != nil {
		return nil, err
	}
	users, err := s.repo.User().GetByIDs(ctx, studentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve students: %w", err)
	}
	byID := make(map[string]*models.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}

	engagement := make([]StudentEngagement, 0, len(studentIDs))
	for _, id := range studentIDs {
		row := StudentEngagement{
			StudentID:         id,
			StudentName:       unknownStudentName,
			CompletedChapters: completed[id],
			QuizAttempts:      stats[id].Attempts,
			AveragePercentage: models.Round1(stats[id].AveragePercent),
		}
		if user, ok := byID[id]; ok {
			row.StudentName = user.DisplayName()
			row.StudentEmail = user.Email
		}
		engagement = append(engagement, row)
	}
	return engagement, nil
}

func (s *teacherService) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

// canManage lets owners manage their own resources; admins manage everything
func canManage(ownerID, userID string, role models.UserRole) bool {
	return role == models.RoleAdmin || ownerID == userID
}
