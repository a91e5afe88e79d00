package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

type quizService struct {
	repo      repositories.Repository
	db        *gorm.DB
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewQuizService(repo repositories.Repository, db *gorm.DB, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) QuizService {
	return &quizService{
		repo:      repo,
		db:        db,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		now:       time.Now,
	}
}

// ListForStudent lists quizzes of the student's classes with their attempt history
func (s *quizService) ListForStudent(ctx context.Context, studentID string) ([]StudentQuizSummary, error) {
	quizzes, err := s.repo.Quiz().ListForStudent(ctx, nil, studentID)
	if err != nil {
		return nil, err
	}
	attempts, err := s.repo.QuizAttempt().ListByStudent(ctx, nil, studentID, 0)
	if err != nil {
		return nil, err
	}

	byQuiz := make(map[uint][]models.QuizAttempt)
	for _, attempt := range attempts {
		byQuiz[attempt.QuizID] = append(byQuiz[attempt.QuizID], attempt)
	}

	summaries := make([]StudentQuizSummary, 0, len(quizzes))
	for _, quiz := range quizzes {
		summary := StudentQuizSummary{Quiz: quiz}
		history := byQuiz[quiz.ID]
		summary.AttemptCount = len(history)
		for i, attempt := range history {
			// history is newest first
			if i == 0 {
				at := attempt.AttemptedAt
				summary.LastAttemptAt = &at
			}
			percentage := attempt.Percentage()
			if summary.BestPercentage == nil || percentage > *summary.BestPercentage {
				summary.BestPercentage = &percentage
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *quizService) GetForStudent(ctx context.Context, quizID uint) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetWithQuestions(ctx, nil, quizID)
	if err != nil {
		return nil, notFoundAs(err, ErrQuizNotFound, "get quiz")
	}
	for i := range quiz.Questions {
		quiz.Questions[i].CorrectAnswer = ""
	}
	return quiz, nil
}

// Submit grades the answers and appends a new attempt. Unanswered questions count as wrong.
func (s *quizService) Submit(ctx context.Context, quizID uint, studentID string, req *SubmitQuizRequest) (*QuizResult, error) {
	s.logger.Info("Submitting quiz", "quiz_id", quizID, "student_id", studentID, "answers", len(req.Answers))

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	quiz, err := s.repo.Quiz().GetWithQuestions(ctx, nil, quizID)
	if err != nil {
		return nil, notFoundAs(err, ErrQuizNotFound, "get quiz")
	}

	score, results, answers := grade(quiz.Questions, req.Answers)
	attempt := &models.QuizAttempt{
		StudentID:      studentID,
		QuizID:         quiz.ID,
		Score:          score,
		TotalQuestions: len(quiz.Questions),
		Answers:        datatypes.NewJSONType(answers),
		AttemptedAt:    s.now(),
	}
	if err := s.repo.QuizAttempt().Create(ctx, nil, attempt); err != nil {
		return nil, err
	}
	attempt.Quiz = &models.Quiz{ID: quiz.ID, Title: quiz.Title, ChapterID: quiz.ChapterID, TimeLimit: quiz.TimeLimit}

	cache.InvalidateStats(ctx, s.repo.Cache())
	publishEvent(ctx, s.publisher, s.logger, events.QuizSubmitted, events.QuizSubmittedData{
		AttemptID:      attempt.ID,
		StudentID:      studentID,
		QuizID:         quiz.ID,
		Score:          attempt.Score,
		TotalQuestions: attempt.TotalQuestions,
		Percentage:     attempt.Percentage(),
	})

	s.logger.Info("Quiz graded", "attempt_id", attempt.ID, "score", attempt.Score, "total", attempt.TotalQuestions)
	return &QuizResult{
		Attempt: NewQuizAttemptResponse(attempt),
		Results: results,
	}, nil
}

// grade compares letters case-insensitively and keeps only answers to the quiz's own questions
func grade(questions []models.QuizQuestion, submitted map[uint]string) (int, []QuestionResult, map[uint]string) {
	score := 0
	results := make([]QuestionResult, 0, len(questions))
	answers := make(map[uint]string, len(questions))

	for _, q := range questions {
		selected := strings.ToUpper(strings.TrimSpace(submitted[q.ID]))
		correct := strings.ToUpper(q.CorrectAnswer)
		isCorrect := selected != "" && selected == correct
		if isCorrect {
			score++
		}
		if selected != "" {
			answers[q.ID] = selected
		}
		results = append(results, QuestionResult{
			QuestionID:    q.ID,
			Selected:      selected,
			CorrectAnswer: correct,
			IsCorrect:     isCorrect,
		})
	}
	return score, results, answers
}
