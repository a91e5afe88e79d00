package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

func SeedClass(tb testing.TB, db *gorm.DB, name string) *models.Class {
	tb.Helper()
	class := &models.Class{Name: name}
	if err := db.WithContext(context.Background()).Create(class).Error; err != nil {
		tb.Fatalf("seed class: %v", err)
	}
	return class
}

func SeedSubject(tb testing.TB, db *gorm.DB, classID uint, name string) *models.Subject {
	tb.Helper()
	subject := &models.Subject{Name: name, ClassID: classID}
	if err := db.WithContext(context.Background()).Create(subject).Error; err != nil {
		tb.Fatalf("seed subject: %v", err)
	}
	return subject
}

// SeedChapters creates n chapters titled "Chapter 1".."Chapter n" with matching order indexes
func SeedChapters(tb testing.TB, db *gorm.DB, subjectID uint, n int) []models.Chapter {
	tb.Helper()
	chapters := make([]models.Chapter, 0, n)
	for i := 1; i <= n; i++ {
		chapter := models.Chapter{
			Title:      fmt.Sprintf("Chapter %d", i),
			OrderIndex: i,
			SubjectID:  subjectID,
		}
		if err := db.WithContext(context.Background()).Create(&chapter).Error; err != nil {
			tb.Fatalf("seed chapter: %v", err)
		}
		chapters = append(chapters, chapter)
	}
	return chapters
}

func SeedContent(tb testing.TB, db *gorm.DB, chapterID uint, title string, orderIndex int) *models.Content {
	tb.Helper()
	text := "body of " + title
	content := &models.Content{
		Title:       title,
		Type:        models.ContentText,
		TextContent: &text,
		OrderIndex:  orderIndex,
		ChapterID:   chapterID,
		CreatedBy:   "teacher-1",
	}
	if err := db.WithContext(context.Background()).Create(content).Error; err != nil {
		tb.Fatalf("seed content: %v", err)
	}
	return content
}

// SeedQuiz creates a quiz whose questions have the given correct answers, in order
func SeedQuiz(tb testing.TB, db *gorm.DB, chapterID uint, title string, answers ...string) *models.Quiz {
	tb.Helper()
	quiz := &models.Quiz{
		Title:     title,
		TimeLimit: models.DefaultQuizTimeLimit,
		ChapterID: chapterID,
		CreatedBy: "teacher-1",
	}
	for i, answer := range answers {
		quiz.Questions = append(quiz.Questions, models.QuizQuestion{
			Question:      fmt.Sprintf("Question %d", i+1),
			OptionA:       "a",
			OptionB:       "b",
			OptionC:       "c",
			OptionD:       "d",
			CorrectAnswer: answer,
			OrderIndex:    i + 1,
		})
	}
	if err := db.WithContext(context.Background()).Create(quiz).Error; err != nil {
		tb.Fatalf("seed quiz: %v", err)
	}
	return quiz
}

func SeedAttempt(tb testing.TB, db *gorm.DB, studentID string, quizID uint, score, total int, at time.Time) *models.QuizAttempt {
	tb.Helper()
	attempt := &models.QuizAttempt{
		StudentID:      studentID,
		QuizID:         quizID,
		Score:          score,
		TotalQuestions: total,
		AttemptedAt:    at,
	}
	if err := db.WithContext(context.Background()).Create(attempt).Error; err != nil {
		tb.Fatalf("seed attempt: %v", err)
	}
	return attempt
}

func Enroll(tb testing.TB, db *gorm.DB, studentID string, classID uint) *models.StudentClass {
	tb.Helper()
	enrollment := &models.StudentClass{StudentID: studentID, ClassID: classID, EnrolledAt: time.Now()}
	if err := db.WithContext(context.Background()).Create(enrollment).Error; err != nil {
		tb.Fatalf("enroll: %v", err)
	}
	return enrollment
}

func LinkParent(tb testing.TB, db *gorm.DB, parentID, childID string) *models.ParentChild {
	tb.Helper()
	link := &models.ParentChild{ParentID: parentID, ChildID: childID, LinkedAt: time.Now()}
	if err := db.WithContext(context.Background()).Create(link).Error; err != nil {
		tb.Fatalf("link parent: %v", err)
	}
	return link
}

func SeedNotice(tb testing.TB, db *gorm.DB, title string, classID *uint, at time.Time) *models.Notice {
	tb.Helper()
	notice := &models.Notice{Title: title, Content: title + " body", ClassID: classID, CreatedBy: "teacher-1", CreatedAt: at}
	if err := db.WithContext(context.Background()).Create(notice).Error; err != nil {
		tb.Fatalf("seed notice: %v", err)
	}
	return notice
}

func MarkCompleted(tb testing.TB, db *gorm.DB, studentID string, chapterID uint) {
	tb.Helper()
	now := time.Now()
	progress := &models.StudentProgress{
		StudentID:      studentID,
		ChapterID:      chapterID,
		IsCompleted:    true,
		CompletedAt:    &now,
		LastAccessedAt: now,
	}
	if err := db.WithContext(context.Background()).Create(progress).Error; err != nil {
		tb.Fatalf("mark completed: %v", err)
	}
}
