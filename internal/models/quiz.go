package models

import (
	"time"

	"gorm.io/datatypes"
)

const DefaultQuizTimeLimit = 30 // minutes

// AnswerLetters are the only values a question's correct answer may take
var AnswerLetters = []string{"A", "B", "C", "D"}

type Quiz struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null;size:200"`
	Description *string   `json:"description" gorm:"size:1000"`
	TimeLimit   int       `json:"time_limit" gorm:"not null;default:30"`
	ChapterID   uint      `json:"chapter_id" gorm:"not null;index"`
	CreatedBy   string    `json:"created_by" gorm:"index;size:255"`
	CreatedAt   time.Time `json:"created_at"`

	// Relations
	Chapter   *Chapter       `json:"chapter,omitempty" gorm:"foreignKey:ChapterID"`
	Questions []QuizQuestion `json:"questions,omitempty" gorm:"foreignKey:QuizID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Attempts  []QuizAttempt  `json:"-" gorm:"foreignKey:QuizID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

type QuizQuestion struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	QuizID        uint   `json:"quiz_id" gorm:"not null;index"`
	Question      string `json:"question" gorm:"type:text;not null"`
	OptionA       string `json:"option_a" gorm:"not null;size:500"`
	OptionB       string `json:"option_b" gorm:"not null;size:500"`
	OptionC       string `json:"option_c" gorm:"not null;size:500"`
	OptionD       string `json:"option_d" gorm:"not null;size:500"`
	CorrectAnswer string `json:"correct_answer,omitempty" gorm:"not null;size:1"`
	OrderIndex    int    `json:"order_index" gorm:"not null;default:1"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// QuizAttempt is append-only: rows are created on submission and never updated.
type QuizAttempt struct {
	ID             uint                                 `json:"id" gorm:"primaryKey"`
	StudentID      string                               `json:"student_id" gorm:"not null;index;size:255"`
	QuizID         uint                                 `json:"quiz_id" gorm:"not null;index"`
	Score          int                                  `json:"score" gorm:"not null"`
	TotalQuestions int                                  `json:"total_questions" gorm:"not null"`
	Answers        datatypes.JSONType[map[uint]string] `json:"answers"`
	AttemptedAt    time.Time                            `json:"attempted_at" gorm:"not null;index"`

	// Relations
	Quiz *Quiz `json:"quiz,omitempty" gorm:"foreignKey:QuizID"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// Percentage is score/total as a percentage rounded to one decimal, 0 when the quiz had no questions
func (a QuizAttempt) Percentage() float64 {
	return Percent(int64(a.Score), int64(a.TotalQuestions))
}
