package validator

import "github.com/SAP-F-2025/learning-service/internal/models"

// ===== ADMIN =====

type CreateClassRequest struct {
	Name        string  `json:"name" validate:"required,not_blank,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

type UpdateClassRequest struct {
	Name        *string `json:"name" validate:"omitempty,not_blank,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

type CreateSubjectRequest struct {
	Name        string  `json:"name" validate:"required,not_blank,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	ClassID     uint    `json:"class_id" validate:"required"`
}

type UpdateSubjectRequest struct {
	Name        *string `json:"name" validate:"omitempty,not_blank,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

type CreateChapterRequest struct {
	Title       string  `json:"title" validate:"required,not_blank,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	SubjectID   uint    `json:"subject_id" validate:"required"`
	OrderIndex  int     `json:"order_index" validate:"min=0"`
}

type UpdateChapterRequest struct {
	Title       *string `json:"title" validate:"omitempty,not_blank,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	OrderIndex  *int    `json:"order_index" validate:"omitempty,min=1"`
}

type EnrollStudentRequest struct {
	StudentID string `json:"student_id" validate:"required,not_blank"`
	ClassID   uint   `json:"class_id" validate:"required"`
}

// ===== TEACHER =====

type CreateContentRequest struct {
	Title       string             `json:"title" validate:"required,not_blank,max=200"`
	Description *string            `json:"description" validate:"omitempty,max=1000"`
	Type        models.ContentType `json:"type" validate:"required,content_type"`
	TextContent *string            `json:"text_content"`
	FileURL     *string            `json:"file_url" validate:"omitempty,max=500,url"`
	VideoURL    *string            `json:"video_url" validate:"omitempty,max=500,url"`
	ChapterID   uint               `json:"chapter_id" validate:"required"`
}

type QuizQuestionRequest struct {
	Question      string `json:"question" validate:"required,not_blank"`
	OptionA       string `json:"option_a" validate:"required,max=500"`
	OptionB       string `json:"option_b" validate:"required,max=500"`
	OptionC       string `json:"option_c" validate:"required,max=500"`
	OptionD       string `json:"option_d" validate:"required,max=500"`
	CorrectAnswer string `json:"correct_answer" validate:"required,answer_letter"`
}

type CreateQuizRequest struct {
	Title       string                `json:"title" validate:"required,not_blank,max=200"`
	Description *string               `json:"description" validate:"omitempty,max=1000"`
	ChapterID   uint                  `json:"chapter_id" validate:"required"`
	TimeLimit   int                   `json:"time_limit" validate:"omitempty,min=1,max=300"`
	Questions   []QuizQuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

type CreateNoticeRequest struct {
	Title   string `json:"title" validate:"required,not_blank,max=200"`
	Content string `json:"content" validate:"required,not_blank"`
	ClassID *uint  `json:"class_id"`
}

// ===== STUDENT =====

// SubmitQuizRequest maps question id to the chosen letter; missing answers score zero
type SubmitQuizRequest struct {
	Answers map[uint]string `json:"answers" validate:"dive,omitempty,answer_letter"`
}

// ===== PARENT =====

type LinkChildRequest struct {
	ChildEmail string `json:"child_email" validate:"required,email"`
}
