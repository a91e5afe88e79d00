package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

func strPtr(s string) *string { return &s }

func validQuestion() QuizQuestionRequest {
	return QuizQuestionRequest{
		Question:      "2 + 2?",
		OptionA:       "3",
		OptionB:       "4",
		OptionC:       "5",
		OptionD:       "22",
		CorrectAnswer: "B",
	}
}

func TestValidateClassRequest(t *testing.T) {
	v := New()

	tests := []struct {
		name      string
		req       CreateClassRequest
		wantField string
		wantRule  string
	}{
		{name: "valid", req: CreateClassRequest{Name: "Grade 5"}},
		{name: "missing name", req: CreateClassRequest{}, wantField: "Name", wantRule: "required"},
		{name: "blank name", req: CreateClassRequest{Name: "   "}, wantField: "Name", wantRule: "not_blank"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.wantField, verrs[0].Field)
			assert.Equal(t, tt.wantRule, verrs[0].Rule)
		})
	}
}

func TestValidateQuizCreate(t *testing.T) {
	bv := New().GetBusinessValidator()

	t.Run("valid", func(t *testing.T) {
		req := &CreateQuizRequest{Title: "Arithmetic", ChapterID: 1, Questions: []QuizQuestionRequest{validQuestion()}}
		assert.Empty(t, bv.ValidateQuizCreate(req))
	})

	t.Run("no questions", func(t *testing.T) {
		req := &CreateQuizRequest{Title: "Empty", ChapterID: 1}
		errs := bv.ValidateQuizCreate(req)
		require.NotEmpty(t, errs)
		assert.Equal(t, "Questions", errs[0].Field)
	})

	t.Run("bad answer letter", func(t *testing.T) {
		q := validQuestion()
		q.CorrectAnswer = "E"
		req := &CreateQuizRequest{Title: "Bad", ChapterID: 1, Questions: []QuizQuestionRequest{q}}
		errs := bv.ValidateQuizCreate(req)
		require.Len(t, errs, 1)
		assert.Equal(t, "answer_letter", errs[0].Rule)
		assert.Equal(t, "Questions[0].CorrectAnswer", errs[0].Field)
	})

	t.Run("lowercase letter accepted", func(t *testing.T) {
		q := validQuestion()
		q.CorrectAnswer = "c"
		req := &CreateQuizRequest{Title: "Lower", ChapterID: 1, Questions: []QuizQuestionRequest{q}}
		assert.Empty(t, bv.ValidateQuizCreate(req))
	})

	t.Run("duplicate question", func(t *testing.T) {
		req := &CreateQuizRequest{Title: "Dup", ChapterID: 1, Questions: []QuizQuestionRequest{validQuestion(), validQuestion()}}
		errs := bv.ValidateQuizCreate(req)
		require.Len(t, errs, 1)
		assert.Equal(t, "unique_question", errs[0].Rule)
	})
}

func TestValidateContentCreate(t *testing.T) {
	bv := New().GetBusinessValidator()

	tests := []struct {
		name     string
		req      CreateContentRequest
		wantRule string
	}{
		{
			name: "text with body",
			req:  CreateContentRequest{Title: "Intro", Type: models.ContentText, TextContent: strPtr("hello"), ChapterID: 1},
		},
		{
			name:     "text without body",
			req:      CreateContentRequest{Title: "Intro", Type: models.ContentText, ChapterID: 1},
			wantRule: "content_payload",
		},
		{
			name: "video with url",
			req:  CreateContentRequest{Title: "Clip", Type: models.ContentVideo, VideoURL: strPtr("https://videos.example.com/1"), ChapterID: 1},
		},
		{
			name:     "pdf without file",
			req:      CreateContentRequest{Title: "Sheet", Type: models.ContentPDF, ChapterID: 1},
			wantRule: "content_payload",
		},
		{
			name:     "unknown type",
			req:      CreateContentRequest{Title: "X", Type: models.ContentType(7), ChapterID: 1},
			wantRule: "content_type",
		},
		{
			name:     "invalid url",
			req:      CreateContentRequest{Title: "Link", Type: models.ContentLink, FileURL: strPtr("not a url"), ChapterID: 1},
			wantRule: "url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := bv.ValidateContentCreate(&tt.req)
			if tt.wantRule == "" {
				assert.Empty(t, errs)
				return
			}
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.wantRule, errs[0].Rule)
		})
	}
}

func TestValidateSubmitQuiz(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&SubmitQuizRequest{Answers: map[uint]string{1: "A", 2: ""}}))
	assert.Error(t, v.Validate(&SubmitQuizRequest{Answers: map[uint]string{1: "Z"}}))
}

func TestValidateLinkChild(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&LinkChildRequest{ChildEmail: "kid@example.com"}))
	assert.Error(t, v.Validate(&LinkChildRequest{ChildEmail: "nope"}))
}
