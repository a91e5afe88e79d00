package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuizAttemptPercentage(t *testing.T) {
	tests := []struct {
		name     string
		attempt  QuizAttempt
		expected float64
	}{
		{name: "seven of ten", attempt: QuizAttempt{Score: 7, TotalQuestions: 10}, expected: 70.0},
		{name: "perfect", attempt: QuizAttempt{Score: 4, TotalQuestions: 4}, expected: 100.0},
		{name: "no questions", attempt: QuizAttempt{Score: 0, TotalQuestions: 0}, expected: 0},
		{name: "rounded to one decimal", attempt: QuizAttempt{Score: 1, TotalQuestions: 3}, expected: 33.3},
		{name: "two thirds", attempt: QuizAttempt{Score: 2, TotalQuestions: 3}, expected: 66.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.attempt.Percentage())
		})
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 75.0, Percent(3, 4))
	assert.Equal(t, 0.0, Percent(5, 0))
	assert.Equal(t, 0.0, Percent(0, -1))
	assert.Equal(t, 12.5, Percent(1, 8))
}

func TestContentType(t *testing.T) {
	assert.True(t, ContentVideo.IsValid())
	assert.False(t, ContentType(9).IsValid())
	assert.Equal(t, "pdf", ContentPDF.String())

	ct, err := ParseContentType(" Link ")
	require.NoError(t, err)
	assert.Equal(t, ContentLink, ct)

	_, err = ParseContentType("audio")
	assert.Error(t, err)
}

func TestUserRole(t *testing.T) {
	assert.True(t, RoleParent.IsValid())
	assert.False(t, UserRole("proctor").IsValid())

	u := &User{Email: "kid@example.com"}
	assert.Equal(t, "kid@example.com", u.DisplayName())
	u.FullName = "Kid"
	assert.Equal(t, "Kid", u.DisplayName())
}

func TestNormalizePage(t *testing.T) {
	page, size := NormalizePage(0, 500)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, size)

	page, size = NormalizePage(3, 25)
	assert.Equal(t, 3, page)
	assert.Equal(t, 25, size)
}
