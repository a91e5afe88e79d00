package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/testutil"
)

func TestClassService_ClassLifecycle(t *testing.T) {
	ts := newTestServices(t, false)
	ctx := context.Background()
	classes := ts.manager.Class()

	class, err := classes.CreateClass(ctx, &CreateClassRequest{Name: "  Grade 1  ", Description: strPtr("first year")})
	require.NoError(t, err)
	assert.Equal(t, "Grade 1", class.Name)

	_, err = classes.CreateClass(ctx, &CreateClassRequest{Name: "grade 1"})
	assert.ErrorIs(t, err, ErrClassNameTaken)

	other, err := classes.CreateClass(ctx, &CreateClassRequest{Name: "Grade 2"})
	require.NoError(t, err)

	_, err = classes.UpdateClass(ctx, other.ID, &UpdateClassRequest{Name: strPtr("Grade 1")})
	assert.ErrorIs(t, err, ErrConflict)

	updated, err := classes.UpdateClass(ctx, other.ID, &UpdateClassRequest{Description: strPtr("second year")})
	require.NoError(t, err)
	assert.Equal(t, "Grade 2", updated.Name)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "second year", *updated.Description)

	_, err = classes.UpdateClass(ctx, 404, &UpdateClassRequest{Name: strPtr("Nope")})
	assert.ErrorIs(t, err, ErrClassNotFound)

	summaries, err := classes.ListClasses(ctx)
	require.NoError(t, err)
	assert.Len(t, summaries, 2)

	require.NoError(t, classes.DeleteClass(ctx, class.ID))
	assert.ErrorIs(t, classes.DeleteClass(ctx, class.ID), ErrClassNotFound)

	_, err = classes.GetClass(ctx, class.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClassService_CreateClassValidation(t *testing.T) {
	ts := newTestServices(t, false)

	_, err := ts.manager.Class().CreateClass(context.Background(), &CreateClassRequest{Name: "   "})
	var validationErrs ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
	assert.Equal(t, "Name", validationErrs[0].Field)
}

func TestClassService_SubjectsAndChapters(t *testing.T) {
	ts := newTestServices(t, false)
	ctx := context.Background()
	classes := ts.manager.Class()

	class := testutil.SeedClass(t, ts.env.DB, "Grade 3")

	_, err := classes.CreateSubject(ctx, &CreateSubjectRequest{Name: "Orphan", ClassID: 404})
	assert.ErrorIs(t, err, ErrClassNotFound)

	subject, err := classes.CreateSubject(ctx, &CreateSubjectRequest{Name: "Math", ClassID: class.ID})
	require.NoError(t, err)

	renamed, err := classes.UpdateSubject(ctx, subject.ID, &UpdateSubjectRequest{Name: strPtr("Mathematics")})
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", renamed.Name)

	subjects, err := classes.ListSubjects(ctx, class.ID)
	require.NoError(t, err)
	require.Len(t, subjects, 1)

	_, err = classes.ListSubjects(ctx, 404)
	assert.ErrorIs(t, err, ErrClassNotFound)

	_, err = classes.CreateChapter(ctx, &CreateChapterRequest{Title: "Lost", SubjectID: 404})
	assert.ErrorIs(t, err, ErrSubjectNotFound)

	chapter, err := classes.CreateChapter(ctx, &CreateChapterRequest{Title: "Numbers", SubjectID: subject.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, chapter.OrderIndex)

	moved, err := classes.UpdateChapter(ctx, chapter.ID, &UpdateChapterRequest{OrderIndex: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, moved.OrderIndex)
	assert.Equal(t, "Numbers", moved.Title)

	require.NoError(t, classes.DeleteSubject(ctx, subject.ID))

	var count int64
	require.NoError(t, ts.env.DB.Model(&models.Chapter{}).Where("subject_id = ?", subject.ID).Count(&count).Error)
	assert.Zero(t, count, "chapters cascade with their subject")

	assert.ErrorIs(t, classes.DeleteChapter(ctx, chapter.ID), ErrChapterNotFound)
}

func intPtr(i int) *int { return &i }
