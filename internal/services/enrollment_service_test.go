package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/testutil"
)

func TestEnrollmentService_DuplicateEnrollmentConflicts(t *testing.T) {
	ts := newTestServices(t, false)
	ctx := context.Background()

	ts.env.Users.Add("student-1", "An Le", "an@example.com", models.RoleStudent)
	class := testutil.SeedClass(t, ts.env.DB, "Grade 1")
	req := &EnrollStudentRequest{StudentID: "student-1", ClassID: class.ID}

	enrollment, err := ts.manager.Enrollment().Enroll(ctx, req)
	require.NoError(t, err)
	assert.NotZero(t, enrollment.ID)

	_, err = ts.manager.Enrollment().Enroll(ctx, req)
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)
	assert.ErrorIs(t, err, ErrConflict)

	var count int64
	require.NoError(t, ts.env.DB.Model(&models.StudentClass{}).Where("student_id = ? AND class_id = ?", "student-1", class.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Len(t, ts.publisher.EventsOfType(events.StudentEnrolled), 1)
}

func TestEnrollmentService_EnrollRequiresStudentAndClass(t *testing.T) {
	ts := newTestServices(t, false)
	ctx := context.Background()

	ts.env.Users.Add("teacher-1", "Binh Pham", "binh@example.com", models.RoleTeacher)
	ts.env.Users.Add("student-1", "An Le", "an@example.com", models.RoleStudent)
	class := testutil.SeedClass(t, ts.env.DB, "Grade 2")

	_, err := ts.manager.Enrollment().Enroll(ctx, &EnrollStudentRequest{StudentID: "missing", ClassID: class.ID})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = ts.manager.Enrollment().Enroll(ctx, &EnrollStudentRequest{StudentID: "teacher-1", ClassID: class.ID})
	var ruleErr *BusinessRuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, "student_role_required", ruleErr.Rule)

	_, err = ts.manager.Enrollment().Enroll(ctx, &EnrollStudentRequest{StudentID: "student-1", ClassID: 404})
	assert.ErrorIs(t, err, ErrClassNotFound)

	_, err = ts.manager.Enrollment().Enroll(ctx, &EnrollStudentRequest{ClassID: class.ID})
	var validationErrs ValidationErrors
	assert.ErrorAs(t, err, &validationErrs)
}

func TestEnrollmentService_ListAndUnenroll(t *testing.T) {
	ts := newTestServices(t, false)
	ctx := context.Background()

	ts.env.Users.Add("student-1", "An Le", "an@example.com", models.RoleStudent)
	classA := testutil.SeedClass(t, ts.env.DB, "A")
	classB := testutil.SeedClass(t, ts.env.DB, "B")
	first := testutil.Enroll(t, ts.env.DB, "student-1", classA.ID)
	testutil.Enroll(t, ts.env.DB, "student-2", classB.ID)

	page, err := ts.manager.Enrollment().List(ctx, &classA.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, models.DefaultPageSize, page.Size)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "An Le", page.Items[0].StudentName)

	all, err := ts.manager.Enrollment().List(ctx, nil, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)

	require.NoError(t, ts.manager.Enrollment().Unenroll(ctx, first.ID))
	assert.ErrorIs(t, ts.manager.Enrollment().Unenroll(ctx, first.ID), ErrEnrollmentNotFound)
}
