package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/testutil"
)

func seedSchool(t *testing.T, ts *testServices) {
	t.Helper()

	ts.env.Users.Add("admin-1", "Admin", "admin@example.com", models.RoleAdmin)
	ts.env.Users.Add("teacher-1", "Binh Pham", "binh@example.com", models.RoleTeacher)
	ts.env.Users.Add("parent-1", "Hoa Nguyen", "hoa@example.com", models.RoleParent)
	ts.env.Users.Add("student-1", "An Le", "an@example.com", models.RoleStudent)
	ts.env.Users.Add("student-2", "Chi Vo", "chi@example.com", models.RoleStudent)

	big := testutil.SeedClass(t, ts.env.DB, "Big class")
	small := testutil.SeedClass(t, ts.env.DB, "Small class")
	subject := testutil.SeedSubject(t, ts.env.DB, big.ID, "Math")
	chapters := testutil.SeedChapters(t, ts.env.DB, subject.ID, 2)
	testutil.SeedContent(t, ts.env.DB, chapters[0].ID, "Reading", 1)
	quiz := testutil.SeedQuiz(t, ts.env.DB, chapters[0].ID, "Quiz", "A", "B")

	testutil.Enroll(t, ts.env.DB, "student-1", big.ID)
	testutil.Enroll(t, ts.env.DB, "student-2", big.ID)
	testutil.Enroll(t, ts.env.DB, "student-2", small.ID)
	testutil.MarkCompleted(t, ts.env.DB, "student-1", chapters[0].ID)
	testutil.SeedAttempt(t, ts.env.DB, "student-1", quiz.ID, 1, 2, time.Now().Add(-time.Hour))
	testutil.SeedAttempt(t, ts.env.DB, "student-2", quiz.ID, 2, 2, time.Now())

	for i, title := range []string{"n1", "n2", "n3", "n4", "n5", "n6"} {
		testutil.SeedNotice(t, ts.env.DB, title, nil, time.Now().Add(time.Duration(i)*time.Minute))
	}
}

func TestDashboardService_AdminDashboard(t *testing.T) {
	ts := newTestServices(t, false)
	seedSchool(t, ts)

	stats, err := ts.manager.Dashboard().AdminDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalStudents)
	assert.Equal(t, int64(1), stats.TotalTeachers)
	assert.Equal(t, int64(1), stats.TotalParents)
	assert.Equal(t, int64(2), stats.TotalClasses)
	assert.Equal(t, int64(1), stats.TotalSubjects)
	assert.Equal(t, int64(2), stats.TotalChapters)
	assert.Equal(t, int64(1), stats.TotalQuizzes)
	require.Len(t, stats.RecentNotices, 5)
	assert.Equal(t, "n6", stats.RecentNotices[0].Title)
}

func TestDashboardService_Reports(t *testing.T) {
	ts := newTestServices(t, false)
	seedSchool(t, ts)

	reports, err := ts.manager.Dashboard().Reports(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), reports.TotalUsers)
	assert.Equal(t, int64(1), reports.TotalContents)
	assert.Equal(t, int64(2), reports.TotalQuizAttempts)
	assert.Equal(t, int64(1), reports.ActiveStudents)
	assert.Equal(t, 75.0, reports.AverageQuizPercentage)
	require.Len(t, reports.TopClasses, 2)
	assert.Equal(t, "Big class", reports.TopClasses[0].ClassName)
	assert.Equal(t, int64(2), reports.TopClasses[0].StudentCount)
}

func TestDashboardService_ReportsAreCached(t *testing.T) {
	ts := newTestServices(t, true)
	ctx := context.Background()
	seedSchool(t, ts)

	_, err := ts.manager.Dashboard().Reports(ctx)
	require.NoError(t, err)
	exists, err := ts.env.Repo.Cache().Stats.Exists(ctx, "reports")
	require.NoError(t, err)
	require.True(t, exists)

	// a new class drops the cached counters
	_, err = ts.manager.Class().CreateClass(ctx, &CreateClassRequest{Name: "Fresh"})
	require.NoError(t, err)
	exists, err = ts.env.Repo.Cache().Stats.Exists(ctx, "reports")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDashboardService_StudentHome(t *testing.T) {
	ts := newTestServices(t, false)
	seedSchool(t, ts)

	home, err := ts.manager.Dashboard().StudentHome(context.Background(), "student-1")
	require.NoError(t, err)
	require.Len(t, home.Classes, 1)
	assert.Equal(t, "Big class", home.Classes[0].Name)
	assert.Equal(t, 50.0, home.OverallProgress)
	require.Len(t, home.RecentAttempts, 1)
	assert.Equal(t, 50.0, home.RecentAttempts[0].Percentage)
	assert.Len(t, home.Notices, 6)
}

func TestDashboardService_TeacherHome(t *testing.T) {
	ts := newTestServices(t, false)
	seedSchool(t, ts)

	home, err := ts.manager.Dashboard().TeacherHome(context.Background(), "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, 1, home.TotalContents)
	assert.Equal(t, 1, home.TotalQuizzes)
	assert.Equal(t, 6, home.TotalNotices)
	assert.Len(t, home.Notices, teacherHomeRecent)
}

func TestExportService_StudentProgressWorkbook(t *testing.T) {
	ts := newTestServices(t, false)
	seedSchool(t, ts)

	data, err := ts.manager.Export().StudentProgressWorkbook(context.Background(), "student-1")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{summarySheet, subjectsSheet, attemptsSheet}, f.GetSheetList())

	summary, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Field", "Value"}, summary[0])
	assert.Equal(t, []string{"Student", "An Le"}, summary[1])
	assert.Equal(t, []string{"Class", "Big class"}, summary[2])

	subjects, err := f.GetRows(subjectsSheet)
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, []string{"Big class", "Math", "1", "2", "50"}, subjects[1])

	attempts, err := f.GetRows(attemptsSheet)
	require.NoError(t, err)
	assert.Len(t, attempts, 2)
}

func TestExportService_ReportsWorkbook(t *testing.T) {
	ts := newTestServices(t, false)
	seedSchool(t, ts)

	data, err := ts.manager.Export().ReportsWorkbook(context.Background())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(classesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Class", "Students"}, rows[0])
	assert.Equal(t, []string{"Big class", "2"}, rows[1])
}
