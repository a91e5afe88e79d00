package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/testutil"
)

func TestChapterRepository_ListBySubjectOrdering(t *testing.T) {
	env := testutil.NewEnv(t, false)
	ctx := context.Background()

	class := testutil.SeedClass(t, env.DB, "Grade 1")
	subject := testutil.SeedSubject(t, env.DB, class.ID, "Math")
	for _, ch := range []models.Chapter{
		{Title: "Beta", OrderIndex: 2, SubjectID: subject.ID},
		{Title: "Zeta", OrderIndex: 1, SubjectID: subject.ID},
		{Title: "Alpha", OrderIndex: 2, SubjectID: subject.ID},
	} {
		require.NoError(t, env.DB.Create(&ch).Error)
	}

	chapters, err := env.Repo.Chapter().ListBySubject(ctx, nil, subject.ID)
	require.NoError(t, err)
	require.Len(t, chapters, 3)
	assert.Equal(t, []string{"Zeta", "Alpha", "Beta"}, []string{chapters[0].Title, chapters[1].Title, chapters[2].Title})
}

func TestSubjectRepository_ListByClassIsCachedAndInvalidated(t *testing.T) {
	env := testutil.NewEnv(t, true)
	ctx := context.Background()

	class := testutil.SeedClass(t, env.DB, "Grade 2")
	testutil.SeedSubject(t, env.DB, class.ID, "Science")

	subjects, err := env.Repo.Subject().ListByClass(ctx, nil, class.ID)
	require.NoError(t, err)
	require.Len(t, subjects, 1)

	exists, err := env.Repo.Cache().Catalog.Exists(ctx, cache.ClassSubjectsKey(class.ID))
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, env.Repo.Subject().Create(ctx, nil, &models.Subject{Name: "Art", ClassID: class.ID}))

	subjects, err = env.Repo.Subject().ListByClass(ctx, nil, class.ID)
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, "Art", subjects[0].Name)
}

func TestStatsCache_InvalidatedByNoticeContentAndQuizWrites(t *testing.T) {
	env := testutil.NewEnv(t, true)
	ctx := context.Background()
	stats := env.Repo.Cache().Stats

	class := testutil.SeedClass(t, env.DB, "Grade 3")
	subject := testutil.SeedSubject(t, env.DB, class.ID, "History")
	chapter := testutil.SeedChapters(t, env.DB, subject.ID, 1)[0]

	text := "intro"
	notice := &models.Notice{Title: "Trip", Content: "Museum on Friday", ClassID: &class.ID, CreatedBy: "admin-1"}
	content := &models.Content{Title: "Intro", Type: models.ContentText, TextContent: &text, ChapterID: chapter.ID, CreatedBy: "teacher-1"}
	quiz := &models.Quiz{Title: "Check", TimeLimit: 10, ChapterID: chapter.ID, CreatedBy: "teacher-1"}

	writes := []struct {
		name  string
		write func() error
	}{
		{"create notice", func() error { return env.Repo.Notice().Create(ctx, nil, notice) }},
		{"create content", func() error { return env.Repo.Content().Create(ctx, nil, content) }},
		{"create quiz", func() error { return env.Repo.Quiz().Create(ctx, nil, quiz) }},
		{"delete notice", func() error { return env.Repo.Notice().Delete(ctx, nil, notice.ID) }},
		{"delete content", func() error { return env.Repo.Content().Delete(ctx, nil, content.ID) }},
		{"delete quiz", func() error { return env.Repo.Quiz().Delete(ctx, nil, quiz.ID) }},
	}

	for _, w := range writes {
		require.NoError(t, stats.Set(ctx, "dashboard", 1, time.Minute), w.name)
		require.NoError(t, stats.Set(ctx, "reports", 1, time.Minute), w.name)

		require.NoError(t, w.write(), w.name)

		exists, err := stats.Exists(ctx, "dashboard")
		require.NoError(t, err)
		assert.False(t, exists, "%s left the dashboard cached", w.name)
		exists, err = stats.Exists(ctx, "reports")
		require.NoError(t, err)
		assert.False(t, exists, "%s left the reports cached", w.name)
	}
}

func TestProgressRepository_CreateIfAbsent(t *testing.T) {
	env := testutil.NewEnv(t, false)
	ctx := context.Background()

	class := testutil.SeedClass(t, env.DB, "Grade 3")
	subject := testutil.SeedSubject(t, env.DB, class.ID, "History")
	chapter := testutil.SeedChapters(t, env.DB, subject.ID, 1)[0]

	now := time.Now()
	first := &models.StudentProgress{StudentID: "s1", ChapterID: chapter.ID, LastAccessedAt: now}
	created, err := env.Repo.Progress().CreateIfAbsent(ctx, nil, first)
	require.NoError(t, err)
	assert.True(t, created)

	second := &models.StudentProgress{StudentID: "s1", ChapterID: chapter.ID, IsCompleted: true, LastAccessedAt: now}
	created, err = env.Repo.Progress().CreateIfAbsent(ctx, nil, second)
	require.NoError(t, err)
	assert.False(t, created)

	var count int64
	require.NoError(t, env.DB.Model(&models.StudentProgress{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	stored, err := env.Repo.Progress().Find(ctx, nil, "s1", chapter.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsCompleted)
}

func TestProgressRepository_CountsOnlyEnrolledChapters(t *testing.T) {
	env := testutil.NewEnv(t, false)
	ctx := context.Background()

	enrolled := testutil.SeedClass(t, env.DB, "Enrolled")
	other := testutil.SeedClass(t, env.DB, "Other")
	math := testutil.SeedSubject(t, env.DB, enrolled.ID, "Math")
	art := testutil.SeedSubject(t, env.DB, other.ID, "Art")
	mathChapters := testutil.SeedChapters(t, env.DB, math.ID, 4)
	artChapters := testutil.SeedChapters(t, env.DB, art.ID, 2)
	testutil.Enroll(t, env.DB, "s1", enrolled.ID)

	testutil.MarkCompleted(t, env.DB, "s1", mathChapters[0].ID)
	testutil.MarkCompleted(t, env.DB, "s1", mathChapters[1].ID)
	testutil.MarkCompleted(t, env.DB, "s1", artChapters[0].ID)

	total, err := env.Repo.Chapter().CountForStudent(ctx, nil, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)

	completed, err := env.Repo.Progress().CountCompletedForStudent(ctx, nil, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), completed)

	bySubject, err := env.Repo.Progress().CompletedBySubject(ctx, nil, "s1")
	require.NoError(t, err)
	assert.Equal(t, map[uint]int64{math.ID: 2}, bySubject)

	inArt, err := env.Repo.Progress().CountCompletedInSubject(ctx, nil, "s1", art.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), inArt)

	ids, err := env.Repo.Progress().CompletedChapterIDs(ctx, nil, "s1", []uint{mathChapters[0].ID, mathChapters[2].ID})
	require.NoError(t, err)
	assert.Equal(t, []uint{mathChapters[0].ID}, ids)
}

func TestNoticeRepository_ListForClasses(t *testing.T) {
	env := testutil.NewEnv(t, false)
	ctx := context.Background()

	mine := testutil.SeedClass(t, env.DB, "Mine")
	other := testutil.SeedClass(t, env.DB, "Other")
	base := time.Now().Add(-time.Hour)
	testutil.SeedNotice(t, env.DB, "global", nil, base)
	testutil.SeedNotice(t, env.DB, "mine", &mine.ID, base.Add(time.Minute))
	testutil.SeedNotice(t, env.DB, "other", &other.ID, base.Add(2*time.Minute))

	notices, err := env.Repo.Notice().ListForClasses(ctx, nil, []uint{mine.ID})
	require.NoError(t, err)
	require.Len(t, notices, 2)
	assert.Equal(t, "mine", notices[0].Title)
	assert.Equal(t, "global", notices[1].Title)

	notices, err = env.Repo.Notice().ListForClasses(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, notices, 1)
	assert.True(t, notices[0].IsGlobal())
}

func TestClassRepository_DeleteCascades(t *testing.T) {
	env := testutil.NewEnv(t, false)
	ctx := context.Background()

	class := testutil.SeedClass(t, env.DB, "Doomed")
	subject := testutil.SeedSubject(t, env.DB, class.ID, "Math")
	chapter := testutil.SeedChapters(t, env.DB, subject.ID, 1)[0]
	testutil.SeedQuiz(t, env.DB, chapter.ID, "Quiz", "A", "B")
	testutil.Enroll(t, env.DB, "s1", class.ID)
	notice := testutil.SeedNotice(t, env.DB, "class notice", &class.ID, time.Now())

	require.NoError(t, env.Repo.Class().Delete(ctx, nil, class.ID))

	for _, model := range []interface{}{&models.Subject{}, &models.Chapter{}, &models.Quiz{}, &models.QuizQuestion{}, &models.StudentClass{}} {
		var count int64
		require.NoError(t, env.DB.Model(model).Count(&count).Error)
		assert.Zero(t, count, "%T should cascade", model)
	}

	kept, err := env.Repo.Notice().GetByID(ctx, nil, notice.ID)
	require.NoError(t, err)
	assert.True(t, kept.IsGlobal())

	err = env.Repo.Class().Delete(ctx, nil, class.ID)
	assert.True(t, repositories.IsNotFoundError(err))
}

func TestClassRepository_SummariesAndNames(t *testing.T) {
	env := testutil.NewEnv(t, false)
	ctx := context.Background()

	a := testutil.SeedClass(t, env.DB, "Alpha")
	testutil.SeedClass(t, env.DB, "Beta")
	testutil.SeedSubject(t, env.DB, a.ID, "Math")
	testutil.SeedSubject(t, env.DB, a.ID, "Art")
	testutil.Enroll(t, env.DB, "s1", a.ID)

	summaries, err := env.Repo.Class().ListSummaries(ctx, nil)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "Alpha", summaries[0].Name)
	assert.Equal(t, int64(2), summaries[0].SubjectCount)
	assert.Equal(t, int64(1), summaries[0].StudentCount)
	assert.Zero(t, summaries[1].SubjectCount)

	exists, err := env.Repo.Class().ExistsByName(ctx, nil, "alpha", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = env.Repo.Class().ExistsByName(ctx, nil, "ALPHA", a.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	err = env.Repo.Class().Create(ctx, nil, &models.Class{Name: "Alpha"})
	assert.True(t, repositories.IsDuplicateKeyError(err))
}

func TestQuizAttemptRepository_Aggregates(t *testing.T) {
	env := testutil.NewEnv(t, false)
	ctx := context.Background()

	class := testutil.SeedClass(t, env.DB, "Grade 4")
	subject := testutil.SeedSubject(t, env.DB, class.ID, "Math")
	chapter := testutil.SeedChapters(t, env.DB, subject.ID, 1)[0]
	quiz := testutil.SeedQuiz(t, env.DB, chapter.ID, "Quiz", "A", "B", "C", "D")

	base := time.Now().Add(-time.Hour)
	testutil.SeedAttempt(t, env.DB, "s1", quiz.ID, 2, 4, base)
	testutil.SeedAttempt(t, env.DB, "s1", quiz.ID, 4, 4, base.Add(time.Minute))
	testutil.SeedAttempt(t, env.DB, "s2", quiz.ID, 1, 4, base.Add(2*time.Minute))

	attempts, err := env.Repo.QuizAttempt().ListByStudent(ctx, nil, "s1", 1)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, 4, attempts[0].Score)
	require.NotNil(t, attempts[0].Quiz)

	summaries, err := env.Repo.QuizAttempt().RecentSummaries(ctx, nil, "s1", 10)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "Math", summaries[0].SubjectName)
	assert.Equal(t, "Quiz", summaries[0].QuizTitle)

	performance, err := env.Repo.QuizAttempt().PerformanceBySubject(ctx, nil, "s1")
	require.NoError(t, err)
	require.Len(t, performance, 1)
	assert.Equal(t, int64(2), performance[0].Attempts)
	assert.InDelta(t, 75.0, performance[0].AveragePercent, 0.01)
	assert.InDelta(t, 100.0, performance[0].BestPercent, 0.01)

	stats, err := env.Repo.QuizAttempt().StatsByStudents(ctx, nil, []string{"s1", "s2", "s3"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats["s1"].Attempts)
	assert.InDelta(t, 25.0, stats["s2"].AveragePercent, 0.01)
	_, ok := stats["s3"]
	assert.False(t, ok)

	avg, err := env.Repo.QuizAttempt().AveragePercent(ctx, nil)
	require.NoError(t, err)
	assert.InDelta(t, 58.33, avg, 0.01)
}

func TestWithTransaction_RollsBack(t *testing.T) {
	env := testutil.NewEnv(t, false)
	ctx := context.Background()

	err := env.Repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Class().Create(ctx, nil, &models.Class{Name: "Temp"}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	count, err := env.Repo.Class().Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}
