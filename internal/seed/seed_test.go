package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/testutil"
)

func TestRun_IsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()

	require.NoError(t, Run(ctx, db, testutil.Logger(t)))
	require.NoError(t, Run(ctx, db, testutil.Logger(t)))

	var classes []models.Class
	require.NoError(t, db.Preload("Subjects.Chapters").Find(&classes).Error)
	require.Len(t, classes, 1)
	assert.Equal(t, "Grade 10", classes[0].Name)
	require.Len(t, classes[0].Subjects, 3)

	var chapters int64
	require.NoError(t, db.Model(&models.Chapter{}).Count(&chapters).Error)
	assert.Equal(t, int64(8), chapters)
}

func TestRun_SkipsExistingCatalog(t *testing.T) {
	db := testutil.DB(t)
	testutil.SeedClass(t, db, "Grade 1")

	require.NoError(t, Run(context.Background(), db, testutil.Logger(t)))

	var count int64
	require.NoError(t, db.Model(&models.Class{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
