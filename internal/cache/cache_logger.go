package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern invalidates a pattern and logs instead of failing
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete deletes keys and logs instead of failing
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// BatchInvalidate invalidates multiple patterns and returns the last error seen
func BatchInvalidate(ctx context.Context, helper *CacheHelper, patterns []string) error {
	var lastErr error
	for _, pattern := range patterns {
		if err := helper.InvalidatePattern(ctx, pattern); err != nil {
			lastErr = err
			slog.ErrorContext(ctx, "Failed to invalidate pattern in batch",
				"error", err,
				"pattern", pattern)
		}
	}
	return lastErr
}

// Key builders shared by writers and readers so invalidation stays in sync.

func StudentProgressKey(studentID, suffix string) string {
	return fmt.Sprintf("student:%s:%s", studentID, suffix)
}

func SubjectChaptersKey(subjectID uint) string {
	return fmt.Sprintf("subject:%d:chapters", subjectID)
}

func ClassSubjectsKey(classID uint) string {
	return fmt.Sprintf("class:%d:subjects", classID)
}

// InvalidateStudentProgress drops every cached aggregate of one student
func InvalidateStudentProgress(ctx context.Context, cm *CacheManager, studentID string) {
	if !cm.Enabled() {
		return
	}
	SafeInvalidatePattern(ctx, cm.Progress, fmt.Sprintf("student:%s:*", studentID))
	SafeDelete(ctx, cm.Stats, "dashboard", "reports")
}

// InvalidateCatalog drops navigation caches and every progress aggregate,
// since adding or removing chapters changes all percentages.
func InvalidateCatalog(ctx context.Context, cm *CacheManager) {
	if !cm.Enabled() {
		return
	}
	SafeInvalidatePattern(ctx, cm.Catalog, "*")
	SafeInvalidatePattern(ctx, cm.Progress, "*")
	SafeDelete(ctx, cm.Stats, "dashboard", "reports")
}

// InvalidateStats drops the dashboard and report counters
func InvalidateStats(ctx context.Context, cm *CacheManager) {
	if !cm.Enabled() {
		return
	}
	SafeDelete(ctx, cm.Stats, "dashboard", "reports")
}
