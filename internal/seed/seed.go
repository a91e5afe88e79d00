package seed

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

type sampleSubject struct {
	name        string
	description string
	chapters    []string
}

var (
	sampleClassName        = "Grade 10"
	sampleClassDescription = "High School Grade 10 - Science Stream"

	sampleSubjects = []sampleSubject{
		{"Mathematics", "Advanced Mathematics", []string{"Algebra", "Functions", "Trigonometry"}},
		{"Physics", "Fundamental Physics", []string{"Motion", "Forces", "Energy"}},
		{"Chemistry", "Basic Chemistry", []string{"Atoms", "The Periodic Table"}},
	}
)

// Run creates a sample class with subjects and chapters. It does nothing once
// any class exists, so it is safe to call on every start.
func Run(ctx context.Context, db *gorm.DB, logger *slog.Logger) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Class{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count classes: %w", err)
	}
	if count > 0 {
		logger.Info("Skipping seed, catalog is not empty", "classes", count)
		return nil
	}

	class := &models.Class{
		Name:        sampleClassName,
		Description: &sampleClassDescription,
	}
	for _, s := range sampleSubjects {
		subject := models.Subject{Name: s.name, Description: &s.description}
		for i, title := range s.chapters {
			subject.Chapters = append(subject.Chapters, models.Chapter{
				Title:      title,
				OrderIndex: i + 1,
			})
		}
		class.Subjects = append(class.Subjects, subject)
	}

	// Associations are saved with the class in one transaction
	if err := db.WithContext(ctx).Create(class).Error; err != nil {
		return fmt.Errorf("failed to seed sample class: %w", err)
	}

	logger.Info("Seeded sample catalog", "class_id", class.ID, "subjects", len(class.Subjects))
	return nil
}
