package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet  = "Summary"
	subjectsSheet = "Subjects"
	attemptsSheet = "Quiz Attempts"
	reportsSheet  = "Reports"
	classesSheet  = "Top Classes"
)

type exportService struct {
	progress  ProgressService
	dashboard DashboardService
	logger    *slog.Logger
}

func NewExportService(progress ProgressService, dashboard DashboardService, logger *slog.Logger) ExportService {
	return &exportService{
		progress:  progress,
		dashboard: dashboard,
		logger:    logger,
	}
}

// StudentProgressWorkbook renders the detailed progress report as three sheets
func (s *exportService) StudentProgressWorkbook(ctx context.Context, studentID string) ([]byte, error) {
	report, err := s.progress.DetailedProgress(ctx, studentID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("failed to prepare workbook: %w", err)
	}

	summary := [][]interface{}{
		{"Student", report.StudentName},
		{"Class", report.ClassName},
		{"Overall Progress (%)", report.OverallProgress},
		{"Generated At", report.GeneratedAt.Format(time.RFC3339)},
	}
	if err := writeSheet(f, summarySheet, []string{"Field", "Value"}, summary); err != nil {
		return nil, err
	}

	subjects := make([][]interface{}, 0, len(report.Subjects))
	for _, subject := range report.Subjects {
		subjects = append(subjects, []interface{}{
			subject.ClassName,
			subject.SubjectName,
			subject.CompletedChapters,
			subject.TotalChapters,
			subject.Percentage,
		})
	}
	if err := addSheet(f, subjectsSheet, []string{"Class", "Subject", "Completed", "Total", "Progress (%)"}, subjects); err != nil {
		return nil, err
	}

	attempts := make([][]interface{}, 0, len(report.RecentAttempts))
	for _, attempt := range report.RecentAttempts {
		attempts = append(attempts, []interface{}{
			attempt.AttemptedAt.Format(time.RFC3339),
			attempt.SubjectName,
			attempt.QuizTitle,
			attempt.Score,
			attempt.TotalQuestions,
			attempt.Percentage,
		})
	}
	if err := addSheet(f, attemptsSheet, []string{"Attempted At", "Subject", "Quiz", "Score", "Total", "Percentage"}, attempts); err != nil {
		return nil, err
	}

	s.logger.Info("Progress workbook exported", "student_id", studentID, "subjects", len(subjects), "attempts", len(attempts))
	return toBytes(f)
}

func (s *exportService) ReportsWorkbook(ctx context.Context) ([]byte, error) {
	reports, err := s.dashboard.Reports(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportsSheet); err != nil {
		return nil, fmt.Errorf("failed to prepare workbook: %w", err)
	}

	totals := [][]interface{}{
		{"Total Users", reports.TotalUsers},
		{"Total Contents", reports.TotalContents},
		{"Total Quiz Attempts", reports.TotalQuizAttempts},
		{"Active Students", reports.ActiveStudents},
		{"Average Quiz Percentage", reports.AverageQuizPercentage},
		{"Generated At", reports.GeneratedAt.Format(time.RFC3339)},
	}
	if err := writeSheet(f, reportsSheet, []string{"Metric", "Value"}, totals); err != nil {
		return nil, err
	}

	classes := make([][]interface{}, 0, len(reports.TopClasses))
	for _, class := range reports.TopClasses {
		classes = append(classes, []interface{}{class.ClassName, class.StudentCount})
	}
	if err := addSheet(f, classesSheet, []string{"Class", "Students"}, classes); err != nil {
		return nil, err
	}

	return toBytes(f)
}

func addSheet(f *excelize.File, sheet string, header []string, rows [][]interface{}) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	return writeSheet(f, sheet, header, rows)
}

// writeSheet writes a bold header row followed by the data rows
func writeSheet(f *excelize.File, sheet string, header []string, rows [][]interface{}) error {
	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", sheet, err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeader, bold); err != nil {
		return fmt.Errorf("failed to style header of %s: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+2, sheet, err)
		}
	}
	return nil
}

func toBytes(f *excelize.File) ([]byte, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
