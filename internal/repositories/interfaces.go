package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

// Every method takes an optional transaction; a nil tx uses the repository's own connection.

// ===== CATALOG =====

type ClassRepository interface {
	Create(ctx context.Context, tx *gorm.DB, class *models.Class) error
	Update(ctx context.Context, tx *gorm.DB, class *models.Class) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Class, error)
	ExistsByName(ctx context.Context, tx *gorm.DB, name string, excludeID uint) (bool, error)

	List(ctx context.Context, tx *gorm.DB) ([]models.Class, error)
	ListSummaries(ctx context.Context, tx *gorm.DB) ([]ClassSummary, error)
	ListByStudent(ctx context.Context, tx *gorm.DB, studentID string) ([]models.Class, error)
	// ListTree loads classes with subjects, chapters and quizzes (without questions)
	ListTree(ctx context.Context, tx *gorm.DB) ([]models.Class, error)

	TopByEnrollment(ctx context.Context, tx *gorm.DB, limit int) ([]ClassEnrollmentCount, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type SubjectRepository interface {
	Create(ctx context.Context, tx *gorm.DB, subject *models.Subject) error
	Update(ctx context.Context, tx *gorm.DB, subject *models.Subject) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Subject, error)

	ListByClass(ctx context.Context, tx *gorm.DB, classID uint) ([]models.Subject, error)
	// ChapterCountsForStudent returns one row per subject reachable through the student's enrollments
	ChapterCountsForStudent(ctx context.Context, tx *gorm.DB, studentID string) ([]SubjectChapterCount, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type ChapterRepository interface {
	Create(ctx context.Context, tx *gorm.DB, chapter *models.Chapter) error
	Update(ctx context.Context, tx *gorm.DB, chapter *models.Chapter) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Chapter, error)

	ListBySubject(ctx context.Context, tx *gorm.DB, subjectID uint) ([]models.Chapter, error)
	CountBySubject(ctx context.Context, tx *gorm.DB, subjectID uint) (int64, error)
	// CountForStudent counts distinct chapters in every class the student is enrolled in
	CountForStudent(ctx context.Context, tx *gorm.DB, studentID string) (int64, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type ContentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, content *models.Content) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Content, error)

	ListByChapter(ctx context.Context, tx *gorm.DB, chapterID uint) ([]models.Content, error)
	ListByCreator(ctx context.Context, tx *gorm.DB, creatorID string) ([]models.Content, error)
	CountByChapter(ctx context.Context, tx *gorm.DB, chapterID uint) (int64, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

// ===== QUIZZES =====

type QuizRepository interface {
	// Create inserts the quiz together with its questions
	Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error)
	GetWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error)

	ListByChapter(ctx context.Context, tx *gorm.DB, chapterID uint) ([]models.Quiz, error)
	ListByCreator(ctx context.Context, tx *gorm.DB, creatorID string) ([]models.Quiz, error)
	ListForStudent(ctx context.Context, tx *gorm.DB, studentID string) ([]models.Quiz, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type QuizAttemptRepository interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) error

	// ListByStudent returns newest first; limit <= 0 returns every attempt
	ListByStudent(ctx context.Context, tx *gorm.DB, studentID string, limit int) ([]models.QuizAttempt, error)
	RecentSummaries(ctx context.Context, tx *gorm.DB, studentID string, limit int) ([]AttemptSummary, error)
	PerformanceBySubject(ctx context.Context, tx *gorm.DB, studentID string) ([]SubjectQuizPerformance, error)
	StatsByStudents(ctx context.Context, tx *gorm.DB, studentIDs []string) (map[string]AttemptStats, error)

	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	AveragePercent(ctx context.Context, tx *gorm.DB) (float64, error)
}

// ===== NOTICES =====

type NoticeRepository interface {
	Create(ctx context.Context, tx *gorm.DB, notice *models.Notice) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Notice, error)

	// ListForClasses returns global notices plus those of the given classes, newest first
	ListForClasses(ctx context.Context, tx *gorm.DB, classIDs []uint) ([]models.Notice, error)
	ListByCreator(ctx context.Context, tx *gorm.DB, creatorID string) ([]models.Notice, error)
	ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]models.Notice, error)
}

// ===== PROGRESS AND MEMBERSHIP =====

type ProgressRepository interface {
	// FindForUpdate locks the row for the rest of the transaction
	FindForUpdate(ctx context.Context, tx *gorm.DB, studentID string, chapterID uint) (*models.StudentProgress, error)
	Find(ctx context.Context, tx *gorm.DB, studentID string, chapterID uint) (*models.StudentProgress, error)
	// CreateIfAbsent inserts unless (student, chapter) already exists; created is false on conflict
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, progress *models.StudentProgress) (created bool, err error)
	Save(ctx context.Context, tx *gorm.DB, progress *models.StudentProgress) error

	ListByStudent(ctx context.Context, tx *gorm.DB, studentID string) ([]models.StudentProgress, error)
	CompletedChapterIDs(ctx context.Context, tx *gorm.DB, studentID string, chapterIDs []uint) ([]uint, error)
	CountCompletedInSubject(ctx context.Context, tx *gorm.DB, studentID string, subjectID uint) (int64, error)
	// CountCompletedForStudent only counts chapters inside the student's enrolled classes
	CountCompletedForStudent(ctx context.Context, tx *gorm.DB, studentID string) (int64, error)
	CompletedBySubject(ctx context.Context, tx *gorm.DB, studentID string) (map[uint]int64, error)
	CountCompletedByStudents(ctx context.Context, tx *gorm.DB, studentIDs []string) (map[string]int64, error)
	CountStudentsWithCompletion(ctx context.Context, tx *gorm.DB) (int64, error)
}

type EnrollmentFilters struct {
	ClassID   *uint
	StudentID *string
	Limit     int
	Offset    int
}

type EnrollmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, enrollment *models.StudentClass) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.StudentClass, error)
	Exists(ctx context.Context, tx *gorm.DB, studentID string, classID uint) (bool, error)

	List(ctx context.Context, tx *gorm.DB, filters EnrollmentFilters) ([]models.StudentClass, int64, error)
	ClassIDsForStudent(ctx context.Context, tx *gorm.DB, studentID string) ([]uint, error)
	// FirstForStudent returns the earliest enrollment with its class loaded
	FirstForStudent(ctx context.Context, tx *gorm.DB, studentID string) (*models.StudentClass, error)
	DistinctStudentIDs(ctx context.Context, tx *gorm.DB) ([]string, error)
}

type ParentChildRepository interface {
	Create(ctx context.Context, tx *gorm.DB, link *models.ParentChild) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ParentChild, error)
	Exists(ctx context.Context, tx *gorm.DB, parentID, childID string) (bool, error)
	ListByParent(ctx context.Context, tx *gorm.DB, parentID string) ([]models.ParentChild, error)
}

// ===== QUERY RESULT ROWS =====

type ClassSummary struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	SubjectCount int64     `json:"subject_count"`
	StudentCount int64     `json:"student_count"`
	CreatedAt    time.Time `json:"created_at"`
}

type ClassEnrollmentCount struct {
	ClassID      uint   `json:"class_id"`
	ClassName    string `json:"class_name"`
	StudentCount int64  `json:"student_count"`
}

type SubjectChapterCount struct {
	SubjectID     uint   `json:"subject_id"`
	SubjectName   string `json:"subject_name"`
	ClassID       uint   `json:"class_id"`
	ClassName     string `json:"class_name"`
	TotalChapters int64  `json:"total_chapters"`
}

type AttemptSummary struct {
	AttemptID      uint      `json:"attempt_id"`
	QuizID         uint      `json:"quiz_id"`
	QuizTitle      string    `json:"quiz_title"`
	SubjectID      uint      `json:"subject_id"`
	SubjectName    string    `json:"subject_name"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	AttemptedAt    time.Time `json:"attempted_at"`
}

type SubjectQuizPerformance struct {
	SubjectID      uint    `json:"subject_id"`
	SubjectName    string  `json:"subject_name"`
	Attempts       int64   `json:"attempts"`
	AveragePercent float64 `json:"average_percent"`
	BestPercent    float64 `json:"best_percent"`
}

type AttemptStats struct {
	Attempts       int64   `json:"attempts"`
	AveragePercent float64 `json:"average_percent"`
}
