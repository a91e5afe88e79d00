package services

import (
	"context"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

// ===== REQUEST DTOs =====

type CreateClassRequest = validator.CreateClassRequest
type UpdateClassRequest = validator.UpdateClassRequest
type CreateSubjectRequest = validator.CreateSubjectRequest
type UpdateSubjectRequest = validator.UpdateSubjectRequest
type CreateChapterRequest = validator.CreateChapterRequest
type UpdateChapterRequest = validator.UpdateChapterRequest
type EnrollStudentRequest = validator.EnrollStudentRequest
type CreateContentRequest = validator.CreateContentRequest
type CreateQuizRequest = validator.CreateQuizRequest
type QuizQuestionRequest = validator.QuizQuestionRequest
type CreateNoticeRequest = validator.CreateNoticeRequest
type SubmitQuizRequest = validator.SubmitQuizRequest
type LinkChildRequest = validator.LinkChildRequest

// ===== RESPONSE DTOs =====

type QuizAttemptResponse struct {
	*models.QuizAttempt
	Percentage float64 `json:"percentage"`
}

func NewQuizAttemptResponse(attempt *models.QuizAttempt) QuizAttemptResponse {
	return QuizAttemptResponse{QuizAttempt: attempt, Percentage: attempt.Percentage()}
}

type AttemptSummaryResponse struct {
	AttemptID      uint      `json:"attempt_id"`
	QuizID         uint      `json:"quiz_id"`
	QuizTitle      string    `json:"quiz_title"`
	SubjectName    string    `json:"subject_name"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Percentage     float64   `json:"percentage"`
	AttemptedAt    time.Time `json:"attempted_at"`
}

type SubjectProgressDetail struct {
	SubjectID         uint    `json:"subject_id"`
	SubjectName       string  `json:"subject_name"`
	ClassID           uint    `json:"class_id"`
	ClassName         string  `json:"class_name"`
	CompletedChapters int64   `json:"completed_chapters"`
	TotalChapters     int64   `json:"total_chapters"`
	Percentage        float64 `json:"percentage"`
}

// DetailedProgressReport is the read-only progress report shown to students and parents
type DetailedProgressReport struct {
	StudentID       string                   `json:"student_id"`
	StudentName     string                   `json:"student_name"`
	ClassName       string                   `json:"class_name"`
	OverallProgress float64                  `json:"overall_progress"`
	Subjects        []SubjectProgressDetail  `json:"subjects"`
	RecentAttempts  []AttemptSummaryResponse `json:"recent_attempts"`
	GeneratedAt     time.Time                `json:"generated_at"`
}

type SubjectWithProgress struct {
	models.Subject
	ProgressPercentage float64 `json:"progress_percentage"`
}

type ChapterDetail struct {
	Chapter     *models.Chapter  `json:"chapter"`
	Contents    []models.Content `json:"contents"`
	Quizzes     []models.Quiz    `json:"quizzes"`
	IsCompleted bool             `json:"is_completed"`
}

type StudentQuizSummary struct {
	Quiz           models.Quiz `json:"quiz"`
	AttemptCount   int         `json:"attempt_count"`
	BestPercentage *float64    `json:"best_percentage,omitempty"`
	LastAttemptAt  *time.Time  `json:"last_attempt_at,omitempty"`
}

type QuestionResult struct {
	QuestionID    uint   `json:"question_id"`
	Selected      string `json:"selected"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
}

type QuizResult struct {
	Attempt QuizAttemptResponse `json:"attempt"`
	Results []QuestionResult    `json:"results"`
}

type StudentHome struct {
	Classes         []models.Class        `json:"classes"`
	OverallProgress float64               `json:"overall_progress"`
	RecentAttempts  []QuizAttemptResponse `json:"recent_attempts"`
	Notices         []models.Notice       `json:"notices"`
}

type TeacherHome struct {
	Contents      []models.Content `json:"contents"`
	Quizzes       []models.Quiz    `json:"quizzes"`
	Notices       []models.Notice  `json:"notices"`
	TotalContents int              `json:"total_contents"`
	TotalQuizzes  int              `json:"total_quizzes"`
	TotalNotices  int              `json:"total_notices"`
	RecentLimit   int              `json:"recent_limit"`
	GeneratedAt   time.Time        `json:"generated_at"`
}

type ChildSummary struct {
	LinkID             uint    `json:"link_id"`
	ChildID            string  `json:"child_id"`
	ChildName          string  `json:"child_name"`
	ChildEmail         string  `json:"child_email"`
	ClassName          string  `json:"class_name"`
	OverallProgress    float64 `json:"overall_progress"`
	RecentAverage      float64 `json:"recent_average"`
	RecentAttemptCount int     `json:"recent_attempt_count"`
}

type StudentEngagement struct {
	StudentID         string  `json:"student_id"`
	StudentName       string  `json:"student_name"`
	StudentEmail      string  `json:"student_email"`
	CompletedChapters int64   `json:"completed_chapters"`
	QuizAttempts      int64   `json:"quiz_attempts"`
	AveragePercentage float64 `json:"average_percentage"`
}

type EnrollmentResponse struct {
	models.StudentClass
	StudentName  string `json:"student_name"`
	StudentEmail string `json:"student_email"`
}

type AdminDashboard struct {
	TotalStudents int64           `json:"total_students"`
	TotalTeachers int64           `json:"total_teachers"`
	TotalParents  int64           `json:"total_parents"`
	TotalClasses  int64           `json:"total_classes"`
	TotalSubjects int64           `json:"total_subjects"`
	TotalChapters int64           `json:"total_chapters"`
	TotalQuizzes  int64           `json:"total_quizzes"`
	RecentNotices []models.Notice `json:"recent_notices"`
}

type AdminReports struct {
	TotalUsers            int64                               `json:"total_users"`
	TotalContents         int64                               `json:"total_contents"`
	TotalQuizAttempts     int64                               `json:"total_quiz_attempts"`
	ActiveStudents        int64                               `json:"active_students"`
	AverageQuizPercentage float64                             `json:"average_quiz_percentage"`
	TopClasses            []repositories.ClassEnrollmentCount `json:"top_classes"`
	GeneratedAt           time.Time                           `json:"generated_at"`
}

type SubjectQuizPerformance = repositories.SubjectQuizPerformance
type ClassSummary = repositories.ClassSummary

// ===== SERVICE INTERFACES =====

// ContentService is the read-side navigation of the catalog plus chapter completion.
// Missing rows yield empty results rather than errors.
type ContentService interface {
	ClassesForStudent(ctx context.Context, studentID string) ([]models.Class, error)
	SubjectsForClass(ctx context.Context, classID uint) ([]models.Subject, error)
	ChaptersForSubject(ctx context.Context, subjectID uint) ([]models.Chapter, error)
	ContentForChapter(ctx context.Context, chapterID uint) ([]models.Content, error)
	QuizzesForChapter(ctx context.Context, chapterID uint) ([]models.Quiz, error)
	QuizWithQuestions(ctx context.Context, quizID uint) (*models.Quiz, error)
	ChapterDetail(ctx context.Context, studentID string, chapterID uint) (*ChapterDetail, error)

	MarkChapterCompleted(ctx context.Context, studentID string, chapterID uint) error
	IsChapterCompleted(ctx context.Context, studentID string, chapterID uint) (bool, error)
	ChapterCompletionMap(ctx context.Context, studentID string, chapterIDs []uint) (map[uint]bool, error)

	NoticesForStudent(ctx context.Context, studentID string) ([]models.Notice, error)
}

// ProgressService aggregates completion and quiz history for one student
type ProgressService interface {
	SubjectProgressPercentage(ctx context.Context, studentID string, subjectID uint) (float64, error)
	OverallProgressPercentage(ctx context.Context, studentID string) (float64, error)
	SubjectProgresses(ctx context.Context, studentID string, subjectIDs []uint) (map[uint]float64, error)

	StudentProgress(ctx context.Context, studentID string) ([]models.StudentProgress, error)
	StudentQuizAttempts(ctx context.Context, studentID string) ([]models.QuizAttempt, error)
	RecentQuizAttempts(ctx context.Context, studentID string, count int) ([]models.QuizAttempt, error)

	DetailedProgress(ctx context.Context, studentID string) (*DetailedProgressReport, error)
}

// ClassService manages the class, subject and chapter catalog
type ClassService interface {
	ListClasses(ctx context.Context) ([]ClassSummary, error)
	GetClass(ctx context.Context, id uint) (*models.Class, error)
	CreateClass(ctx context.Context, req *CreateClassRequest) (*models.Class, error)
	UpdateClass(ctx context.Context, id uint, req *UpdateClassRequest) (*models.Class, error)
	DeleteClass(ctx context.Context, id uint) error

	ListSubjects(ctx context.Context, classID uint) ([]models.Subject, error)
	CreateSubject(ctx context.Context, req *CreateSubjectRequest) (*models.Subject, error)
	UpdateSubject(ctx context.Context, id uint, req *UpdateSubjectRequest) (*models.Subject, error)
	DeleteSubject(ctx context.Context, id uint) error

	CreateChapter(ctx context.Context, req *CreateChapterRequest) (*models.Chapter, error)
	UpdateChapter(ctx context.Context, id uint, req *UpdateChapterRequest) (*models.Chapter, error)
	DeleteChapter(ctx context.Context, id uint) error
}

type EnrollmentService interface {
	List(ctx context.Context, classID *uint, page, size int) (*models.ListResponse[EnrollmentResponse], error)
	Enroll(ctx context.Context, req *EnrollStudentRequest) (*models.StudentClass, error)
	Unenroll(ctx context.Context, id uint) error
}

type TeacherService interface {
	ListContents(ctx context.Context, teacherID string) ([]models.Content, error)
	CreateContent(ctx context.Context, req *CreateContentRequest, teacherID string) (*models.Content, error)
	DeleteContent(ctx context.Context, id uint, userID string, role models.UserRole) error

	QuizTree(ctx context.Context) ([]models.Class, error)
	CreateQuiz(ctx context.Context, req *CreateQuizRequest, teacherID string) (*models.Quiz, error)
	DeleteQuiz(ctx context.Context, id uint, userID string, role models.UserRole) error

	StudentEngagement(ctx context.Context) ([]StudentEngagement, error)
}

type NoticeService interface {
	ListByCreator(ctx context.Context, creatorID string) ([]models.Notice, error)
	Create(ctx context.Context, req *CreateNoticeRequest, creatorID string) (*models.Notice, error)
	Delete(ctx context.Context, id uint, userID string, role models.UserRole) error
}

type QuizService interface {
	ListForStudent(ctx context.Context, studentID string) ([]StudentQuizSummary, error)
	// GetForStudent returns the quiz with questions but without correct answers
	GetForStudent(ctx context.Context, quizID uint) (*models.Quiz, error)
	Submit(ctx context.Context, quizID uint, studentID string, req *SubmitQuizRequest) (*QuizResult, error)
}

type ParentService interface {
	ChildrenSummary(ctx context.Context, parentID string) ([]ChildSummary, error)
	LinkChild(ctx context.Context, parentID string, req *LinkChildRequest) (*models.ParentChild, error)
	UnlinkChild(ctx context.Context, parentID string, linkID uint) error

	ChildProgress(ctx context.Context, parentID, childID string) (*DetailedProgressReport, error)
	ChildNotices(ctx context.Context, parentID, childID string) ([]models.Notice, error)
	ChildQuizPerformance(ctx context.Context, parentID, childID string) ([]SubjectQuizPerformance, error)
	// VerifyLink returns ErrNotLinkedToChild unless parentID is linked to childID
	VerifyLink(ctx context.Context, parentID, childID string) error
}

type DashboardService interface {
	AdminDashboard(ctx context.Context) (*AdminDashboard, error)
	Reports(ctx context.Context) (*AdminReports, error)
	StudentHome(ctx context.Context, studentID string) (*StudentHome, error)
	TeacherHome(ctx context.Context, teacherID string) (*TeacherHome, error)
}

// ExportService renders reports as XLSX workbooks
type ExportService interface {
	StudentProgressWorkbook(ctx context.Context, studentID string) ([]byte, error)
	ReportsWorkbook(ctx context.Context) ([]byte, error)
}

type ServiceManager interface {
	Content() ContentService
	Progress() ProgressService
	Class() ClassService
	Enrollment() EnrollmentService
	Teacher() TeacherService
	Notice() NoticeService
	Quiz() QuizService
	Parent() ParentService
	Dashboard() DashboardService
	Export() ExportService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
