package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
)

type StudentHandler struct {
	BaseHandler
	content  services.ContentService
	progress services.ProgressService
	quiz     services.QuizService
	export   services.ExportService
}

func NewStudentHandler(
	content services.ContentService,
	progress services.ProgressService,
	quiz services.QuizService,
	export services.ExportService,
	logger utils.Logger,
) *StudentHandler {
	return &StudentHandler{
		BaseHandler: NewBaseHandler(logger),
		content:     content,
		progress:    progress,
		quiz:        quiz,
		export:      export,
	}
}

// ===== NAVIGATION =====

// GetClasses returns the classes the current student is enrolled in
// @Summary List enrolled classes
// @Tags students
// @Produce json
// @Success 200 {array} models.Class
// @Router /students/me/classes [get]
func (h *StudentHandler) GetClasses(c *gin.Context) {
	studentID, _, ok := h.currentUser(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Getting student classes", "student_id", studentID)

	classes, err := h.content.ClassesForStudent(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, classes)
}

// GetSubjects returns the subjects of a class with the student's progress in each
// @Summary List subjects with progress
// @Tags students
// @Produce json
// @Param classId path uint true "Class ID"
// @Success 200 {array} services.SubjectWithProgress
// @Router /students/me/classes/{classId}/subjects [get]
func (h *StudentHandler) GetSubjects(c *gin.Context) {
	studentID, _, ok := h.currentUser(c)
	if !ok {
		return
	}
	classID := h.parseIDParam(c, "classId")
	if classID == 0 {
		return
	}

	ctx := c.Request.Context()
	subjects, err := h.content.SubjectsForClass(ctx, classID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	ids := make([]uint, len(subjects))
	for i := range subjects {
		ids[i] = subjects[i].ID
	}
	percentages, err := h.progress.SubjectProgresses(ctx, studentID, ids)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	result := make([]services.SubjectWithProgress, len(subjects))
	for i, subject := range subjects {
		result[i] = services.SubjectWithProgress{
			Subject:            subject,
			ProgressPercentage: percentages[subject.ID],
		}
	}

	c.JSON(http.StatusOK, result)
}

// GetChapters returns the ordered chapters of a subject with completion flags
// @Summary List chapters with completion
// @Tags students
// @Produce json
// @Param subjectId path uint true "Subject ID"
// @Success 200 {array} models.Chapter
// @Router /students/me/subjects/{subjectId}/chapters [get]
func (h *StudentHandler) GetChapters(c *gin.Context) {
	studentID, _, ok := h.currentUser(c)
	if !ok {
		return
	}
	subjectID := h.parseIDParam(c, "subjectId")
	if subjectID == 0 {
		return
	}

	ctx := c.Request.Context()
	chapters, err := h.content.ChaptersForSubject(ctx, subjectID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	ids := make([]uint, len(chapters))
	for i := range chapters {
		ids[i] = chapters[i].ID
	}
	completed, err := h.content.ChapterCompletionMap(ctx, studentID, ids)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	for i := range chapters {
		chapters[i].IsCompleted = completed[chapters[i].ID]
	}

	c.JSON(http.StatusOK, chapters)
}

// GetChapterDetail returns a chapter with its content and quizzes
// @Summary Get chapter detail
// @Tags students
// @Produce json
// @Param chapterId path uint true "Chapter ID"
// @Success 200 {object} services.ChapterDetail
// @Failure 404 {object} ErrorResponse
// @Router /students/me/chapters/{chapterId} [get]
func (h *StudentHandler) GetChapterDetail(c *gin.Context) {
	studentID, _, ok := h.currentUser(c)
	if !ok {
		return
	}
	chapterID := h.parseIDParam(c, "chapterId")
	if chapterID == 0 {
		return
	}

	detail, err := h.content.ChapterDetail(c.Request.Context(), studentID, chapterID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// CompleteChapter marks a chapter as completed; repeating the call is harmless
// @Summary Complete chapter
// @Tags students
// @Produce json
// @Param chapterId path uint true "Chapter ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /students/me/chapters/{chapterId}/complete [post]
func (h *StudentHandler) CompleteChapter(c *gin.Context) {
	studentID, _, ok := h.currentUser(c)
	if !ok {
		return
	}
	chapterID := h.parseIDParam(c, "chapterId")
	if chapterID == 0 {
		return
	}
	h.LogRequest(c, "Completing chapter", "student_id", studentID, "chapter_id", chapterID)

	if err := h.content.MarkChapterCompleted(c.Request.Context(), studentID, chapterID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Chapter marked as completed",
	})
}

// GetNotices returns global notices and those of the student's classes, newest first
// @Summary List notices
// @Tags students
// @Produce json
// @Success 200 {array} models.Notice
// @Router /students/me/notices [get]
func (h *StudentHandler) GetNotices(c *gin.Context) {
	studentID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	notices, err := h.content.NoticesForStudent(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, notices)
}

// ===== PROGRESS =====

// GetProgress returns the detailed progress report of the current student
// @Summary Get progress report
// @Tags students
// @Produce json
// @Success 200 {object} services.DetailedProgressReport
// @Router /students/me/progress [get]
func (h *StudentHandler) GetProgress(c *gin.Context) {
	studentID, _, ok := h.currentUser(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Getting progress report", "student_id", studentID)

	report, err := h.progress.DetailedProgress(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ExportProgress downloads the progress report as an XLSX workbook
// @Summary Export progress report
// @Tags students
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router /students/me/progress/export [get]
func (h *StudentHandler) ExportProgress(c *gin.Context) {
	studentID, _, ok := h.currentUser(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Exporting progress report", "student_id", studentID)

	data, err := h.export.StudentProgressWorkbook(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.sendWorkbook(c, "progress", data)
}

// ===== QUIZZES =====

// GetQuizzes lists quizzes of the student's classes with their attempt history
// @Summary List quizzes
// @Tags students
// @Produce json
// @Success 200 {array} services.StudentQuizSummary
// @Router /students/me/quizzes [get]
func (h *StudentHandler) GetQuizzes(c *gin.Context) {
	studentID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	quizzes, err := h.quiz.ListForStudent(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quizzes)
}

// GetQuiz returns a quiz ready to take, without correct answers
// @Summary Take quiz
// @Tags students
// @Produce json
// @Param quizId path uint true "Quiz ID"
// @Success 200 {object} models.Quiz
// @Failure 404 {object} ErrorResponse
// @Router /students/me/quizzes/{quizId} [get]
func (h *StudentHandler) GetQuiz(c *gin.Context) {
	quizID := h.parseIDParam(c, "quizId")
	if quizID == 0 {
		return
	}

	quiz, err := h.quiz.GetForStudent(c.Request.Context(), quizID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// SubmitQuiz grades the submitted answers and records a new attempt
// @Summary Submit quiz
// @Tags students
// @Accept json
// @Produce json
// @Param quizId path uint true "Quiz ID"
// @Param request body services.SubmitQuizRequest true "Answers keyed by question ID"
// @Success 201 {object} services.QuizResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /students/me/quizzes/{quizId}/submit [post]
func (h *StudentHandler) SubmitQuiz(c *gin.Context) {
	studentID, _, ok := h.currentUser(c)
	if !ok {
		return
	}
	quizID := h.parseIDParam(c, "quizId")
	if quizID == 0 {
		return
	}

	var req services.SubmitQuizRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.LogRequest(c, "Submitting quiz", "student_id", studentID, "quiz_id", quizID, "answers", len(req.Answers))

	result, err := h.quiz.Submit(c.Request.Context(), quizID, studentID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}
