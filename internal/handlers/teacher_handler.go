package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
)

type TeacherHandler struct {
	BaseHandler
	teacher services.TeacherService
	notice  services.NoticeService
	content services.ContentService
}

func NewTeacherHandler(teacher services.TeacherService, notice services.NoticeService, content services.ContentService, logger utils.Logger) *TeacherHandler {
	return &TeacherHandler{
		BaseHandler: NewBaseHandler(logger),
		teacher:     teacher,
		notice:      notice,
		content:     content,
	}
}

// ===== CONTENT =====

// ListContents returns the content items created by the caller
// @Summary List own content
// @Tags teacher
// @Produce json
// @Success 200 {array} models.Content
// @Router /teacher/contents [get]
func (h *TeacherHandler) ListContents(c *gin.Context) {
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	contents, err := h.teacher.ListContents(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, contents)
}

// CreateContent appends a content item to a chapter
// @Summary Create content
// @Tags teacher
// @Accept json
// @Produce json
// @Param request body services.CreateContentRequest true "Content data"
// @Success 201 {object} models.Content
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /teacher/contents [post]
func (h *TeacherHandler) CreateContent(c *gin.Context) {
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.CreateContentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.LogRequest(c, "Creating content", "chapter_id", req.ChapterID, "type", req.Type)

	content, err := h.teacher.CreateContent(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, content)
}

// DeleteContent removes a content item owned by the caller
// @Summary Delete content
// @Tags teacher
// @Param id path uint true "Content ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /teacher/contents/{id} [delete]
func (h *TeacherHandler) DeleteContent(c *gin.Context) {
	userID, role, ok := h.currentUser(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.teacher.DeleteContent(c.Request.Context(), id, userID, role); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ===== QUIZZES =====

// QuizTree returns every class with its subjects, chapters and quizzes
// @Summary Quiz tree
// @Tags teacher
// @Produce json
// @Success 200 {array} models.Class
// @Router /teacher/quizzes [get]
func (h *TeacherHandler) QuizTree(c *gin.Context) {
	tree, err := h.teacher.QuizTree(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tree)
}

// CreateQuiz creates a quiz with its questions
// @Summary Create quiz
// @Tags teacher
// @Accept json
// @Produce json
// @Param request body services.CreateQuizRequest true "Quiz data"
// @Success 201 {object} models.Quiz
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /teacher/quizzes [post]
func (h *TeacherHandler) CreateQuiz(c *gin.Context) {
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.CreateQuizRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.LogRequest(c, "Creating quiz", "chapter_id", req.ChapterID, "questions", len(req.Questions))

	quiz, err := h.teacher.CreateQuiz(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, quiz)
}

// DeleteQuiz removes a quiz owned by the caller together with its questions and attempts
// @Summary Delete quiz
// @Tags teacher
// @Param id path uint true "Quiz ID"
// @Success 204
// @Router /teacher/quizzes/{id} [delete]
func (h *TeacherHandler) DeleteQuiz(c *gin.Context) {
	userID, role, ok := h.currentUser(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.teacher.DeleteQuiz(c.Request.Context(), id, userID, role); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ChaptersForSubject lists chapters of a subject in order, used when authoring content
// @Summary List chapters of subject
// @Tags teacher
// @Produce json
// @Param subjectId path uint true "Subject ID"
// @Success 200 {array} models.Chapter
// @Router /teacher/subjects/{subjectId}/chapters [get]
func (h *TeacherHandler) ChaptersForSubject(c *gin.Context) {
	subjectID := h.parseIDParam(c, "subjectId")
	if subjectID == 0 {
		return
	}

	chapters, err := h.content.ChaptersForSubject(c.Request.Context(), subjectID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, chapters)
}

// ===== NOTICES =====

// ListNotices returns the caller's notices newest first
// @Summary List own notices
// @Tags teacher
// @Produce json
// @Success 200 {array} models.Notice
// @Router /teacher/notices [get]
func (h *TeacherHandler) ListNotices(c *gin.Context) {
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	notices, err := h.notice.ListByCreator(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, notices)
}

// CreateNotice posts a notice to one class, or to everyone when class_id is omitted
// @Summary Create notice
// @Tags teacher
// @Accept json
// @Produce json
// @Param request body services.CreateNoticeRequest true "Notice data"
// @Success 201 {object} models.Notice
// @Failure 400 {object} ErrorResponse
// @Router /teacher/notices [post]
func (h *TeacherHandler) CreateNotice(c *gin.Context) {
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.CreateNoticeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.LogRequest(c, "Creating notice", "class_id", req.ClassID)

	notice, err := h.notice.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, notice)
}

// DeleteNotice removes a notice owned by the caller
// @Summary Delete notice
// @Tags teacher
// @Param id path uint true "Notice ID"
// @Success 204
// @Router /teacher/notices/{id} [delete]
func (h *TeacherHandler) DeleteNotice(c *gin.Context) {
	userID, role, ok := h.currentUser(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.notice.Delete(c.Request.Context(), id, userID, role); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ===== STUDENTS =====

// StudentEngagement lists every enrolled student with completion and quiz activity
// @Summary Student engagement
// @Tags teacher
// @Produce json
// @Success 200 {array} services.StudentEngagement
// @Router /teacher/students [get]
func (h *TeacherHandler) StudentEngagement(c *gin.Context) {
	rows, err := h.teacher.StudentEngagement(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}
