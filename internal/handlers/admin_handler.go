package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
)

type AdminHandler struct {
	BaseHandler
	classes     services.ClassService
	enrollments services.EnrollmentService
	dashboard   services.DashboardService
	export      services.ExportService
}

func NewAdminHandler(
	classes services.ClassService,
	enrollments services.EnrollmentService,
	dashboard services.DashboardService,
	export services.ExportService,
	logger utils.Logger,
) *AdminHandler {
	return &AdminHandler{
		BaseHandler: NewBaseHandler(logger),
		classes:     classes,
		enrollments: enrollments,
		dashboard:   dashboard,
		export:      export,
	}
}

// ===== DASHBOARD & REPORTS =====

// Dashboard returns platform-wide counters and the latest notices
// @Summary Admin dashboard
// @Tags admin
// @Produce json
// @Success 200 {object} services.AdminDashboard
// @Router /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c *gin.Context) {
	h.LogRequest(c, "Getting admin dashboard")

	stats, err := h.dashboard.AdminDashboard(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Reports returns usage totals and the classes with most students
// @Summary Admin reports
// @Tags admin
// @Produce json
// @Success 200 {object} services.AdminReports
// @Router /admin/reports [get]
func (h *AdminHandler) Reports(c *gin.Context) {
	reports, err := h.dashboard.Reports(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, reports)
}

// ExportReports downloads the reports as an XLSX workbook
// @Summary Export reports
// @Tags admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router /admin/reports/export [get]
func (h *AdminHandler) ExportReports(c *gin.Context) {
	h.LogRequest(c, "Exporting reports")

	data, err := h.export.ReportsWorkbook(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.sendWorkbook(c, "reports", data)
}

// ===== CLASSES =====

// ListClasses returns every class with subject and student counts
// @Summary List classes
// @Tags admin
// @Produce json
// @Success 200 {array} services.ClassSummary
// @Router /admin/classes [get]
func (h *AdminHandler) ListClasses(c *gin.Context) {
	classes, err := h.classes.ListClasses(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, classes)
}

// GetClass returns one class
// @Summary Get class
// @Tags admin
// @Produce json
// @Param id path uint true "Class ID"
// @Success 200 {object} models.Class
// @Failure 404 {object} ErrorResponse
// @Router /admin/classes/{id} [get]
func (h *AdminHandler) GetClass(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	class, err := h.classes.GetClass(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, class)
}

// CreateClass creates a class with a unique name
// @Summary Create class
// @Tags admin
// @Accept json
// @Produce json
// @Param request body services.CreateClassRequest true "Class data"
// @Success 201 {object} models.Class
// @Failure 409 {object} ErrorResponse
// @Router /admin/classes [post]
func (h *AdminHandler) CreateClass(c *gin.Context) {
	var req services.CreateClassRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.LogRequest(c, "Creating class", "name", req.Name)

	class, err := h.classes.CreateClass(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, class)
}

// UpdateClass changes a class name or description
// @Summary Update class
// @Tags admin
// @Accept json
// @Produce json
// @Param id path uint true "Class ID"
// @Param request body services.UpdateClassRequest true "Class data"
// @Success 200 {object} models.Class
// @Router /admin/classes/{id} [put]
func (h *AdminHandler) UpdateClass(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateClassRequest
	if !h.bindJSON(c, &req) {
		return
	}

	class, err := h.classes.UpdateClass(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, class)
}

// DeleteClass removes a class with its subjects, chapters and enrollments
// @Summary Delete class
// @Tags admin
// @Param id path uint true "Class ID"
// @Success 204
// @Router /admin/classes/{id} [delete]
func (h *AdminHandler) DeleteClass(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	h.LogRequest(c, "Deleting class", "class_id", id)

	if err := h.classes.DeleteClass(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ===== SUBJECTS =====

// @Router /admin/classes/{id}/subjects [get]
func (h *AdminHandler) ListSubjects(c *gin.Context) {
	classID := h.parseIDParam(c, "id")
	if classID == 0 {
		return
	}

	subjects, err := h.classes.ListSubjects(c.Request.Context(), classID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subjects)
}

// @Router /admin/subjects [post]
func (h *AdminHandler) CreateSubject(c *gin.Context) {
	var req services.CreateSubjectRequest
	if !h.bindJSON(c, &req) {
		return
	}

	subject, err := h.classes.CreateSubject(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, subject)
}

// @Router /admin/subjects/{id} [put]
func (h *AdminHandler) UpdateSubject(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateSubjectRequest
	if !h.bindJSON(c, &req) {
		return
	}

	subject, err := h.classes.UpdateSubject(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subject)
}

// @Router /admin/subjects/{id} [delete]
func (h *AdminHandler) DeleteSubject(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.classes.DeleteSubject(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ===== CHAPTERS =====

// @Router /admin/chapters [post]
func (h *AdminHandler) CreateChapter(c *gin.Context) {
	var req services.CreateChapterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	chapter, err := h.classes.CreateChapter(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, chapter)
}

// @Router /admin/chapters/{id} [put]
func (h *AdminHandler) UpdateChapter(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateChapterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	chapter, err := h.classes.UpdateChapter(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, chapter)
}

// @Router /admin/chapters/{id} [delete]
func (h *AdminHandler) DeleteChapter(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.classes.DeleteChapter(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ===== ENROLLMENTS =====

// ListEnrollments pages through enrollments, optionally for one class
// @Summary List enrollments
// @Tags admin
// @Produce json
// @Param class_id query int false "Filter by class"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} models.ListResponse[services.EnrollmentResponse]
// @Router /admin/enrollments [get]
func (h *AdminHandler) ListEnrollments(c *gin.Context) {
	classID := h.parseUintQueryPtr(c, "class_id")
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", models.DefaultPageSize)

	enrollments, err := h.enrollments.List(c.Request.Context(), classID, page, size)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollments)
}

// Enroll adds a student to a class
// @Summary Enroll student
// @Tags admin
// @Accept json
// @Produce json
// @Param request body services.EnrollStudentRequest true "Enrollment"
// @Success 201 {object} models.StudentClass
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/enrollments [post]
func (h *AdminHandler) Enroll(c *gin.Context) {
	var req services.EnrollStudentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.LogRequest(c, "Enrolling student", "student_id", req.StudentID, "class_id", req.ClassID)

	enrollment, err := h.enrollments.Enroll(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, enrollment)
}

// @Router /admin/enrollments/{id} [delete]
func (h *AdminHandler) Unenroll(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.enrollments.Unenroll(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
