package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
)

type ParentHandler struct {
	BaseHandler
	parent services.ParentService
	export services.ExportService
}

func NewParentHandler(parent services.ParentService, export services.ExportService, logger utils.Logger) *ParentHandler {
	return &ParentHandler{
		BaseHandler: NewBaseHandler(logger),
		parent:      parent,
		export:      export,
	}
}

// ListChildren returns a summary card per linked child
// @Summary List children
// @Tags parents
// @Produce json
// @Success 200 {array} services.ChildSummary
// @Router /parents/children [get]
func (h *ParentHandler) ListChildren(c *gin.Context) {
	parentID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	children, err := h.parent.ChildrenSummary(c.Request.Context(), parentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, children)
}

// LinkChild links a student account to the caller by email
// @Summary Link child
// @Tags parents
// @Accept json
// @Produce json
// @Param request body services.LinkChildRequest true "Child email"
// @Success 201 {object} models.ParentChild
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /parents/children [post]
func (h *ParentHandler) LinkChild(c *gin.Context) {
	parentID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.LinkChildRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.LogRequest(c, "Linking child", "parent_id", parentID)

	link, err := h.parent.LinkChild(c.Request.Context(), parentID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, link)
}

// UnlinkChild removes one of the caller's links
// @Summary Unlink child
// @Tags parents
// @Param linkId path uint true "Link ID"
// @Success 204
// @Router /parents/children/{linkId} [delete]
func (h *ParentHandler) UnlinkChild(c *gin.Context) {
	parentID, _, ok := h.currentUser(c)
	if !ok {
		return
	}
	linkID := h.parseIDParam(c, "linkId")
	if linkID == 0 {
		return
	}

	if err := h.parent.UnlinkChild(c.Request.Context(), parentID, linkID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ChildProgress returns the detailed progress report of a linked child
// @Summary Child progress
// @Tags parents
// @Produce json
// @Param childId path string true "Child user ID"
// @Success 200 {object} services.DetailedProgressReport
// @Failure 403 {object} ErrorResponse
// @Router /parents/children/{childId}/progress [get]
func (h *ParentHandler) ChildProgress(c *gin.Context) {
	parentID, childID, ok := h.parentAndChild(c)
	if !ok {
		return
	}

	report, err := h.parent.ChildProgress(c.Request.Context(), parentID, childID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ExportChildProgress downloads a linked child's progress report as XLSX
// @Summary Export child progress
// @Tags parents
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param childId path string true "Child user ID"
// @Router /parents/children/{childId}/progress/export [get]
func (h *ParentHandler) ExportChildProgress(c *gin.Context) {
	parentID, childID, ok := h.parentAndChild(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.parent.VerifyLink(ctx, parentID, childID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	data, err := h.export.StudentProgressWorkbook(ctx, childID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.sendWorkbook(c, "child-progress", data)
}

// ChildNotices returns the notices a linked child sees
// @Summary Child notices
// @Tags parents
// @Produce json
// @Param childId path string true "Child user ID"
// @Success 200 {array} models.Notice
// @Router /parents/children/{childId}/notices [get]
func (h *ParentHandler) ChildNotices(c *gin.Context) {
	parentID, childID, ok := h.parentAndChild(c)
	if !ok {
		return
	}

	notices, err := h.parent.ChildNotices(c.Request.Context(), parentID, childID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, notices)
}

// ChildQuizPerformance returns quiz statistics per subject for a linked child
// @Summary Child quiz performance
// @Tags parents
// @Produce json
// @Param childId path string true "Child user ID"
// @Success 200 {array} services.SubjectQuizPerformance
// @Router /parents/children/{childId}/quiz-performance [get]
func (h *ParentHandler) ChildQuizPerformance(c *gin.Context) {
	parentID, childID, ok := h.parentAndChild(c)
	if !ok {
		return
	}

	rows, err := h.parent.ChildQuizPerformance(c.Request.Context(), parentID, childID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

func (h *ParentHandler) parentAndChild(c *gin.Context) (string, string, bool) {
	parentID, _, ok := h.currentUser(c)
	if !ok {
		return "", "", false
	}
	childID := h.parseStringIDParam(c, "childId")
	if childID == "" {
		return "", "", false
	}
	return parentID, childID, true
}
