package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
)

// HomeResponse wraps the landing payload with the role it was built for
type HomeResponse struct {
	Role models.UserRole `json:"role"`
	Data interface{}     `json:"data"`
}

type DashboardHandler struct {
	BaseHandler
	dashboard services.DashboardService
	parent    services.ParentService
}

func NewDashboardHandler(dashboard services.DashboardService, parent services.ParentService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: NewBaseHandler(logger),
		dashboard:   dashboard,
		parent:      parent,
	}
}

// GetHome returns the landing page of the caller's role
// @Summary Role home page
// @Description Students get classes, progress and notices; teachers their recent authoring; parents their children; admins the dashboard
// @Tags home
// @Produce json
// @Success 200 {object} HomeResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /me/home [get]
func (h *DashboardHandler) GetHome(c *gin.Context) {
	userID, role, ok := h.currentUser(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Getting home page", "user_id", userID, "role", role)

	ctx := c.Request.Context()
	var (
		data interface{}
		err  error
	)
	switch role {
	case models.RoleStudent:
		data, err = h.dashboard.StudentHome(ctx, userID)
	case models.RoleTeacher:
		data, err = h.dashboard.TeacherHome(ctx, userID)
	case models.RoleParent:
		data, err = h.parent.ChildrenSummary(ctx, userID)
	case models.RoleAdmin:
		data, err = h.dashboard.AdminDashboard(ctx)
	default:
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Unknown role",
		})
		return
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, HomeResponse{Role: role, Data: data})
}
