package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/utils"
)

// UserHandler exposes identity-provider accounts so admins can pick students to enroll
type UserHandler struct {
	BaseHandler
	userRepo repositories.UserRepository
}

func NewUserHandler(userRepo repositories.UserRepository, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userRepo:    userRepo,
	}
}

// ListUsers lists users with optional filtering
// @Summary List users
// @Tags admin
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Param q query string false "Name or email fragment"
// @Param role query string false "Filter by role (student, teacher, parent, admin)"
// @Success 200 {object} models.ListResponse[models.User]
// @Failure 400 {object} ErrorResponse "Bad request"
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	h.LogRequest(c, "Listing users")

	page, size := models.NormalizePage(h.parseIntQuery(c, "page", 1), h.parseIntQuery(c, "size", models.DefaultPageSize))
	filters := repositories.UserFilters{
		Query:  c.Query("q"),
		Limit:  size,
		Offset: (page - 1) * size,
	}
	if roleParam := c.Query("role"); roleParam != "" {
		role := models.UserRole(roleParam)
		if !role.IsValid() {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid role parameter",
				Details: "Role must be one of student, teacher, parent, admin",
			})
			return
		}
		filters.Role = &role
	}

	users, total, err := h.userRepo.List(c.Request.Context(), filters)
	if err != nil {
		h.LogError(c, err, "Failed to list users")
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Message: "Failed to list users",
		})
		return
	}

	items := make([]models.User, 0, len(users))
	for _, u := range users {
		items = append(items, *u)
	}
	c.JSON(http.StatusOK, models.ListResponse[models.User]{
		Items: items,
		Total: total,
		Page:  page,
		Size:  size,
	})
}

// GetUser retrieves a user by ID
// @Summary Get user by ID
// @Tags admin
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /admin/users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	userID := h.parseStringIDParam(c, "id")
	if userID == "" {
		return
	}

	user, err := h.userRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Message: "User not found",
			})
			return
		}
		h.LogError(c, err, "Failed to get user")
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Message: "Failed to get user",
		})
		return
	}

	c.JSON(http.StatusOK, user)
}
