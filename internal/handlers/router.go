package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
)

type HandlerManager struct {
	serviceManager   services.ServiceManager
	studentHandler   *StudentHandler
	teacherHandler   *TeacherHandler
	parentHandler    *ParentHandler
	adminHandler     *AdminHandler
	dashboardHandler *DashboardHandler
	userHandler      *UserHandler
	authMiddleware   *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	userRepo repositories.UserRepository,
	logger utils.Logger,
	authMiddleware *CasdoorAuthMiddleware,
) *HandlerManager {
	return &HandlerManager{
		serviceManager: serviceManager,
		studentHandler: NewStudentHandler(
			serviceManager.Content(),
			serviceManager.Progress(),
			serviceManager.Quiz(),
			serviceManager.Export(),
			logger,
		),
		teacherHandler: NewTeacherHandler(serviceManager.Teacher(), serviceManager.Notice(), serviceManager.Content(), logger),
		parentHandler:  NewParentHandler(serviceManager.Parent(), serviceManager.Export(), logger),
		adminHandler: NewAdminHandler(
			serviceManager.Class(),
			serviceManager.Enrollment(),
			serviceManager.Dashboard(),
			serviceManager.Export(),
			logger,
		),
		dashboardHandler: NewDashboardHandler(serviceManager.Dashboard(), serviceManager.Parent(), logger),
		userHandler:      NewUserHandler(userRepo, logger),
		authMiddleware:   authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.health)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		v1.GET("/me/home", hm.dashboardHandler.GetHome)

		// Student routes
		students := v1.Group("/students/me")
		students.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent))
		{
			students.GET("/classes", hm.studentHandler.GetClasses)
			students.GET("/classes/:classId/subjects", hm.studentHandler.GetSubjects)
			students.GET("/subjects/:subjectId/chapters", hm.studentHandler.GetChapters)
			students.GET("/chapters/:chapterId", hm.studentHandler.GetChapterDetail)
			students.POST("/chapters/:chapterId/complete", hm.studentHandler.CompleteChapter)

			students.GET("/progress", hm.studentHandler.GetProgress)
			students.GET("/progress/export", hm.studentHandler.ExportProgress)

			students.GET("/quizzes", hm.studentHandler.GetQuizzes)
			students.GET("/quizzes/:quizId", hm.studentHandler.GetQuiz)
			students.POST("/quizzes/:quizId/submit", hm.studentHandler.SubmitQuiz)

			students.GET("/notices", hm.studentHandler.GetNotices)
		}

		// Teacher routes
		teacher := v1.Group("/teacher")
		teacher.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher))
		{
			teacher.GET("/contents", hm.teacherHandler.ListContents)
			teacher.POST("/contents", hm.teacherHandler.CreateContent)
			teacher.DELETE("/contents/:id", hm.teacherHandler.DeleteContent)

			teacher.GET("/quizzes", hm.teacherHandler.QuizTree)
			teacher.POST("/quizzes", hm.teacherHandler.CreateQuiz)
			teacher.DELETE("/quizzes/:id", hm.teacherHandler.DeleteQuiz)

			teacher.GET("/subjects/:subjectId/chapters", hm.teacherHandler.ChaptersForSubject)

			teacher.GET("/notices", hm.teacherHandler.ListNotices)
			teacher.POST("/notices", hm.teacherHandler.CreateNotice)
			teacher.DELETE("/notices/:id", hm.teacherHandler.DeleteNotice)

			teacher.GET("/students", hm.teacherHandler.StudentEngagement)
		}

		// Parent routes
		parents := v1.Group("/parents/children")
		parents.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleParent))
		{
			parents.GET("", hm.parentHandler.ListChildren)
			parents.POST("", hm.parentHandler.LinkChild)
			parents.DELETE("/:linkId", hm.parentHandler.UnlinkChild)
			parents.GET("/:childId/progress", hm.parentHandler.ChildProgress)
			parents.GET("/:childId/progress/export", hm.parentHandler.ExportChildProgress)
			parents.GET("/:childId/notices", hm.parentHandler.ChildNotices)
			parents.GET("/:childId/quiz-performance", hm.parentHandler.ChildQuizPerformance)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
		{
			admin.GET("/dashboard", hm.adminHandler.Dashboard)
			admin.GET("/reports", hm.adminHandler.Reports)
			admin.GET("/reports/export", hm.adminHandler.ExportReports)

			admin.GET("/classes", hm.adminHandler.ListClasses)
			admin.POST("/classes", hm.adminHandler.CreateClass)
			admin.GET("/classes/:id", hm.adminHandler.GetClass)
			admin.PUT("/classes/:id", hm.adminHandler.UpdateClass)
			admin.DELETE("/classes/:id", hm.adminHandler.DeleteClass)
			admin.GET("/classes/:id/subjects", hm.adminHandler.ListSubjects)

			admin.POST("/subjects", hm.adminHandler.CreateSubject)
			admin.PUT("/subjects/:id", hm.adminHandler.UpdateSubject)
			admin.DELETE("/subjects/:id", hm.adminHandler.DeleteSubject)

			admin.POST("/chapters", hm.adminHandler.CreateChapter)
			admin.PUT("/chapters/:id", hm.adminHandler.UpdateChapter)
			admin.DELETE("/chapters/:id", hm.adminHandler.DeleteChapter)

			admin.GET("/users", hm.userHandler.ListUsers)
			admin.GET("/users/:id", hm.userHandler.GetUser)

			admin.GET("/enrollments", hm.adminHandler.ListEnrollments)
			admin.POST("/enrollments", hm.adminHandler.Enroll)
			admin.DELETE("/enrollments/:id", hm.adminHandler.Unenroll)
		}
	}
}

func (hm *HandlerManager) health(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":    status,
		"service":   "learning-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
