package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/testutil"
	"github.com/SAP-F-2025/learning-service/internal/utils"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

type testServer struct {
	env       *testutil.Env
	publisher *events.MockEventPublisher
	router    *gin.Engine
}

// tokenIsUserID treats the bearer token as the user id; "bad" is rejected
func tokenIsUserID(token string) (*casdoorsdk.Claims, error) {
	if token == "bad" {
		return nil, errors.New("signature is invalid")
	}
	return &casdoorsdk.Claims{User: casdoorsdk.User{Id: token}}, nil
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := testutil.NewEnv(t, false)
	slogger := testutil.Logger(t)
	logger := utils.NewSlogLogger(slogger)
	publisher := events.NewMockEventPublisher()

	manager := services.NewDefaultServiceManager(env.DB, env.Repo, publisher, slogger, validator.New())
	require.NoError(t, manager.Initialize(context.Background()))

	router := gin.New()
	SetupMiddleware(router, logger, []string{"*"})
	auth := NewAuthMiddlewareWithParser(tokenIsUserID, env.Users, logger)
	NewHandlerManager(manager, env.Users, logger, auth).SetupRoutes(router)

	env.Users.Add("admin-1", "Admin", "admin@example.com", models.RoleAdmin)
	env.Users.Add("teacher-1", "Binh Pham", "binh@example.com", models.RoleTeacher)
	env.Users.Add("parent-1", "Hoa Nguyen", "hoa@example.com", models.RoleParent)
	env.Users.Add("student-1", "An Le", "an@example.com", models.RoleStudent)

	return &testServer{env: env, publisher: publisher, router: router}
}

func (s *testServer) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+userID)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (s *testServer) seedChapters(t *testing.T, n int) (*models.Class, []models.Chapter) {
	t.Helper()
	class := testutil.SeedClass(t, s.env.DB, "Grade 1")
	subject := testutil.SeedSubject(t, s.env.DB, class.ID, "Math")
	return class, testutil.SeedChapters(t, s.env.DB, subject.ID, n)
}

func TestAuth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/me/home", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/me/home", "bad", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/home", nil)
	req.Header.Set("Authorization", "Token student-1")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/me/home", "student-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAuth_UnknownUserFallsBackToClaims(t *testing.T) {
	s := newTestServer(t)

	// accounts without a recognised role are students
	w := s.do(t, http.MethodGet, "/api/v1/students/me/classes", "newcomer", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoleGates(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		userID string
		want   int
	}{
		{"student on admin", "/api/v1/admin/dashboard", "student-1", http.StatusForbidden},
		{"teacher on student", "/api/v1/students/me/classes", "teacher-1", http.StatusForbidden},
		{"parent on teacher", "/api/v1/teacher/contents", "parent-1", http.StatusForbidden},
		{"student on parent", "/api/v1/parents/children", "student-1", http.StatusForbidden},
		{"admin on admin", "/api/v1/admin/dashboard", "admin-1", http.StatusOK},
		{"admin on teacher", "/api/v1/teacher/contents", "admin-1", http.StatusOK},
		{"admin on parent", "/api/v1/parents/children", "admin-1", http.StatusOK},
		{"admin on student", "/api/v1/students/me/classes", "admin-1", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodGet, tt.path, tt.userID, nil)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode[map[string]any](t, w)["status"])
}

func TestStudent_NavigationAndCompletion(t *testing.T) {
	s := newTestServer(t)
	class, chapters := s.seedChapters(t, 4)
	testutil.Enroll(t, s.env.DB, "student-1", class.ID)

	for i := 0; i < 2; i++ {
		w := s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/students/me/chapters/%d/complete", chapters[0].ID), "student-1", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/students/me/classes/%d/subjects", class.ID), "student-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	subjects := decode[[]services.SubjectWithProgress](t, w)
	require.Len(t, subjects, 1)
	assert.Equal(t, 25.0, subjects[0].ProgressPercentage)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/students/me/subjects/%d/chapters", subjects[0].ID), "student-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode[[]models.Chapter](t, w)
	require.Len(t, listed, 4)
	assert.True(t, listed[0].IsCompleted)
	assert.False(t, listed[1].IsCompleted)

	w = s.do(t, http.MethodPost, "/api/v1/students/me/chapters/9999/complete", "student-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/students/me/chapters/abc/complete", "student-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/students/me/progress", "student-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	report := decode[services.DetailedProgressReport](t, w)
	assert.Equal(t, "An Le", report.StudentName)
	assert.Equal(t, 25.0, report.OverallProgress)
}

func TestStudent_TakeAndSubmitQuiz(t *testing.T) {
	s := newTestServer(t)
	_, chapters := s.seedChapters(t, 1)
	quiz := testutil.SeedQuiz(t, s.env.DB, chapters[0].ID, "Quiz", "A", "B")

	w := s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/students/me/quizzes/%d", quiz.ID), "student-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "correct_answer")

	body := map[string]any{"answers": map[string]string{
		fmt.Sprint(quiz.Questions[0].ID): "a",
		fmt.Sprint(quiz.Questions[1].ID): "C",
	}}
	w = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/students/me/quizzes/%d/submit", quiz.ID), "student-1", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	result := decode[services.QuizResult](t, w)
	assert.Equal(t, 50.0, result.Attempt.Percentage)
	assert.Equal(t, 1, result.Attempt.Score)
	assert.Len(t, s.publisher.EventsOfType(events.QuizSubmitted), 1)

	w = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/students/me/quizzes/%d/submit", quiz.ID), "student-1",
		map[string]any{"answers": map[string]string{fmt.Sprint(quiz.Questions[0].ID): "Z"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/students/me/quizzes/9999/submit", "student-1", map[string]any{"answers": map[string]string{}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStudent_ExportProgress(t *testing.T) {
	s := newTestServer(t)
	class, _ := s.seedChapters(t, 2)
	testutil.Enroll(t, s.env.DB, "student-1", class.ID)

	w := s.do(t, http.MethodGet, "/api/v1/students/me/progress/export", "student-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Subjects")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestAdmin_EnrollmentConflict(t *testing.T) {
	s := newTestServer(t)
	class := testutil.SeedClass(t, s.env.DB, "Grade 1")
	body := map[string]any{"student_id": "student-1", "class_id": class.ID}

	w := s.do(t, http.MethodPost, "/api/v1/admin/enrollments", "admin-1", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/admin/enrollments", "admin-1", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/admin/enrollments", "admin-1", map[string]any{"student_id": "teacher-1", "class_id": class.ID})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errResp := decode[ErrorResponse](t, w)
	assert.Equal(t, "student_role_required", errResp.Details.(map[string]any)["rule"])

	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/admin/enrollments?class_id=%d", class.ID), "admin-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[models.ListResponse[services.EnrollmentResponse]](t, w)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, "An Le", page.Items[0].StudentName)
}

func TestAdmin_ClassLifecycle(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/admin/classes", "admin-1", map[string]any{"name": "Grade 5"})
	require.Equal(t, http.StatusCreated, w.Code)
	class := decode[models.Class](t, w)

	w = s.do(t, http.MethodPost, "/api/v1/admin/classes", "admin-1", map[string]any{"name": "Grade 5"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/admin/classes", "admin-1", map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/admin/classes", "admin-1", "not an object")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, fmt.Sprintf("/api/v1/admin/classes/%d", class.ID), "admin-1", map[string]any{"description": "fifth year"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/admin/subjects", "admin-1", map[string]any{"name": "Math", "class_id": class.ID})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/admin/classes/%d/subjects", class.ID), "admin-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Subject](t, w), 1)

	w = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/admin/classes/%d", class.ID), "admin-1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/admin/classes/%d", class.ID), "admin-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdmin_ReportsExport(t *testing.T) {
	s := newTestServer(t)
	testutil.SeedClass(t, s.env.DB, "Grade 1")

	w := s.do(t, http.MethodGet, "/api/v1/admin/reports", "admin-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(4), decode[map[string]any](t, w)["total_users"])

	w = s.do(t, http.MethodGet, "/api/v1/admin/reports/export", "admin-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
}

func TestAdmin_Users(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/admin/users?role=student", "admin-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[models.ListResponse[models.User]](t, w)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "student-1", page.Items[0].ID)

	w = s.do(t, http.MethodGet, "/api/v1/admin/users?role=proctor", "admin-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/admin/users/nobody", "admin-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTeacher_ContentOwnership(t *testing.T) {
	s := newTestServer(t)
	s.env.Users.Add("teacher-2", "Dung Tran", "dung@example.com", models.RoleTeacher)
	_, chapters := s.seedChapters(t, 1)

	w := s.do(t, http.MethodPost, "/api/v1/teacher/contents", "teacher-2", map[string]any{
		"title":        "Reading",
		"type":         models.ContentText,
		"text_content": "Once upon a time",
		"chapter_id":   chapters[0].ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	content := decode[models.Content](t, w)

	w = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/teacher/contents/%d", content.ID), "teacher-1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/teacher/contents/%d", content.ID), "teacher-2", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestTeacher_NoticeVisibleToStudent(t *testing.T) {
	s := newTestServer(t)
	class, _ := s.seedChapters(t, 1)
	testutil.Enroll(t, s.env.DB, "student-1", class.ID)

	w := s.do(t, http.MethodPost, "/api/v1/teacher/notices", "teacher-1", map[string]any{
		"title": "Trip", "content": "Bring lunch", "class_id": class.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/students/me/notices", "student-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	notices := decode[[]models.Notice](t, w)
	require.Len(t, notices, 1)
	assert.Equal(t, "Trip", notices[0].Title)
}

func TestParent_LinkAndChildViews(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/parents/children/student-1/progress", "parent-1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/parents/children/student-1/progress/export", "parent-1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/parents/children", "parent-1", map[string]any{"child_email": "an@example.com"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	link := decode[models.ParentChild](t, w)

	w = s.do(t, http.MethodPost, "/api/v1/parents/children", "parent-1", map[string]any{"child_email": "an@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/parents/children/student-1/progress", "parent-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/parents/children/student-1/progress/export", "parent-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/parents/children", "parent-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]services.ChildSummary](t, w), 1)

	w = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/parents/children/%d", link.ID), "parent-1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHome_DispatchesByRole(t *testing.T) {
	s := newTestServer(t)

	for userID, role := range map[string]models.UserRole{
		"student-1": models.RoleStudent,
		"teacher-1": models.RoleTeacher,
		"parent-1":  models.RoleParent,
		"admin-1":   models.RoleAdmin,
	} {
		w := s.do(t, http.MethodGet, "/api/v1/me/home", userID, nil)
		require.Equal(t, http.StatusOK, w.Code, userID)
		home := decode[map[string]any](t, w)
		assert.Equal(t, string(role), home["role"])
	}

	w := s.do(t, http.MethodGet, "/api/v1/me/home", "admin-1", nil)
	data := decode[struct {
		Data services.AdminDashboard `json:"data"`
	}](t, w).Data
	assert.Equal(t, int64(1), data.TotalStudents)
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORSMiddleware([]string{"https://app.example.com"}))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
