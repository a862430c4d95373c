package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/VijayVPatil13/Digital-Lab-Records/internal/dto"
	"github.com/VijayVPatil13/Digital-Lab-Records/internal/model"
	"github.com/VijayVPatil13/Digital-Lab-Records/internal/service"
	"github.com/VijayVPatil13/Digital-Lab-Records/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
}

const testUUID = "8f14e45f-ceea-4e7a-9c3b-2a1d0b6c7e11"

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	registerResult *dto.UserResponse
	registerErr    error
	registerCaller *service.Actor
	loginResult    *dto.TokenResponse
	loginErr       error
	logoutJTI      string
	logoutErr      error
	meResult       *dto.UserResponse
	meErr          error
}

func (m *mockAuthService) Register(_ context.Context, _ *dto.RegisterRequest, caller *service.Actor) (*dto.UserResponse, error) {
	m.registerCaller = caller
	return m.registerResult, m.registerErr
}
func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Logout(_ context.Context, jti string, _ time.Duration) error {
	m.logoutJTI = jti
	return m.logoutErr
}
func (m *mockAuthService) Me(_ context.Context, _ service.Actor) (*dto.UserResponse, error) {
	return m.meResult, m.meErr
}

// ── Mock CourseService ──

type mockCourseService struct {
	createResult *dto.CourseResponse
	createErr    error
	listResult   []dto.CourseResponse
	listErr      error
	findResult   *dto.CourseResponse
	findErr      error
}

func (m *mockCourseService) Create(_ context.Context, _ service.Actor, _ *dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockCourseService) CreateForFaculty(_ context.Context, _ service.Actor, _ *dto.AdminCreateCourseRequest) (*dto.CourseResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockCourseService) ListOwned(_ context.Context, _ service.Actor) ([]dto.CourseResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockCourseService) FindByCodeSection(_ context.Context, _, _ string) (*dto.CourseResponse, error) {
	return m.findResult, m.findErr
}

// ── Mock EnrollmentService ──

type mockEnrollmentService struct {
	requestResult *dto.EnrollmentResponse
	requestErr    error
	pendingResult []dto.EnrollmentResponse
	setResult     *dto.EnrollmentResponse
	setErr        error
	approveResult *dto.ApproveAllResponse
	approveErr    error
	myCourses     []dto.CourseResponse
	myCoursesErr  error
}

func (m *mockEnrollmentService) Request(_ context.Context, _ service.Actor, _ *dto.EnrollRequest) (*dto.EnrollmentResponse, error) {
	return m.requestResult, m.requestErr
}
func (m *mockEnrollmentService) ListPending(_ context.Context, _ service.Actor) ([]dto.EnrollmentResponse, error) {
	return m.pendingResult, nil
}
func (m *mockEnrollmentService) SetStatus(_ context.Context, _ service.Actor, _, _ string) (*dto.EnrollmentResponse, error) {
	return m.setResult, m.setErr
}
func (m *mockEnrollmentService) ApproveAll(_ context.Context, _ service.Actor) (*dto.ApproveAllResponse, error) {
	return m.approveResult, m.approveErr
}
func (m *mockEnrollmentService) ListMyCourses(_ context.Context, _ service.Actor) ([]dto.CourseResponse, error) {
	return m.myCourses, m.myCoursesErr
}

// ── Mock SessionService ──

type mockSessionService struct {
	createResult *dto.SessionResponse
	createErr    error
	listResult   *dto.CourseSessionsResponse
	listErr      error
	markResult   *dto.SessionResponse
	markErr      error
	studentList  []dto.StudentSessionResponse
	studentErr   error
}

func (m *mockSessionService) Create(_ context.Context, _ service.Actor, _ *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockSessionService) ListByCourse(_ context.Context, _ service.Actor, _, _ string) (*dto.CourseSessionsResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockSessionService) MarkAttendance(_ context.Context, _ service.Actor, _ string, _ *dto.MarkAttendanceRequest) (*dto.SessionResponse, error) {
	return m.markResult, m.markErr
}
func (m *mockSessionService) ListForStudent(_ context.Context, _ service.Actor, _, _ string) ([]dto.StudentSessionResponse, error) {
	return m.studentList, m.studentErr
}

// ── Mock SubmissionService ──

type mockSubmissionService struct {
	submitResult *dto.SubmissionResponse
	submitErr    error
	getResult    *dto.SubmissionResponse
	getErr       error
	mineResult   []dto.SubmissionResponse
	mineTotal    int64
	mineErr      error
	minePage     *dto.PaginationRequest
}

func (m *mockSubmissionService) Submit(_ context.Context, _ service.Actor, _ *dto.SubmitRequest) (*dto.SubmissionResponse, error) {
	return m.submitResult, m.submitErr
}
func (m *mockSubmissionService) GetByID(_ context.Context, _ service.Actor, _ string) (*dto.SubmissionResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockSubmissionService) ListMine(_ context.Context, _ service.Actor, page *dto.PaginationRequest) ([]dto.SubmissionResponse, int64, error) {
	m.minePage = page
	return m.mineResult, m.mineTotal, m.mineErr
}

// ── Mock GradingService ──

type mockGradingService struct {
	gradeResult  *dto.SubmissionResponse
	gradeErr     error
	reviewResult *dto.ReviewResponse
	reviewErr    error
	statsResult  *dto.CourseStudentsResponse
	statsErr     error
}

func (m *mockGradingService) Grade(_ context.Context, _ service.Actor, _ string, _ *dto.GradeRequest) (*dto.SubmissionResponse, error) {
	return m.gradeResult, m.gradeErr
}
func (m *mockGradingService) ReviewList(_ context.Context, _ service.Actor, _ string) (*dto.ReviewResponse, error) {
	return m.reviewResult, m.reviewErr
}
func (m *mockGradingService) StudentStats(_ context.Context, _ service.Actor, _, _ string) (*dto.CourseStudentsResponse, error) {
	return m.statsResult, m.statsErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportStudentStats(_ context.Context, _ service.Actor, _, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) StudentCalendar(_ context.Context, _ service.Actor) (*bytes.Buffer, error) {
	return m.buf, m.err
}

// ── Mock RosterService ──

type mockRosterService struct {
	result *dto.RepairResponse
	err    error
}

func (m *mockRosterService) Repair(_ context.Context) (*dto.RepairResponse, error) {
	return m.result, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

// newRouter 模拟 JWT 中间件注入身份；role 为空时不注入
func newRouter(role string) *gin.Engine {
	r := gin.New()
	if role != "" {
		r.Use(func(c *gin.Context) {
			c.Set("user_id", "test-user-id")
			c.Set("role", role)
			c.Set("token_jti", "test-jti")
			c.Set("token_exp", time.Now().Add(15*time.Minute))
			c.Next()
		})
	}
	return r
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if s, ok := body.(string); ok {
		reader = strings.NewReader(s)
	} else if body != nil {
		reader = jsonBody(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func floatPtr(f float64) *float64 { return &f }

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
			ExpiresIn:    3600,
		},
	}
	h := NewAuthHandler(mock)

	r := newRouter("")
	r.POST("/auth/login", h.Login)
	w := doJSON(r, "POST", "/auth/login", dto.LoginRequest{Email: "f1@college.edu", Password: "Secret123"})

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
	data := resp.Data.(map[string]interface{})
	if data["accessToken"] != "test-access-token" {
		t.Errorf("expected accessToken in body, got %v", data)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r := newRouter("")
	r.POST("/auth/login", h.Login)
	w := doJSON(r, "POST", "/auth/login", "invalid json")

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials})

	r := newRouter("")
	r.POST("/auth/login", h.Login)
	w := doJSON(r, "POST", "/auth/login", dto.LoginRequest{Email: "f1@college.edu", Password: "wrong"})

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 11003 {
		t.Errorf("expected error code 11003, got %d", resp.Code)
	}
}

func TestAuthHandler_Register_InvalidRole(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r := newRouter("")
	r.POST("/auth/register", h.Register)
	w := doJSON(r, "POST", "/auth/register", dto.RegisterRequest{
		FirstName: "Sam", Email: "sam@college.edu", Password: "Secret123", Role: "Teacher",
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Details == "" {
		t.Error("expected details naming the failed field")
	}
}

func TestAuthHandler_Register_PublicHasNoCaller(t *testing.T) {
	mock := &mockAuthService{registerResult: &dto.UserResponse{ID: testUUID}}
	h := NewAuthHandler(mock)

	r := newRouter("")
	r.POST("/auth/register", h.Register)
	w := doJSON(r, "POST", "/auth/register", dto.RegisterRequest{
		FirstName: "Sam", Email: "sam@college.edu", Password: "Secret123", Role: "Student", USN: "1RV22CS001",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if mock.registerCaller != nil {
		t.Error("public registration must not carry a caller")
	}
}

func TestAuthHandler_Register_AdminCaller(t *testing.T) {
	mock := &mockAuthService{registerResult: &dto.UserResponse{ID: testUUID}}
	h := NewAuthHandler(mock)

	r := newRouter(model.RoleAdmin)
	r.POST("/admin/users", h.Register)
	w := doJSON(r, "POST", "/admin/users", dto.RegisterRequest{
		FirstName: "Root", Email: "root@college.edu", Password: "Secret123", Role: "Admin",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if mock.registerCaller == nil || mock.registerCaller.Role != model.RoleAdmin {
		t.Errorf("expected admin caller, got %+v", mock.registerCaller)
	}
}

func TestAuthHandler_Register_EmailTaken(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{registerErr: service.ErrEmailTaken})

	r := newRouter("")
	r.POST("/auth/register", h.Register)
	w := doJSON(r, "POST", "/auth/register", dto.RegisterRequest{
		FirstName: "Sam", Email: "sam@college.edu", Password: "Secret123", Role: "Faculty",
	})

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestAuthHandler_Logout_UsesTokenJTI(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	r := newRouter(model.RoleStudent)
	r.POST("/auth/logout", h.Logout)
	w := doJSON(r, "POST", "/auth/logout", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.logoutJTI != "test-jti" {
		t.Errorf("expected jti test-jti, got %q", mock.logoutJTI)
	}
}

func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r := newRouter("")
	r.GET("/auth/me", h.Me)
	w := doJSON(r, "GET", "/auth/me", nil)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthHandler_Me_DeletedUser(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{meErr: service.ErrUserNotFound})

	r := newRouter(model.RoleStudent)
	r.GET("/auth/me", h.Me)
	w := doJSON(r, "GET", "/auth/me", nil)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// CourseHandler Tests
// ═══════════════════════════════════════════════════════════

func TestCourseHandler_Create_InvalidCode(t *testing.T) {
	h := NewCourseHandler(&mockCourseService{}, &mockEnrollmentService{})

	r := newRouter(model.RoleFaculty)
	r.POST("/faculty/courses", h.Create)
	w := doJSON(r, "POST", "/faculty/courses", dto.CreateCourseRequest{Name: "Lab", Code: "CS L37!"})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestCourseHandler_Create_Conflict(t *testing.T) {
	h := NewCourseHandler(&mockCourseService{createErr: service.ErrCourseExists}, &mockEnrollmentService{})

	r := newRouter(model.RoleFaculty)
	r.POST("/faculty/courses", h.Create)
	w := doJSON(r, "POST", "/faculty/courses", dto.CreateCourseRequest{Name: "Lab", Code: "csl37", Section: "a"})

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 12002 {
		t.Errorf("expected code 12002, got %d", resp.Code)
	}
}

func TestCourseHandler_Create_Success(t *testing.T) {
	mock := &mockCourseService{createResult: &dto.CourseResponse{ID: testUUID, Code: "CSL37", Section: "A"}}
	h := NewCourseHandler(mock, &mockEnrollmentService{})

	r := newRouter(model.RoleFaculty)
	r.POST("/faculty/courses", h.Create)
	w := doJSON(r, "POST", "/faculty/courses", dto.CreateCourseRequest{Name: "Lab", Code: "CSL37"})

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestCourseHandler_Lookup_HidesRosterFromStudents(t *testing.T) {
	mock := &mockCourseService{findResult: &dto.CourseResponse{
		ID: testUUID, Code: "CSL37", Section: "A", Roster: []string{"s1", "s2"}, StudentsCount: 2,
	}}
	h := NewCourseHandler(mock, &mockEnrollmentService{})

	r := newRouter(model.RoleStudent)
	r.GET("/courses/:code/:section", h.Lookup)
	w := doJSON(r, "GET", "/courses/CSL37/A", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	data := parseResponse(w).Data.(map[string]interface{})
	if data["roster"] != nil {
		t.Errorf("student view must not include roster, got %v", data["roster"])
	}
	if data["studentsCount"].(float64) != 2 {
		t.Errorf("expected studentsCount 2, got %v", data["studentsCount"])
	}
}

func TestCourseHandler_Lookup_NotFound(t *testing.T) {
	h := NewCourseHandler(&mockCourseService{findErr: service.ErrCourseNotFound}, &mockEnrollmentService{})

	r := newRouter(model.RoleFaculty)
	r.GET("/courses/:code/:section", h.Lookup)
	w := doJSON(r, "GET", "/courses/NOPE/A", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// EnrollmentHandler Tests
// ═══════════════════════════════════════════════════════════

func TestEnrollmentHandler_Request_Created(t *testing.T) {
	mock := &mockEnrollmentService{requestResult: &dto.EnrollmentResponse{ID: testUUID, Status: "pending"}}
	h := NewEnrollmentHandler(mock)

	r := newRouter(model.RoleStudent)
	r.POST("/enroll", h.Request)
	w := doJSON(r, "POST", "/enroll", dto.EnrollRequest{CourseCode: "CSL37", Section: "A"})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	data := parseResponse(w).Data.(map[string]interface{})
	if data["message"] == "" {
		t.Error("expected a message")
	}
}

func TestEnrollmentHandler_Request_Duplicate(t *testing.T) {
	h := NewEnrollmentHandler(&mockEnrollmentService{requestErr: service.ErrEnrollmentPending})

	r := newRouter(model.RoleStudent)
	r.POST("/enroll", h.Request)
	w := doJSON(r, "POST", "/enroll", dto.EnrollRequest{CourseCode: "CSL37", Section: "A"})

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 13002 {
		t.Errorf("expected code 13002, got %d", resp.Code)
	}
}

func TestEnrollmentHandler_Request_CourseNotFound(t *testing.T) {
	h := NewEnrollmentHandler(&mockEnrollmentService{requestErr: service.ErrCourseNotFound})

	r := newRouter(model.RoleStudent)
	r.POST("/enroll", h.Request)
	w := doJSON(r, "POST", "/enroll", dto.EnrollRequest{CourseCode: "NOPE1"})

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestEnrollmentHandler_SetStatus_InvalidID(t *testing.T) {
	h := NewEnrollmentHandler(&mockEnrollmentService{})

	r := newRouter(model.RoleFaculty)
	r.PUT("/enrollment/:id", h.SetStatus)
	w := doJSON(r, "PUT", "/enrollment/not-a-uuid", dto.UpdateEnrollmentRequest{Status: "approved"})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestEnrollmentHandler_SetStatus_PendingRejectedByBinding(t *testing.T) {
	h := NewEnrollmentHandler(&mockEnrollmentService{})

	r := newRouter(model.RoleFaculty)
	r.PUT("/enrollment/:id", h.SetStatus)
	w := doJSON(r, "PUT", "/enrollment/"+testUUID, dto.UpdateEnrollmentRequest{Status: "pending"})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestEnrollmentHandler_SetStatus_NotOwner(t *testing.T) {
	h := NewEnrollmentHandler(&mockEnrollmentService{setErr: service.ErrEnrollmentNotOwned})

	r := newRouter(model.RoleFaculty)
	r.PUT("/enrollment/:id", h.SetStatus)
	w := doJSON(r, "PUT", "/enrollment/"+testUUID, dto.UpdateEnrollmentRequest{Status: "approved"})

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestEnrollmentHandler_ApproveAll(t *testing.T) {
	h := NewEnrollmentHandler(&mockEnrollmentService{approveResult: &dto.ApproveAllResponse{Count: 3}})

	r := newRouter(model.RoleFaculty)
	r.POST("/enrollment/approve-all", h.ApproveAll)
	w := doJSON(r, "POST", "/enrollment/approve-all", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	data := parseResponse(w).Data.(map[string]interface{})
	if data["count"].(float64) != 3 {
		t.Errorf("expected count 3, got %v", data["count"])
	}
}

// ═══════════════════════════════════════════════════════════
// SessionHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSessionHandler_Create_BadWindow(t *testing.T) {
	h := NewSessionHandler(&mockSessionService{createErr: service.ErrSessionWindowInvalid})

	r := newRouter(model.RoleFaculty)
	r.POST("/sessions", h.Create)
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	w := doJSON(r, "POST", "/sessions", dto.CreateSessionRequest{
		CourseCode: "CSL37", Section: "A", Title: "Lab 1",
		StartTime: start, EndTime: start.Add(-time.Hour), MaxMarks: 10,
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 14002 {
		t.Errorf("expected code 14002, got %d", resp.Code)
	}
}

func TestSessionHandler_Create_MissingMaxMarks(t *testing.T) {
	h := NewSessionHandler(&mockSessionService{})

	r := newRouter(model.RoleFaculty)
	r.POST("/sessions", h.Create)
	w := doJSON(r, "POST", "/sessions", `{"courseCode":"CSL37","section":"A","title":"Lab 1",`+
		`"startTime":"2026-03-02T09:00:00Z","endTime":"2026-03-02T11:00:00Z"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSessionHandler_ListByCourse_NotFound(t *testing.T) {
	h := NewSessionHandler(&mockSessionService{listErr: service.ErrCourseNotFound})

	r := newRouter(model.RoleFaculty)
	r.GET("/sessions/course/:code/:section", h.ListByCourse)
	w := doJSON(r, "GET", "/sessions/course/CSL37/B", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestSessionHandler_MarkAttendance_OutsideSnapshot(t *testing.T) {
	h := NewSessionHandler(&mockSessionService{markErr: service.ErrAttendanceNotInRoster})

	r := newRouter(model.RoleFaculty)
	r.PUT("/faculty/sessions/:id/attendance", h.MarkAttendance)
	w := doJSON(r, "PUT", "/faculty/sessions/"+testUUID+"/attendance", map[string]interface{}{
		"studentIds": []string{testUUID},
		"attended":   true,
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSessionHandler_ListForStudent_NotEnrolled(t *testing.T) {
	h := NewSessionHandler(&mockSessionService{studentErr: service.ErrNotEnrolledInCourse})

	r := newRouter(model.RoleStudent)
	r.GET("/student/courses/:code/:section/sessions", h.ListForStudent)
	w := doJSON(r, "GET", "/student/courses/CSL37/A/sessions", nil)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// SubmissionHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSubmissionHandler_Submit_Created(t *testing.T) {
	mock := &mockSubmissionService{submitResult: &dto.SubmissionResponse{ID: testUUID}}
	h := NewSubmissionHandler(mock, &mockGradingService{})

	r := newRouter(model.RoleStudent)
	r.POST("/submissions", h.Submit)
	w := doJSON(r, "POST", "/submissions", dto.SubmitRequest{SessionID: testUUID, SubmittedCode: "print(1)"})

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestSubmissionHandler_Submit_FailureModes(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not enrolled", service.ErrNotEnrolled, http.StatusForbidden},
		{"not started", service.ErrSessionNotStarted, http.StatusForbidden},
		{"ended", service.ErrSessionEnded, http.StatusForbidden},
		{"duplicate", service.ErrAlreadySubmitted, http.StatusConflict},
		{"no session", service.ErrSessionNotFound, http.StatusNotFound},
		{"storage", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewSubmissionHandler(&mockSubmissionService{submitErr: tc.err}, &mockGradingService{})

			r := newRouter(model.RoleStudent)
			r.POST("/submissions", h.Submit)
			w := doJSON(r, "POST", "/submissions", dto.SubmitRequest{SessionID: testUUID, SubmittedCode: "x"})

			if w.Code != tc.status {
				t.Errorf("expected %d, got %d", tc.status, w.Code)
			}
		})
	}
}

func TestSubmissionHandler_Submit_InternalErrorHidesDetail(t *testing.T) {
	h := NewSubmissionHandler(&mockSubmissionService{submitErr: errors.New("pq: password authentication failed")}, &mockGradingService{})

	r := newRouter(model.RoleStudent)
	r.POST("/submissions", h.Submit)
	w := doJSON(r, "POST", "/submissions", dto.SubmitRequest{SessionID: testUUID, SubmittedCode: "x"})

	if strings.Contains(w.Body.String(), "password") {
		t.Errorf("internal error leaked to client: %s", w.Body.String())
	}
}

func TestSubmissionHandler_GetByID_Forbidden(t *testing.T) {
	h := NewSubmissionHandler(&mockSubmissionService{getErr: service.ErrSubmissionNotOwned}, &mockGradingService{})

	r := newRouter(model.RoleFaculty)
	r.GET("/submissions/id/:id", h.GetByID)
	w := doJSON(r, "GET", "/submissions/id/"+testUUID, nil)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestSubmissionHandler_ListMine_Paginated(t *testing.T) {
	mock := &mockSubmissionService{
		mineResult: []dto.SubmissionResponse{{ID: testUUID}},
		mineTotal:  21,
	}
	h := NewSubmissionHandler(mock, &mockGradingService{})

	r := newRouter(model.RoleStudent)
	r.GET("/student/submissions", h.ListMine)
	w := doJSON(r, "GET", "/student/submissions?page=2&page_size=10", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.minePage.GetPage() != 2 || mock.minePage.GetPageSize() != 10 {
		t.Errorf("expected page 2 size 10, got %+v", mock.minePage)
	}
	data := parseResponse(w).Data.(map[string]interface{})
	pagination := data["pagination"].(map[string]interface{})
	if pagination["total_pages"].(float64) != 3 {
		t.Errorf("expected total_pages 3, got %v", pagination["total_pages"])
	}
}

func TestSubmissionHandler_Grade_MissingMarks(t *testing.T) {
	h := NewSubmissionHandler(&mockSubmissionService{}, &mockGradingService{})

	r := newRouter(model.RoleFaculty)
	r.PUT("/submissions/grade/:id", h.Grade)
	w := doJSON(r, "PUT", "/submissions/grade/"+testUUID, `{"feedback":"ok"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSubmissionHandler_Grade_OutOfRange(t *testing.T) {
	gradeErr := service.ErrMarksOutOfRange.WithMessage("Marks must be between 0 and %d.", 10)
	h := NewSubmissionHandler(&mockSubmissionService{}, &mockGradingService{gradeErr: gradeErr})

	r := newRouter(model.RoleFaculty)
	r.PUT("/submissions/grade/:id", h.Grade)
	w := doJSON(r, "PUT", "/submissions/grade/"+testUUID, dto.GradeRequest{Marks: floatPtr(12)})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Message != "Marks must be between 0 and 10." {
		t.Errorf("unexpected message %q", resp.Message)
	}
}

func TestSubmissionHandler_Grade_ZeroMarksAccepted(t *testing.T) {
	marks := 0.0
	mock := &mockGradingService{gradeResult: &dto.SubmissionResponse{ID: testUUID, Marks: &marks, IsReviewed: true}}
	h := NewSubmissionHandler(&mockSubmissionService{}, mock)

	r := newRouter(model.RoleFaculty)
	r.PUT("/submissions/grade/:id", h.Grade)
	w := doJSON(r, "PUT", "/submissions/grade/"+testUUID, dto.GradeRequest{Marks: floatPtr(0)})

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestSubmissionHandler_ReviewList_Forbidden(t *testing.T) {
	h := NewSubmissionHandler(&mockSubmissionService{}, &mockGradingService{reviewErr: service.ErrReviewNotOwned})

	r := newRouter(model.RoleFaculty)
	r.GET("/faculty/review/:sessionId", h.ReviewList)
	w := doJSON(r, "GET", "/faculty/review/"+testUUID, nil)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestSubmissionHandler_StudentStats(t *testing.T) {
	mock := &mockGradingService{statsResult: &dto.CourseStudentsResponse{
		Course:   dto.CourseBrief{Code: "CSL37", Section: "A"},
		Students: []dto.StudentStatResponse{{StudentID: testUUID, AssignmentsSubmitted: 1, AverageMarks: 8}},
	}}
	h := NewSubmissionHandler(&mockSubmissionService{}, mock)

	r := newRouter(model.RoleFaculty)
	r.GET("/faculty/courses/:code/:section/students", h.StudentStats)
	w := doJSON(r, "GET", "/faculty/courses/CSL37/A/students", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	data := parseResponse(w).Data.(map[string]interface{})
	students := data["students"].([]interface{})
	if len(students) != 1 {
		t.Fatalf("expected 1 student, got %d", len(students))
	}
	if avg := students[0].(map[string]interface{})["averageMarks"].(float64); avg != 8 {
		t.Errorf("expected averageMarks 8, got %v", avg)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler / AdminHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportStudentStats_Headers(t *testing.T) {
	mock := &mockExportService{buf: bytes.NewBufferString("xlsx-bytes"), filename: "CSL37_A_students.xlsx"}
	h := NewExportHandler(mock)

	r := newRouter(model.RoleFaculty)
	r.GET("/faculty/courses/:code/:section/students/export", h.ExportStudentStats)
	w := doJSON(r, "GET", "/faculty/courses/CSL37/A/students/export", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "CSL37_A_students.xlsx") {
		t.Errorf("unexpected content disposition %q", cd)
	}
	if w.Body.String() != "xlsx-bytes" {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

func TestExportHandler_ExportStudentStats_NotOwner(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrCourseNotOwned})

	r := newRouter(model.RoleFaculty)
	r.GET("/faculty/courses/:code/:section/students/export", h.ExportStudentStats)
	w := doJSON(r, "GET", "/faculty/courses/CSL37/A/students/export", nil)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestExportHandler_StudentCalendar(t *testing.T) {
	h := NewExportHandler(&mockExportService{buf: bytes.NewBufferString("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n")})

	r := newRouter(model.RoleStudent)
	r.GET("/student/sessions/calendar.ics", h.StudentCalendar)
	w := doJSON(r, "GET", "/student/sessions/calendar.ics", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/calendar") {
		t.Errorf("unexpected content type %q", w.Header().Get("Content-Type"))
	}
}

func TestAdminHandler_CreateCourse_RequiresFacultyID(t *testing.T) {
	h := NewAdminHandler(&mockCourseService{}, &mockRosterService{})

	r := newRouter(model.RoleAdmin)
	r.POST("/admin/courses", h.CreateCourse)
	w := doJSON(r, "POST", "/admin/courses", map[string]string{"name": "Lab", "code": "CSL37"})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAdminHandler_RepairRoster(t *testing.T) {
	h := NewAdminHandler(&mockCourseService{}, &mockRosterService{result: &dto.RepairResponse{CoursesUpdated: 2, UsersUpdated: 5}})

	r := newRouter(model.RoleAdmin)
	r.POST("/admin/roster/repair", h.RepairRoster)
	w := doJSON(r, "POST", "/admin/roster/repair", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	data := parseResponse(w).Data.(map[string]interface{})
	if data["usersUpdated"].(float64) != 5 {
		t.Errorf("expected usersUpdated 5, got %v", data["usersUpdated"])
	}
}
