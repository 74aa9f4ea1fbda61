package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appAuth "github.com/vicky2929-er/student-smart-hub-sub002/internal/app/auth"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/controllers"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/repositories"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/services"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/middleware"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/auth"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/cache"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/filestorage"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/websocket"
)

type testEnv struct {
	t            *testing.T
	router       *gin.Engine
	store        *repositories.MemoryStore
	jwt          *auth.JWTService
	requests     *services.InstituteRequestService
	hierarchy    *services.HierarchyService
	achievements *services.AchievementService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	binding.EnableDecoderDisallowUnknownFields = true

	store := repositories.NewMemoryStore()
	storage, err := filestorage.NewLocalStorage(t.TempDir(), "/uploads/certificates")
	require.NoError(t, err)
	hub := websocket.NewHub(zerolog.Nop())
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "routes-test", AccessTokenExp: time.Hour, TokenIssuer: "test"})

	env := &testEnv{
		t:            t,
		store:        store,
		jwt:          jwtService,
		requests:     services.NewInstituteRequestService(store, nil, nil),
		hierarchy:    services.NewHierarchyService(store, nil),
		achievements: services.NewAchievementService(store, storage, hub, services.ReviewPolicy{}, nil),
	}
	analytics := services.NewAnalyticsService(store, cache.NewMemory(), time.Minute, nil)
	authz := appAuth.NewAuthorizationService(store)

	env.router = gin.New()
	SetupRouter(env.router, Controllers{
		Hierarchy:        controllers.NewHierarchyController(env.hierarchy, analytics, authz),
		Achievement:      controllers.NewAchievementController(env.achievements, authz),
		Analytics:        controllers.NewAnalyticsController(analytics, authz),
		Audit:            controllers.NewAuditController(env.hierarchy, analytics, authz),
		InstituteRequest: controllers.NewInstituteRequestController(env.requests, analytics),
		Import:           controllers.NewImportController(services.NewBulkImportService(env.hierarchy, store), analytics, authz),
		WebSocket:        websocket.NewHandler(hub, nil, zerolog.Nop()),
	}, middleware.NewAuthMiddleware(jwtService))
	return env
}

func (e *testEnv) token(subjectID string, role auth.Role) string {
	tok, _, err := e.jwt.GenerateToken(subjectID, subjectID+"@test.edu", role)
	require.NoError(e.t, err)
	return tok
}

func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// approvedInstitute registers and approves an institute through the service.
func (e *testEnv) approvedInstitute(name, aishe, mail string) *models.Institute {
	ctx := context.Background()
	req, err := e.requests.Submit(ctx, services.InstituteRequestInput{Name: name, AisheCode: aishe, Type: "University", Email: mail})
	require.NoError(e.t, err)
	inst, err := e.requests.Approve(ctx, req.ID, "")
	require.NoError(e.t, err)
	return inst
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code string `json:"code"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func TestHealthAndAuthentication(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/v1/health", "", nil).Code)

	w := env.do(http.MethodGet, "/api/v1/institutes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodGet, "/api/v1/institutes", env.token("s1", auth.RoleStudent), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestInstituteRequestLifecycle(t *testing.T) {
	env := newTestEnv(t)
	admin := env.token("root", auth.RoleSuperAdmin)

	w := env.do(http.MethodPost, "/api/v1/institute-requests", "", map[string]string{
		"name": "Northern Institute", "aisheCode": "U-0451", "type": "University", "email": "Office@Northern.edu",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var req models.InstituteRequest
	decode(t, w, &req)
	assert.Equal(t, models.ApprovalPending, req.Status)

	w = env.do(http.MethodGet, "/api/v1/institute-requests?status=Pending", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Items []models.InstituteRequest `json:"items"`
	}
	decode(t, w, &page)
	require.Len(t, page.Items, 1)

	w = env.do(http.MethodPost, "/api/v1/institute-requests/"+req.ID+"/approve", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var inst models.Institute
	decode(t, w, &inst)
	assert.True(t, strings.HasPrefix(inst.Code, "NORU04"), inst.Code)

	w = env.do(http.MethodPost, "/api/v1/institute-requests/"+req.ID+"/reject", admin, map[string]string{"comment": "late"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "REQ_001", decode(t, w, nil).Error.Code)
}

func TestHierarchyCreationAndOwnership(t *testing.T) {
	env := newTestEnv(t)
	inst := env.approvedInstitute("Alpha College", "C-1001", "alpha@test.edu")
	other := env.approvedInstitute("Beta College", "C-2002", "beta@test.edu")
	owner := env.token(inst.ID, auth.RoleInstitute)

	w := env.do(http.MethodPost, "/api/v1/colleges", owner, map[string]string{"name": "Engineering", "code": "ENG"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var college models.College
	decode(t, w, &college)
	assert.Equal(t, inst.ID, college.InstituteID)

	w = env.do(http.MethodPost, "/api/v1/departments", env.token(other.ID, auth.RoleInstitute),
		map[string]string{"collegeId": college.ID, "name": "Civil", "code": "CIV"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodPost, "/api/v1/departments", owner,
		map[string]string{"collegeId": college.ID, "name": "Civil", "code": "CIV", "budget": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "unknown fields are rejected")

	w = env.do(http.MethodPost, "/api/v1/departments", owner, map[string]string{"collegeId": college.ID, "name": "Civil", "code": "CIV"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var dept models.Department
	decode(t, w, &dept)
	assert.Equal(t, inst.ID, dept.InstituteID)

	w = env.do(http.MethodPost, "/api/v1/students", env.token("root", auth.RoleSuperAdmin), map[string]string{
		"departmentId": "missing", "firstName": "A", "lastName": "B", "studentCode": "S1", "email": "a@b.edu",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "RES_003", decode(t, w, nil).Error.Code)

	w = env.do(http.MethodGet, "/api/v1/colleges/"+college.ID+"/departments", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Items      []models.Department `json:"items"`
		Pagination struct {
			TotalItems int `json:"totalItems"`
		} `json:"pagination"`
	}
	decode(t, w, &page)
	assert.Equal(t, 1, page.Pagination.TotalItems)
}

// rosterFixture builds a department with coordinator F and student S
// through the services.
func (e *testEnv) rosterFixture() (*models.Institute, *models.Faculty, *models.Student) {
	ctx := context.Background()
	inst := e.approvedInstitute("Gamma University", "U-3003", "gamma@test.edu")
	college, err := e.hierarchy.CreateCollege(ctx, services.CreateCollegeInput{InstituteID: inst.ID, Name: "Science", Code: "SCI"})
	require.NoError(e.t, err)
	dept, err := e.hierarchy.CreateDepartment(ctx, services.CreateDepartmentInput{CollegeID: college.ID, Name: "Physics", Code: "PHY"})
	require.NoError(e.t, err)
	f, err := e.hierarchy.CreateFaculty(ctx, services.CreateFacultyInput{
		DepartmentID: dept.ID, FirstName: "Ada", LastName: "K", FacultyCode: "F1", Email: "ada@gamma.edu", IsCoordinator: true,
	})
	require.NoError(e.t, err)
	s, err := e.hierarchy.CreateStudent(ctx, services.CreateStudentInput{
		DepartmentID: dept.ID, CoordinatorID: f.ID, FirstName: "Bo", LastName: "L", StudentCode: "S1", Email: "bo@gamma.edu",
	})
	require.NoError(e.t, err)
	return inst, f, s
}

func TestAchievementSubmitReviewFlow(t *testing.T) {
	env := newTestEnv(t)
	_, faculty, student := env.rosterFixture()
	studentTok := env.token(student.ID, auth.RoleStudent)
	facultyTok := env.token(faculty.ID, auth.RoleFaculty)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "Regional Hackathon"))
	require.NoError(t, mw.WriteField("category", "Hackathon"))
	require.NoError(t, mw.WriteField("dateCompleted", "2024-11-02"))
	fw, err := mw.CreateFormFile("certificate", "proof.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("%PDF-1.4 test"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/achievements", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+studentTok)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var achievement models.Achievement
	decode(t, w, &achievement)
	assert.Equal(t, models.AchievementPending, achievement.Status)
	assert.NotEmpty(t, achievement.CertificateURL)

	w = env.do(http.MethodGet, "/api/v1/reviews/pending", facultyTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var queue struct {
		Items []services.PendingItem `json:"items"`
	}
	decode(t, w, &queue)
	require.Len(t, queue.Items, 1)
	assert.Equal(t, achievement.ID, queue.Items[0].Achievement.ID)

	reviewPath := "/api/v1/students/" + student.ID + "/achievements/" + achievement.ID + "/review"
	w = env.do(http.MethodPost, reviewPath, facultyTok, map[string]string{"decision": "Approved", "comment": "ok"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(http.MethodPost, reviewPath, facultyTok, map[string]string{"decision": "Rejected", "comment": "again"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ACH_001", decode(t, w, nil).Error.Code)

	w = env.do(http.MethodGet, "/api/v1/students/"+student.ID+"/achievements?status=Approved", studentTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Items []models.Achievement `json:"items"`
	}
	decode(t, w, &list)
	require.Len(t, list.Items, 1)

	w = env.do(http.MethodGet, "/api/v1/analytics/students/"+student.ID, studentTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats services.StudentStats
	decode(t, w, &stats)
	assert.Equal(t, 1, stats.Counts.Approved)
	assert.Equal(t, 100, stats.ApprovalRate)
}

func TestSubmitRejectsUnknownCategory(t *testing.T) {
	env := newTestEnv(t)
	_, _, student := env.rosterFixture()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "Something"))
	require.NoError(t, mw.WriteField("category", "Sports"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/achievements", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.token(student.ID, auth.RoleStudent))
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ACH_003", decode(t, w, nil).Error.Code)
}

func TestAuditScopeIsPinnedForInstitutes(t *testing.T) {
	env := newTestEnv(t)
	inst, _, _ := env.rosterFixture()
	tok := env.token(inst.ID, auth.RoleInstitute)

	w := env.do(http.MethodPost, "/api/v1/audit/verify", tok, map[string]string{"instituteId": "someone-else"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodPost, "/api/v1/audit/verify", tok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var report services.ConsistencyReport
	decode(t, w, &report)
	assert.Equal(t, "institute/"+inst.ID, report.Scope)
	assert.Empty(t, report.Violations)
}

func TestBulkImportEndpoint(t *testing.T) {
	env := newTestEnv(t)
	inst, faculty, _ := env.rosterFixture()
	lines := []string{
		`{"kind":"faculty","faculty":{"departmentId":"` + faculty.DepartmentID + `","firstName":"Cy","lastName":"M","facultyCode":"F2","email":"cy@gamma.edu"}}`,
		`{"kind":"student","student":{"departmentId":"` + faculty.DepartmentID + `","firstName":"Di","lastName":"N","studentCode":"S2","email":"di@gamma.edu"},"coordinatorCode":"F2"}`,
		`{"kind":"student","student":{"departmentId":"nowhere","firstName":"Ed","lastName":"O","studentCode":"S3","email":"ed@gamma.edu"}}`,
	}

	w := env.do(http.MethodPost, "/api/v1/import", env.token(inst.ID, auth.RoleInstitute), strings.Join(lines, "\n"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result services.ImportResult
	decode(t, w, &result)
	assert.Len(t, result.Faculties, 1)
	assert.Len(t, result.Students, 1)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, 3, result.Failed[0].Line)
}

func TestReassignRefreshesReleasedCoordinatorStats(t *testing.T) {
	env := newTestEnv(t)
	inst, faculty, student := env.rosterFixture()
	tok := env.token(inst.ID, auth.RoleInstitute)

	dept, err := env.store.GetDepartment(context.Background(), faculty.DepartmentID)
	require.NoError(t, err)
	other, err := env.hierarchy.CreateDepartment(context.Background(), services.CreateDepartmentInput{CollegeID: dept.CollegeID, Name: "Chemistry", Code: "CHE"})
	require.NoError(t, err)

	statsPath := "/api/v1/analytics/faculties/" + faculty.ID
	w := env.do(http.MethodGet, statsPath, tok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var before services.FacultyStats
	decode(t, w, &before)
	require.Equal(t, 1, before.RosterSize)

	w = env.do(http.MethodPost, "/api/v1/hierarchy/reassign", tok, map[string]interface{}{
		"child":     models.Ref{Kind: models.KindStudent, ID: student.ID},
		"oldParent": models.Ref{Kind: models.KindDepartment, ID: dept.ID},
		"newParent": models.Ref{Kind: models.KindDepartment, ID: other.ID},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(http.MethodGet, statsPath, tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var after services.FacultyStats
	decode(t, w, &after)
	assert.Equal(t, 0, after.RosterSize)
}
