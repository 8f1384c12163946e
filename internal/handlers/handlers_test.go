package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dream_build_backend/internal/middleware"
	"dream_build_backend/internal/models"
	"dream_build_backend/internal/services"
	"dream_build_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var (
	testManager  = &models.User{ID: uuid.New(), FullName: "Maya", Role: models.RoleManager}
	testEmployee = &models.User{ID: uuid.New(), FullName: "Erik", Role: models.RoleEmployee}
)

type stubVerifier struct{}

func (stubVerifier) ResolveSession(token string) (models.Session, *utils.Claims, error) {
	switch token {
	case "manager":
		return models.NewSession(testManager), &utils.Claims{UserID: testManager.ID.String(), Role: testManager.Role}, nil
	case "employee":
		return models.NewSession(testEmployee), &utils.Claims{UserID: testEmployee.ID.String(), Role: testEmployee.Role}, nil
	}
	return models.AnonymousSession(), nil, errors.New("unknown token")
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
	engine := gin.New()
	engine.Use(middleware.SessionMiddleware(stubVerifier{}))
	return engine
}

func do(engine *gin.Engine, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func doJSON(engine *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	return do(engine, method, path, token, strings.NewReader(body), "application/json")
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error utils.APIError `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding error body %q: %v", w.Body.String(), err)
	}
	return body.Error.Code
}

type stubSchoolService struct {
	services.SchoolService
	created   *services.CreateSchoolRequest
	createErr error
	deleteErr error
}

func (s *stubSchoolService) CreateSchool(req services.CreateSchoolRequest) (*models.School, error) {
	s.created = &req
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &models.School{ID: 7, Name: req.Name, PricePerDay: req.PricePerDay}, nil
}

func (s *stubSchoolService) DeleteSchool(int64) error { return s.deleteErr }

func TestCreateSchoolHandler(t *testing.T) {
	svc := &stubSchoolService{}
	engine := newEngine()
	h := NewSchoolHandler(svc)
	engine.POST("/schools", middleware.RequireRole(models.RoleManager), h.CreateSchool)

	w := doJSON(engine, http.MethodPost, "/schools", "manager", `{"price_per_day":"1200"}`)
	if w.Code != http.StatusBadRequest || errorCode(t, w) != utils.ErrCodeValidationFailed {
		t.Fatalf("missing name: code %d body %s", w.Code, w.Body.String())
	}
	if svc.created != nil {
		t.Fatalf("service called for invalid payload")
	}

	w = doJSON(engine, http.MethodPost, "/schools", "manager", `{"name":"Oak School","price_per_day":"1200"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: code %d body %s", w.Code, w.Body.String())
	}
	if svc.created.Name != "Oak School" || svc.created.PricePerDay.String() != "1200" {
		t.Fatalf("request not forwarded: %+v", svc.created)
	}

	svc.createErr = services.ErrSchoolNameExists
	w = doJSON(engine, http.MethodPost, "/schools", "manager", `{"name":"Oak School"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate: code %d", w.Code)
	}

	w = doJSON(engine, http.MethodPost, "/schools", "employee", `{"name":"Elm"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("employee create: code %d", w.Code)
	}
	w = doJSON(engine, http.MethodPost, "/schools", "", `{"name":"Elm"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous create: code %d", w.Code)
	}
}

func TestDeleteSchoolHandlerErrors(t *testing.T) {
	svc := &stubSchoolService{}
	engine := newEngine()
	engine.DELETE("/schools/:id", NewSchoolHandler(svc).DeleteSchool)

	tests := []struct {
		name string
		path string
		err  error
		want int
	}{
		{"bad id", "/schools/abc", nil, http.StatusBadRequest},
		{"not found", "/schools/3", services.ErrSchoolNotFound, http.StatusNotFound},
		{"in use", "/schools/3", services.ErrSchoolInUse, http.StatusConflict},
		{"db failure", "/schools/3", errors.New("boom"), http.StatusInternalServerError},
		{"ok", "/schools/3", nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc.deleteErr = tt.err
			w := do(engine, http.MethodDelete, tt.path, "", nil, "")
			if w.Code != tt.want {
				t.Fatalf("code = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

type stubActivityService struct {
	services.ActivityService
	createCalls int
	confirmErr  error
	confirmedBy *models.User
}

func (s *stubActivityService) CreateActivity(req services.CreateActivityRequest) (*models.Activity, error) {
	s.createCalls++
	return &models.Activity{ID: 1, SchoolID: req.SchoolID, Date: req.Date, TimeStart: req.TimeStart, TimeEnd: req.TimeEnd}, nil
}

func (s *stubActivityService) ConfirmActivity(session models.Session, id int64) (*models.Activity, error) {
	s.confirmedBy = session.User
	if s.confirmErr != nil {
		return nil, s.confirmErr
	}
	return &models.Activity{ID: id, Status: models.ActivityStatusCompleted, ConfirmedByEmployee: true}, nil
}

func TestCreateActivityValidatesTimes(t *testing.T) {
	svc := &stubActivityService{}
	engine := newEngine()
	engine.POST("/activities", NewActivityHandler(svc).CreateActivity)

	w := doJSON(engine, http.MethodPost, "/activities", "manager",
		`{"school_id":1,"date":"2024-03-04","time_start":"25:00","time_end":"13:00"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad time: code %d", w.Code)
	}
	w = doJSON(engine, http.MethodPost, "/activities", "manager",
		`{"school_id":1,"date":"2024-03-04","time_start":"08:00","time_end":"13:00","status":"maybe"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad status: code %d", w.Code)
	}
	if svc.createCalls != 0 {
		t.Fatalf("service called %d times for invalid payloads", svc.createCalls)
	}

	w = doJSON(engine, http.MethodPost, "/activities", "manager",
		`{"school_id":1,"date":"2024-03-04","time_start":"08:00","time_end":"13:00","status":"planned"}`)
	if w.Code != http.StatusCreated || svc.createCalls != 1 {
		t.Fatalf("valid create: code %d calls %d", w.Code, svc.createCalls)
	}
}

func TestConfirmActivityErrorMapping(t *testing.T) {
	svc := &stubActivityService{}
	engine := newEngine()
	engine.POST("/activities/:id/confirm", middleware.RequireRole(models.RoleEmployee), NewActivityHandler(svc).ConfirmActivity)

	svc.confirmErr = services.ErrActivityForbidden
	if w := do(engine, http.MethodPost, "/activities/5/confirm", "employee", nil, ""); w.Code != http.StatusForbidden {
		t.Fatalf("forbidden: code %d", w.Code)
	}
	svc.confirmErr = services.ErrActivityNotDue
	if w := do(engine, http.MethodPost, "/activities/5/confirm", "employee", nil, ""); w.Code != http.StatusConflict {
		t.Fatalf("not due: code %d", w.Code)
	}
	svc.confirmErr = nil
	w := do(engine, http.MethodPost, "/activities/5/confirm", "employee", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("confirm: code %d", w.Code)
	}
	if svc.confirmedBy == nil || svc.confirmedBy.ID != testEmployee.ID {
		t.Fatalf("session user not forwarded: %+v", svc.confirmedBy)
	}
}

type stubImportService struct {
	services.ImportService
	kind     string
	filename string
	importer uuid.UUID
	content  string
}

func (s *stubImportService) Import(kind string, file io.Reader, filename string, importer uuid.UUID) (*models.ImportResult, error) {
	if kind == "widgets" {
		return nil, services.ErrUnknownImportType
	}
	data, _ := io.ReadAll(file)
	s.kind, s.filename, s.importer, s.content = kind, filename, importer, string(data)
	return &models.ImportResult{Type: kind, TotalRows: 1, SuccessCount: 1, Errors: []string{}}, nil
}

func (s *stubImportService) Template(kind string) ([]byte, error) {
	if kind == "widgets" {
		return nil, services.ErrUnknownImportType
	}
	return []byte("name,price_per_day\n"), nil
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte(content))
	mw.Close()
	return buf, mw.FormDataContentType()
}

func TestImportHandler(t *testing.T) {
	svc := &stubImportService{}
	engine := newEngine()
	h := NewImportHandler(svc)
	engine.POST("/import/:type", middleware.RequireRole(models.RoleManager), h.Import)
	engine.GET("/import/templates/:type", h.DownloadTemplate)

	body, ct := multipartBody(t, "file", "schools.csv", "name\nOak\n")
	w := do(engine, http.MethodPost, "/import/schools", "manager", body, ct)
	if w.Code != http.StatusOK {
		t.Fatalf("import: code %d body %s", w.Code, w.Body.String())
	}
	if svc.kind != "schools" || svc.filename != "schools.csv" || svc.importer != testManager.ID || svc.content != "name\nOak\n" {
		t.Fatalf("upload not forwarded: %+v", svc)
	}

	body, ct = multipartBody(t, "upload", "schools.csv", "name\n")
	if w := do(engine, http.MethodPost, "/import/schools", "manager", body, ct); w.Code != http.StatusBadRequest {
		t.Fatalf("wrong field: code %d", w.Code)
	}

	body, ct = multipartBody(t, "file", "w.csv", "a\n")
	if w := do(engine, http.MethodPost, "/import/widgets", "manager", body, ct); w.Code != http.StatusNotFound {
		t.Fatalf("unknown type: code %d", w.Code)
	}

	w = do(engine, http.MethodGet, "/import/templates/schools", "", nil, "")
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv") {
		t.Fatalf("template: code %d type %q", w.Code, w.Header().Get("Content-Type"))
	}
	if w := do(engine, http.MethodGet, "/import/templates/widgets", "", nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("unknown template: code %d", w.Code)
	}
}
