package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"dream_build_backend/internal/models"
	"dream_build_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type stubVerifier map[string]*models.User

func (v stubVerifier) ResolveSession(token string) (models.Session, *utils.Claims, error) {
	user, ok := v[token]
	if !ok {
		return models.AnonymousSession(), nil, errors.New("unknown token")
	}
	return models.NewSession(user), &utils.Claims{UserID: user.ID.String(), Role: user.Role}, nil
}

func newTestRouter(handlerRuns *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	verifier := stubVerifier{
		"manager-token":  {ID: uuid.New(), FullName: "Maya", Role: models.RoleManager},
		"employee-token": {ID: uuid.New(), FullName: "Dana", Role: models.RoleEmployee},
	}
	r := gin.New()
	r.Use(SessionMiddleware(verifier))

	handler := func(c *gin.Context) {
		*handlerRuns++
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
	r.GET("/manager", RequireRole(models.RoleManager), handler)
	r.GET("/employee", RequireRole(models.RoleEmployee), handler)
	r.GET("/open", func(c *gin.Context) {
		c.JSON(http.StatusOK, GetSession(c))
	})
	return r
}

func doRequest(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireRoleRejectsAnonymousIdempotently(t *testing.T) {
	runs := 0
	r := newTestRouter(&runs)

	var bodies []string
	for i := 0; i < 2; i++ {
		for _, token := range []string{"", "forged-token"} {
			w := doRequest(r, "/employee", token)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", w.Code)
			}
			bodies = append(bodies, w.Body.String())
		}
	}
	if runs != 0 {
		t.Fatalf("handler ran %d times for anonymous requests", runs)
	}
	if bodies[0] != bodies[2] {
		t.Fatalf("repeated request gave different output: %s vs %s", bodies[0], bodies[2])
	}

	var body struct {
		Error utils.APIError `json:"error"`
	}
	if err := json.Unmarshal([]byte(bodies[0]), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Message != LoginRequiredMessage || body.Error.Code != utils.ErrCodeUnauthorized {
		t.Fatalf("error = %+v", body.Error)
	}
}

func TestRequireRoleByRole(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"employee denied manager route", "/manager", "employee-token", http.StatusForbidden},
		{"employee admitted to employee route", "/employee", "employee-token", http.StatusOK},
		{"manager admitted to manager route", "/manager", "manager-token", http.StatusOK},
		{"manager admitted to employee route", "/employee", "manager-token", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs := 0
			r := newTestRouter(&runs)
			w := doRequest(r, tt.path, tt.token)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
			if (tt.want == http.StatusOK) != (runs == 1) {
				t.Fatalf("handler runs = %d", runs)
			}
		})
	}
}

func TestSessionMiddlewareNeverAborts(t *testing.T) {
	runs := 0
	r := newTestRouter(&runs)

	for _, tc := range []struct {
		token string
		auth  bool
	}{
		{"", false},
		{"forged-token", false},
		{"employee-token", true},
	} {
		w := doRequest(r, "/open", tc.token)
		if w.Code != http.StatusOK {
			t.Fatalf("token %q: status = %d", tc.token, w.Code)
		}
		var session models.Session
		if err := json.Unmarshal(w.Body.Bytes(), &session); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if session.Authenticated != tc.auth {
			t.Fatalf("token %q: authenticated = %v", tc.token, session.Authenticated)
		}
	}
}

func TestBearerToken(t *testing.T) {
	if tok, ok := bearerToken("bearer abc"); !ok || tok != "abc" {
		t.Fatalf("lower-case scheme: %q %v", tok, ok)
	}
	if _, ok := bearerToken("Basic abc"); ok {
		t.Fatalf("basic scheme accepted")
	}
	if _, ok := bearerToken("Bearer"); ok {
		t.Fatalf("missing token accepted")
	}
}
