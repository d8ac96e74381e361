package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"porkbun_console/internal/auth"
	"porkbun_console/internal/httpx"
)

func setupProtectedRouter(extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthRequired()}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		httpx.OK(c, gin.H{"role": c.GetString("role")})
	})
	r.GET("/protected", handlers...)
	return r
}

func request(r *gin.Engine, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired_MissingHeader(t *testing.T) {
	auth.InitJWT("test-secret")
	r := setupProtectedRouter()

	w := request(r, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d; want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAuthRequired_InvalidToken(t *testing.T) {
	auth.InitJWT("test-secret")
	r := setupProtectedRouter()

	w := request(r, "garbage")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d; want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAuthRequired_ValidToken(t *testing.T) {
	auth.InitJWT("test-secret")
	r := setupProtectedRouter()

	token, err := auth.GenerateToken(1, "operator", auth.RoleAdmin, time.Hour, "porkbun_console")
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	w := request(r, token)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d; want %d", w.Code, http.StatusOK)
	}
}

func TestMutationAllowed_RejectsViewer(t *testing.T) {
	auth.InitJWT("test-secret")
	r := setupProtectedRouter(MutationAllowed())

	token, err := auth.GenerateToken(2, "readonly", auth.RoleViewer, time.Hour, "porkbun_console")
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	w := request(r, token)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d; want %d", w.Code, http.StatusForbidden)
	}
}

func TestMutationAllowed_AllowsAdmin(t *testing.T) {
	auth.InitJWT("test-secret")
	r := setupProtectedRouter(MutationAllowed())

	token, err := auth.GenerateToken(1, "operator", auth.RoleAdmin, time.Hour, "porkbun_console")
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	w := request(r, token)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d; want %d", w.Code, http.StatusOK)
	}
}
