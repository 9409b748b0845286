package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"streamdash/internal/core/domain"
	"streamdash/internal/core/services"

	"github.com/gin-gonic/gin"
)

func newAuthTestRouter(t *testing.T, requiredRole domain.UserRole) (*gin.Engine, services.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	authService := services.NewAuthService("test-secret", time.Hour)

	router := gin.New()
	handlers := []gin.HandlerFunc{AuthMiddleware(authService)}
	if requiredRole != "" {
		handlers = append(handlers, RequireRole(requiredRole))
	}
	handlers = append(handlers, func(c *gin.Context) {
		claims, _ := ClaimsFromContext(c)
		c.JSON(http.StatusOK, gin.H{"username": claims.Username})
	})
	router.GET("/protected", handlers...)
	return router, authService
}

func request(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	router, _ := newAuthTestRouter(t, "")

	w := request(router, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_BadHeaderFormat(t *testing.T) {
	router, authService := newAuthTestRouter(t, "")

	token, err := authService.GenerateToken(domain.User{ID: 1, Username: "alice"})
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	for _, header := range []string{"Basic " + token, token, "Bearer"} {
		if w := request(router, header); w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, w.Code)
		}
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	router, _ := newAuthTestRouter(t, "")

	w := request(router, "Bearer not-a-real-token")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_ValidTokenStoresClaims(t *testing.T) {
	router, authService := newAuthTestRouter(t, "")

	token, err := authService.GenerateToken(domain.User{ID: 1, Username: "alice", Role: domain.RoleViewer})
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	w := request(router, "Bearer "+token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body := w.Body.String(); body != `{"username":"alice"}` {
		t.Errorf("body = %s", body)
	}
}

func TestRequireRole_WrongRoleIsForbidden(t *testing.T) {
	router, authService := newAuthTestRouter(t, domain.RoleAdmin)

	token, err := authService.GenerateToken(domain.User{ID: 1, Username: "alice", Role: domain.RoleViewer})
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	// Valid token with the wrong role is 403, not 401.
	w := request(router, "Bearer "+token)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestRequireRole_MatchingRolePasses(t *testing.T) {
	router, authService := newAuthTestRouter(t, domain.RoleAdmin)

	token, err := authService.GenerateToken(domain.User{ID: 1, Username: "root", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if w := request(router, "Bearer "+token); w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
