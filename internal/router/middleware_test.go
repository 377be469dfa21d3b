package router

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/talowa-app/internal/models"
	"github.com/talowa-app/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newMiddlewareTestUserRepo(t *testing.T) repository.UserRepository {
	t.Helper()

	dsn := fmt.Sprintf("file:middleware_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repository.NewUserRepository(db)
}

func TestResolveAllowedOrigin(t *testing.T) {
	cases := []struct {
		name             string
		origin           string
		allowedOrigins   []string
		allowCredentials bool
		want             string
	}{
		{name: "wildcard", origin: "https://panel.example.com", allowedOrigins: []string{"*"}, want: "*"},
		{name: "wildcard with credentials echoes origin", origin: "https://panel.example.com", allowedOrigins: []string{"*"}, allowCredentials: true, want: "https://panel.example.com"},
		{name: "exact match", origin: "https://panel.example.com", allowedOrigins: []string{"https://panel.example.com"}, want: "https://panel.example.com"},
		{name: "no match", origin: "https://evil.example.com", allowedOrigins: []string{"https://panel.example.com"}, want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := resolveAllowedOrigin(tc.origin, tc.allowedOrigins, tc.allowCredentials)
			if got != tc.want {
				t.Fatalf("resolveAllowedOrigin(%q) = %q, want %q", tc.origin, got, tc.want)
			}
		})
	}
}

func TestRequestIDMiddlewareEchoesHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestIDMiddleware())
	engine.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, getRequestID(c))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-123")
	engine.ServeHTTP(w, req)

	if w.Body.String() != "req-123" {
		t.Fatalf("request id in context = %q, want req-123", w.Body.String())
	}
	if got := w.Header().Get("X-Request-ID"); got != "req-123" {
		t.Fatalf("response header = %q, want req-123", got)
	}
}

func TestRequestIDMiddlewareGeneratesID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestIDMiddleware())
	engine.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, getRequestID(c))
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if w.Body.String() == "" {
		t.Fatal("expected a generated request id in context")
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected a generated request id header")
	}
}

func TestJWTAuthMiddlewareMissingSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(JWTAuthMiddleware("", nil))
	engine.GET("/admin/overview", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/overview", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if !strings.Contains(w.Body.String(), "UNAUTHENTICATED") {
		t.Fatalf("body = %s, want UNAUTHENTICATED error code", w.Body.String())
	}
}

func TestUserJWTAuthMiddlewareRejectsMalformedHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not bearer", header: "Basic abc123"},
		{name: "garbage token", header: "Bearer not.a.jwt"},
	}

	userRepo := newMiddlewareTestUserRepo(t)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := gin.New()
			engine.Use(UserJWTAuthMiddleware("test-secret-key-0123456789abcdef", userRepo))
			engine.GET("/me", func(c *gin.Context) {
				c.String(http.StatusOK, "ok")
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			engine.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
			}
			if !strings.Contains(w.Body.String(), "UNAUTHENTICATED") {
				t.Fatalf("body = %s, want UNAUTHENTICATED error code", w.Body.String())
			}
		})
	}
}
