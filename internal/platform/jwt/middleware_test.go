package jwtmw

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"product_backend/internal/platform/logger"
)

// TestMain はテスト実行前にGinをテストモードに設定します。
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// TestAuthRequired_MissingBearerToken はBearerトークンがない場合やプレフィックスが不正な場合に401が返されることを検証します。
func TestAuthRequired_MissingBearerToken(t *testing.T) {
	v, err := NewValidator(testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name       string
		authHeader string
	}{
		{"no header", ""},
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"bearer lowercase", "bearer token123"},
		{"no space after Bearer", "Bearertoken123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				c.Request.Header.Set("Authorization", tt.authHeader)
			}

			AuthRequired(v)(c)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
			}
			if !c.IsAborted() {
				t.Error("expected request to be aborted")
			}
		})
	}
}

// TestAuthRequired_InvalidToken は改ざん・期限切れのトークンで401が返されることを検証します。
func TestAuthRequired_InvalidToken(t *testing.T) {
	v, err := NewValidator(testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expired := issue(t, testConfig(), time.Now().Add(-4*time.Hour))
	valid := issue(t, testConfig(), time.Now())

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "invalid.token.value"},
		{"expired", expired},
		{"tampered", valid + "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.Header.Set("Authorization", "Bearer "+tt.token)

			AuthRequired(v)(c)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
			}
		})
	}
}

// TestAuthRequired_ValidToken は有効なトークンでユーザー情報がコンテキストに設定されることを検証します。
func TestAuthRequired_ValidToken(t *testing.T) {
	v, err := NewValidator(testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	token := issue(t, testConfig(), time.Now())

	r := gin.New()
	var gotID, gotName string
	r.GET("/me", AuthRequired(v), func(c *gin.Context) {
		gotID, _ = UserID(c)
		gotName = c.GetString(ContextUserName)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if gotID != "user-1" {
		t.Errorf("expected user id %q, got %q", "user-1", gotID)
	}
	if gotName != "alice" {
		t.Errorf("expected user name %q, got %q", "alice", gotName)
	}
}

func TestUserID_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, ok := UserID(c); ok {
		t.Error("expected no user id")
	}
}

// TestAuthRequired_LogsRejectionReason は拒否理由がキー "error" の文字列として記録されることを検証します。
func TestAuthRequired_LogsRejectionReason(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger.NewWithWriter(&buf, "info", "json")

	v, err := NewValidator(testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/products", nil)
	c.Request.Header.Set("Authorization", "Bearer not-a-token")

	AuthRequired(v)(c)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected one JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "token rejected" {
		t.Errorf("expected msg %q, got %v", "token rejected", entry["msg"])
	}
	reason, ok := entry["error"].(string)
	if !ok || reason == "" {
		t.Errorf("expected non-empty string attribute \"error\", got %#v", entry["error"])
	}
	if entry["path"] != "/api/products" {
		t.Errorf("expected path %q, got %v", "/api/products", entry["path"])
	}
}
