package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product_backend/internal/api"
	"product_backend/internal/feature/auth/usecase"
)

// mockAuthUsecase is a mock implementation of the AuthUsecase interface.
type mockAuthUsecase struct {
	RegisterFunc func(ctx context.Context, username, email, password string) usecase.Outcome
	LoginFunc    func(ctx context.Context, email, password string) usecase.Outcome
}

func (m *mockAuthUsecase) Register(ctx context.Context, username, email, password string) usecase.Outcome {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, username, email, password)
	}
	return usecase.Outcome{Success: true, Message: "User registered successfully!"}
}

func (m *mockAuthUsecase) Login(ctx context.Context, email, password string) usecase.Outcome {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return usecase.Outcome{Code: usecase.CodeAuthenticationFailed, Message: "Invalid credentials"}
}

func doJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Register(t *testing.T) {
	gin.SetMode(gin.TestMode)

	valid := gin.H{"userName": "alice", "email": "alice@example.com", "password": "Passw0rd!"}

	tests := []struct {
		name           string
		requestBody    gin.H
		outcome        *usecase.Outcome
		expectedStatus int
		expectCalled   bool
	}{
		{
			name:           "success: user registration",
			requestBody:    valid,
			outcome:        &usecase.Outcome{Success: true, Message: "User registered successfully!"},
			expectedStatus: http.StatusCreated,
			expectCalled:   true,
		},
		{
			name:           "failure: invalid email address",
			requestBody:    gin.H{"userName": "alice", "email": "invalid-email", "password": "Passw0rd!"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "failure: missing username",
			requestBody:    gin.H{"email": "alice@example.com", "password": "Passw0rd!"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "failure: duplicate email",
			requestBody:    valid,
			outcome:        &usecase.Outcome{Code: usecase.CodeDuplicateEmail, Message: "Email already exists."},
			expectedStatus: http.StatusConflict,
			expectCalled:   true,
		},
		{
			name:           "failure: duplicate username",
			requestBody:    valid,
			outcome:        &usecase.Outcome{Code: usecase.CodeDuplicateUsername, Message: "Username already exists."},
			expectedStatus: http.StatusConflict,
			expectCalled:   true,
		},
		{
			name:           "failure: password policy",
			requestBody:    valid,
			outcome:        &usecase.Outcome{Code: usecase.CodeCredentialRejected, ErrorDetails: []string{"a", "b"}},
			expectedStatus: http.StatusBadRequest,
			expectCalled:   true,
		},
		{
			name:           "failure: unexpected",
			requestBody:    valid,
			outcome:        &usecase.Outcome{Code: usecase.CodeUnexpectedFailure},
			expectedStatus: http.StatusInternalServerError,
			expectCalled:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			mockUC := &mockAuthUsecase{
				RegisterFunc: func(ctx context.Context, username, email, password string) usecase.Outcome {
					called = true
					assert.Equal(t, "alice", username)
					return *tt.outcome
				},
			}
			router := gin.New()
			router.POST("/register", NewAuthHandler(mockUC).Register)

			w := doJSON(t, router, "/register", tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectCalled, called)
		})
	}
}

// TestAuthHandler_Register_ErrorDetails は拒否理由がすべてレスポンスに含まれることを検証します。
func TestAuthHandler_Register_ErrorDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockUC := &mockAuthUsecase{
		RegisterFunc: func(context.Context, string, string, string) usecase.Outcome {
			return usecase.Outcome{
				Code:         usecase.CodeCredentialRejected,
				Message:      "User creation failed!",
				ErrorDetails: []string{"Passwords must have at least one digit ('0'-'9').", "Passwords must have at least one uppercase ('A'-'Z')."},
			}
		},
	}
	router := gin.New()
	router.POST("/register", NewAuthHandler(mockUC).Register)

	w := doJSON(t, router, "/register", gin.H{"userName": "alice", "email": "alice@example.com", "password": "weak"})

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp api.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "User creation failed!", resp.Message)
	assert.Len(t, resp.ErrorDetails, 2)
}

func TestAuthHandler_Login(t *testing.T) {
	gin.SetMode(gin.TestMode)

	expires := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		requestBody    gin.H
		loginFunc      func(ctx context.Context, email, password string) usecase.Outcome
		expectedStatus int
		check          func(t *testing.T, resp api.AuthResponse)
	}{
		{
			name:        "success: user login",
			requestBody: gin.H{"email": "alice@example.com", "password": "Passw0rd!"},
			loginFunc: func(ctx context.Context, email, password string) usecase.Outcome {
				return usecase.Outcome{Success: true, Token: "jwt", ExpiresAt: expires, UserID: "u-1", Email: email, UserName: "alice"}
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, resp api.AuthResponse) {
				assert.True(t, resp.Success)
				assert.Equal(t, "jwt", resp.Token)
				assert.Equal(t, "u-1", resp.UserID)
				assert.Equal(t, "alice", resp.UserName)
				require.NotNil(t, resp.ExpiresAt)
				assert.True(t, expires.Equal(*resp.ExpiresAt))
			},
		},
		{
			name:           "failure: invalid credentials",
			requestBody:    gin.H{"email": "alice@example.com", "password": "wrong"},
			expectedStatus: http.StatusUnauthorized,
			check: func(t *testing.T, resp api.AuthResponse) {
				assert.False(t, resp.Success)
				assert.Empty(t, resp.Token)
				assert.Equal(t, "Invalid credentials", resp.Message)
			},
		},
		{
			name:           "failure: missing password",
			requestBody:    gin.H{"email": "alice@example.com"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "failure: unexpected",
			requestBody: gin.H{"email": "alice@example.com", "password": "x"},
			loginFunc: func(context.Context, string, string) usecase.Outcome {
				return usecase.Outcome{Code: usecase.CodeUnexpectedFailure, Message: "An unexpected error occurred during login."}
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.POST("/login", NewAuthHandler(&mockAuthUsecase{LoginFunc: tt.loginFunc}).Login)

			w := doJSON(t, router, "/login", tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.check != nil {
				var resp api.AuthResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				tt.check(t, resp)
			}
		})
	}
}
