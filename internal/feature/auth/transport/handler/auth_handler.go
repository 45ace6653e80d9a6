// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"product_backend/internal/api"
	"product_backend/internal/feature/auth/usecase"
	"product_backend/internal/platform/logger"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Register は新規ユーザーを登録します。
	Register(ctx context.Context, username, email, password string) usecase.Outcome
	// Login はユーザーを認証し、成功時にトークンを含む結果を返します。
	Login(ctx context.Context, email, password string) usecase.Outcome
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register はユーザー登録APIエンドポイントを処理します。
// - バリデーションエラー、パスワードポリシー違反時は400を返却
// - メールアドレス・ユーザー名の重複時は409を返却
// - 予期しないエラー時は500を返却
// - 成功時は201を返却
func (h *AuthHandler) Register(c *gin.Context) {
	var req api.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("register validation failed", logger.Err(err), "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request", ErrorDetails: bindingDetails(err)})
		return
	}

	out := h.auth.Register(c.Request.Context(), req.UserName, req.Email, req.Password)
	status := http.StatusCreated
	switch out.Code {
	case usecase.CodeOK:
	case usecase.CodeDuplicateEmail, usecase.CodeDuplicateUsername:
		status = http.StatusConflict
	case usecase.CodeCredentialRejected:
		status = http.StatusBadRequest
	default:
		status = http.StatusInternalServerError
	}
	c.JSON(status, toResponse(out))
}

// Login はユーザーログインAPIエンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - 認証失敗時は401を返却
// - 認証成功時はトークン付きで200を返却
func (h *AuthHandler) Login(c *gin.Context) {
	var req api.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", logger.Err(err), "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request", ErrorDetails: bindingDetails(err)})
		return
	}

	out := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	switch out.Code {
	case usecase.CodeOK:
		slog.Info("user login successful", "user_id", out.UserID, "remote_addr", c.ClientIP())
		c.JSON(http.StatusOK, toResponse(out))
	case usecase.CodeAuthenticationFailed:
		// ユーザー列挙攻撃を防止するため、原因は区別しない
		slog.Warn("login failed", "email", req.Email, "remote_addr", c.ClientIP())
		c.JSON(http.StatusUnauthorized, toResponse(out))
	default:
		c.JSON(http.StatusInternalServerError, toResponse(out))
	}
}

func toResponse(out usecase.Outcome) api.AuthResponse {
	resp := api.AuthResponse{
		Success:      out.Success,
		Token:        out.Token,
		UserID:       out.UserID,
		Email:        out.Email,
		UserName:     out.UserName,
		Message:      out.Message,
		ErrorDetails: out.ErrorDetails,
	}
	if !out.ExpiresAt.IsZero() {
		exp := out.ExpiresAt
		resp.ExpiresAt = &exp
	}
	return resp
}

// bindingDetails はバリデーションエラーをフィールドごとのメッセージに変換します。
func bindingDetails(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"malformed request body"}
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fe.Field()+" failed on the '"+fe.Tag()+"' rule")
	}
	return details
}
