// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"product_backend/internal/feature/auth/domain/entity"
	"product_backend/internal/platform/logger"
)

// CredentialStore はユーザー資格情報の永続化と検証を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type CredentialStore interface {
	// FindByEmail はメールアドレスでユーザーを取得します。存在しない場合は ErrUserNotFound を返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByUsername はユーザー名でユーザーを取得します。存在しない場合は ErrUserNotFound を返します。
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// CreateIdentity はパスワードポリシーを適用してユーザーを作成します。
	// ポリシー違反や一意制約違反の場合は *CredentialRejectedError を返します。
	CreateIdentity(ctx context.Context, username, email, password string) (*entity.User, error)

	// VerifyPassword はパスワードがユーザーのハッシュと一致するか検証します。
	// user が nil の場合も比較を行い false を返します。
	VerifyPassword(user *entity.User, password string) bool
}

// TokenGenerator はJWTトークン生成のインターフェースを定義します。
type TokenGenerator interface {
	// GenerateToken は署名済みトークンとその有効期限を返します。
	GenerateToken(userID, userName string) (string, time.Time, error)
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	store  CredentialStore
	tokens TokenGenerator
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(store CredentialStore, tokens TokenGenerator) *authUsecase {
	return &authUsecase{
		store:  store,
		tokens: tokens,
	}
}

// Register は新規ユーザーを登録します。トークンは発行しません。
// 失敗はエラーではなく Outcome で返します。
func (u *authUsecase) Register(ctx context.Context, username, email, password string) Outcome {
	// メールアドレスの重複確認
	_, err := u.store.FindByEmail(ctx, email)
	switch {
	case err == nil:
		slog.Warn("registration rejected: email already exists", "email", email)
		return failure(CodeDuplicateEmail, "Email already exists.", "This email is already registered in our system.")
	case !errors.Is(err, ErrUserNotFound):
		return unexpected("registration", err)
	}

	// ユーザー名の重複確認
	_, err = u.store.FindByUsername(ctx, username)
	switch {
	case err == nil:
		slog.Warn("registration rejected: username already exists", "username", username)
		return failure(CodeDuplicateUsername, "Username already exists.", "This username is already taken.")
	case !errors.Is(err, ErrUserNotFound):
		return unexpected("registration", err)
	}

	user, err := u.store.CreateIdentity(ctx, username, email, password)
	if err != nil {
		var rejected *CredentialRejectedError
		if errors.As(err, &rejected) {
			slog.Warn("user creation rejected", "email", email, "reasons", rejected.Reasons)
			return failure(CodeCredentialRejected, "User creation failed!", rejected.Reasons...)
		}
		return unexpected("registration", err)
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.UserName)
	return Outcome{
		Success:  true,
		Message:  "User registered successfully!",
		UserID:   user.ID,
		Email:    user.Email,
		UserName: user.UserName,
	}
}

// Login はユーザーを認証し、成功時に署名済みトークンを返します。
// ユーザー不在とパスワード不一致は同じ結果になります。
func (u *authUsecase) Login(ctx context.Context, email, password string) Outcome {
	user, err := u.store.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return unexpected("login", err)
	}
	if err != nil {
		user = nil
	}

	// タイミング攻撃防止のため、ユーザーが存在しない場合でも常にパスワードを検証
	if !u.store.VerifyPassword(user, password) || user == nil {
		return failure(CodeAuthenticationFailed, "Invalid credentials")
	}

	token, expiresAt, err := u.tokens.GenerateToken(user.ID, user.UserName)
	if err != nil {
		return unexpected("login", err)
	}

	return Outcome{
		Success:   true,
		Token:     token,
		ExpiresAt: expiresAt,
		UserID:    user.ID,
		Email:     user.Email,
		UserName:  user.UserName,
	}
}

// unexpected は詳細をログに残し、呼び出し元には汎用メッセージのみ返します。
func unexpected(op string, err error) Outcome {
	slog.Error("unexpected auth failure", "op", op, logger.Err(err))
	return failure(CodeUnexpectedFailure, "An unexpected error occurred during "+op+".", "Server error. Please try again later.")
}
