// Package adapters はauthフィーチャーの資格情報ストア実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"product_backend/internal/feature/auth/domain/entity"
	"product_backend/internal/feature/auth/usecase"
)

// pgUniqueViolation はPostgreSQLの一意制約違反エラーコードです。
const pgUniqueViolation = "23505"

// dummyHash はユーザーが存在しない場合のタイミング攻撃緩和用ダミーハッシュです。
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// userGorm はCredentialStoreインターフェースのGORM実装です。
type userGorm struct {
	db       *gorm.DB
	cost     int
	policy   PasswordPolicy
	validate *validator.Validate
}

// userGormがCredentialStoreを実装していることをコンパイル時に検証します。
var _ usecase.CredentialStore = (*userGorm)(nil)

// NewUserGorm は指定されたgorm.DB接続でuserGormの新しいインスタンスを生成します。
// bcryptCost が範囲外の場合は bcrypt.DefaultCost を使用します。
func NewUserGorm(db *gorm.DB, bcryptCost int) *userGorm {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userGorm{
		db:       db,
		cost:     bcryptCost,
		policy:   DefaultPasswordPolicy(),
		validate: validator.New(),
	}
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// FindByEmail はメールアドレス（大文字小文字を区別しない）でユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findBy(ctx, "normalized_email = ?", normalize(email))
}

// FindByUsername はユーザー名（大文字小文字を区別しない）でユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userGorm) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findBy(ctx, "normalized_user_name = ?", normalize(username))
}

func (r *userGorm) findBy(ctx context.Context, query string, arg string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// CreateIdentity はポリシーを検証し、ハッシュ化したパスワードでユーザーを作成します。
// 違反したルールはすべて *usecase.CredentialRejectedError にまとめて返します。
func (r *userGorm) CreateIdentity(ctx context.Context, username, email, password string) (*entity.User, error) {
	reasons := checkIdentity(r.validate, username, email)
	reasons = append(reasons, r.policy.Check(password)...)
	if len(reasons) > 0 {
		return nil, &usecase.CredentialRejectedError{Reasons: reasons}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), r.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &entity.User{
		ID:                 uuid.NewString(),
		UserName:           username,
		NormalizedUserName: normalize(username),
		Email:              email,
		NormalizedEmail:    normalize(email),
		PasswordHash:       string(hashed),
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			// 事前チェック後に同時登録された場合
			return nil, &usecase.CredentialRejectedError{Reasons: []string{r.takenReason(ctx, username, email)}}
		}
		return nil, err
	}
	return u, nil
}

// takenReason は一意制約違反の原因となった項目のメッセージを返します。
func (r *userGorm) takenReason(ctx context.Context, username, email string) string {
	if _, err := r.FindByEmail(ctx, email); err == nil {
		return fmt.Sprintf("Email '%s' is already taken.", email)
	}
	return fmt.Sprintf("Username '%s' is already taken.", username)
}

// VerifyPassword はパスワードを検証します。
// user が nil の場合もダミーハッシュと比較し、常に bcrypt 比較を実行します。
func (r *userGorm) VerifyPassword(user *entity.User, password string) bool {
	hash := dummyHash
	if user != nil {
		hash = user.PasswordHash
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return user != nil && err == nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
