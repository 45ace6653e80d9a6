// Package handler はproductsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"

	"product_backend/internal/api"
	"product_backend/internal/feature/products/domain/entity"
	"product_backend/internal/feature/products/usecase"
	jwtmw "product_backend/internal/platform/jwt"
	"product_backend/internal/platform/logger"
)

// formOverhead はファイル以外のマルチパート部分に許容するバイト数です。
const formOverhead = 1 << 20

// ProductUsecase は商品操作のユースケースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type ProductUsecase interface {
	ListOwned(ctx context.Context, ownerID string) ([]entity.Product, error)
	GetOwned(ctx context.Context, id uuid.UUID, ownerID string) (*entity.Product, bool, error)
	Create(ctx context.Context, ownerID string, attrs entity.Attributes, image *usecase.Upload) (*entity.Product, error)
	Update(ctx context.Context, id uuid.UUID, ownerID string, patch entity.Patch, image *usecase.Upload) (*entity.Product, bool, error)
	Delete(ctx context.Context, id uuid.UUID, ownerID string) error
	UploadImage(ctx context.Context, image *usecase.Upload) (string, error)
	ReplaceImage(ctx context.Context, id uuid.UUID, ownerID string, image *usecase.Upload) error
}

// ProductHandler は商品操作のHTTPリクエストを処理します。
// すべてのルートは jwtmw.AuthRequired の後段で動作する前提です。
type ProductHandler struct {
	uc        ProductUsecase
	maxUpload int64
}

// NewProductHandler はProductHandlerの新しいインスタンスを生成します。
// maxUpload はアップロード1ファイルあたりの上限バイト数です。
func NewProductHandler(uc ProductUsecase, maxUpload int64) *ProductHandler {
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	return &ProductHandler{uc: uc, maxUpload: maxUpload}
}

// List はログインユーザーの商品一覧を作成日時の新しい順で返します。
//
// エンドポイント: GET /api/products
func (h *ProductHandler) List(c *gin.Context) {
	owner, ok := h.identity(c)
	if !ok {
		return
	}

	products, err := h.uc.ListOwned(c.Request.Context(), owner)
	if err != nil {
		h.fail(c, "list products", err)
		return
	}

	out := make([]api.Product, 0, len(products))
	for _, p := range products {
		out = append(out, toAPI(p))
	}
	c.JSON(http.StatusOK, out)
}

// Get は商品を1件返します。存在しない場合と他人の商品の場合はどちらも404です。
//
// エンドポイント: GET /api/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	owner, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := bindID(c)
	if !ok {
		return
	}

	p, found, err := h.uc.GetOwned(c.Request.Context(), id, owner)
	if err != nil {
		h.fail(c, "get product", err)
		return
	}
	if !found {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, toAPI(*p))
}

// Create は商品を登録します。
//
// エンドポイント: POST /api/products
// Content-Type: multipart/form-data
// フィールド: name, description, price, image（任意）
func (h *ProductHandler) Create(c *gin.Context) {
	owner, ok := h.identity(c)
	if !ok {
		return
	}
	h.limitBody(c)

	fh, ok := h.formFile(c, "image")
	if !ok {
		return
	}

	attrs, details := parseAttributes(c)
	if len(details) > 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "validation failed", ErrorDetails: details})
		return
	}

	var p *entity.Product
	err := withUpload(fh, func(up *usecase.Upload) error {
		var err error
		p, err = h.uc.Create(c.Request.Context(), owner, attrs, up)
		return err
	})
	if err != nil {
		h.fail(c, "create product", err)
		return
	}

	c.Header("Location", "/api/products/"+p.ID.String())
	c.JSON(http.StatusCreated, toAPI(*p))
}

// Update は商品を更新します。送られなかったフィールドは変更しません。
//
// エンドポイント: PUT /api/products/:id
// Content-Type: multipart/form-data
// フィールド: name, description, price, image（すべて任意）
func (h *ProductHandler) Update(c *gin.Context) {
	owner, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := bindID(c)
	if !ok {
		return
	}
	h.limitBody(c)

	fh, ok := h.formFile(c, "image")
	if !ok {
		return
	}

	patch, details := parsePatch(c)
	if len(details) > 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "validation failed", ErrorDetails: details})
		return
	}

	var (
		p     *entity.Product
		found bool
	)
	err := withUpload(fh, func(up *usecase.Upload) error {
		var err error
		p, found, err = h.uc.Update(c.Request.Context(), id, owner, patch, up)
		return err
	})
	if err != nil {
		h.fail(c, "update product", err)
		return
	}
	if !found {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, toAPI(*p))
}

// Delete は商品と保存済み画像を削除します。対象がなくても204を返します。
//
// エンドポイント: DELETE /api/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	owner, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := bindID(c)
	if !ok {
		return
	}

	if err := h.uc.Delete(c.Request.Context(), id, owner); err != nil {
		h.fail(c, "delete product", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Upload は商品に紐付かない画像を保存し、生成されたファイル名を返します。
//
// エンドポイント: POST /api/products/upload
// フィールド: file
func (h *ProductHandler) Upload(c *gin.Context) {
	if _, ok := h.identity(c); !ok {
		return
	}
	h.limitBody(c)

	fh, ok := h.formFile(c, "file")
	if !ok {
		return
	}

	var name string
	err := withUpload(fh, func(up *usecase.Upload) error {
		var err error
		name, err = h.uc.UploadImage(c.Request.Context(), up)
		return err
	})
	if err != nil {
		h.fail(c, "upload image", err)
		return
	}
	c.JSON(http.StatusOK, api.FileUploadResponse{FilePath: name})
}

// ReplaceImage は既存商品の画像を差し替えます。
//
// エンドポイント: POST /api/products/:id/image
// フィールド: file
func (h *ProductHandler) ReplaceImage(c *gin.Context) {
	owner, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := bindID(c)
	if !ok {
		return
	}
	h.limitBody(c)

	fh, ok := h.formFile(c, "file")
	if !ok {
		return
	}

	err := withUpload(fh, func(up *usecase.Upload) error {
		return h.uc.ReplaceImage(c.Request.Context(), id, owner, up)
	})
	if err != nil {
		h.fail(c, "replace image", err)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Image uploaded successfully"})
}

// identity は認証ミドルウェアが設定したユーザーIDを取り出します。
func (h *ProductHandler) identity(c *gin.Context) (string, bool) {
	owner, ok := jwtmw.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return "", false
	}
	return owner, true
}

// bindID はパスパラメーター :id をUUIDとして読み取ります。
func bindID(c *gin.Context) (uuid.UUID, bool) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", c.Param("id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid product id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *ProductHandler) limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+formOverhead)
}

// formFile は任意のファイルフィールドを取り出します。
// ファイルがない場合は nil を返し、レスポンスを書き込んだ場合は ok=false です。
func (h *ProductHandler) formFile(c *gin.Context, field string) (*multipart.FileHeader, bool) {
	fh, err := c.FormFile(field)
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return nil, true
	case errors.As(err, &tooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, api.ErrorResponse{Error: "file too large"})
		return nil, false
	default:
		slog.Warn("failed to parse multipart form", logger.Err(err), "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "malformed multipart form"})
		return nil, false
	}

	if fh.Size > h.maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, api.ErrorResponse{Error: "file too large"})
		return nil, false
	}
	return fh, true
}

// withUpload はファイルを開いて fn に渡し、終了後に閉じます。fh が nil の場合は nil を渡します。
func withUpload(fh *multipart.FileHeader, fn func(*usecase.Upload) error) error {
	if fh == nil {
		return fn(nil)
	}

	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("failed to close uploaded file", logger.Err(err))
		}
	}()

	return fn(&usecase.Upload{Filename: fh.Filename, Size: fh.Size, Content: f})
}

func parseAttributes(c *gin.Context) (entity.Attributes, []string) {
	attrs := entity.Attributes{
		Name:        strings.TrimSpace(c.PostForm("name")),
		Description: c.PostForm("description"),
	}

	raw, ok := c.GetPostForm("price")
	if !ok || strings.TrimSpace(raw) == "" {
		return attrs, []string{"Price is required"}
	}
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return attrs, []string{"Price must be a number"}
	}
	attrs.Price = price
	return attrs, nil
}

func parsePatch(c *gin.Context) (entity.Patch, []string) {
	var patch entity.Patch
	if v, ok := c.GetPostForm("name"); ok {
		name := strings.TrimSpace(v)
		patch.Name = &name
	}
	if v, ok := c.GetPostForm("description"); ok {
		patch.Description = &v
	}
	if v, ok := c.GetPostForm("price"); ok {
		price, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return patch, []string{"Price must be a number"}
		}
		patch.Price = &price
	}
	return patch, nil
}

// fail はユースケースのエラーをHTTPレスポンスに変換します。
// 内部エラーの詳細はログにのみ出力します。
func (h *ProductHandler) fail(c *gin.Context, op string, err error) {
	var verr *usecase.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "validation failed", ErrorDetails: verr.Details})
	case errors.Is(err, usecase.ErrNotFoundOrForbidden):
		notFound(c)
	default:
		slog.Error("product operation failed", "op", op, logger.Err(err), "user_id", c.GetString(jwtmw.ContextUserID))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Server error. Please try again later."})
	}
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "product not found"})
}

func toAPI(p entity.Product) api.Product {
	return api.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImagePath:   p.ImagePath,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
