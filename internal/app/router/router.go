// Package router はHTTPルーティングを組み立てます。
package router

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "product_backend/internal/feature/auth/transport/handler"
	producthandler "product_backend/internal/feature/products/transport/handler"
	"product_backend/internal/platform/http/handler"
	"product_backend/internal/platform/http/middleware"
	jwtmw "product_backend/internal/platform/jwt"
	"product_backend/internal/platform/metrics"
	"product_backend/internal/shared/ratelimiter"
)

// Deps はルーターが必要とするハンドラーと設定をまとめたものです。
type Deps struct {
	Auth        *authhandler.AuthHandler
	Products    *producthandler.ProductHandler
	Tokens      jwtmw.TokenValidator
	AuthLimiter *ratelimiter.RateLimiter
	// Ready はレディネスチェック対象の依存先です。
	Ready       map[string]handler.Pinger
	UploadsDir  string
	CORSOrigins []string
	Logger      *slog.Logger
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(d.Logger))
	r.Use(metrics.Middleware())

	// フロントエンドからのアクセスを許可
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  d.CORSOrigins,
			AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders: []string{"Location", middleware.RequestIDHeader},
			MaxAge:        12 * time.Hour,
		}))
	}

	// 認証不要
	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	r.GET("/readyz", handler.Ready(d.Ready))
	r.GET("/metrics", metrics.Handler())
	// アップロード済み画像の配信
	if d.UploadsDir != "" {
		r.Static("/uploads", d.UploadsDir)
	}

	apiGroup := r.Group("/api")

	// 新規ユーザー登録・ログイン（JWT 発行）
	auth := apiGroup.Group("/auth")
	if d.AuthLimiter != nil {
		auth.Use(d.AuthLimiter.Middleware())
	}
	{
		auth.POST("/register", d.Auth.Register)
		auth.POST("/login", d.Auth.Login)
	}

	// 認証必須のルート
	// → リクエストヘッダーに JWT が必要になる
	products := apiGroup.Group("/products")
	products.Use(jwtmw.AuthRequired(d.Tokens))
	{
		products.GET("", d.Products.List)
		products.POST("", d.Products.Create)
		products.POST("/upload", d.Products.Upload)
		products.GET("/:id", d.Products.Get)
		products.PUT("/:id", d.Products.Update)
		products.DELETE("/:id", d.Products.Delete)
		products.POST("/:id/image", d.Products.ReplaceImage)
	}

	return r
}
