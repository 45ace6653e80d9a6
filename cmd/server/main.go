package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"

	"product_backend/internal/app/di"
	"product_backend/internal/app/router"
	authentity "product_backend/internal/feature/auth/domain/entity"
	productadapters "product_backend/internal/feature/products/adapters"
	productentity "product_backend/internal/feature/products/domain/entity"
	"product_backend/internal/platform/config"
	infradb "product_backend/internal/platform/db"
	"product_backend/internal/platform/filestorage"
	"product_backend/internal/platform/http/handler"
	"product_backend/internal/platform/logger"
	infraredis "product_backend/internal/platform/redis"
	"product_backend/internal/shared/ratelimiter"
)

const shutdownTimeout = 10 * time.Second

func main() {
	envFile := flag.String("env", "", "env file to load instead of ./.env")
	flag.Parse()

	if err := run(*envFile); err != nil {
		slog.Error("server stopped", logger.Err(err))
		os.Exit(1)
	}
}

func run(envFile string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 設定（JWT_SECRET がなければ起動しない）
	cfg, err := loadConfig(envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// db
	db, err := infradb.Open(cfg.Database)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("failed to close database", logger.Err(err))
		}
	}()
	if cfg.Database.RunMigrations {
		if err := infradb.Migrate(db, &authentity.User{}, &productadapters.ProductModel{}); err != nil {
			return err
		}
	}
	ready := map[string]handler.Pinger{"database": sqlDB}

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis); err != nil {
		slog.Warn("Redis unavailable. Running without cache.", logger.Err(err))
	} else if tmp != nil {
		rdb = tmp
		ready["redis"] = infraredis.Pinger{Client: rdb}
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", logger.Err(err))
			}
		}()
	}

	// 画像ストレージ
	files, err := filestorage.NewLocalStorage(cfg.Storage.Root)
	if err != nil {
		return err
	}
	if !hasPlaceholder(files) {
		slog.Warn("placeholder image is missing", "root", files.Root(), "file", productentity.DefaultImage)
	}

	tokens, validator, err := di.NewTokenServices(cfg.JWT)
	if err != nil {
		return fmt.Errorf("token services: %w", err)
	}

	// ルータ生成
	r := router.NewRouter(router.Deps{
		Auth:        di.NewAuthHandler(db, cfg.Auth.BcryptCost, tokens),
		Products:    di.NewProductHandler(di.NewProductRepository(db, rdb, cfg.Redis.CacheTTL), files, cfg.Storage.MaxUploadSize),
		Tokens:      validator,
		AuthLimiter: ratelimiter.NewRateLimiter(cfg.Auth.RateLimitRPS, cfg.Auth.RateLimitBurst),
		Ready:       ready,
		UploadsDir:  files.Root(),
		CORSOrigins: cfg.Server.CORSAllowedOrigins,
		Logger:      log,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server stopped gracefully")
	return nil
}

// loadConfig は envFile が指定されていればそのファイルを、なければ ./.env を読みます。
func loadConfig(envFile string) (*config.Config, error) {
	if envFile != "" {
		return config.LoadWithPath(envFile)
	}
	return config.Load()
}

// hasPlaceholder は画像未登録の商品が参照する画像が配信ディレクトリにあるか確認します。
func hasPlaceholder(files *filestorage.LocalStorage) bool {
	return files.Exists(productentity.DefaultImage)
}
