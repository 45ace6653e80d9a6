package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	productadapters "product_backend/internal/feature/products/adapters"
	producthandler "product_backend/internal/feature/products/transport/handler"
	productusecase "product_backend/internal/feature/products/usecase"
	"product_backend/internal/platform/cache"
)

// NewProductRepository creates a ProductRepository implementation.
// If Redis is available, the GORM repository is wrapped with a read-through cache.
// Otherwise, it talks to the database directly.
func NewProductRepository(db *gorm.DB, rdb *redis.Client, ttl time.Duration) productusecase.ProductRepository {
	repo := productadapters.NewProductRepository(db)
	if rdb == nil {
		return repo
	}
	return cache.NewCachingProductRepository(rdb, ttl, repo, "products")
}

// NewProductHandler wires the repository and file storage into the product usecase and handler.
func NewProductHandler(repo productusecase.ProductRepository, files productusecase.FileStorage, maxUpload int64) *producthandler.ProductHandler {
	return producthandler.NewProductHandler(productusecase.NewProductUsecase(repo, files), maxUpload)
}
