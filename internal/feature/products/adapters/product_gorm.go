// Package adapters provides the GORM implementation of the product repository.
package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"product_backend/internal/feature/products/domain/entity"
	"product_backend/internal/feature/products/usecase"
)

type productGorm struct {
	db *gorm.DB
}

var _ usecase.ProductRepository = (*productGorm)(nil)

func NewProductRepository(db *gorm.DB) *productGorm {
	return &productGorm{db: db}
}

// ProductModel is the products table. Timestamps are written by the usecase, not by GORM.
type ProductModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name        string          `gorm:"size:200;not null"`
	Description string          `gorm:"size:2000;not null;default:''"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ImagePath   string          `gorm:"size:255;not null"`
	CreatedAt   time.Time       `gorm:"not null;index;autoCreateTime:false"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime:false"`
	UserID      string          `gorm:"size:36;not null;index"`
}

func (ProductModel) TableName() string {
	return "products"
}

func toModel(e entity.Product) ProductModel {
	return ProductModel{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Price:       e.Price,
		ImagePath:   e.ImagePath,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
		UserID:      e.OwnerID,
	}
}

func toEntity(m ProductModel) entity.Product {
	return entity.Product{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		ImagePath:   m.ImagePath,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
		OwnerID:     m.UserID,
	}
}

func (r *productGorm) ListByOwner(ctx context.Context, ownerID string) ([]entity.Product, error) {
	var rows []ProductModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Product, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}

func (r *productGorm) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var m ProductModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrProductNotFound
		}
		return nil, err
	}
	p := toEntity(m)
	return &p, nil
}

func (r *productGorm) Insert(ctx context.Context, p *entity.Product) error {
	m := toModel(*p)
	return r.db.WithContext(ctx).Create(&m).Error
}

// Replace overwrites the mutable columns. Owner and creation time are never rewritten.
func (r *productGorm) Replace(ctx context.Context, p *entity.Product) error {
	res := r.db.WithContext(ctx).
		Model(&ProductModel{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"name":        p.Name,
			"description": p.Description,
			"price":       p.Price,
			"image_path":  p.ImagePath,
			"updated_at":  p.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrProductNotFound
	}
	return nil
}

func (r *productGorm) Remove(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&ProductModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrProductNotFound
	}
	return nil
}
