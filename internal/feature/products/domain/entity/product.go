// Package entity defines the domain entities for the products feature.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultImage is the placeholder reference of a product without an uploaded image.
// The file it names is never deleted.
const DefaultImage = "default-product.jpg"

// Attributes are the caller-editable fields of a product.
type Attributes struct {
	Name        string
	Description string
	Price       decimal.Decimal
}

// Patch lists the fields an update changes. Nil fields keep their current value.
type Patch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	ImagePath   *string
}

// Product is a record owned by exactly one user.
// ID, OwnerID and CreatedAt never change after creation.
type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImagePath   string          `json:"imagePath"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	OwnerID     string          `json:"ownerId"`
}

// NewProduct builds a product with both timestamps set to now.
// An empty image falls back to DefaultImage.
func NewProduct(id uuid.UUID, ownerID string, attrs Attributes, image string, now time.Time) Product {
	if image == "" {
		image = DefaultImage
	}
	return Product{
		ID:          id,
		Name:        attrs.Name,
		Description: attrs.Description,
		Price:       attrs.Price,
		ImagePath:   image,
		CreatedAt:   now,
		UpdatedAt:   now,
		OwnerID:     ownerID,
	}
}

// Apply returns the state after patch, with UpdatedAt set to now.
// The receiver is left unchanged.
func (p Product) Apply(patch Patch, now time.Time) Product {
	next := p
	if patch.Name != nil {
		next.Name = *patch.Name
	}
	if patch.Description != nil {
		next.Description = *patch.Description
	}
	if patch.Price != nil {
		next.Price = *patch.Price
	}
	if patch.ImagePath != nil {
		next.ImagePath = *patch.ImagePath
	}
	next.UpdatedAt = now
	return next
}

// Attributes returns the editable fields.
func (p Product) Attributes() Attributes {
	return Attributes{Name: p.Name, Description: p.Description, Price: p.Price}
}

// OwnedBy reports whether ownerID owns the product.
func (p Product) OwnedBy(ownerID string) bool {
	return ownerID != "" && p.OwnerID == ownerID
}

// HasStoredImage reports whether ImagePath names an uploaded file that cleanup may delete.
func (p Product) HasStoredImage() bool {
	return p.ImagePath != "" && p.ImagePath != DefaultImage
}
