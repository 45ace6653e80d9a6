package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"product_backend/internal/feature/products/domain/entity"
	"product_backend/internal/platform/logger"
)

// ProductRepository abstracts persistence of products.
// Interfaces are defined by the consumer (usecase), not the provider (adapters).
type ProductRepository interface {
	// ListByOwner returns the owner's products, newest created first.
	ListByOwner(ctx context.Context, ownerID string) ([]entity.Product, error)
	// GetByID returns ErrProductNotFound when no record has the id.
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	// Insert stores a new product.
	Insert(ctx context.Context, p *entity.Product) error
	// Replace overwrites an existing product. It returns ErrProductNotFound instead of re-creating a removed record.
	Replace(ctx context.Context, p *entity.Product) error
	// Remove deletes a product. It returns ErrProductNotFound when nothing was removed.
	Remove(ctx context.Context, id uuid.UUID) error
}

// FileStorage abstracts image blob storage.
type FileStorage interface {
	// Save writes r under a generated name that keeps the extension of originalName.
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
	// Delete removes a stored file. Missing files are not an error.
	Delete(ctx context.Context, name string) error
}

// Upload is an image sent by the caller.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// empty reports whether no usable file was sent.
func (u *Upload) empty() bool {
	return u == nil || u.Content == nil || u.Size == 0
}

// productUsecase coordinates product records with their stored images.
// Every operation takes the caller's identity explicitly.
type productUsecase struct {
	repo     ProductRepository
	files    FileStorage
	validate *validator.Validate
	now      func() time.Time
}

// NewProductUsecase creates a productUsecase.
func NewProductUsecase(repo ProductRepository, files FileStorage) *productUsecase {
	return &productUsecase{
		repo:     repo,
		files:    files,
		validate: newValidator(),
		now:      time.Now,
	}
}

// clock returns the current time truncated to what the relational store keeps.
func (u *productUsecase) clock() time.Time {
	return u.now().UTC().Truncate(time.Microsecond)
}

// ListOwned returns the caller's products, newest created first.
func (u *productUsecase) ListOwned(ctx context.Context, ownerID string) ([]entity.Product, error) {
	products, err := u.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, storageFailure("list products", err)
	}
	return products, nil
}

// GetOwned returns the product if it exists and belongs to ownerID.
// found is false both for a missing id and for another owner's product.
func (u *productUsecase) GetOwned(ctx context.Context, id uuid.UUID, ownerID string) (*entity.Product, bool, error) {
	return u.lookupOwned(ctx, id, ownerID)
}

// Create stores a new product owned by ownerID.
// An empty image leaves the default placeholder in place.
func (u *productUsecase) Create(ctx context.Context, ownerID string, attrs entity.Attributes, image *Upload) (*entity.Product, error) {
	if err := validateAttributes(u.validate, attrs); err != nil {
		return nil, err
	}
	if !image.empty() {
		if err := validateImageName(image.Filename); err != nil {
			return nil, err
		}
	}

	stored := ""
	if !image.empty() {
		name, err := u.save(ctx, image)
		if err != nil {
			return nil, err
		}
		stored = name
	}

	p := entity.NewProduct(uuid.New(), ownerID, attrs, stored, u.clock())
	if err := u.repo.Insert(ctx, &p); err != nil {
		u.discard(ctx, stored)
		return nil, storageFailure("insert product", err)
	}

	slog.Info("product created", "product_id", p.ID, "user_id", ownerID)
	return &p, nil
}

// Update applies patch to the caller's product and returns the new state.
// A new image is saved before the record is replaced; the old file is deleted only afterwards.
func (u *productUsecase) Update(ctx context.Context, id uuid.UUID, ownerID string, patch entity.Patch, image *Upload) (*entity.Product, bool, error) {
	current, found, err := u.lookupOwned(ctx, id, ownerID)
	if err != nil || !found {
		return nil, found, err
	}
	if !image.empty() {
		if err := validateImageName(image.Filename); err != nil {
			return nil, true, err
		}
	}

	patch.ImagePath = nil
	next := current.Apply(patch, u.clock())
	if err := validateAttributes(u.validate, next.Attributes()); err != nil {
		return nil, true, err
	}

	stored := ""
	if !image.empty() {
		name, err := u.save(ctx, image)
		if err != nil {
			return nil, true, err
		}
		stored = name
		next.ImagePath = name
	}

	if err := u.repo.Replace(ctx, &next); err != nil {
		u.discard(ctx, stored)
		if errors.Is(err, ErrProductNotFound) {
			return nil, false, nil
		}
		return nil, true, storageFailure("replace product", err)
	}

	if stored != "" && current.HasStoredImage() {
		u.discard(ctx, current.ImagePath)
	}
	slog.Info("product updated", "product_id", id, "user_id", ownerID)
	return &next, true, nil
}

// Delete removes the caller's product and then its stored image.
// A missing or foreign product is a no-op.
func (u *productUsecase) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	current, found, err := u.lookupOwned(ctx, id, ownerID)
	if err != nil || !found {
		return err
	}

	if err := u.repo.Remove(ctx, id); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil
		}
		return storageFailure("remove product", err)
	}

	if current.HasStoredImage() {
		u.discard(ctx, current.ImagePath)
	}
	slog.Info("product deleted", "product_id", id, "user_id", ownerID)
	return nil
}

// UploadImage stores an image that is not yet attached to a product and returns its name.
func (u *productUsecase) UploadImage(ctx context.Context, image *Upload) (string, error) {
	if image.empty() {
		return "", &ValidationError{Kind: ErrEmptyUpload, Details: []string{"No file uploaded"}}
	}
	if err := validateImageName(image.Filename); err != nil {
		return "", err
	}
	return u.save(ctx, image)
}

// ReplaceImage swaps the image of the caller's product.
// It fails with ErrNotFoundOrForbidden before touching any file when the product is not the caller's.
func (u *productUsecase) ReplaceImage(ctx context.Context, id uuid.UUID, ownerID string, image *Upload) error {
	if image.empty() {
		return &ValidationError{Kind: ErrEmptyUpload, Details: []string{"No file uploaded"}}
	}
	if err := validateImageName(image.Filename); err != nil {
		return err
	}

	current, found, err := u.lookupOwned(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFoundOrForbidden
	}

	name, err := u.save(ctx, image)
	if err != nil {
		return err
	}
	next := current.Apply(entity.Patch{ImagePath: &name}, u.clock())

	if err := u.repo.Replace(ctx, &next); err != nil {
		u.discard(ctx, name)
		if errors.Is(err, ErrProductNotFound) {
			return ErrNotFoundOrForbidden
		}
		return storageFailure("replace product image", err)
	}

	if current.HasStoredImage() {
		u.discard(ctx, current.ImagePath)
	}
	slog.Info("product image replaced", "product_id", id, "user_id", ownerID, "file", name)
	return nil
}

// lookupOwned resolves id and checks ownership. Missing and foreign products look the same.
func (u *productUsecase) lookupOwned(ctx context.Context, id uuid.UUID, ownerID string) (*entity.Product, bool, error) {
	p, err := u.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, false, nil
		}
		return nil, false, storageFailure("get product", err)
	}
	if !p.OwnedBy(ownerID) {
		slog.Debug("product owner mismatch", "product_id", id, "user_id", ownerID)
		return nil, false, nil
	}
	return p, true, nil
}

func (u *productUsecase) save(ctx context.Context, image *Upload) (string, error) {
	name, err := u.files.Save(ctx, image.Filename, image.Content)
	if err != nil {
		return "", storageFailure("save image", err)
	}
	return name, nil
}

// discard deletes a stored file, logging instead of failing.
func (u *productUsecase) discard(ctx context.Context, name string) {
	if name == "" || name == entity.DefaultImage {
		return
	}
	if err := u.files.Delete(ctx, name); err != nil {
		slog.Warn("failed to delete stored file", "file", name, logger.Err(err))
	}
}

func storageFailure(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageFailure, err)
}
