package usecase

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"product_backend/internal/feature/products/domain/entity"
)

var allowedImageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

const unsupportedFileTypeMessage = "Only .jpg, .jpeg and .png files are allowed"

// Prices must fit the decimal(12,2) column exactly.
const priceScale = 2

var maxPrice = decimal.New(1, 10)

// attributeRules carries the validation tags for entity.Attributes.
type attributeRules struct {
	Name        string          `validate:"required,max=200"`
	Description string          `validate:"max=2000"`
	Price       decimal.Decimal `validate:"gte=0"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	// decimal.Decimal は float64 として比較する
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// validateAttributes returns a *ValidationError listing every invalid field.
func validateAttributes(v *validator.Validate, attrs entity.Attributes) error {
	var details []string

	err := v.Struct(attributeRules{
		Name:        strings.TrimSpace(attrs.Name),
		Description: attrs.Description,
		Price:       attrs.Price,
	})
	if err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate attributes: %w", err)
		}
		for _, fe := range verrs {
			details = append(details, describe(fe))
		}
	}
	details = append(details, priceDetails(attrs.Price)...)

	if len(details) == 0 {
		return nil
	}
	return &ValidationError{Details: details}
}

// priceDetails rejects prices the store would round or overflow.
func priceDetails(price decimal.Decimal) []string {
	var details []string
	if !price.Equal(price.Truncate(priceScale)) {
		details = append(details, fmt.Sprintf("Price must have at most %d decimal places", priceScale))
	}
	if price.Abs().GreaterThanOrEqual(maxPrice) {
		details = append(details, "Price must be less than "+maxPrice.String())
	}
	return details
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	default:
		return fe.Field() + " is invalid"
	}
}

// validateImageName rejects names whose extension is not allowed, ignoring case.
func validateImageName(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := allowedImageExtensions[ext]; !ok {
		return &ValidationError{Kind: ErrUnsupportedFileType, Details: []string{unsupportedFileTypeMessage}}
	}
	return nil
}
