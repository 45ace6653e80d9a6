// Package api defines the request and response bodies shared by the HTTP handlers.
package api

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	UserName string `json:"userName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse mirrors an authentication outcome.
type AuthResponse struct {
	Success      bool       `json:"success"`
	Token        string     `json:"token,omitempty"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	UserID       string     `json:"userId,omitempty"`
	Email        string     `json:"email,omitempty"`
	UserName     string     `json:"userName,omitempty"`
	Message      string     `json:"message,omitempty"`
	ErrorDetails []string   `json:"errorDetails,omitempty"`
}

// Product is the public representation of a product.
type Product struct {
	ID          openapi_types.UUID `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Price       decimal.Decimal    `json:"price"`
	ImagePath   string             `json:"imagePath"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// FileUploadResponse is returned by the standalone upload endpoint.
type FileUploadResponse struct {
	FilePath string `json:"filePath"`
}

// MessageResponse carries a human readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error        string   `json:"error"`
	ErrorDetails []string `json:"errorDetails,omitempty"`
}
