// Package di provides dependency injection factories for creating application components.
package di

import (
	"gorm.io/gorm"

	authadapters "product_backend/internal/feature/auth/adapters"
	authhandler "product_backend/internal/feature/auth/transport/handler"
	authusecase "product_backend/internal/feature/auth/usecase"
	"product_backend/internal/platform/config"
	jwtmw "product_backend/internal/platform/jwt"
)

// NewTokenServices builds the token generator and validator from one configuration,
// so issued tokens always pass validation. It fails when the secret is missing.
func NewTokenServices(cfg config.JWTConfig) (authusecase.TokenGenerator, jwtmw.TokenValidator, error) {
	jc := jwtmw.Config{
		Secret:     cfg.Secret,
		Issuer:     cfg.Issuer,
		Audience:   cfg.Audience,
		Expiration: cfg.Expiration,
	}
	gen, err := jwtmw.NewGenerator(jc)
	if err != nil {
		return nil, nil, err
	}
	val, err := jwtmw.NewValidator(jc)
	if err != nil {
		return nil, nil, err
	}
	return gen, val, nil
}

// NewAuthHandler wires the GORM credential store and the auth usecase into a handler.
func NewAuthHandler(db *gorm.DB, bcryptCost int, tokens authusecase.TokenGenerator) *authhandler.AuthHandler {
	store := authadapters.NewUserGorm(db, bcryptCost)
	return authhandler.NewAuthHandler(authusecase.NewAuthUsecase(store, tokens))
}
