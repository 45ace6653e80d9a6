package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrMissingSecret is returned when a generator or validator is built without a signing secret.
var ErrMissingSecret = errors.New("jwt signing secret is not configured")

// Config holds the signing settings shared by the generator and the validator.
type Config struct {
	Secret     string
	Issuer     string
	Audience   string
	Expiration time.Duration
}

// Claims is the payload carried by every issued token.
// Subject holds the user id, Name the display name, ID a fresh uuid per issuance.
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// generator signs tokens with HS256.
type generator struct {
	secret     []byte
	issuer     string
	audience   string
	expiration time.Duration
	now        func() time.Time
}

// NewGenerator creates a token generator. It fails when the secret is empty.
func NewGenerator(cfg Config) (*generator, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.Expiration <= 0 {
		return nil, fmt.Errorf("invalid token expiration %v", cfg.Expiration)
	}
	return &generator{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		expiration: cfg.Expiration,
		now:        time.Now,
	}, nil
}

// GenerateToken signs a token for the given user and returns it with its expiry instant.
func (g *generator) GenerateToken(userID, userName string) (string, time.Time, error) {
	now := g.now()
	expiresAt := now.Add(g.expiration)

	claims := Claims{
		Name: userName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			Issuer:    g.issuer,
			Audience:  jwt.ClaimStrings{g.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	// exp は秒単位で切り捨てられるため、トークンに載った値を返す
	return signed, claims.ExpiresAt.Time, nil
}
