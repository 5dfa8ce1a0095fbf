package hwauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/NicoLa5Tor/MQTTArisma/internal/config"
	"github.com/NicoLa5Tor/MQTTArisma/internal/repository"
	apperrors "github.com/NicoLa5Tor/MQTTArisma/pkg/errors"
	"github.com/NicoLa5Tor/MQTTArisma/pkg/security"
)

// Service authenticates field hardware before it may submit alarms over
// the synchronous API. Devices present their registered name and API key
// and receive a short-lived token.
type Service interface {
	Authenticate(ctx context.Context, hardwareName, apiKey string) (string, error)
	ValidateToken(token string) (string, error)
}

type claims struct {
	HardwareName string `json:"hardware"`
	jwt.RegisteredClaims
}

type service struct {
	registry repository.RegistryRepository
	hasher   security.KeyHasher
	secret   []byte
	expiry   time.Duration
}

func NewService(registry repository.RegistryRepository, hasher security.KeyHasher, cfg config.JWTConfig) Service {
	expiry := time.Duration(cfg.ExpiryMinutes) * time.Minute
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &service{
		registry: registry,
		hasher:   hasher,
		secret:   []byte(cfg.Secret),
		expiry:   expiry,
	}
}

func (s *service) Authenticate(ctx context.Context, hardwareName, apiKey string) (string, error) {
	hw, err := s.registry.FindHardware(ctx, hardwareName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperrors.NewUnauthorized("unknown hardware", nil)
		}
		return "", apperrors.NewStoreUnavailable("hardware lookup", err)
	}

	if hw.APIKeyHash == "" {
		return "", apperrors.NewUnauthorized("hardware has no credentials provisioned", nil)
	}
	if err := s.hasher.Compare(hw.APIKeyHash, apiKey); err != nil {
		return "", apperrors.NewUnauthorized("invalid api key", nil)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		HardwareName: hw.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   hw.Name,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *service) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", apperrors.NewUnauthorized("invalid token", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", apperrors.NewUnauthorized("invalid token claims", nil)
	}
	return c.HardwareName, nil
}
