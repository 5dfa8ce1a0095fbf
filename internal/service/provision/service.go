package provision

import (
	"context"
	"errors"

	"github.com/NicoLa5Tor/MQTTArisma/internal/model"
	"github.com/NicoLa5Tor/MQTTArisma/internal/repository"
	apperrors "github.com/NicoLa5Tor/MQTTArisma/pkg/errors"
	"github.com/NicoLa5Tor/MQTTArisma/pkg/security"
)

// RegisterInput carries everything needed to provision one field device.
// The API key arrives in plaintext once, gets hashed, and is never
// stored or returned again.
type RegisterInput struct {
	Name         string `json:"nombre" binding:"required"`
	Type         string `json:"tipo" binding:"required"`
	Organization string `json:"empresa" binding:"required"`
	Site         string `json:"sede" binding:"required"`
	Location     string `json:"ubicacion"`
	Topic        string `json:"topic"`
	APIKey       string `json:"api_key" binding:"required"`
}

// Service registers hardware and rotates device credentials. This is the
// only write path into the registry; the pipeline itself never mutates
// registry records.
type Service interface {
	RegisterHardware(ctx context.Context, input RegisterInput) (*model.Hardware, error)
	RotateKey(ctx context.Context, name, apiKey string) error
}

type service struct {
	repo     repository.HardwareAdminRepository
	registry repository.RegistryRepository
	hasher   security.KeyHasher
}

func NewService(repo repository.HardwareAdminRepository, registry repository.RegistryRepository, hasher security.KeyHasher) Service {
	return &service{
		repo:     repo,
		registry: registry,
		hasher:   hasher,
	}
}

func (s *service) RegisterHardware(ctx context.Context, input RegisterInput) (*model.Hardware, error) {
	if _, err := s.registry.FindHardware(ctx, input.Name); err == nil {
		return nil, apperrors.NewValidation("hardware name already registered", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewStoreUnavailable("hardware lookup", err)
	}

	hash, err := s.hasher.Hash(input.APIKey)
	if err != nil {
		return nil, apperrors.NewValidation("invalid api key", err)
	}

	hw := &model.Hardware{
		Name:         input.Name,
		Type:         input.Type,
		Status:       model.StatusActive,
		Organization: input.Organization,
		Site:         input.Site,
		Location:     input.Location,
		Topic:        input.Topic,
		APIKeyHash:   hash,
	}
	if err := s.repo.CreateHardware(ctx, hw); err != nil {
		return nil, apperrors.NewStoreUnavailable("hardware create", err)
	}
	return hw, nil
}

func (s *service) RotateKey(ctx context.Context, name, apiKey string) error {
	hash, err := s.hasher.Hash(apiKey)
	if err != nil {
		return apperrors.NewValidation("invalid api key", err)
	}

	if err := s.repo.UpdateHardwareKey(ctx, name, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("hardware", err)
		}
		return apperrors.NewStoreUnavailable("hardware key update", err)
	}
	return nil
}
