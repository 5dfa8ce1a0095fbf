package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/NicoLa5Tor/MQTTArisma/internal/model"
	"github.com/NicoLa5Tor/MQTTArisma/internal/repository"
)

type registryRepository struct {
	db *sqlx.DB
}

func NewRegistryRepository(db *sqlx.DB) repository.RegistryRepository {
	return &registryRepository{db: db}
}

func (r *registryRepository) FindHardware(ctx context.Context, name string) (*model.Hardware, error) {
	query := `
		SELECT * FROM hardware
		WHERE name = $1
	`
	var hw model.Hardware
	if err := r.db.GetContext(ctx, &hw, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find hardware: %w", err)
	}
	return &hw, nil
}

func (r *registryRepository) FindOrganization(ctx context.Context, name string) (*model.Organization, error) {
	query := `
		SELECT * FROM organizations
		WHERE name = $1
	`
	var org model.Organization
	if err := r.db.GetContext(ctx, &org, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}
	return &org, nil
}

func (r *registryRepository) FindSite(ctx context.Context, organization, name string) (*model.Site, error) {
	query := `
		SELECT * FROM sites
		WHERE organization = $1 AND name = $2
	`
	var site model.Site
	if err := r.db.GetContext(ctx, &site, query, organization, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find site: %w", err)
	}
	return &site, nil
}

func (r *registryRepository) ListSiteHardware(ctx context.Context, organization, site string) ([]*model.Hardware, error) {
	query := `
		SELECT * FROM hardware
		WHERE organization = $1 AND site = $2
		ORDER BY name
	`
	var hws []*model.Hardware
	if err := r.db.SelectContext(ctx, &hws, query, organization, site); err != nil {
		return nil, fmt.Errorf("failed to list site hardware: %w", err)
	}
	return hws, nil
}

type hardwareAdminRepository struct {
	db *sqlx.DB
}

func NewHardwareAdminRepository(db *sqlx.DB) repository.HardwareAdminRepository {
	return &hardwareAdminRepository{db: db}
}

func (r *hardwareAdminRepository) CreateHardware(ctx context.Context, hw *model.Hardware) error {
	query := `
		INSERT INTO hardware (
			id, name, type, status, organization, site,
			location, coordinates, topic, api_key_hash,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	hw.ID = uuid.New()
	hw.CreatedAt = time.Now()
	hw.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		hw.ID,
		hw.Name,
		hw.Type,
		hw.Status,
		hw.Organization,
		hw.Site,
		hw.Location,
		hw.Coordinates,
		hw.Topic,
		hw.APIKeyHash,
		hw.CreatedAt,
		hw.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create hardware: %w", err)
	}
	return nil
}

func (r *hardwareAdminRepository) UpdateHardwareKey(ctx context.Context, name, keyHash string) error {
	query := `
		UPDATE hardware
		SET api_key_hash = $1, updated_at = $2
		WHERE name = $3
	`
	result, err := r.db.ExecContext(ctx, query, keyHash, time.Now(), name)
	if err != nil {
		return fmt.Errorf("failed to update hardware key: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}
