package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/NicoLa5Tor/MQTTArisma/internal/model"
)

// ErrNotFound marks an absent record. Callers must treat it as a normal
// verification outcome; any other error from a repository means the store
// itself failed and the current message must be aborted.
var ErrNotFound = errors.New("record not found")

// RegistryRepository queries the three registry collections by natural
// key. The pipeline never mutates these records.
type RegistryRepository interface {
	FindHardware(ctx context.Context, name string) (*model.Hardware, error)
	FindOrganization(ctx context.Context, name string) (*model.Organization, error)
	FindSite(ctx context.Context, organization, name string) (*model.Site, error)
	ListSiteHardware(ctx context.Context, organization, site string) ([]*model.Hardware, error)
}

// HardwareAdminRepository extends the registry with the write operations
// used by provisioning, outside the pipeline's read-only contract.
type HardwareAdminRepository interface {
	CreateHardware(ctx context.Context, hw *model.Hardware) error
	UpdateHardwareKey(ctx context.Context, name, keyHash string) error
}

// AlertRepository owns the alert collection. The pipeline is the single
// writer; reads serve the monitoring surface.
type AlertRepository interface {
	Insert(ctx context.Context, alert *model.Alert) (uuid.UUID, error)
	MarkProcessed(ctx context.Context, id uuid.UUID, recipientsNotified int) error
	Get(ctx context.Context, id uuid.UUID) (*model.Alert, error)
	List(ctx context.Context, limit int) ([]*model.Alert, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
