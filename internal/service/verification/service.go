package verification

import (
	"context"
	"errors"
	"time"

	"github.com/NicoLa5Tor/MQTTArisma/internal/model"
	"github.com/NicoLa5Tor/MQTTArisma/internal/repository"
	apperrors "github.com/NicoLa5Tor/MQTTArisma/pkg/errors"
)

// Outcome is the accumulated result of the three-step verification chain.
// The exists flags report validity in chain order; a false flag means the
// chain short-circuited at that step and every later flag stays false.
type Outcome struct {
	HardwareExists     bool `json:"hardware_existe"`
	HardwareActive     bool `json:"hardware_activo"`
	OrganizationExists bool `json:"empresa_existe"`
	SiteExists         bool `json:"sede_existe"`
	Authorized         bool `json:"autorizado"`

	Hardware     *model.Hardware     `json:"-"`
	Organization *model.Organization `json:"-"`
	Site         *model.Site         `json:"-"`
}

type Service interface {
	// Verify runs the full chain: hardware, then organization, then site.
	// A store failure aborts with ErrStoreUnavailable; an absent or
	// inactive record is a normal outcome, never an error.
	Verify(ctx context.Context, hardwareName, organizationName, siteName string) (*Outcome, error)

	// Single-step lookups backing the synchronous verification API.
	LookupHardware(ctx context.Context, name string) (*model.Hardware, error)
	LookupOrganization(ctx context.Context, name string) (*model.Organization, error)
	LookupSite(ctx context.Context, organization, name string) (*model.Site, error)
}

type service struct {
	registry      repository.RegistryRepository
	lookupTimeout time.Duration
}

// NewService builds the verification chain over the registry. A positive
// lookupTimeout bounds each registry call; zero disables the deadline.
func NewService(registry repository.RegistryRepository, lookupTimeout time.Duration) Service {
	return &service{registry: registry, lookupTimeout: lookupTimeout}
}

func (s *service) findHardware(ctx context.Context, name string) (*model.Hardware, error) {
	ctx, cancel := s.lookupCtx(ctx)
	defer cancel()
	return s.registry.FindHardware(ctx, name)
}

func (s *service) findOrganization(ctx context.Context, name string) (*model.Organization, error) {
	ctx, cancel := s.lookupCtx(ctx)
	defer cancel()
	return s.registry.FindOrganization(ctx, name)
}

func (s *service) findSite(ctx context.Context, organization, name string) (*model.Site, error) {
	ctx, cancel := s.lookupCtx(ctx)
	defer cancel()
	return s.registry.FindSite(ctx, organization, name)
}

// lookupCtx bounds one registry call so a stalled store surfaces as a
// store failure instead of hanging the whole pipeline worker.
func (s *service) lookupCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.lookupTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.lookupTimeout)
}

func (s *service) Verify(ctx context.Context, hardwareName, organizationName, siteName string) (*Outcome, error) {
	outcome := &Outcome{}

	// Step 1: hardware existence is the highest-priority check. An event
	// for unregistered hardware is rejected before the organization or
	// site are even looked at. An inactive device does NOT short-circuit
	// here; only the active flag differs.
	hw, err := s.findHardware(ctx, hardwareName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return outcome, nil
		}
		return nil, apperrors.NewStoreUnavailable("hardware lookup", err)
	}
	outcome.Hardware = hw
	outcome.HardwareExists = true
	outcome.HardwareActive = hw.IsActive()

	// Step 2: organization, only once hardware exists.
	org, err := s.findOrganization(ctx, organizationName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return outcome, nil
		}
		return nil, apperrors.NewStoreUnavailable("organization lookup", err)
	}
	if !org.IsActive() {
		return outcome, nil
	}
	outcome.Organization = org
	outcome.OrganizationExists = true

	// Step 3: site, keyed by (organization, name).
	site, err := s.findSite(ctx, organizationName, siteName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return outcome, nil
		}
		return nil, apperrors.NewStoreUnavailable("site lookup", err)
	}
	if !site.IsActive() {
		return outcome, nil
	}
	outcome.Site = site
	outcome.SiteExists = true

	// Authorization needs every tier valid and the device itself active.
	outcome.Authorized = outcome.HardwareActive
	return outcome, nil
}

func (s *service) LookupHardware(ctx context.Context, name string) (*model.Hardware, error) {
	hw, err := s.findHardware(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, apperrors.NewStoreUnavailable("hardware lookup", err)
	}
	return hw, nil
}

func (s *service) LookupOrganization(ctx context.Context, name string) (*model.Organization, error) {
	org, err := s.findOrganization(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, apperrors.NewStoreUnavailable("organization lookup", err)
	}
	return org, nil
}

func (s *service) LookupSite(ctx context.Context, organization, name string) (*model.Site, error) {
	site, err := s.findSite(ctx, organization, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, apperrors.NewStoreUnavailable("site lookup", err)
	}
	return site, nil
}
