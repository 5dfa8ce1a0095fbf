package hwauth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NicoLa5Tor/MQTTArisma/internal/config"
	"github.com/NicoLa5Tor/MQTTArisma/internal/model"
	"github.com/NicoLa5Tor/MQTTArisma/internal/repository"
	apperrors "github.com/NicoLa5Tor/MQTTArisma/pkg/errors"
	"github.com/NicoLa5Tor/MQTTArisma/pkg/security"
)

type fakeRegistry struct {
	hardware map[string]*model.Hardware
}

func (f *fakeRegistry) FindHardware(_ context.Context, name string) (*model.Hardware, error) {
	if hw, ok := f.hardware[name]; ok {
		return hw, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRegistry) FindOrganization(context.Context, string) (*model.Organization, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeRegistry) FindSite(context.Context, string, string) (*model.Site, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeRegistry) ListSiteHardware(context.Context, string, string) ([]*model.Hardware, error) {
	return nil, nil
}

func newTestService(t *testing.T) (Service, *fakeRegistry) {
	t.Helper()

	hasher := security.NewBcryptHasher(4)
	hash, err := hasher.Hash("clave-secreta-123")
	require.NoError(t, err)

	registry := &fakeRegistry{hardware: map[string]*model.Hardware{
		"Semaforo001": {
			Name:       "Semaforo001",
			Status:     model.StatusActive,
			APIKeyHash: hash,
		},
		"SinClave": {
			Name:   "SinClave",
			Status: model.StatusActive,
		},
	}}

	svc := NewService(registry, hasher, config.JWTConfig{
		Secret:        "test-secret",
		ExpiryMinutes: 5,
	})
	return svc, registry
}

func TestAuthenticateRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)

	token, err := svc.Authenticate(context.Background(), "Semaforo001", "clave-secreta-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	name, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "Semaforo001", name)
}

func TestAuthenticateWrongKey(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Authenticate(context.Background(), "Semaforo001", "clave-equivocada")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))
}

func TestAuthenticateUnknownHardware(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Authenticate(context.Background(), "NoExiste", "clave-secreta-123")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))
}

func TestAuthenticateUnprovisionedHardware(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Authenticate(context.Background(), "SinClave", "clave-secreta-123")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	svc, _ := newTestService(t)

	other := NewService(&fakeRegistry{hardware: map[string]*model.Hardware{}}, security.NewBcryptHasher(4),
		config.JWTConfig{Secret: "another-secret", ExpiryMinutes: 5})

	// A token signed under a different secret must not validate.
	_, err := other.ValidateToken(mustToken(t, svc))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))
}

func TestValidateTokenGarbage(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ValidateToken("no-es-un-token")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))
}

func mustToken(t *testing.T, svc Service) string {
	t.Helper()
	token, err := svc.Authenticate(context.Background(), "Semaforo001", "clave-secreta-123")
	require.NoError(t, err)
	return token
}
