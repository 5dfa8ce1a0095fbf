package cached

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NicoLa5Tor/MQTTArisma/internal/model"
	"github.com/NicoLa5Tor/MQTTArisma/internal/repository"
	"github.com/NicoLa5Tor/MQTTArisma/pkg/metrics"
)

type countingRegistry struct {
	hardware      map[string]*model.Hardware
	organizations map[string]*model.Organization
	sites         map[string]*model.Site

	hardwareCalls     int
	organizationCalls int
	siteCalls         int
	listCalls         int
}

func (c *countingRegistry) FindHardware(_ context.Context, name string) (*model.Hardware, error) {
	c.hardwareCalls++
	if hw, ok := c.hardware[name]; ok {
		return hw, nil
	}
	return nil, repository.ErrNotFound
}

func (c *countingRegistry) FindOrganization(_ context.Context, name string) (*model.Organization, error) {
	c.organizationCalls++
	if org, ok := c.organizations[name]; ok {
		return org, nil
	}
	return nil, repository.ErrNotFound
}

func (c *countingRegistry) FindSite(_ context.Context, organization, name string) (*model.Site, error) {
	c.siteCalls++
	if site, ok := c.sites[organization+"/"+name]; ok {
		return site, nil
	}
	return nil, repository.ErrNotFound
}

func (c *countingRegistry) ListSiteHardware(context.Context, string, string) ([]*model.Hardware, error) {
	c.listCalls++
	return nil, nil
}

func newCachedFixture() (*countingRegistry, repository.RegistryRepository) {
	store := &countingRegistry{
		hardware: map[string]*model.Hardware{
			"Semaforo001": {Name: "Semaforo001", Status: model.StatusActive},
		},
		organizations: map[string]*model.Organization{
			"empresa1": {Name: "empresa1", Status: model.StatusActive},
		},
		sites: map[string]*model.Site{
			"empresa1/principal": {Organization: "empresa1", Name: "principal"},
		},
	}
	cache := NewRegistryCache(store, Config{TTL: time.Minute, CleanupInterval: time.Minute}, nil)
	return store, cache
}

func TestFindHardwareCachesHits(t *testing.T) {
	store, cache := newCachedFixture()
	ctx := context.Background()

	first, err := cache.FindHardware(ctx, "Semaforo001")
	require.NoError(t, err)
	second, err := cache.FindHardware(ctx, "Semaforo001")
	require.NoError(t, err)

	assert.Equal(t, 1, store.hardwareCalls)
	assert.Same(t, first, second)
}

func TestFindHardwareDoesNotCacheNotFound(t *testing.T) {
	store, cache := newCachedFixture()
	ctx := context.Background()

	_, err := cache.FindHardware(ctx, "Nuevo001")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// Register the device, then look it up again: the earlier miss must
	// not shadow it until the TTL runs out.
	store.hardware["Nuevo001"] = &model.Hardware{Name: "Nuevo001", Status: model.StatusActive}

	hw, err := cache.FindHardware(ctx, "Nuevo001")
	require.NoError(t, err)
	assert.Equal(t, "Nuevo001", hw.Name)
	assert.Equal(t, 2, store.hardwareCalls)
}

func TestFindOrganizationAndSiteCacheIndependently(t *testing.T) {
	store, cache := newCachedFixture()
	ctx := context.Background()

	for n := 0; n < 3; n++ {
		_, err := cache.FindOrganization(ctx, "empresa1")
		require.NoError(t, err)
		_, err = cache.FindSite(ctx, "empresa1", "principal")
		require.NoError(t, err)
	}

	assert.Equal(t, 1, store.organizationCalls)
	assert.Equal(t, 1, store.siteCalls)
}

func TestLookupsObserved(t *testing.T) {
	store := &countingRegistry{
		hardware: map[string]*model.Hardware{
			"Semaforo001": {Name: "Semaforo001", Status: model.StatusActive},
		},
		organizations: map[string]*model.Organization{},
		sites:         map[string]*model.Site{},
	}
	m := metrics.NewMetrics(prometheus.NewRegistry(), "test", "registry")
	cache := NewRegistryCache(store, Config{TTL: time.Minute, CleanupInterval: time.Minute}, m)
	ctx := context.Background()

	_, err := cache.FindHardware(ctx, "Semaforo001")
	require.NoError(t, err)
	_, err = cache.FindHardware(ctx, "Semaforo001")
	require.NoError(t, err)
	_, err = cache.FindHardware(ctx, "NoExiste")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	lookups := func(entity, result string) float64 {
		return testutil.ToFloat64(m.RegistryLookups.WithLabelValues(entity, result))
	}
	assert.Equal(t, 1.0, lookups("hardware", "miss"))
	assert.Equal(t, 1.0, lookups("hardware", "hit"))
	assert.Equal(t, 1.0, lookups("hardware", "not_found"))

	// Store round-trips land in the latency histogram under the entity
	// label; cache hits never touch it.
	assert.Equal(t, 1, testutil.CollectAndCount(m.RegistryLatency, "test_registry_registry_lookup_duration_seconds"))
}

func TestListSiteHardwareBypassesCache(t *testing.T) {
	store, cache := newCachedFixture()
	ctx := context.Background()

	for n := 0; n < 3; n++ {
		_, err := cache.ListSiteHardware(ctx, "empresa1", "principal")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, store.listCalls)
}
