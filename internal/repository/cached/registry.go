package cached

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/NicoLa5Tor/MQTTArisma/internal/model"
	"github.com/NicoLa5Tor/MQTTArisma/internal/repository"
	"github.com/NicoLa5Tor/MQTTArisma/pkg/metrics"
)

type Config struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

// Lookup result labels.
const (
	resultHit      = "hit"
	resultMiss     = "miss"
	resultNotFound = "not_found"
	resultError    = "error"
)

// registryCache is a read-through cache over the registry store. The
// pipeline never mutates registry records, so entries only expire by TTL.
// Not-found results are not cached: an operator registering a device must
// not wait out the TTL before its events authorize.
type registryCache struct {
	next    repository.RegistryRepository
	cache   *cache.Cache
	metrics *metrics.Metrics
}

func NewRegistryCache(next repository.RegistryRepository, cfg Config, m *metrics.Metrics) repository.RegistryRepository {
	return &registryCache{
		next:    next,
		cache:   cache.New(cfg.TTL, cfg.CleanupInterval),
		metrics: m,
	}
}

func (r *registryCache) FindHardware(ctx context.Context, name string) (*model.Hardware, error) {
	key := "hw:" + name
	if cached, found := r.cache.Get(key); found {
		r.observe("hardware", resultHit, 0)
		return cached.(*model.Hardware), nil
	}

	start := time.Now()
	hw, err := r.next.FindHardware(ctx, name)
	if err != nil {
		r.observe("hardware", lookupResult(err), time.Since(start))
		return nil, err
	}
	r.observe("hardware", resultMiss, time.Since(start))
	r.cache.Set(key, hw, cache.DefaultExpiration)
	return hw, nil
}

func (r *registryCache) FindOrganization(ctx context.Context, name string) (*model.Organization, error) {
	key := "org:" + name
	if cached, found := r.cache.Get(key); found {
		r.observe("organization", resultHit, 0)
		return cached.(*model.Organization), nil
	}

	start := time.Now()
	org, err := r.next.FindOrganization(ctx, name)
	if err != nil {
		r.observe("organization", lookupResult(err), time.Since(start))
		return nil, err
	}
	r.observe("organization", resultMiss, time.Since(start))
	r.cache.Set(key, org, cache.DefaultExpiration)
	return org, nil
}

func (r *registryCache) FindSite(ctx context.Context, organization, name string) (*model.Site, error) {
	key := fmt.Sprintf("site:%s/%s", organization, name)
	if cached, found := r.cache.Get(key); found {
		r.observe("site", resultHit, 0)
		return cached.(*model.Site), nil
	}

	start := time.Now()
	site, err := r.next.FindSite(ctx, organization, name)
	if err != nil {
		r.observe("site", lookupResult(err), time.Since(start))
		return nil, err
	}
	r.observe("site", resultMiss, time.Since(start))
	r.cache.Set(key, site, cache.DefaultExpiration)
	return site, nil
}

func (r *registryCache) ListSiteHardware(ctx context.Context, organization, site string) ([]*model.Hardware, error) {
	// Listing feeds the command fan-back, which tolerates staleness less
	// well than lookups; always hit the store.
	return r.next.ListSiteHardware(ctx, organization, site)
}

// observe records one lookup. A zero elapsed marks a cache hit, which
// never touched the store and has no latency worth plotting.
func (r *registryCache) observe(entity, result string, elapsed time.Duration) {
	if r.metrics == nil {
		return
	}
	r.metrics.RegistryLookups.WithLabelValues(entity, result).Inc()
	if elapsed > 0 {
		r.metrics.RegistryLatency.WithLabelValues(entity).Observe(elapsed.Seconds())
	}
}

func lookupResult(err error) string {
	if errors.Is(err, repository.ErrNotFound) {
		return resultNotFound
	}
	return resultError
}
