package providers

import (
	"fmt"
	"strings"
	"sync"
)

type discovererRegistry struct {
	discoverers map[string]Discoverer
	mu          sync.RWMutex
}

// NewDiscovererRegistry builds a registry for the provided discoverer
// implementations, keyed by their type.
func NewDiscovererRegistry(discoverers ...Discoverer) DiscovererRegistry {
	reg := &discovererRegistry{
		discoverers: make(map[string]Discoverer, len(discoverers)),
	}

	for _, d := range discoverers {
		if d == nil {
			continue
		}
		reg.discoverers[strings.ToLower(strings.TrimSpace(d.Type()))] = d
	}

	return reg
}

// DiscovererFor selects the discoverer for the given provider based on its
// type. An empty type falls back to the archive discoverer.
func (r *discovererRegistry) DiscovererFor(cfg Provider) (Discoverer, error) {
	key := strings.ToLower(strings.TrimSpace(cfg.Type))
	if key == "" {
		key = ProviderTypeArchive
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if d, ok := r.discoverers[key]; ok {
		return d, nil
	}

	return nil, fmt.Errorf("no discoverer registered for provider type %q", cfg.Type)
}

// DefaultDiscovererRegistry wires up the known discovery strategies.
func DefaultDiscovererRegistry(client HTTPClient) DiscovererRegistry {
	if client == nil {
		client = DefaultHTTPClient()
	}

	return NewDiscovererRegistry(
		NewArchiveDiscoverer(client),
		NewNewsSitemapDiscoverer(client),
		NewRSSDiscoverer(client),
	)
}
