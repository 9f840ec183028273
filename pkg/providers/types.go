// Package providers discovers candidate article links for a target
// publication date. Each discovery strategy implements Discoverer and is
// selected through a registry keyed by provider type.
package providers

import (
	"context"
	"time"

	"github.com/SASINDU20013d/newsfirst-telegram-bot/pkg/httpclient"
)

// Provider types understood by the default registry.
const (
	// ProviderTypeArchive walks a date-indexed archive page such as
	// https://example.com/2025/08/26 and collects links under that path.
	ProviderTypeArchive = "archive"
	// ProviderTypeNewsSitemap reads a Google-News-style XML sitemap,
	// following sitemap indexes when needed.
	ProviderTypeNewsSitemap = "news-sitemap"
	// ProviderTypeRSS reads an RSS or Atom feed.
	ProviderTypeRSS = "rss"
)

// HTTPClient is the transport used by discoverers.
type HTTPClient = httpclient.Client

// Provider configures one discovery source.
type Provider struct {
	// ID identifies the source in logs and outbound events.
	ID string `mapstructure:"id" yaml:"id" json:"id"`
	// Type selects the discovery strategy. Empty defaults to "archive".
	Type string `mapstructure:"type" yaml:"type" json:"type"`
	// SourceURL is the archive base URL, sitemap URL or feed URL
	// depending on Type.
	SourceURL string `mapstructure:"source_url" yaml:"source_url" json:"source_url"`
	// Headers are sent with every request to the source.
	Headers map[string]string `mapstructure:"headers" yaml:"headers" json:"headers"`
}

// Discoverer finds article URLs published on the given calendar day.
// Results are deduplicated and sorted lexicographically.
type Discoverer interface {
	Type() string
	Discover(ctx context.Context, cfg Provider, day time.Time) ([]string, error)
}

// DiscovererRegistry selects the discoverer for a provider configuration.
type DiscovererRegistry interface {
	DiscovererFor(cfg Provider) (Discoverer, error)
}

// Headers returns the request headers for a provider, applying the default
// User-Agent unless the provider overrides it.
func Headers(cfg Provider) map[string]string {
	headers := map[string]string{
		"User-Agent": defaultUserAgent,
	}
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	return headers
}

const defaultUserAgent = "newsfirst-telegram-bot/1.0 (+https://github.com/SASINDU20013d/newsfirst-telegram-bot)"

// DefaultHTTPClient returns a tuned HTTP client for discoverers.
func DefaultHTTPClient() HTTPClient { return httpclient.NewRestyClient(15 * time.Second) }
