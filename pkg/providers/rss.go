package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// rssDiscoverer reads an RSS or Atom feed and keeps items published on the
// target day.
type rssDiscoverer struct {
	client HTTPClient
	parser *gofeed.Parser
}

// NewRSSDiscoverer builds a discoverer for RSS and Atom feeds.
func NewRSSDiscoverer(client HTTPClient) Discoverer {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &rssDiscoverer{
		client: client,
		parser: gofeed.NewParser(),
	}
}

func (d *rssDiscoverer) Type() string {
	return ProviderTypeRSS
}

func (d *rssDiscoverer) Discover(ctx context.Context, cfg Provider, day time.Time) ([]string, error) {
	if !strings.EqualFold(strings.TrimSpace(cfg.Type), ProviderTypeRSS) {
		return nil, fmt.Errorf("rss discoverer received incompatible provider type %q", cfg.Type)
	}
	if strings.TrimSpace(cfg.SourceURL) == "" {
		return nil, fmt.Errorf("provider %q source_url is empty", cfg.ID)
	}

	headers := Headers(cfg)

	raw, err := fetchPage(ctx, d.client, cfg.SourceURL, cfg.ID, headers)
	if err != nil {
		return nil, err
	}

	feed, err := d.parser.ParseString(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse %s feed: %w", cfg.ID, err)
	}

	links := make([]string, 0, len(feed.Items))
	for _, item := range feed.Items {
		var published time.Time
		switch {
		case item.PublishedParsed != nil:
			published = *item.PublishedParsed
		case item.UpdatedParsed != nil:
			published = *item.UpdatedParsed
		default:
			// Items without a parseable date cannot be matched to the
			// target day.
			continue
		}

		if !sameUTCDay(published, day) {
			continue
		}
		links = append(links, item.Link)
	}

	return sortedUnique(links), nil
}
