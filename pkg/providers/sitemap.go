package providers

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

// newsSitemapDiscoverer reads Google-News-style sitemaps and keeps entries
// published on the target day.
type newsSitemapDiscoverer struct {
	client HTTPClient
}

// NewNewsSitemapDiscoverer builds a discoverer for Google-News-style
// sitemaps, following sitemap indexes when the source URL points at one.
func NewNewsSitemapDiscoverer(client HTTPClient) Discoverer {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &newsSitemapDiscoverer{client: client}
}

func (d *newsSitemapDiscoverer) Type() string {
	return ProviderTypeNewsSitemap
}

func (d *newsSitemapDiscoverer) Discover(ctx context.Context, cfg Provider, day time.Time) ([]string, error) {
	if !strings.EqualFold(strings.TrimSpace(cfg.Type), ProviderTypeNewsSitemap) {
		return nil, fmt.Errorf("news sitemap discoverer received incompatible provider type %q", cfg.Type)
	}
	if strings.TrimSpace(cfg.SourceURL) == "" {
		return nil, fmt.Errorf("provider %q source_url is empty", cfg.ID)
	}

	headers := Headers(cfg)

	entries, err := d.fetchSitemapEntries(ctx, cfg, cfg.SourceURL, headers, nil)
	if err != nil {
		return nil, err
	}

	links := make([]string, 0, len(entries))
	for _, entry := range entries {
		loc := strings.TrimSpace(entry.Loc)
		if loc == "" {
			continue
		}
		if !sameUTCDay(parsePublicationDate(entry.News.PublicationDate), day) {
			continue
		}
		links = append(links, loc)
	}

	return sortedUnique(links), nil
}

// fetchSitemapEntries resolves the given sitemap URL into article entries,
// following sitemap indexes if necessary. The visited set guards against
// index cycles.
func (d *newsSitemapDiscoverer) fetchSitemapEntries(ctx context.Context, cfg Provider, url string, headers map[string]string, visited map[string]struct{}) ([]newsSitemapURL, error) {
	if visited == nil {
		visited = make(map[string]struct{})
	}
	if _, seen := visited[url]; seen {
		return nil, nil
	}
	visited[url] = struct{}{}

	raw, err := fetchPage(ctx, d.client, url, cfg.ID, headers)
	if err != nil {
		return nil, err
	}

	entries, err := parseNewsSitemap(raw)
	if err != nil {
		return nil, fmt.Errorf("decode news sitemap: %w", err)
	}
	if len(entries) > 0 {
		return entries, nil
	}

	indexURLs, err := parseSitemapIndex(raw)
	if err != nil {
		return nil, fmt.Errorf("decode sitemap index: %w", err)
	}
	if len(indexURLs) == 0 {
		return nil, nil
	}

	var all []newsSitemapURL
	for _, indexURL := range indexURLs {
		indexURL = strings.TrimSpace(indexURL)
		if indexURL == "" {
			continue
		}

		nested, err := d.fetchSitemapEntries(ctx, cfg, indexURL, headers, visited)
		if err != nil {
			return nil, err
		}
		all = append(all, nested...)
	}
	return all, nil
}

type newsSitemap struct {
	URLs []newsSitemapURL `xml:"url"`
}

type newsSitemapURL struct {
	Loc  string            `xml:"loc"`
	News newsSitemapDetail `xml:"news"`
}

type newsSitemapDetail struct {
	PublicationDate string `xml:"publication_date"`
	Title           string `xml:"title"`
}

type sitemapIndex struct {
	Sitemaps []sitemapIndexEntry `xml:"sitemap"`
}

type sitemapIndexEntry struct {
	Loc string `xml:"loc"`
}

// parseNewsSitemap decodes the document as a plain news sitemap. An index
// document decodes to zero entries.
func parseNewsSitemap(data []byte) ([]newsSitemapURL, error) {
	var sm newsSitemap
	if err := xml.Unmarshal(data, &sm); err != nil {
		return nil, err
	}
	return sm.URLs, nil
}

// parseSitemapIndex decodes the document as a sitemap index. Callers skip
// blank locations, so entries are returned as-is.
func parseSitemapIndex(data []byte) ([]string, error) {
	var index sitemapIndex
	if err := xml.Unmarshal(data, &index); err != nil {
		return nil, err
	}

	locs := make([]string, len(index.Sitemaps))
	for i, entry := range index.Sitemaps {
		locs[i] = entry.Loc
	}
	return locs, nil
}
