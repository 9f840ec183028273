package providers

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// archiveDiscoverer walks a date-indexed archive page and collects every
// link that lives under the day's path.
type archiveDiscoverer struct {
	client HTTPClient
}

// NewArchiveDiscoverer builds a discoverer for date-indexed archive pages.
func NewArchiveDiscoverer(client HTTPClient) Discoverer {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &archiveDiscoverer{client: client}
}

func (d *archiveDiscoverer) Type() string {
	return ProviderTypeArchive
}

// ArchiveURL builds the archive page URL for a calendar day, with the month
// and day zero-padded: {base}/{yyyy}/{mm}/{dd}.
func ArchiveURL(base string, day time.Time) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	return fmt.Sprintf("%s/%04d/%02d/%02d", base, day.Year(), int(day.Month()), day.Day())
}

func (d *archiveDiscoverer) Discover(ctx context.Context, cfg Provider, day time.Time) ([]string, error) {
	if !strings.EqualFold(strings.TrimSpace(cfg.Type), ProviderTypeArchive) && strings.TrimSpace(cfg.Type) != "" {
		return nil, fmt.Errorf("archive discoverer received incompatible provider type %q", cfg.Type)
	}
	if strings.TrimSpace(cfg.SourceURL) == "" {
		return nil, fmt.Errorf("provider %q source_url is empty", cfg.ID)
	}

	archiveURL := ArchiveURL(cfg.SourceURL, day)
	headers := Headers(cfg)

	raw, err := fetchPage(ctx, d.client, archiveURL, cfg.ID, headers)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("parse %s archive page: %w", cfg.ID, err)
	}

	pageURL, err := url.Parse(archiveURL)
	if err != nil {
		return nil, fmt.Errorf("parse archive url %q: %w", archiveURL, err)
	}

	// Articles for the day live strictly under {archive}/; everything else
	// on the page (navigation, other days) fails the prefix check.
	prefix := archiveURL + "/"
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		full := resolveHref(pageURL, strings.TrimSpace(href))
		if full == "" || !strings.HasPrefix(full, prefix) {
			return
		}
		seen[full] = struct{}{}
	})

	links := make([]string, 0, len(seen))
	for link := range seen {
		links = append(links, link)
	}
	sort.Strings(links)

	return links, nil
}

// resolveHref resolves a possibly relative href against the page URL.
func resolveHref(page *url.URL, href string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return page.ResolveReference(ref).String()
}
