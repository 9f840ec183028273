package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveURL(t *testing.T) {
	day := time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "https://example.com/2025/03/05", ArchiveURL("https://example.com", day))
	assert.Equal(t, "https://example.com/2025/03/05", ArchiveURL("https://example.com/", day))

	day = time.Date(2025, time.November, 17, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "https://example.com/2025/11/17", ArchiveURL("https://example.com", day))
}

func TestArchiveDiscoverer(t *testing.T) {
	day := time.Date(2025, time.August, 26, 0, 0, 0, 0, time.UTC)

	var page string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2025/08/26" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	page = fmt.Sprintf(`<html><body>
		<a href="%[1]s/2025/08/26/economy-update/">Economy</a>
		<a href="/2025/08/26/budget-passed/">Budget</a>
		<a href="%[1]s/2025/08/26/economy-update/">Economy again</a>
		<a href="/2025/08/25/yesterday-story/">Yesterday</a>
		<a href="/about">About us</a>
		<a href="sports-final">Relative without day path</a>
	</body></html>`, srv.URL)

	d := NewArchiveDiscoverer(nil)
	links, err := d.Discover(context.Background(), Provider{ID: "newsfirst", SourceURL: srv.URL}, day)
	require.NoError(t, err)

	assert.Equal(t, []string{
		srv.URL + "/2025/08/26/budget-passed/",
		srv.URL + "/2025/08/26/economy-update/",
	}, links)
}

func TestArchiveDiscovererEmptyPage(t *testing.T) {
	day := time.Date(2025, time.August, 26, 0, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/about">About</a></body></html>`)
	}))
	defer srv.Close()

	d := NewArchiveDiscoverer(nil)
	links, err := d.Discover(context.Background(), Provider{ID: "newsfirst", SourceURL: srv.URL}, day)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestArchiveDiscovererStatusError(t *testing.T) {
	day := time.Date(2025, time.August, 26, 0, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone fishing", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	d := NewArchiveDiscoverer(nil)
	_, err := d.Discover(context.Background(), Provider{ID: "newsfirst", SourceURL: srv.URL}, day)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestArchiveDiscovererMissingSourceURL(t *testing.T) {
	d := NewArchiveDiscoverer(nil)
	_, err := d.Discover(context.Background(), Provider{ID: "newsfirst"}, time.Now())
	require.Error(t, err)
}
