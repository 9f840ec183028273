package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SASINDU20013d/newsfirst-telegram-bot/pkg/providers"
)

func serve(t *testing.T, page string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, page)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExtract(t *testing.T) {
	long := strings.Repeat("x", 40)
	srv := serve(t, `<html><head><title>Doc title</title></head><body>
		<h1> Parliament approves the budget </h1>
		<span style="display: block">26-08-2025 | 10:59 AM</span>
		<article>
			<p>too short</p>
			<p>The first substantial paragraph of the article body text here.</p>
			<p>The second substantial paragraph of the article body text here.</p>
			<p>The third substantial paragraph of the article body text here.</p>
			<p>The fourth substantial paragraph of the article body text here.</p>
			<p>The fifth paragraph never makes it into the message body at all: `+long+`</p>
		</article>
	</body></html>`)

	e := NewExtractor(nil, nil)
	art, err := e.Extract(context.Background(), providers.Provider{ID: "newsfirst"}, srv.URL+"/2025/08/26/budget/")
	require.NoError(t, err)

	assert.Equal(t, "Parliament approves the budget", art.Title)
	assert.Equal(t, strings.Join([]string{
		"The first substantial paragraph of the article body text here.",
		"The second substantial paragraph of the article body text here.",
		"The third substantial paragraph of the article body text here.",
		"The fourth substantial paragraph of the article body text here.",
	}, "\n\n"), art.Body)
	assert.Equal(t, "26-08-2025 | 10:59 AM", art.PublishedRaw)
	assert.Equal(t, "26 Aug 2025, 10:59 AM", art.Published)
	assert.Equal(t, srv.URL+"/2025/08/26/budget/", art.URL)
}

func TestExtractTitleFallsBackToDocumentTitle(t *testing.T) {
	srv := serve(t, `<html><head><title>Fallback headline</title></head><body><p></p></body></html>`)

	e := NewExtractor(nil, nil)
	art, err := e.Extract(context.Background(), providers.Provider{}, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Fallback headline", art.Title)
}

func TestExtractTitleFallsBackToURL(t *testing.T) {
	srv := serve(t, `<html><body><p>no headings anywhere on this page, just a paragraph</p></body></html>`)

	e := NewExtractor(nil, nil)
	art, err := e.Extract(context.Background(), providers.Provider{}, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, srv.URL, art.Title)
}

func TestExtractPlaceholderBody(t *testing.T) {
	srv := serve(t, `<html><body><h1>Headline</h1><p>short one</p><div>not a paragraph</div></body></html>`)

	e := NewExtractor(nil, nil)
	art, err := e.Extract(context.Background(), providers.Provider{}, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Content not clearly detected from page.", art.Body)
}

func TestExtractPrefersArticleContainer(t *testing.T) {
	srv := serve(t, `<html><body>
		<p>This paragraph lives outside the article container and is long enough.</p>
		<article><p>This paragraph lives inside the article container and is long enough.</p></article>
	</body></html>`)

	e := NewExtractor(nil, nil)
	art, err := e.Extract(context.Background(), providers.Provider{}, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "This paragraph lives inside the article container and is long enough.", art.Body)
}

func TestExtractPostContentContainer(t *testing.T) {
	srv := serve(t, `<html><body>
		<p>Outside the post content container, long enough to pass the filter.</p>
		<div class="post-content extra"><p>Inside the post content container, long enough to pass the filter.</p></div>
	</body></html>`)

	e := NewExtractor(nil, nil)
	art, err := e.Extract(context.Background(), providers.Provider{}, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Inside the post content container, long enough to pass the filter.", art.Body)
}

func TestExtractBodyTruncation(t *testing.T) {
	// One paragraph built from repeated words, well past the cap.
	words := strings.TrimSpace(strings.Repeat("lorem ipsum dolor sit amet ", 300))
	srv := serve(t, "<html><body><article><p>"+words+"</p></article></body></html>")

	e := NewExtractor(nil, nil)
	art, err := e.Extract(context.Background(), providers.Provider{}, srv.URL)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(art.Body, "..."), "truncated body ends with ellipsis")
	assert.LessOrEqual(t, len([]rune(art.Body)), 3503)
	assert.Greater(t, len([]rune(art.Body)), 3400)
	assert.False(t, strings.HasSuffix(strings.TrimSuffix(art.Body, "..."), " "), "right-trimmed before the ellipsis")
}

func TestExtractStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not here", http.StatusNotFound)
	}))
	defer srv.Close()

	e := NewExtractor(nil, nil)
	_, err := e.Extract(context.Background(), providers.Provider{}, srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}
