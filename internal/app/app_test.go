package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SASINDU20013d/newsfirst-telegram-bot/internal/config"
	"github.com/SASINDU20013d/newsfirst-telegram-bot/internal/crawler"
	"github.com/SASINDU20013d/newsfirst-telegram-bot/internal/tracker"
	"github.com/SASINDU20013d/newsfirst-telegram-bot/pkg/httpclient"
	"github.com/SASINDU20013d/newsfirst-telegram-bot/pkg/providers"
	"github.com/SASINDU20013d/newsfirst-telegram-bot/pkg/publishers"
)

const testDay = "2025/08/26"

func articlePage(title string) string {
	return fmt.Sprintf(`<html><head><title>%s | Newsfirst</title></head><body>
<article>
<h1>%s</h1>
<span style="display: block">26-08-2025 | 10:59 AM</span>
<p>This opening paragraph easily clears the thirty rune floor used by the filter.</p>
<p>A second paragraph with plenty of detail so the body carries real content.</p>
</article>
</body></html>`, title, title)
}

// newsSite serves a date archive with three article links plus noise.
func newsSite(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/"+testDay, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `<html><body>
<a href="/%s/article-c">C</a>
<a href="/%s/article-a">A</a>
<a href="/%s/article-b">B</a>
<a href="/%s/article-a">A again</a>
<a href="/2025/08/25/yesterday">old</a>
<a href="/about">about</a>
</body></html>`, testDay, testDay, testDay, testDay)
	})
	mux.HandleFunc("/"+testDay+"/article-a", func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, articlePage("Alpha story"))
	})
	mux.HandleFunc("/"+testDay+"/article-b", func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, articlePage("Bravo story"))
	})
	mux.HandleFunc("/"+testDay+"/article-c", func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, articlePage("Charlie story"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// fakeTelegram records sendMessage texts and answers with the given status.
func fakeTelegram(t *testing.T, status int, texts *[]string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bot123:abc/sendMessage", r.URL.Path)

		var msg struct {
			ChatID string `json:"chat_id"`
			Text   string `json:"text"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		*texts = append(*texts, msg.Text)

		w.WriteHeader(status)
		if status == http.StatusOK {
			io.WriteString(w, `{"ok":true}`)
		} else {
			io.WriteString(w, `{"ok":false,"description":"boom"}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(siteURL, storePath string) config.Config {
	cfg := config.Config{}
	cfg.Provider.ID = "newsfirst"
	cfg.Provider.Type = providers.ProviderTypeArchive
	cfg.Provider.SourceURL = siteURL
	cfg.HTTP.TimeoutSeconds = 5
	cfg.Tracker.Backend = config.BackendFile
	cfg.Tracker.Path = storePath
	cfg.Tracker.RetentionDays = 7
	return cfg
}

func buildApp(t *testing.T, cfg config.Config, apiBase string) *App {
	t.Helper()

	pubCfg := publishers.DefaultTelegramConfig("123:abc", "@channel")
	pubCfg.Telegram.APIBase = apiBase
	pubs, err := publishers.BuildAll(context.Background(), publishers.DefaultRegistry(), []publishers.PublisherConfig{pubCfg}, nil)
	require.NoError(t, err)

	client := httpclient.NewRestyClient(cfg.HTTPTimeout())
	trk := tracker.NewTracker(tracker.NewFileBackend(cfg.Tracker.Path, nil), cfg.Retention(), nil)
	return New(cfg, providers.DefaultDiscovererRegistry(client), crawler.NewExtractor(client, nil), trk, pubs, nil)
}

func seedStore(t *testing.T, path string, records ...tracker.Record) {
	t.Helper()

	store := tracker.NewStore()
	store.Articles = append(store.Articles, records...)
	require.NoError(t, tracker.NewFileBackend(path, nil).Persist(store))
}

func TestRunSendsOnlyUnseenArticles(t *testing.T) {
	site := newsSite(t)
	var texts []string
	tg := fakeTelegram(t, http.StatusOK, &texts)

	storePath := filepath.Join(t.TempDir(), "sent_articles.json")
	seedStore(t, storePath, tracker.Record{
		URL:         site.URL + "/" + testDay + "/article-a",
		ContentHash: "unrelated-hash",
		Title:       "Alpha story",
		SentAt:      tracker.FormatSentAt(time.Now().Add(-24 * time.Hour)),
	})

	a := buildApp(t, testConfig(site.URL, storePath), tg.URL)
	summary, err := a.Run(context.Background(), time.Date(2025, 8, 26, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "2025-08-26", summary.Date)
	assert.Equal(t, 3, summary.Discovered)
	assert.Equal(t, 2, summary.Sent)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Errored)
	assert.Equal(t, 3, summary.Tracked)

	// Candidates arrive sorted, so Bravo is delivered before Charlie.
	require.Len(t, texts, 2)
	assert.Contains(t, texts[0], "Bravo story")
	assert.Contains(t, texts[0], "Published: 26 Aug 2025, 10:59 AM")
	assert.Contains(t, texts[0], "Read more: "+site.URL+"/"+testDay+"/article-b")
	assert.Contains(t, texts[1], "Charlie story")

	store := tracker.NewFileBackend(storePath, nil).Load()
	require.Len(t, store.Articles, 3)
	urls := make([]string, 0, len(store.Articles))
	for _, rec := range store.Articles {
		urls = append(urls, rec.URL)
	}
	assert.Contains(t, urls, site.URL+"/"+testDay+"/article-b")
	assert.Contains(t, urls, site.URL+"/"+testDay+"/article-c")
}

func TestRunDispatchFailureLeavesArticleUntracked(t *testing.T) {
	site := newsSite(t)
	var texts []string
	tg := fakeTelegram(t, http.StatusInternalServerError, &texts)

	storePath := filepath.Join(t.TempDir(), "sent_articles.json")
	a := buildApp(t, testConfig(site.URL, storePath), tg.URL)

	summary, err := a.Run(context.Background(), time.Date(2025, 8, 26, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Discovered)
	assert.Equal(t, 0, summary.Sent)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 3, summary.Errored)

	store := tracker.NewFileBackend(storePath, nil).Load()
	assert.Empty(t, store.Articles)
}

func TestRunRepublishedContentSkippedByFingerprint(t *testing.T) {
	// The archive first lists the original URL, then only a repost URL
	// serving identical content.
	repost := false
	mux := http.NewServeMux()
	mux.HandleFunc("/"+testDay, func(w http.ResponseWriter, _ *http.Request) {
		link := "/" + testDay + "/alpha"
		if repost {
			link = "/" + testDay + "/alpha-repost"
		}
		fmt.Fprintf(w, `<html><body><a href="%s">Alpha</a></body></html>`, link)
	})
	mux.HandleFunc("/"+testDay+"/alpha", func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, articlePage("Alpha story"))
	})
	mux.HandleFunc("/"+testDay+"/alpha-repost", func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, articlePage("Alpha story"))
	})
	site := httptest.NewServer(mux)
	t.Cleanup(site.Close)

	var texts []string
	tg := fakeTelegram(t, http.StatusOK, &texts)

	storePath := filepath.Join(t.TempDir(), "sent_articles.json")
	cfg := testConfig(site.URL, storePath)
	day := time.Date(2025, 8, 26, 0, 0, 0, 0, time.UTC)

	_, err := buildApp(t, cfg, tg.URL).Run(context.Background(), day)
	require.NoError(t, err)
	require.Len(t, texts, 1)

	repost = true
	summary, err := buildApp(t, cfg, tg.URL).Run(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Sent)
	assert.Len(t, texts, 1)

	store := tracker.NewFileBackend(storePath, nil).Load()
	require.Len(t, store.Articles, 1)
	assert.Equal(t, site.URL+"/"+testDay+"/alpha", store.Articles[0].URL)
}

func TestRunZeroCandidatesStillPrunesAndPersists(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/"+testDay, func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `<html><body><a href="/about">about</a></body></html>`)
	})
	site := httptest.NewServer(mux)
	t.Cleanup(site.Close)

	var texts []string
	tg := fakeTelegram(t, http.StatusOK, &texts)

	storePath := filepath.Join(t.TempDir(), "sent_articles.json")
	seedStore(t, storePath, tracker.Record{
		URL:         "https://example.com/stale",
		ContentHash: "stale-hash",
		SentAt:      tracker.FormatSentAt(time.Now().Add(-8 * 24 * time.Hour)),
	})

	a := buildApp(t, testConfig(site.URL, storePath), tg.URL)
	summary, err := a.Run(context.Background(), time.Date(2025, 8, 26, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Discovered)
	assert.Equal(t, 0, summary.Tracked)
	assert.Empty(t, texts)

	store := tracker.NewFileBackend(storePath, nil).Load()
	assert.Empty(t, store.Articles)
}

func TestRunDiscoveryFailure(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	t.Cleanup(site.Close)

	var texts []string
	tg := fakeTelegram(t, http.StatusOK, &texts)

	storePath := filepath.Join(t.TempDir(), "sent_articles.json")
	a := buildApp(t, testConfig(site.URL, storePath), tg.URL)

	_, err := a.Run(context.Background(), time.Date(2025, 8, 26, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
	assert.Empty(t, texts)
}
