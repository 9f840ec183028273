// Package crawler fetches article pages and extracts their title, body and
// published time using best-effort heuristics that tolerate messy markup.
package crawler

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/SASINDU20013d/newsfirst-telegram-bot/internal/domain"
	"github.com/SASINDU20013d/newsfirst-telegram-bot/internal/logger"
	"github.com/SASINDU20013d/newsfirst-telegram-bot/pkg/httpclient"
	"github.com/SASINDU20013d/newsfirst-telegram-bot/pkg/providers"
)

const (
	maxHTMLBodyBytes = 1 << 20 // 1 MiB

	// minParagraphRunes filters boilerplate lines out of the article body.
	minParagraphRunes = 30
	// maxParagraphs limits how much of the page ends up in one message.
	maxParagraphs = 4
	// maxBodyRunes keeps the final message under Telegram's 4096 limit.
	maxBodyRunes = 3500

	// placeholderBody stands in when no paragraph survives the filters.
	placeholderBody = "Content not clearly detected from page."
)

// Extractor fetches article pages and extracts their content.
type Extractor struct {
	client httpclient.Client
	log    logger.Logger
}

// NewExtractor creates an Extractor with the given HTTP client and logger.
func NewExtractor(client httpclient.Client, log logger.Logger) *Extractor {
	if client == nil {
		client = providers.DefaultHTTPClient()
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Extractor{client: client, log: log}
}

// Extract fetches the article page and extracts title, body and published
// time. Only fetch failures and non-200 statuses produce an error; parse
// surprises degrade to fallbacks instead.
func (e *Extractor) Extract(ctx context.Context, cfg providers.Provider, articleURL string) (domain.Article, error) {
	art := domain.Article{URL: articleURL}

	headers := providers.Headers(cfg)

	e.log.DebugObj("extracting article", "extract_start", map[string]any{
		"provider_id": cfg.ID,
		"url":         articleURL,
	})

	resp, err := e.client.Get(ctx, articleURL, headers)
	if err != nil {
		return art, fmt.Errorf("http fetch: %w", err)
	}

	if resp.StatusCode() != 200 {
		snippet := strings.TrimSpace(string(resp.Body()))
		if len(snippet) > 1024 {
			snippet = snippet[:1024]
		}
		return art, fmt.Errorf("status %d body: %s", resp.StatusCode(), snippet)
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		e.log.InfoObj("html body truncated", "truncation", map[string]any{
			"provider_id": cfg.ID,
			"url":         articleURL,
			"original":    len(body),
			"kept":        maxHTMLBodyBytes,
		})
		body = body[:maxHTMLBodyBytes]
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return art, fmt.Errorf("parse html: %w", err)
	}

	art.Title = extractTitle(doc, articleURL)
	art.Body = extractBody(doc)

	art.PublishedRaw = extractPublished(doc)
	art.Published = NormalizePublished(art.PublishedRaw)

	return art, nil
}

// extractTitle prefers the first h1, then the document title, then the URL.
func extractTitle(doc *goquery.Document, articleURL string) string {
	return firstNonEmpty(
		collapseText(doc.Find("h1").First()),
		collapseText(doc.Find("title").First()),
		articleURL,
	)
}

// extractBody collects paragraph text from the most article-like container
// on the page.
func extractBody(doc *goquery.Document) string {
	container := articleContainer(doc)

	var paragraphs []string
	container.Find("p").Each(func(_ int, sel *goquery.Selection) {
		if len(paragraphs) >= maxParagraphs {
			return
		}
		text := collapseText(sel)
		if text == "" || len([]rune(text)) < minParagraphRunes {
			return
		}
		paragraphs = append(paragraphs, text)
	})

	if len(paragraphs) == 0 {
		paragraphs = append(paragraphs, placeholderBody)
	}

	body := strings.Join(paragraphs, "\n\n")

	if runes := []rune(body); len(runes) > maxBodyRunes {
		body = strings.TrimRight(string(runes[:maxBodyRunes]), " \t\n\r") + "..."
	}

	return body
}

// articleContainer picks the node most likely to hold the article text:
// article, then div.post-content, then body, then the whole document.
func articleContainer(doc *goquery.Document) *goquery.Selection {
	if sel := doc.Find("article").First(); sel.Length() > 0 {
		return sel
	}
	if sel := doc.Find("div.post-content").First(); sel.Length() > 0 {
		return sel
	}
	if sel := doc.Find("body").First(); sel.Length() > 0 {
		return sel
	}
	return doc.Selection
}

// collapseText extracts the selection's text with all whitespace runs
// collapsed to single spaces.
func collapseText(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}

// firstNonEmpty returns the first candidate with non-whitespace content.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
