package crawler

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// sitePattern matches the timestamp layout many news sites render inline,
// e.g. "13-01-2026 | 10:59 AM".
var sitePattern = regexp.MustCompile(`\b\d{2}-\d{2}-\d{4}\s*\|\s*\d{1,2}:\d{2}\s*(?:AM|PM|am|pm)?\b`)

// timeHint matches text that plausibly contains a year or a clock time.
var timeHint = regexp.MustCompile(`\d{4}|\d{1,2}:\d{2}`)

var (
	displayBlockStyle = regexp.MustCompile(`(?i)display\s*:\s*block`)
	dateLikeAttr      = regexp.MustCompile(`(?i)(date|time|published|posted|timestamp)`)
)

// metaChecks lists the meta tag conventions probed for a published time, in
// priority order.
var metaChecks = []struct {
	attr string
	keys []string
}{
	{"property", []string{"article:published_time", "og:published_time", "og:updated_time", "article:modified_time"}},
	{"name", []string{"pubdate", "publishdate", "timestamp", "date", "publication_date", "Date", "dc.date", "dc.date.issued"}},
	{"itemprop", []string{"datePublished", "datecreated"}},
}

// extractPublished pulls a raw published time string from the page, trying
// progressively weaker signals. It returns "" when nothing plausible is
// found; that is expected, not an error.
func extractPublished(doc *goquery.Document) string {
	// Direct match of the inline site pattern anywhere in text nodes.
	if found := findTextNodeMatch(doc); found != "" {
		return found
	}

	// Spans styled display:block often carry the visible timestamp.
	found := ""
	doc.Find("span[style]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		style, _ := sel.Attr("style")
		if !displayBlockStyle.MatchString(style) {
			return true
		}
		if txt := collapseText(sel); txt != "" && sitePattern.MatchString(txt) {
			found = txt
			return false
		}
		return true
	})
	if found != "" {
		return found
	}

	// time elements, preferring the datetime attribute over text.
	doc.Find("time").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if attr, ok := sel.Attr("datetime"); ok {
			if v := strings.TrimSpace(attr); v != "" {
				found = v
				return false
			}
		}
		if txt := collapseText(sel); txt != "" && timeHint.MatchString(txt) {
			found = txt
			return false
		}
		return true
	})
	if found != "" {
		return found
	}

	// JSON-LD blocks.
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return true
		}
		var data any
		if err := json.Unmarshal([]byte(text), &data); err != nil {
			return true
		}
		if v := findDateInJSON(data); v != "" {
			found = v
			return false
		}
		return true
	})
	if found != "" {
		return found
	}

	// Meta tag conventions.
	for _, check := range metaChecks {
		for _, key := range check.keys {
			sel := doc.Find(fmt.Sprintf("meta[%s=%q]", check.attr, key)).First()
			if sel.Length() == 0 {
				continue
			}
			if content, ok := sel.Attr("content"); ok {
				if v := strings.TrimSpace(content); v != "" {
					return v
				}
			}
		}
	}

	// Last resort: elements whose class or id suggests a date or time.
	var candidates []string
	doc.Find("[class]").Each(func(_ int, sel *goquery.Selection) {
		class, _ := sel.Attr("class")
		if !dateLikeAttr.MatchString(class) {
			return
		}
		if txt := collapseText(sel); txt != "" {
			candidates = append(candidates, txt)
		}
	})
	doc.Find("[id]").Each(func(_ int, sel *goquery.Selection) {
		id, _ := sel.Attr("id")
		if !dateLikeAttr.MatchString(id) {
			return
		}
		if txt := collapseText(sel); txt != "" {
			candidates = append(candidates, txt)
		}
	})
	for _, txt := range candidates {
		if timeHint.MatchString(txt) || sitePattern.MatchString(txt) {
			return txt
		}
	}

	return ""
}

// findTextNodeMatch walks the document's text nodes in order and returns the
// first one matching the inline site pattern, trimmed.
func findTextNodeMatch(doc *goquery.Document) string {
	var walk func(*html.Node) string
	walk = func(n *html.Node) string {
		if n.Type == html.TextNode && sitePattern.MatchString(n.Data) {
			if candidate := strings.TrimSpace(n.Data); candidate != "" {
				return candidate
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if found := walk(child); found != "" {
				return found
			}
		}
		return ""
	}

	for _, node := range doc.Nodes {
		if found := walk(node); found != "" {
			return found
		}
	}
	return ""
}

// findDateInJSON searches decoded JSON-LD for the first datePublished,
// dateCreated or date string. Maps are recursed in sorted key order so the
// result is deterministic.
func findDateInJSON(obj any) string {
	switch v := obj.(type) {
	case map[string]any:
		for _, key := range []string{"datePublished", "dateCreated", "date"} {
			if s, ok := v[key].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if found := findDateInJSON(v[k]); found != "" {
				return found
			}
		}
	case []any:
		for _, item := range v {
			if found := findDateInJSON(item); found != "" {
				return found
			}
		}
	}
	return ""
}
