// Package tracker persists which articles have already been dispatched so
// reruns and overlapping archive days do not produce duplicate messages.
package tracker

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Record is one dispatched article. SentAt is second-resolution UTC ISO-8601
// with a trailing "Z"; older files may carry other shapes, which are kept
// as-is and simply never pruned.
type Record struct {
	URL         string `json:"url"`
	ContentHash string `json:"content_hash"`
	Title       string `json:"title,omitempty"`
	SentAt      string `json:"sent_at,omitempty"`
}

// Store is the in-memory tracking state.
type Store struct {
	Articles  []Record `json:"articles"`
	UpdatedAt string   `json:"updated_at,omitempty"`
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{Articles: []Record{}}
}

// Lookup reports whether an article was already sent, matching each stored
// record by URL first and content hash second. The returned reason names
// the match and, when known, the original send time.
func (s *Store) Lookup(url, contentHash string) (bool, string) {
	for _, rec := range s.Articles {
		if rec.URL == url {
			if rec.SentAt != "" {
				return true, fmt.Sprintf("URL already sent on %s", rec.SentAt)
			}
			return true, "URL already sent previously"
		}
		if rec.ContentHash == contentHash {
			if rec.SentAt != "" {
				return true, fmt.Sprintf("Content already sent on %s", rec.SentAt)
			}
			return true, "Content already sent previously"
		}
	}
	return false, ""
}

// Append records a newly sent article with the given send time, truncated
// to seconds in UTC.
func (s *Store) Append(url, contentHash, title string, now time.Time) {
	s.Articles = append(s.Articles, Record{
		URL:         url,
		ContentHash: contentHash,
		Title:       title,
		SentAt:      FormatSentAt(now),
	})
}

// Prune drops records whose send time parses and falls before the cutoff.
// Records with missing or unparsable send times are kept; the unparsable
// ones are returned so the caller can log them. The pruned count is the
// first return value.
func (s *Store) Prune(retention time.Duration, now time.Time) (int, []Record) {
	cutoff := now.UTC().Add(-retention)

	kept := make([]Record, 0, len(s.Articles))
	var unparsable []Record

	for _, rec := range s.Articles {
		if rec.SentAt == "" {
			kept = append(kept, rec)
			continue
		}
		sentAt, err := ParseSentAt(rec.SentAt)
		if err != nil {
			unparsable = append(unparsable, rec)
			kept = append(kept, rec)
			continue
		}
		if !sentAt.Before(cutoff) {
			kept = append(kept, rec)
		}
	}

	pruned := len(s.Articles) - len(kept)
	s.Articles = kept
	return pruned, unparsable
}

// sentAtLayout is how send times are written: second resolution, UTC,
// trailing Z.
const sentAtLayout = "2006-01-02T15:04:05"

// FormatSentAt renders a send time in the store's timestamp format.
func FormatSentAt(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(sentAtLayout) + "Z"
}

// sentAtLayouts are accepted when reading send times back, covering hand
// edits and older writers.
var sentAtLayouts = []string{
	sentAtLayout,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseSentAt parses a stored send time. A trailing "Z" is tolerated.
func ParseSentAt(raw string) (time.Time, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "Z")
	for _, layout := range sentAtLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized sent_at %q", raw)
}

// legacyStore is the retired map layout, keyed by article URL.
type legacyStore struct {
	Articles map[string]Record `json:"articles"`
}

// DecodeStore parses raw tracking data in either the canonical list layout
// or the retired map layout. The second return value reports whether a
// legacy document was migrated.
func DecodeStore(data []byte) (*Store, bool, error) {
	var canonical Store
	if err := json.Unmarshal(data, &canonical); err == nil && canonical.Articles != nil {
		return &canonical, false, nil
	}

	var legacy legacyStore
	if err := json.Unmarshal(data, &legacy); err != nil || legacy.Articles == nil {
		return nil, false, fmt.Errorf("unrecognized tracking store layout")
	}

	store := NewStore()
	for url, rec := range legacy.Articles {
		if rec.URL == "" {
			rec.URL = url
		}
		store.Articles = append(store.Articles, rec)
	}
	// Map order is random; sort for a stable migrated layout.
	sort.Slice(store.Articles, func(i, j int) bool {
		return store.Articles[i].URL < store.Articles[j].URL
	})
	return store, true, nil
}
