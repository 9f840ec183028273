package crawler

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// displayLayout is the friendly format used in outbound messages.
const displayLayout = "02 Jan 2006, 03:04 PM"

// publishedLayouts are tried after the general-purpose parser fails. The
// first two cover the inline site pattern.
var publishedLayouts = []string{
	"02-01-2006 | 03:04 PM",
	"02-01-2006 | 15:04",
	"02-01-2006 03:04 PM",
	"02-01-2006 15:04",
	"02/01/2006 | 03:04 PM",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// isoLayouts back the final fallback for ISO-ish strings once a trailing Z
// has been stripped.
var isoLayouts = []string{
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Zone detection for raw inputs. A compact offset like +0530 only counts
// when the string also carries a clock time, so a trailing year such as
// "05-03-2026" is not mistaken for an offset.
var (
	zoneSuffix    = regexp.MustCompile(`(?:\dZ|[+-]\d{2}:\d{2})\s*$`)
	zoneToken     = regexp.MustCompile(`\b(?:UTC|GMT)\b`)
	compactOffset = regexp.MustCompile(`[+-]\d{4}\s*$`)
)

// hasExplicitZone reports whether the raw string carries its own timezone.
func hasExplicitZone(raw string) bool {
	if zoneSuffix.MatchString(raw) || zoneToken.MatchString(raw) {
		return true
	}
	return compactOffset.MatchString(raw) && strings.Contains(raw, ":")
}

// NormalizePublished turns a raw published time string into the friendly
// display form "02 Jan 2006, 03:04 PM". Zone-aware inputs are converted to
// UTC and suffixed with " UTC". When nothing parses, the raw string is
// returned verbatim; an empty input stays empty.
func NormalizePublished(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if t, err := dateparse.ParseAny(raw); err == nil {
		if hasExplicitZone(raw) {
			return t.UTC().Format(displayLayout) + " UTC"
		}
		return t.Format(displayLayout)
	}

	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(displayLayout)
		}
		// The AM/PM marker must be uppercase for time.Parse; the sites
		// are not as strict.
		if strings.Contains(layout, "PM") {
			if t, err := time.Parse(layout, strings.ToUpper(raw)); err == nil {
				return t.Format(displayLayout)
			}
		}
	}

	trimmed := strings.TrimRight(raw, "Z")
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format(displayLayout)
		}
	}

	return raw
}
