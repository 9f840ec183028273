// Package publishers dispatches extracted articles to configured sinks.
// The default sink is a Telegram chat; generic HTTP endpoints and cloud
// queues are available through the publishers config file.
package publishers

import (
	"context"
	"strings"

	"github.com/SASINDU20013d/newsfirst-telegram-bot/internal/domain"
	"github.com/SASINDU20013d/newsfirst-telegram-bot/internal/logger"
)

// Event is the outbound representation of one article.
type Event struct {
	ProviderID  string `json:"provider_id"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	Published   string `json:"published,omitempty"`
	Fingerprint string `json:"fingerprint"`
}

// NewEvent builds the outbound event for an extracted article.
func NewEvent(providerID string, art domain.Article, fingerprint string) Event {
	return Event{
		ProviderID:  providerID,
		URL:         art.URL,
		Title:       art.Title,
		Body:        art.Body,
		Published:   art.Published,
		Fingerprint: fingerprint,
	}
}

// PublishedOrUnknown returns the event's published string, or "Unknown" when
// extraction found nothing.
func (e Event) PublishedOrUnknown() string {
	if strings.TrimSpace(e.Published) == "" {
		return "Unknown"
	}
	return e.Published
}

// Publisher delivers events to one configured sink.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// Logger is the logging surface publishers receive.
type Logger = logger.Logger

// ensureLogger substitutes a no-op logger for nil.
func ensureLogger(log Logger) Logger {
	if log == nil {
		return logger.NopLogger{}
	}
	return log
}
