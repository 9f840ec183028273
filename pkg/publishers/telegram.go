package publishers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SASINDU20013d/newsfirst-telegram-bot/pkg/httpclient"
)

// telegramPublisher delivers events as Telegram bot messages.
type telegramPublisher struct {
	id             string
	typ            string
	apiBase        string
	botToken       string
	chatID         string
	disablePreview bool
	client         httpclient.Client
	log            Logger
}

// telegramMessage is the sendMessage request payload.
type telegramMessage struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// newTelegramPublisher creates a Telegram publisher from the config entry.
func newTelegramPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.Telegram == nil {
		return nil, fmt.Errorf("publisher %q missing telegram configuration", cfg.ID)
	}

	return &telegramPublisher{
		id:             cfg.ID,
		typ:            cfg.Type,
		apiBase:        cfg.Telegram.APIBase,
		botToken:       cfg.Telegram.BotToken,
		chatID:         cfg.Telegram.ChatID,
		disablePreview: cfg.Telegram.DisableWebPagePreview,
		client:         httpclient.NewRestyClient(time.Duration(cfg.Telegram.TimeoutSeconds) * time.Second),
		log:            ensureLogger(log),
	}, nil
}

func (p *telegramPublisher) ID() string   { return p.id }
func (p *telegramPublisher) Type() string { return p.typ }

// Publish sends the event as a Telegram message. A non-2xx API response is
// an error.
func (p *telegramPublisher) Publish(ctx context.Context, evt Event) error {
	payload := telegramMessage{
		ChatID:                p.chatID,
		Text:                  FormatMessage(evt),
		ParseMode:             "HTML",
		DisableWebPagePreview: p.disablePreview,
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", p.apiBase, p.botToken)

	resp, err := p.client.PostJSON(ctx, url, nil, payload)
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return fmt.Errorf("telegram api status %d body: %s", resp.StatusCode(), responseSnippet(resp.Body()))
	}

	p.log.DebugObj("telegram publisher delivered message", "publisher_telegram_delivery", map[string]any{
		"chat_id": p.chatID,
		"url":     evt.URL,
	})
	return nil
}

// FormatMessage renders the outbound message text: title, published line,
// body and the source link, separated by blank lines.
func FormatMessage(evt Event) string {
	return fmt.Sprintf("%s\n\nPublished: %s\n\n%s\n\nRead more: %s",
		evt.Title, evt.PublishedOrUnknown(), evt.Body, evt.URL)
}

// responseSnippet returns a truncated response body for error messages.
func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
