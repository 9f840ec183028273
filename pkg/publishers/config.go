package publishers

import (
	"errors"
	"fmt"
	"strings"
)

// Publisher types understood by the default registry.
const (
	TypeTelegram = "telegram"
	TypeHTTP     = "http"
	TypeQueue    = "queue"
)

// Queue providers understood by the queue publisher.
const (
	QueueProviderAWSSQS = "aws-sqs"
	QueueProviderAWSSNS = "aws-sns"
	QueueProviderGCP    = "gcp"
	QueueProviderAzure  = "azure"
)

const (
	telegramDefaultAPIBase        = "https://api.telegram.org"
	telegramDefaultTimeoutSeconds = 15

	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
)

// PublisherConfig is one publisher entry from the publishers file. The block
// matching Type must be set; the others are ignored.
type PublisherConfig struct {
	ID       string                   `json:"id" yaml:"id"`
	Type     string                   `json:"type" yaml:"type"`
	Enabled  *bool                    `json:"enabled" yaml:"enabled"`
	Telegram *TelegramPublisherConfig `json:"telegram" yaml:"telegram"`
	HTTP     *HTTPPublisherConfig     `json:"http" yaml:"http"`
	Queue    *QueuePublisherConfig    `json:"queue" yaml:"queue"`
}

// TelegramPublisherConfig holds Telegram bot API settings.
type TelegramPublisherConfig struct {
	BotToken string `json:"bot_token" yaml:"bot_token"`
	ChatID   string `json:"chat_id" yaml:"chat_id"`
	// APIBase overrides the Telegram API host, mainly for tests.
	APIBase               string `json:"api_base" yaml:"api_base"`
	TimeoutSeconds        int    `json:"timeout_seconds" yaml:"timeout_seconds"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview" yaml:"disable_web_page_preview"`
}

// HTTPPublisherConfig holds generic HTTP sink settings.
type HTTPPublisherConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// QueuePublisherConfig selects a cloud queue provider.
type QueuePublisherConfig struct {
	Provider string                 `json:"provider" yaml:"provider"`
	AWS      *AWSSQSPublisherConfig `json:"aws" yaml:"aws"`
	SNS      *AWSSNSPublisherConfig `json:"sns" yaml:"sns"`
	Azure    *AzureQueueConfig      `json:"azure" yaml:"azure"`
	GCP      *GCPQueueConfig        `json:"gcp" yaml:"gcp"`
}

// AWSSQSPublisherConfig holds AWS SQS specific settings.
type AWSSQSPublisherConfig struct {
	QueueURL        string `json:"uri" yaml:"uri"`
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// AWSSNSPublisherConfig holds AWS SNS specific settings.
type AWSSNSPublisherConfig struct {
	TopicARN        string `json:"topic_arn" yaml:"topic_arn"`
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// AzureQueueConfig holds the minimal Service Bus queue settings.
type AzureQueueConfig struct {
	ConnectionString string `json:"connection_string" yaml:"connection_string"`
	QueueName        string `json:"queue" yaml:"queue"`
}

// GCPQueueConfig holds the minimal Pub/Sub topic settings.
type GCPQueueConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// EnabledValue returns the enabled flag, defaulting to true.
func (cfg PublisherConfig) EnabledValue() bool {
	if cfg.Enabled == nil {
		return true
	}
	return *cfg.Enabled
}

// DefaultTelegramConfig builds the single-publisher configuration used when
// no publishers file is set, from bot credentials.
func DefaultTelegramConfig(botToken, chatID string) PublisherConfig {
	return sanitizePublisherConfig(PublisherConfig{
		ID:   "telegram",
		Type: TypeTelegram,
		Telegram: &TelegramPublisherConfig{
			BotToken: botToken,
			ChatID:   chatID,
		},
	})
}

// sanitizePublisherConfig normalizes one entry before validation.
func sanitizePublisherConfig(cfg PublisherConfig) PublisherConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))
	if cfg.Enabled == nil {
		enabled := true
		cfg.Enabled = &enabled
	}
	cfg.Telegram = sanitizeTelegram(cfg.Telegram)
	cfg.HTTP = sanitizeHTTP(cfg.HTTP)
	cfg.Queue = sanitizeQueue(cfg.Queue)
	return cfg
}

func sanitizeTelegram(cfg *TelegramPublisherConfig) *TelegramPublisherConfig {
	if cfg == nil {
		return nil
	}
	out := *cfg
	out.BotToken = strings.TrimSpace(out.BotToken)
	out.ChatID = strings.TrimSpace(out.ChatID)
	out.APIBase = strings.TrimRight(strings.TrimSpace(out.APIBase), "/")
	if out.APIBase == "" {
		out.APIBase = telegramDefaultAPIBase
	}
	if out.TimeoutSeconds <= 0 {
		out.TimeoutSeconds = telegramDefaultTimeoutSeconds
	}
	return &out
}

func sanitizeHTTP(cfg *HTTPPublisherConfig) *HTTPPublisherConfig {
	if cfg == nil {
		return nil
	}
	out := *cfg
	out.URL = strings.TrimSpace(out.URL)
	out.Method = strings.ToUpper(strings.TrimSpace(out.Method))
	if out.Method == "" {
		out.Method = httpDefaultMethod
	}
	out.Headers = sanitizeHeaders(out.Headers)
	if out.TimeoutSeconds <= 0 {
		out.TimeoutSeconds = httpDefaultTimeoutSeconds
	}
	return &out
}

func sanitizeQueue(cfg *QueuePublisherConfig) *QueuePublisherConfig {
	if cfg == nil {
		return nil
	}
	out := *cfg
	out.Provider = strings.ToLower(strings.TrimSpace(out.Provider))
	if out.AWS != nil {
		c := *out.AWS
		c.QueueURL = strings.TrimSpace(c.QueueURL)
		c.Region = strings.TrimSpace(c.Region)
		c.AccessKeyID = strings.TrimSpace(c.AccessKeyID)
		c.SecretAccessKey = strings.TrimSpace(c.SecretAccessKey)
		out.AWS = &c
	}
	if out.SNS != nil {
		c := *out.SNS
		c.TopicARN = strings.TrimSpace(c.TopicARN)
		c.Region = strings.TrimSpace(c.Region)
		c.AccessKeyID = strings.TrimSpace(c.AccessKeyID)
		c.SecretAccessKey = strings.TrimSpace(c.SecretAccessKey)
		out.SNS = &c
	}
	if out.Azure != nil {
		c := *out.Azure
		c.ConnectionString = strings.TrimSpace(c.ConnectionString)
		c.QueueName = strings.TrimSpace(c.QueueName)
		out.Azure = &c
	}
	if out.GCP != nil {
		c := *out.GCP
		c.ProjectID = strings.TrimSpace(c.ProjectID)
		c.Topic = strings.TrimSpace(c.Topic)
		c.CredentialsFile = strings.TrimSpace(c.CredentialsFile)
		out.GCP = &c
	}
	return &out
}

// sanitizeHeaders trims keys and values and drops empty headers.
func sanitizeHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		key := strings.TrimSpace(k)
		val := strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// requiredField pairs a config key with its value for batch checks.
type requiredField struct {
	name  string
	value string
}

func requireFields(id string, fields []requiredField) error {
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("%s is required for publisher %q", f.name, id)
		}
	}
	return nil
}

// validatePublisherConfig checks required fields after sanitizing.
func validatePublisherConfig(cfg PublisherConfig) error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	if cfg.Type == "" {
		return fmt.Errorf("type is required for publisher %q", cfg.ID)
	}
	switch cfg.Type {
	case TypeTelegram:
		return validateTelegram(cfg.ID, cfg.Telegram)
	case TypeHTTP:
		return validateHTTP(cfg.ID, cfg.HTTP)
	case TypeQueue:
		return validateQueue(cfg.ID, cfg.Queue)
	default:
		return fmt.Errorf("type %q not supported for publisher %q", cfg.Type, cfg.ID)
	}
}

func validateTelegram(id string, cfg *TelegramPublisherConfig) error {
	if cfg == nil {
		return fmt.Errorf("telegram config required for publisher %q", id)
	}
	return requireFields(id, []requiredField{
		{"telegram.bot_token", cfg.BotToken},
		{"telegram.chat_id", cfg.ChatID},
	})
}

func validateHTTP(id string, cfg *HTTPPublisherConfig) error {
	if cfg == nil {
		return fmt.Errorf("http config required for publisher %q", id)
	}
	return requireFields(id, []requiredField{
		{"http.url", cfg.URL},
	})
}

func validateQueue(id string, cfg *QueuePublisherConfig) error {
	if cfg == nil {
		return fmt.Errorf("queue config required for publisher %q", id)
	}
	switch cfg.Provider {
	case QueueProviderAWSSQS:
		if cfg.AWS == nil {
			return fmt.Errorf("sqs config required for publisher %q", id)
		}
		return requireFields(id, []requiredField{
			{"sqs.uri", cfg.AWS.QueueURL},
			{"sqs.region", cfg.AWS.Region},
			{"sqs.access_key_id", cfg.AWS.AccessKeyID},
			{"sqs.secret_access_key", cfg.AWS.SecretAccessKey},
		})
	case QueueProviderAWSSNS:
		if cfg.SNS == nil {
			return fmt.Errorf("sns config required for publisher %q", id)
		}
		return requireFields(id, []requiredField{
			{"sns.topic_arn", cfg.SNS.TopicARN},
			{"sns.region", cfg.SNS.Region},
			{"sns.access_key_id", cfg.SNS.AccessKeyID},
			{"sns.secret_access_key", cfg.SNS.SecretAccessKey},
		})
	case QueueProviderGCP:
		if cfg.GCP == nil {
			return fmt.Errorf("gcp config required for publisher %q", id)
		}
		return requireFields(id, []requiredField{
			{"gcp.project_id", cfg.GCP.ProjectID},
			{"gcp.topic", cfg.GCP.Topic},
		})
	case QueueProviderAzure:
		return fmt.Errorf("queue provider %q not implemented for publisher %q", cfg.Provider, id)
	default:
		return fmt.Errorf("queue provider %q not supported for publisher %q", cfg.Provider, id)
	}
}
