package wsbridge

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/viant/wsbridge/schema"
)

// Options configures one bridge run; every value is fixed for the lifetime of
// the process.
type Options struct {
	ConfigURL string `yaml:"-" json:"-" short:"f" long:"config" description:"bridge config URL (yaml)"`

	EndpointURL string `yaml:"endpointURL" json:"endpointURL" short:"u" long:"url" description:"MCP WebSocket endpoint URL" env:"WSBRIDGE_ENDPOINT_URL"`
	WebhookURL  string `yaml:"webhookURL" json:"webhookURL" short:"w" long:"webhook" description:"downstream webhook URL" env:"WSBRIDGE_WEBHOOK_URL"`

	// TokenURL points at a scy secret resource holding the session token; the
	// token is appended to the endpoint URL unless one is already embedded.
	TokenURL string `yaml:"tokenURL" json:"tokenURL" long:"token-url" description:"secret resource URL with the endpoint token" env:"WSBRIDGE_TOKEN_URL"`
	TokenKey string `yaml:"tokenKey" json:"tokenKey" long:"token-key" description:"secret resource encryption key"`

	ToolName        string `yaml:"toolName" json:"toolName" short:"n" long:"tool-name" description:"tool name advertised to the endpoint"`
	ToolDescription string `yaml:"toolDescription" json:"toolDescription" long:"tool-description" description:"human readable tool description"`

	ReconnectDelayMs    int  `yaml:"reconnectDelayMs" json:"reconnectDelayMs" long:"reconnect-delay" description:"base reconnect delay in milliseconds"`
	MaxReconnectDelayMs int  `yaml:"maxReconnectDelayMs" json:"maxReconnectDelayMs" long:"max-reconnect-delay" description:"maximum reconnect delay in milliseconds"`
	WebhookTimeoutMs    int  `yaml:"webhookTimeoutMs" json:"webhookTimeoutMs" long:"webhook-timeout" description:"webhook timeout in milliseconds"`
	RequireAck          bool `yaml:"requireAck" json:"requireAck" long:"require-ack" description:"enter active only after notifications/initialized"`

	LogLevel string `yaml:"logLevel" json:"logLevel" short:"l" long:"log-level" description:"log verbosity" choice:"debug" choice:"info" choice:"warning" choice:"error"`
}

// Init fills defaults.
func (o *Options) Init() {
	if o.ToolName == "" {
		o.ToolName = "webhook_action"
	}
	if o.ToolDescription == "" {
		o.ToolDescription = "Forward action commands to the configured webhook."
	}
	if o.ReconnectDelayMs <= 0 {
		o.ReconnectDelayMs = 5000
	}
	if o.MaxReconnectDelayMs <= 0 {
		o.MaxReconnectDelayMs = 60000
	}
	if o.WebhookTimeoutMs <= 0 {
		o.WebhookTimeoutMs = 30000
	}
	if o.LogLevel == "" {
		o.LogLevel = "info"
	}
}

// Validate ensures the two endpoints are set.
func (o *Options) Validate() error {
	if o.EndpointURL == "" {
		return fmt.Errorf("endpoint URL was empty")
	}
	if o.WebhookURL == "" {
		return fmt.Errorf("webhook URL was empty")
	}
	return nil
}

// LoadConfig overlays option values from a YAML document addressed by
// ConfigURL (any afs-supported scheme).
func (o *Options) LoadConfig(ctx context.Context) error {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, o.ConfigURL)
	if err != nil {
		return fmt.Errorf("failed to load config %v: %w", o.ConfigURL, err)
	}
	if err := yaml.Unmarshal(data, o); err != nil {
		return fmt.Errorf("failed to parse config %v: %w", o.ConfigURL, err)
	}
	return nil
}

// Descriptor builds the advertised tool metadata.
func (o *Options) Descriptor() *schema.Descriptor {
	return &schema.Descriptor{Name: o.ToolName, Description: o.ToolDescription}
}

func (o *Options) reconnectDelay() time.Duration {
	return time.Duration(o.ReconnectDelayMs) * time.Millisecond
}

func (o *Options) maxReconnectDelay() time.Duration {
	return time.Duration(o.MaxReconnectDelayMs) * time.Millisecond
}

func (o *Options) webhookTimeout() time.Duration {
	return time.Duration(o.WebhookTimeoutMs) * time.Millisecond
}
