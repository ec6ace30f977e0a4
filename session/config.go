package session

import (
	"time"

	"github.com/viant/mcp-protocol/schema"
	bschema "github.com/viant/wsbridge/schema"
)

// Config is the read-only session configuration, fixed for the lifetime of a
// bridge run.
type Config struct {
	// EndpointURL is the WebSocket URL of the MCP endpoint, token included.
	EndpointURL string
	// Tool is the single tool this bridge advertises.
	Tool *bschema.Descriptor

	// RequireAck gates the Registering -> Active transition on the peer's
	// notifications/initialized. When false the session is considered active
	// as soon as the initialize response has been written.
	RequireAck bool

	BackoffBase time.Duration
	BackoffMax  time.Duration

	PingInterval time.Duration
	PingTimeout  time.Duration
	WriteTimeout time.Duration

	ProtocolVersion string
	Info            schema.Implementation
	LogLevel        schema.LoggingLevel
}

// Init fills defaults matching the original endpoint behavior.
func (c *Config) Init() {
	if c.BackoffBase <= 0 {
		c.BackoffBase = 5 * time.Second
	}
	if c.BackoffMax <= 0 {
		c.BackoffMax = 60 * time.Second
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 30 * time.Second
	}
	if c.PingTimeout <= 0 {
		c.PingTimeout = 30 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.ProtocolVersion == "" {
		c.ProtocolVersion = schema.LatestProtocolVersion
	}
	if c.Info.Name == "" {
		c.Info = *schema.NewImplementation("wsbridge", "0.1")
	}
}
