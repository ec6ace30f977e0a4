package wsbridge

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/viant/mcp-protocol/schema"

	"github.com/viant/wsbridge/session"
	"github.com/viant/wsbridge/webhook"
)

// shutdownGrace bounds how long a signal-driven stop waits for the session to
// drain before the process gives up.
const shutdownGrace = 10 * time.Second

// Service is the bridge supervisor: it owns one session manager and one
// webhook forwarder and keeps them running until the process is told to stop.
type Service struct {
	options   *Options
	forwarder *webhook.Forwarder
	manager   *session.Manager
}

// Manager exposes the underlying session for inspection.
func (s *Service) Manager() *session.Manager {
	return s.manager
}

// New constructs a bridge Service from options; it resolves the endpoint
// token when a token resource is configured.
func New(ctx context.Context, options *Options) (*Service, error) {
	options.Init()
	if err := options.Validate(); err != nil {
		return nil, err
	}
	endpoint := options.EndpointURL
	if options.TokenURL != "" {
		token, err := loadToken(ctx, options.TokenURL, options.TokenKey)
		if err != nil {
			return nil, err
		}
		if endpoint, err = endpointWithToken(endpoint, token); err != nil {
			return nil, err
		}
	}
	inspectToken(endpoint)

	forwarder := webhook.New(options.WebhookURL, options.webhookTimeout())
	config := &session.Config{
		EndpointURL: endpoint,
		Tool:        options.Descriptor(),
		RequireAck:  options.RequireAck,
		BackoffBase: options.reconnectDelay(),
		BackoffMax:  options.maxReconnectDelay(),
		LogLevel:    schema.LoggingLevel(options.LogLevel),
	}
	manager := session.New(config, forwarder)
	return &Service{options: options, forwarder: forwarder, manager: manager}, nil
}

// inspectToken logs the identity baked into the endpoint token; an expired or
// unparsable token is reported but never fatal - the endpoint is the judge.
func inspectToken(endpoint string) {
	token := endpointToken(endpoint)
	if token == "" {
		return
	}
	claims, err := tokenClaims(token)
	if err != nil {
		log.Printf("[wsbridge] endpoint token is not a JWT: %v", err)
		return
	}
	if agent, ok := claims["agentId"]; ok {
		log.Printf("[wsbridge] endpoint token agentId: %v", agent)
	}
	if expiry := claimExpiry(claims); !expiry.IsZero() && expiry.Before(time.Now()) {
		log.Printf("[wsbridge] warning: endpoint token expired at %v", expiry.Format(time.RFC3339))
	}
}

// Run keeps the bridge alive until the session ends terminally (peer
// shutdown) or the process receives SIGINT/SIGTERM. A signal cancels the
// session context; the run then waits a bounded grace period for the session
// to drain its pending calls.
func (s *Service) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() {
		done <- s.manager.Run(ctx)
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		log.Printf("[wsbridge] stop requested, draining session")
		select {
		case err := <-done:
			return err
		case <-time.After(shutdownGrace):
			return fmt.Errorf("session did not drain within %v", shutdownGrace)
		}
	}
}
