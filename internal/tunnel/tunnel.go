// Package tunnel optionally exposes the server through an ngrok tunnel
// for sharing a local instance. Disabled by default.
package tunnel

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"golang.ngrok.com/ngrok/v2"

	"fermata/internal/config"
)

// Service represents the ngrok tunnel service.
type Service struct {
	config *config.TunnelConfig
	logger *logrus.Logger
	agent  ngrok.Agent
	tunnel ngrok.EndpointForwarder
}

// NewService creates a new tunnel service. Returns (nil, nil) when the
// tunnel is disabled in configuration.
func NewService(cfg *config.TunnelConfig, logger *logrus.Logger) (*Service, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	authToken := os.Getenv("NGROK_AUTHTOKEN")
	if authToken == "" {
		return nil, fmt.Errorf("ngrok auth token not found: set NGROK_AUTHTOKEN in the environment")
	}

	agent, err := ngrok.NewAgent(ngrok.WithAuthtoken(authToken))
	if err != nil {
		return nil, fmt.Errorf("failed to create ngrok agent: %w", err)
	}

	return &Service{
		config: cfg,
		logger: logger,
		agent:  agent,
	}, nil
}

// Start forwards a public endpoint to localAddress.
func (s *Service) Start(ctx context.Context, localAddress string) error {
	if s == nil {
		return nil // disabled
	}

	var opts []ngrok.EndpointOption
	if s.config.Domain != "" {
		opts = append(opts, ngrok.WithURL(s.config.Domain))
	}

	forwarder, err := s.agent.Forward(ctx, ngrok.WithUpstream(localAddress), opts...)
	if err != nil {
		return fmt.Errorf("failed to start tunnel: %w", err)
	}
	s.tunnel = forwarder

	s.logger.WithField("public_url", forwarder.URL().String()).Info("Tunnel established")
	return nil
}

// Stop tears down the tunnel (idempotent).
func (s *Service) Stop() {
	if s == nil || s.tunnel == nil {
		return
	}
	s.tunnel.Close()
}
