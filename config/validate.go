package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateURL(); err != nil {
		return err
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}
	if err := c.validateTransport(); err != nil {
		return err
	}
	if err := c.validateCalls(); err != nil {
		return err
	}
	if err := c.validateDiscovery(); err != nil {
		return err
	}
	if c.Simulate.Devices < 0 {
		return errors.New("simulate.devices must not be negative")
	}
	return nil
}

func (c *Config) validateURL() error {
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("url: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss", "tcp", "unix":
		return nil
	default:
		return fmt.Errorf("url scheme must be ws, wss, tcp or unix, got %q", u.Scheme)
	}
}

func (c *Config) validateTransport() error {
	t := c.Transport
	if t.HandshakeTimeout.Duration < 0 {
		return errors.New("transport.handshake_timeout must not be negative")
	}
	if t.HeartbeatInterval.Duration < 0 {
		return errors.New("transport.heartbeat_interval must not be negative")
	}
	if t.SendQueue < 1 {
		return errors.New("transport.send_queue must be at least 1")
	}
	if t.MaxFrameBytes < 0 {
		return errors.New("transport.max_frame_bytes must not be negative")
	}
	return nil
}

func (c *Config) validateCalls() error {
	k := c.Calls
	if k.Timeout.Duration < 0 || k.RetryDelay.Duration < 0 {
		return errors.New("calls.timeout and calls.retry_delay must not be negative")
	}
	if k.Rate < 0 {
		return errors.New("calls.rate must not be negative")
	}
	if k.Rate > 0 && k.Burst < 1 {
		return errors.New("calls.burst must be at least 1 when calls.rate is set")
	}
	if k.MaxRetries < 0 {
		return errors.New("calls.max_retries must not be negative")
	}
	return nil
}

func (c *Config) validateDiscovery() error {
	switch c.Discovery.Balancer {
	case "round_robin", "weighted_random":
	case "consistent_hash":
		if c.UsesDiscovery() && c.Discovery.HashKey == "" {
			return errors.New("discovery.hash_key is required with the consistent_hash balancer")
		}
	default:
		return fmt.Errorf("discovery.balancer must be round_robin, weighted_random or consistent_hash, got %q", c.Discovery.Balancer)
	}
	return nil
}
