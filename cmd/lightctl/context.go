package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"light-rpc/client"
	"light-rpc/config"
	"light-rpc/controlcenter"
	"light-rpc/loadbalance"
	"light-rpc/logging"
	"light-rpc/middleware"
	"light-rpc/registry"
	"light-rpc/transport"
)

type commandContext struct {
	urlFlag      *string
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logger *zap.Logger
}

func newCommandContext(urlFlag, configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		urlFlag:      urlFlag,
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		logger:       zap.NewNop(),
	}
}

// ensureConfig loads the file once and applies flag overrides on top.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(*c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if v := strings.TrimSpace(*c.urlFlag); v != "" {
			cfg.URL = v
			// an explicit URL bypasses discovery
			cfg.Discovery.EtcdEndpoints = nil
		}
		if v := strings.TrimSpace(*c.logLevelFlag); v != "" {
			cfg.LogLevel = strings.ToLower(v)
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}

		logger, err := logging.New(cfg.LogLevel)
		if err != nil {
			c.configErr = err
			return
		}
		c.logger = logger
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) close() {
	c.logger.Sync()
}

// clientOptions turns the configuration into session options and the
// middleware chain. Outermost first: logging sees the final outcome,
// tracing one span per call, retry re-enters the limiter, and the timeout
// bounds a single attempt.
func (c *commandContext) clientOptions(cfg *config.Config, extra ...client.Option) []client.Option {
	mws := []middleware.Middleware{
		middleware.Logging(c.logger),
		middleware.Tracing(nil),
	}
	if cfg.Calls.MaxRetries > 0 {
		mws = append(mws, middleware.Retry(cfg.Calls.MaxRetries, cfg.Calls.RetryDelay.Duration, nil, c.logger))
	}
	if cfg.Calls.Rate > 0 {
		mws = append(mws, middleware.RateLimit(cfg.Calls.Rate, cfg.Calls.Burst))
	}
	if cfg.Calls.Timeout.Duration > 0 {
		mws = append(mws, middleware.Timeout(cfg.Calls.Timeout.Duration))
	}

	opts := []client.Option{
		client.WithLogger(c.logger),
		client.WithMiddleware(mws...),
		client.WithDialOptions(transport.DialOptions{
			HandshakeTimeout: cfg.Transport.HandshakeTimeout.Duration,
			MaxFrameBytes:    cfg.Transport.MaxFrameBytes,
		}),
		client.WithSessionOptions(
			transport.WithSendQueue(cfg.Transport.SendQueue),
			transport.WithHeartbeat(cfg.Transport.HeartbeatInterval.Duration),
		),
	}
	return append(opts, extra...)
}

// resolver picks a static URL or etcd discovery. The returned func
// releases the registry connection.
func (c *commandContext) resolver(cfg *config.Config) (client.Resolver, func(), error) {
	if !cfg.UsesDiscovery() {
		return client.StaticResolver(cfg.URL), func() {}, nil
	}

	bal, err := loadbalance.New(cfg.Discovery.Balancer, cfg.Discovery.HashKey)
	if err != nil {
		return nil, nil, err
	}
	reg, err := registry.NewEtcdRegistry(cfg.Discovery.EtcdEndpoints, c.logger)
	if err != nil {
		return nil, nil, err
	}
	return client.DiscoveryResolver{
		Registry: reg,
		Balancer: bal,
		Service:  cfg.Discovery.Service,
	}, func() { reg.Close() }, nil
}

func (c *commandContext) withClient(ctx context.Context, fn func(*client.Client) error, extra ...client.Option) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	r, release, err := c.resolver(cfg)
	if err != nil {
		return err
	}
	defer release()

	cl, err := client.DialResolver(ctx, r, c.clientOptions(cfg, extra...)...)
	if err != nil {
		return fmt.Errorf("connect to Control Center: %w", err)
	}
	defer cl.Close()
	return fn(cl)
}

func (c *commandContext) withControlCenter(ctx context.Context, fn func(*controlcenter.ControlCenter) error) error {
	return c.withClient(ctx, func(cl *client.Client) error {
		return fn(controlcenter.New(cl))
	})
}
