package registry

// etcd is used as a shared phonebook:
//
//	Key:   /light-rpc/{service}/{escaped addr}
//	Value: JSON-encoded ServiceInstance
//
// Registration is lease based: if the peer dies, the lease expires and
// the entry disappears with it.

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"
)

const keyPrefix = "/light-rpc/"

// EtcdRegistry implements Registry on etcd v3.
type EtcdRegistry struct {
	client *clientv3.Client
	logger *zap.Logger

	// keepalives outlive the Register call; they stop on Close.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewEtcdRegistry connects to the given etcd endpoints.
func NewEtcdRegistry(endpoints []string, logger *zap.Logger) (*EtcdRegistry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: 5 * time.Second,
		Logger:      logger.Named("etcd"),
	})
	if err != nil {
		return nil, fmt.Errorf("registry: connect etcd: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &EtcdRegistry{client: c, logger: logger, ctx: ctx, cancel: cancel}, nil
}

func servicePrefix(service string) string {
	return keyPrefix + service + "/"
}

func instanceKey(service, addr string) string {
	return servicePrefix(service) + url.PathEscape(addr)
}

// Register publishes instance with a lease of ttl seconds and keeps the
// lease alive until Close.
//
// The lease id is local to the call so several peers can share one
// EtcdRegistry.
func (r *EtcdRegistry) Register(ctx context.Context, service string, instance ServiceInstance, ttl int64) error {
	lease, err := r.client.Grant(ctx, ttl)
	if err != nil {
		return fmt.Errorf("registry: grant lease: %w", err)
	}

	val, err := json.Marshal(instance)
	if err != nil {
		return err
	}

	if _, err = r.client.Put(ctx, instanceKey(service, instance.Addr), string(val), clientv3.WithLease(lease.ID)); err != nil {
		return fmt.Errorf("registry: put %s: %w", service, err)
	}

	ch, err := r.client.KeepAlive(r.ctx, lease.ID)
	if err != nil {
		return fmt.Errorf("registry: keepalive: %w", err)
	}

	// drain so the client does not log a full channel
	go func() {
		for range ch {
		}
		r.logger.Debug("lease keepalive stopped",
			zap.String("service", service),
			zap.String("addr", instance.Addr))
	}()
	return nil
}

// Deregister removes an instance before the peer shuts down.
func (r *EtcdRegistry) Deregister(ctx context.Context, service string, addr string) error {
	if _, err := r.client.Delete(ctx, instanceKey(service, addr)); err != nil {
		return fmt.Errorf("registry: delete %s: %w", service, err)
	}
	return nil
}

// Discover returns the instances currently registered for service.
func (r *EtcdRegistry) Discover(ctx context.Context, service string) ([]ServiceInstance, error) {
	resp, err := r.client.Get(ctx, servicePrefix(service), clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("registry: get %s: %w", service, err)
	}

	instances := make([]ServiceInstance, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var instance ServiceInstance
		if err := json.Unmarshal(kv.Value, &instance); err != nil {
			r.logger.Warn("skipping malformed registry entry", zap.ByteString("key", kv.Key))
			continue
		}
		instances = append(instances, instance)
	}
	if len(instances) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoInstances, service)
	}
	return instances, nil
}

// Watch emits the full instance list after every change under service
// until ctx ends. Lists are re-read rather than patched from events.
func (r *EtcdRegistry) Watch(ctx context.Context, service string) <-chan []ServiceInstance {
	ch := make(chan []ServiceInstance, 1)

	go func() {
		defer close(ch)
		for range r.client.Watch(ctx, servicePrefix(service), clientv3.WithPrefix()) {
			instances, err := r.Discover(ctx, service)
			if err != nil && ctx.Err() != nil {
				return
			}
			select {
			case ch <- instances:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch
}

// Close stops lease renewal and disconnects from etcd. Registered
// instances expire with their leases.
func (r *EtcdRegistry) Close() error {
	r.cancel()
	return r.client.Close()
}
