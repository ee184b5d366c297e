// Package registry tracks where JSON-RPC peers can be reached.
//
// A peer publishes itself under a service name; clients discover the
// current instances and hand them to a loadbalance.Balancer.
package registry

import (
	"context"
	"errors"
)

// ErrNoInstances is returned by Discover when nothing is registered under
// the service name.
var ErrNoInstances = errors.New("registry: no instances registered")

// ServiceInstance is one reachable peer.
type ServiceInstance struct {
	Addr    string `json:"addr"` // dialable URL, e.g. ws://10.0.0.7:1804/
	Weight  int    `json:"weight"`
	Version string `json:"version,omitempty"`
}

type Registry interface {
	Register(ctx context.Context, service string, instance ServiceInstance, ttl int64) error
	Deregister(ctx context.Context, service string, addr string) error
	Discover(ctx context.Context, service string) ([]ServiceInstance, error)
	Watch(ctx context.Context, service string) <-chan []ServiceInstance
}
