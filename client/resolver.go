package client

import (
	"context"
	"fmt"

	"light-rpc/loadbalance"
	"light-rpc/registry"
)

// Resolver yields the URL to dial.
type Resolver interface {
	Resolve(ctx context.Context) (string, error)
}

// StaticResolver always yields the same URL.
type StaticResolver string

func (r StaticResolver) Resolve(context.Context) (string, error) {
	return string(r), nil
}

// DiscoveryResolver looks the service up in a registry and lets the
// balancer choose among the instances.
type DiscoveryResolver struct {
	Registry registry.Registry
	Balancer loadbalance.Balancer
	Service  string
}

func (r DiscoveryResolver) Resolve(ctx context.Context) (string, error) {
	instances, err := r.Registry.Discover(ctx, r.Service)
	if err != nil {
		return "", err
	}
	bal := r.Balancer
	if bal == nil {
		bal = &loadbalance.RoundRobinBalancer{}
	}
	instance, err := bal.Pick(instances)
	if err != nil {
		return "", fmt.Errorf("client: pick %s: %w", r.Service, err)
	}
	return instance.Addr, nil
}
