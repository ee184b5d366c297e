// Package loadbalance picks one endpoint out of the instances a registry
// returned.
//
// Three strategies are implemented:
//   - RoundRobin:      equal peers, spread connections evenly
//   - WeightedRandom:  peers with different capacity
//   - ConsistentHash:  pin a client key (host name, user) to one peer
package loadbalance

import (
	"errors"
	"fmt"

	"light-rpc/registry"
)

var ErrNoInstances = errors.New("loadbalance: no instances available")

// Balancer selects one instance per connection attempt. Implementations are
// goroutine-safe.
type Balancer interface {
	Pick(instances []registry.ServiceInstance) (*registry.ServiceInstance, error)
	Name() string
}

// New builds a balancer by its configuration name. key is only used by
// "consistent_hash".
func New(name, key string) (Balancer, error) {
	switch name {
	case "", "round_robin":
		return &RoundRobinBalancer{}, nil
	case "weighted_random":
		return &WeightedRandomBalancer{}, nil
	case "consistent_hash":
		return NewConsistentHashBalancer(key), nil
	default:
		return nil, fmt.Errorf("loadbalance: unknown balancer %q", name)
	}
}
