package loadbalance

import (
	"fmt"
	"hash/crc32"
	"sort"
	"strings"
	"sync"

	"light-rpc/registry"
)

const defaultReplicas = 100

// ConsistentHashBalancer maps a fixed key onto a hash ring of instances, so
// the same key keeps landing on the same peer while the instance set
// is stable and moves as few keys as possible when it changes.
//
// Each instance owns defaultReplicas virtual nodes hashed from
// "{addr}#{i}":
//
//	                  0
//	                ╱   ╲
//	              ╱       ╲
//	         B ●               ● A
//	           │    key ◆──►   │   (clockwise to nearest node → A)
//	         C ●               ● A' (virtual node of A)
//	              ╲       ╱
//	                ╲   ╱
type ConsistentHashBalancer struct {
	key      string
	replicas int

	mu        sync.Mutex
	signature string // addrs the ring was built from
	ring      []uint32
	nodes     map[uint32]string
}

func NewConsistentHashBalancer(key string) *ConsistentHashBalancer {
	return &ConsistentHashBalancer{key: key, replicas: defaultReplicas}
}

// Pick implements Balancer using the configured key.
func (b *ConsistentHashBalancer) Pick(instances []registry.ServiceInstance) (*registry.ServiceInstance, error) {
	return b.PickKey(b.key, instances)
}

// PickKey returns the instance responsible for key.
func (b *ConsistentHashBalancer) PickKey(key string, instances []registry.ServiceInstance) (*registry.ServiceInstance, error) {
	if len(instances) == 0 {
		return nil, ErrNoInstances
	}

	b.mu.Lock()
	b.rebuildLocked(instances)
	hash := crc32.ChecksumIEEE([]byte(key))
	idx := sort.Search(len(b.ring), func(i int) bool {
		return b.ring[i] >= hash
	})
	if idx == len(b.ring) {
		idx = 0
	}
	addr := b.nodes[b.ring[idx]]
	b.mu.Unlock()

	for i := range instances {
		if instances[i].Addr == addr {
			return &instances[i], nil
		}
	}
	return nil, fmt.Errorf("loadbalance: ring out of sync for %s", addr)
}

func (b *ConsistentHashBalancer) rebuildLocked(instances []registry.ServiceInstance) {
	addrs := make([]string, len(instances))
	for i := range instances {
		addrs[i] = instances[i].Addr
	}
	sort.Strings(addrs)
	sig := strings.Join(addrs, "\x00")
	if sig == b.signature && b.ring != nil {
		return
	}

	b.ring = make([]uint32, 0, len(addrs)*b.replicas)
	b.nodes = make(map[uint32]string, len(addrs)*b.replicas)
	for _, addr := range addrs {
		for i := 0; i < b.replicas; i++ {
			hash := crc32.ChecksumIEEE([]byte(fmt.Sprintf("%s#%d", addr, i)))
			b.ring = append(b.ring, hash)
			b.nodes[hash] = addr
		}
	}
	sort.Slice(b.ring, func(i, j int) bool { return b.ring[i] < b.ring[j] })
	b.signature = sig
}

func (b *ConsistentHashBalancer) Name() string {
	return "consistent_hash"
}
