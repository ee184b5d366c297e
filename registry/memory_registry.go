package registry

import (
	"context"
	"fmt"
	"sync"
)

// MemoryRegistry is an in-process Registry. TTLs are ignored.
type MemoryRegistry struct {
	mu       sync.Mutex
	services map[string][]ServiceInstance
	watchers map[string][]chan []ServiceInstance
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		services: make(map[string][]ServiceInstance),
		watchers: make(map[string][]chan []ServiceInstance),
	}
}

func (r *MemoryRegistry) Register(ctx context.Context, service string, instance ServiceInstance, ttl int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.services[service]
	for i := range list {
		if list[i].Addr == instance.Addr {
			list[i] = instance
			r.notifyLocked(service)
			return nil
		}
	}
	r.services[service] = append(list, instance)
	r.notifyLocked(service)
	return nil
}

func (r *MemoryRegistry) Deregister(ctx context.Context, service string, addr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.services[service]
	for i := range list {
		if list[i].Addr == addr {
			r.services[service] = append(list[:i:i], list[i+1:]...)
			r.notifyLocked(service)
			return nil
		}
	}
	return nil
}

func (r *MemoryRegistry) Discover(ctx context.Context, service string) ([]ServiceInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.services[service]
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoInstances, service)
	}
	return append([]ServiceInstance(nil), list...), nil
}

// Watch delivers the latest list after each change. A slow reader only
// sees the most recent list.
func (r *MemoryRegistry) Watch(ctx context.Context, service string) <-chan []ServiceInstance {
	ch := make(chan []ServiceInstance, 1)

	r.mu.Lock()
	r.watchers[service] = append(r.watchers[service], ch)
	r.mu.Unlock()

	go func() {
		<-ctx.Done()
		r.mu.Lock()
		defer r.mu.Unlock()
		ws := r.watchers[service]
		for i := range ws {
			if ws[i] == ch {
				r.watchers[service] = append(ws[:i:i], ws[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch
}

func (r *MemoryRegistry) notifyLocked(service string) {
	snapshot := append([]ServiceInstance(nil), r.services[service]...)
	for _, ch := range r.watchers[service] {
		select {
		case <-ch:
		default:
		}
		ch <- snapshot
	}
}
