package loadbalance

import (
	"math/rand/v2"

	"light-rpc/registry"
)

// WeightedRandomBalancer picks instances with probability proportional to
// their weight. When no instance carries a positive weight all are equally
// likely.
type WeightedRandomBalancer struct{}

func (b *WeightedRandomBalancer) Pick(instances []registry.ServiceInstance) (*registry.ServiceInstance, error) {
	if len(instances) == 0 {
		return nil, ErrNoInstances
	}

	total := 0
	for _, v := range instances {
		if v.Weight > 0 {
			total += v.Weight
		}
	}
	if total == 0 {
		return &instances[rand.IntN(len(instances))], nil
	}

	r := rand.IntN(total)
	for i := range instances {
		if instances[i].Weight <= 0 {
			continue
		}
		r -= instances[i].Weight
		if r < 0 {
			return &instances[i], nil
		}
	}
	return &instances[len(instances)-1], nil
}

func (b *WeightedRandomBalancer) Name() string {
	return "weighted_random"
}
