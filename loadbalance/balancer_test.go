package loadbalance

import (
	"errors"
	"fmt"
	"testing"

	"light-rpc/registry"
)

var testInstances = []registry.ServiceInstance{
	{Addr: "ws://10.0.0.1:1804/", Weight: 10, Version: "1.0"},
	{Addr: "ws://10.0.0.2:1804/", Weight: 5, Version: "1.0"},
	{Addr: "ws://10.0.0.3:1804/", Weight: 10, Version: "1.0"},
}

func TestRoundRobin(t *testing.T) {
	b := &RoundRobinBalancer{}

	results := make([]string, 3)
	for i := 0; i < 3; i++ {
		inst, err := b.Pick(testInstances)
		if err != nil {
			t.Fatal(err)
		}
		results[i] = inst.Addr
	}
	if results[0] != testInstances[0].Addr {
		t.Fatalf("expect first pick %s, got %s", testInstances[0].Addr, results[0])
	}

	// fourth pick wraps around to the first
	inst, _ := b.Pick(testInstances)
	if inst.Addr != results[0] {
		t.Fatalf("expect wrap around to %s, got %s", results[0], inst.Addr)
	}
}

func TestEmptyInstances(t *testing.T) {
	for _, b := range []Balancer{&RoundRobinBalancer{}, &WeightedRandomBalancer{}, NewConsistentHashBalancer("k")} {
		if _, err := b.Pick(nil); !errors.Is(err, ErrNoInstances) {
			t.Fatalf("%s: expect ErrNoInstances, got %v", b.Name(), err)
		}
	}
}

func TestWeightedRandom(t *testing.T) {
	b := &WeightedRandomBalancer{}

	counts := map[string]int{}
	n := 10000
	for i := 0; i < n; i++ {
		inst, err := b.Pick(testInstances)
		if err != nil {
			t.Fatal(err)
		}
		counts[inst.Addr]++
	}

	// weights are 10:5:10, so .1 should be picked about twice as often as .2
	ratio := float64(counts[testInstances[0].Addr]) / float64(counts[testInstances[1].Addr])
	if ratio < 1.5 || ratio > 2.5 {
		t.Fatalf("weight ratio .1/.2 = %.2f, expect ~2.0", ratio)
	}
}

func TestWeightedRandomZeroWeights(t *testing.T) {
	b := &WeightedRandomBalancer{}
	unweighted := []registry.ServiceInstance{{Addr: "ws://a/"}, {Addr: "ws://b/"}}

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		inst, err := b.Pick(unweighted)
		if err != nil {
			t.Fatal(err)
		}
		seen[inst.Addr] = true
	}
	if len(seen) != 2 {
		t.Fatalf("expect both instances picked, got %v", seen)
	}
}

func TestConsistentHash(t *testing.T) {
	b := NewConsistentHashBalancer("desk-lamp")

	inst1, _ := b.Pick(testInstances)
	inst2, _ := b.Pick(testInstances)
	if inst1.Addr != inst2.Addr {
		t.Fatalf("same key mapped to different instances: %s vs %s", inst1.Addr, inst2.Addr)
	}

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		inst, _ := b.PickKey(fmt.Sprintf("key-%d", i), testInstances)
		seen[inst.Addr] = true
	}
	// 100 keys over 3 nodes should hit at least 2
	if len(seen) < 2 {
		t.Fatalf("expect at least 2 different instances, got %d", len(seen))
	}
}

func TestConsistentHashStableUnderReorder(t *testing.T) {
	b := NewConsistentHashBalancer("desk-lamp")
	first, _ := b.Pick(testInstances)

	reordered := []registry.ServiceInstance{testInstances[2], testInstances[0], testInstances[1]}
	second, _ := b.Pick(reordered)
	if first.Addr != second.Addr {
		t.Fatalf("order of instances changed the pick: %s vs %s", first.Addr, second.Addr)
	}
}

func TestNew(t *testing.T) {
	for name, want := range map[string]string{
		"":                "round_robin",
		"round_robin":     "round_robin",
		"weighted_random": "weighted_random",
		"consistent_hash": "consistent_hash",
	} {
		b, err := New(name, "k")
		if err != nil {
			t.Fatal(err)
		}
		if b.Name() != want {
			t.Fatalf("New(%q) = %s, want %s", name, b.Name(), want)
		}
	}
	if _, err := New("fastest", ""); err == nil {
		t.Fatal("expect error for unknown balancer")
	}
}
