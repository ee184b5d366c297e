package server

import (
	"context"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"light-rpc/client"
	"light-rpc/loadbalance"
	"light-rpc/registry"
)

// startAdvertised serves Arith over WebSocket and advertises it in reg.
func startAdvertised(t testing.TB, reg registry.Registry, service string) (*Server, string) {
	t.Helper()
	s := NewServer()
	require.NoError(t, s.Register(&Arith{}))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go s.Serve(ln)

	url := "ws://" + ln.Addr().String() + "/"
	require.NoError(t, s.Advertise(context.Background(), reg, service, registry.ServiceInstance{Addr: url, Weight: 10}, 10))
	t.Cleanup(func() { s.Shutdown(3 * time.Second) })
	return s, url
}

// Client → registry → balancer → dial → session → server → reflected method
func TestDiscoveryEndToEnd(t *testing.T) {
	reg := registry.NewMemoryRegistry()
	startAdvertised(t, reg, "arith")
	startAdvertised(t, reg, "arith")

	r := client.DiscoveryResolver{Registry: reg, Balancer: &loadbalance.RoundRobinBalancer{}, Service: "arith"}
	seen := map[string]bool{}
	for i := 1; i <= 4; i++ {
		url, err := r.Resolve(context.Background())
		require.NoError(t, err)
		seen[url] = true

		c, err := client.Dial(context.Background(), url)
		require.NoError(t, err)

		var reply Reply
		require.NoError(t, c.Call(context.Background(), "add", Args{A: i, B: i * 10}, &reply))
		assert.Equal(t, i+i*10, reply.Result)
		c.Close()
	}
	assert.Len(t, seen, 2)
}

func TestDiscoveryWithEtcd(t *testing.T) {
	endpoints := os.Getenv("LIGHT_RPC_ETCD")
	if endpoints == "" {
		t.Skip("LIGHT_RPC_ETCD not set")
	}
	reg, err := registry.NewEtcdRegistry(strings.Split(endpoints, ","), nil)
	require.NoError(t, err)
	defer reg.Close()

	s, _ := startAdvertised(t, reg, "arith-e2e")

	c, err := client.DialResolver(context.Background(), client.DiscoveryResolver{Registry: reg, Service: "arith-e2e"})
	require.NoError(t, err)
	defer c.Close()

	var reply Reply
	require.NoError(t, c.Call(context.Background(), "add", Args{A: 3, B: 5}, &reply))
	assert.Equal(t, 8, reply.Result)

	require.NoError(t, s.Shutdown(3*time.Second))
	_, err = reg.Discover(context.Background(), "arith-e2e")
	require.ErrorIs(t, err, registry.ErrNoInstances)
}

func setupBench(b *testing.B) *client.Client {
	_, url := startAdvertised(b, registry.NewMemoryRegistry(), "arith")
	c, err := client.Dial(context.Background(), url)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { c.Close() })
	return c
}

func BenchmarkWebSocketSerialCall(b *testing.B) {
	c := setupBench(b)
	args := &Args{A: 1, B: 2}
	reply := &Reply{}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := c.Call(context.Background(), "add", args, reply); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkWebSocketConcurrentCall(b *testing.B) {
	c := setupBench(b)
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		args := &Args{A: 1, B: 2}
		reply := &Reply{}
		for pb.Next() {
			if err := c.Call(context.Background(), "add", args, reply); err != nil {
				b.Error(err)
				return
			}
		}
	})
}
