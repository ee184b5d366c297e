package main

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"light-rpc/registry"
)

func TestLogPeersReportsChanges(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	reg := registry.NewMemoryRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		logPeers(ctx, reg, "controlcenter", zap.New(core))
		close(done)
	}()

	// Watch is registered asynchronously; keep re-registering until it is seen.
	deadline := time.Now().Add(2 * time.Second)
	for logs.FilterMessage("peers changed").Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no peer change logged")
		}
		inst := registry.ServiceInstance{Addr: "ws://127.0.0.1:1804/", Weight: 1}
		if err := reg.Register(ctx, "controlcenter", inst, 10); err != nil {
			t.Fatalf("register: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	entry := logs.FilterMessage("peers changed").All()[0]
	peers, ok := entry.ContextMap()["peers"].([]interface{})
	if !ok || len(peers) != 1 || peers[0] != "ws://127.0.0.1:1804/" {
		t.Fatalf("unexpected peers field %v", entry.ContextMap()["peers"])
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("logPeers did not stop after cancel")
	}
}
