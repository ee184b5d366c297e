package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"light-rpc/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWhenDefaultFileMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent")
	}
	if !strings.HasSuffix(resolved, filepath.Join("lightctl", "config.toml")) {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if cfg.URL != "ws://127.0.0.1:1804/" {
		t.Fatalf("unexpected default url %q", cfg.URL)
	}
	if cfg.Transport.HandshakeTimeout.Duration != 2*time.Second {
		t.Fatalf("unexpected handshake timeout %v", cfg.Transport.HandshakeTimeout)
	}
	if cfg.Transport.SendQueue != 1 {
		t.Fatalf("unexpected send queue %d", cfg.Transport.SendQueue)
	}
	if cfg.UsesDiscovery() {
		t.Fatal("discovery must be off by default")
	}
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	if _, _, _, err := config.Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
url = "tcp://10.0.0.5:1804"
log_level = "DEBUG"

[transport]
handshake_timeout = "5s"
heartbeat_interval = "30s"
send_queue = 8

[calls]
timeout = "1500ms"
rate = 10
burst = 5
max_retries = 2

[discovery]
etcd_endpoints = [" 127.0.0.1:2379 ", ""]
balancer = "consistent_hash"
hash_key = "studio"
`)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected %s to be loaded, got %s (exists=%v)", path, resolved, exists)
	}
	if cfg.URL != "tcp://10.0.0.5:1804" {
		t.Fatalf("unexpected url %q", cfg.URL)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected log level normalised to debug, got %q", cfg.LogLevel)
	}
	if cfg.Transport.HeartbeatInterval.Duration != 30*time.Second {
		t.Fatalf("unexpected heartbeat %v", cfg.Transport.HeartbeatInterval)
	}
	if cfg.Calls.Timeout.Duration != 1500*time.Millisecond {
		t.Fatalf("unexpected timeout %v", cfg.Calls.Timeout)
	}
	if cfg.Calls.RetryDelay.Duration != 100*time.Millisecond {
		t.Fatalf("retry delay default lost: %v", cfg.Calls.RetryDelay)
	}
	if len(cfg.Discovery.EtcdEndpoints) != 1 || cfg.Discovery.EtcdEndpoints[0] != "127.0.0.1:2379" {
		t.Fatalf("unexpected endpoints %q", cfg.Discovery.EtcdEndpoints)
	}
	if cfg.Discovery.Service != "controlcenter" {
		t.Fatalf("unexpected service %q", cfg.Discovery.Service)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"scheme":       `url = "http://127.0.0.1:1804/"`,
		"log level":    `log_level = "loud"`,
		"send queue":   "[transport]\nsend_queue = 0",
		"burst":        "[calls]\nrate = 5",
		"balancer":     "[discovery]\nbalancer = \"fastest\"",
		"hash key":     "[discovery]\netcd_endpoints = [\"127.0.0.1:2379\"]\nbalancer = \"consistent_hash\"",
		"duration":     "[calls]\ntimeout = \"soon\"",
		"unknown key":  `colour = "blue"`,
		"negative dev": "[simulate]\ndevices = -1",
	}
	for name, body := range cases {
		if _, _, _, err := config.Load(writeConfig(t, body)); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Calls.Timeout = config.Duration{Duration: 3 * time.Second}

	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(string(data), `timeout = '3s'`) && !strings.Contains(string(data), `timeout = "3s"`) {
		t.Fatalf("durations must encode as strings:\n%s", data)
	}

	var back config.Config
	if err := toml.Unmarshal(data, &back); err != nil {
		t.Fatalf("decode encoded config: %v", err)
	}
	if back.Calls.Timeout.Duration != 3*time.Second {
		t.Fatalf("round trip lost timeout: %v", back.Calls.Timeout)
	}
}
