package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration is a time.Duration written as a Go duration string ("2s").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Transport configures connection setup and the session.
type Transport struct {
	HandshakeTimeout  Duration `toml:"handshake_timeout"`
	HeartbeatInterval Duration `toml:"heartbeat_interval"` // 0 disables pings
	SendQueue         int      `toml:"send_queue"`
	MaxFrameBytes     int64    `toml:"max_frame_bytes"`
}

// Calls configures the client middleware chain. Zero values disable the
// matching middleware.
type Calls struct {
	Timeout    Duration `toml:"timeout"`
	Rate       float64  `toml:"rate"`
	Burst      int      `toml:"burst"`
	MaxRetries int      `toml:"max_retries"`
	RetryDelay Duration `toml:"retry_delay"`
}

// Discovery resolves the endpoint through etcd instead of a fixed URL. It
// is active when EtcdEndpoints is non-empty.
type Discovery struct {
	EtcdEndpoints []string `toml:"etcd_endpoints"`
	Service       string   `toml:"service"`
	Balancer      string   `toml:"balancer"`
	HashKey       string   `toml:"hash_key"`
}

// Simulate configures `lightctl simulate`.
type Simulate struct {
	Listen  string `toml:"listen"`
	Devices int    `toml:"devices"`
}

// Config holds everything lightctl reads from its configuration file.
//
// Sections:
//   - URL, LogLevel: endpoint and log verbosity
//   - Transport: handshake, heartbeat and queue sizing
//   - Calls: per-call timeout, rate limit and retry
//   - Discovery: etcd based endpoint lookup
//   - Simulate: the simulated Control Center
type Config struct {
	URL       string    `toml:"url"`
	LogLevel  string    `toml:"log_level"`
	Transport Transport `toml:"transport"`
	Calls     Calls     `toml:"calls"`
	Discovery Discovery `toml:"discovery"`
	Simulate  Simulate  `toml:"simulate"`
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/lightctl/config.toml,
// falling back to ~/.config.
func DefaultConfigPath() (string, error) {
	if base, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "lightctl", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "lightctl", "config.toml"), nil
}

// Load reads the file at path, or the default path when empty, on top of
// Default(). A missing default file is not an error; a missing explicit
// file is. It returns the config, the path it looked at and whether that
// file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}
	if path != "" && !exists {
		return nil, resolved, false, fmt.Errorf("config file %s does not exist", resolved)
	}

	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		var err error
		if path, err = DefaultConfigPath(); err != nil {
			return "", false, err
		}
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return path, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %s is a directory", path)
	}
	return path, true, nil
}

// Encode writes cfg as TOML.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}
