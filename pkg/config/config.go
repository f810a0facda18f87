package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

// SystemConfig defines engine-level technical parameters.
// These settings are usually stored in system.json (or system.yaml) and
// control the relay listener, call timeouts, logging, and snapshot shaping.
type SystemConfig struct {
	// WSHost is the interface the extension listener binds to.
	WSHost string `json:"ws_host" yaml:"ws_host"`
	// WSPort is the TCP port the browser extension connects to.
	WSPort int `json:"ws_port" yaml:"ws_port"`
	// CallTimeoutMs is how long (in milliseconds) a relayed action waits
	// for its correlated reply before failing with a timeout.
	CallTimeoutMs int `json:"call_timeout_ms" yaml:"call_timeout_ms"`
	// ShutdownGraceMs bounds (in milliseconds) how long cleanup may take
	// after the protocol session ends before the process exits anyway.
	ShutdownGraceMs int `json:"shutdown_grace_ms" yaml:"shutdown_grace_ms"`
	// ReclaimPort kills whatever process holds WSPort before listening.
	ReclaimPort bool `json:"reclaim_port" yaml:"reclaim_port"`
	// PortWaitMs bounds (in milliseconds) the wait for the port to become free.
	PortWaitMs int `json:"port_wait_ms" yaml:"port_wait_ms"`
	// LogLevel sets the minimum severity for log output.
	// Accepted values: "debug", "info", "warn", "error". Default: "info".
	LogLevel string `json:"log_level" yaml:"log_level"`
	// MonitorTraffic prints every relayed request and reply to stderr.
	MonitorTraffic bool `json:"monitor_traffic" yaml:"monitor_traffic"`
	// Channels names the peer channels to start. Default: ["websocket"].
	Channels []string `json:"channels" yaml:"channels"`
	// Snapshot holds the accessibility snapshot compression settings.
	Snapshot SnapshotConfig `json:"snapshot" yaml:"snapshot"`
}

// SnapshotConfig controls how page snapshots are compressed.
type SnapshotConfig struct {
	// HeaderLines is the number of leading snapshot lines always kept verbatim.
	HeaderLines int `json:"header_lines" yaml:"header_lines"`
	// SummaryThreshold is the raw snapshot size (in characters) above which
	// a page summary section is appended to the response.
	SummaryThreshold int `json:"summary_threshold" yaml:"summary_threshold"`
	// TierWeights are the cumulative budget ceilings per relevance tier.
	TierWeights TierWeights `json:"tier_weights" yaml:"tier_weights"`
}

// TierWeights are fractions of the mode's token budget. Each tier may fill
// the output up to its own ceiling; ceilings are cumulative, not shares.
type TierWeights struct {
	Critical  float64 `json:"critical" yaml:"critical"`
	Important float64 `json:"important" yaml:"important"`
	Optional  float64 `json:"optional" yaml:"optional"`
}

// DefaultSystemConfig returns a SystemConfig pointer initialized with hardcoded
// safe default values. This is used as a fallback when the config file
// is missing or corrupt, ensuring the relay can always start.
func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		WSHost:          "localhost",
		WSPort:          9002,
		CallTimeoutMs:   30000,
		ShutdownGraceMs: 15000,
		ReclaimPort:     true,
		PortWaitMs:      5000,
		LogLevel:        "info",
		Channels:        []string{"websocket"},
		Snapshot: SnapshotConfig{
			HeaderLines:      5,
			SummaryThreshold: 20000,
			TierWeights: TierWeights{
				Critical:  0.60,
				Important: 0.85,
				Optional:  0.95,
			},
		},
	}
}

// Addr returns the host:port the extension listener binds to.
func (c *SystemConfig) Addr() string {
	return net.JoinHostPort(c.WSHost, strconv.Itoa(c.WSPort))
}

// CallTimeout returns CallTimeoutMs as a duration.
func (c *SystemConfig) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutMs) * time.Millisecond
}

// ShutdownGrace returns ShutdownGraceMs as a duration.
func (c *SystemConfig) ShutdownGrace() time.Duration {
	return time.Duration(c.ShutdownGraceMs) * time.Millisecond
}

// PortWait returns PortWaitMs as a duration.
func (c *SystemConfig) PortWait() time.Duration {
	return time.Duration(c.PortWaitMs) * time.Millisecond
}

// Validate ensures the configuration contains usable values.
// It acts as a primary guard before the system proceeds to initialization.
func (c *SystemConfig) Validate() error {
	if c.WSPort <= 0 || c.WSPort > 65535 {
		return fmt.Errorf("ws_port %d is out of range", c.WSPort)
	}
	if c.CallTimeoutMs <= 0 {
		return fmt.Errorf("call_timeout_ms must be positive, got %d", c.CallTimeoutMs)
	}
	if c.ShutdownGraceMs <= 0 {
		return fmt.Errorf("shutdown_grace_ms must be positive, got %d", c.ShutdownGraceMs)
	}
	if len(c.Channels) == 0 {
		return fmt.Errorf("at least one channel must be configured")
	}
	if c.Snapshot.HeaderLines < 0 {
		return fmt.Errorf("snapshot.header_lines must not be negative, got %d", c.Snapshot.HeaderLines)
	}
	w := c.Snapshot.TierWeights
	for name, v := range map[string]float64{"critical": w.Critical, "important": w.Important, "optional": w.Optional} {
		if v <= 0 || v > 1 {
			return fmt.Errorf("snapshot.tier_weights.%s must be in (0,1], got %v", name, v)
		}
	}
	if w.Critical > w.Important || w.Important > w.Optional {
		return fmt.Errorf("snapshot.tier_weights must be non-decreasing (critical <= important <= optional)")
	}
	return nil
}

// Load reads, parses and validates the configuration file at path.
// Files ending in .yaml or .yml are decoded as YAML, everything else as JSON.
// Fields absent from the file keep their default values.
func Load(path string) (*SystemConfig, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultSystemConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(file, cfg)
	default:
		err = jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(file, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadSystemConfig attempts to load system settings, returns defaults if it fails.
// The returned error is informational: the config is always usable.
func LoadSystemConfig(path string) (*SystemConfig, error) {
	if path == "" {
		return DefaultSystemConfig(), nil
	}
	cfg, err := Load(path)
	if err != nil {
		return DefaultSystemConfig(), err
	}
	return cfg, nil
}
