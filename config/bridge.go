package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// BridgeConfig defines the configuration for the bridge service
type BridgeConfig struct {
	Witnet   WitnetConfig   `yaml:"witnet"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
}

// WitnetConfig defines the oracle node and reconciliation settings
type WitnetConfig struct {
	// Addr is the TCP address of the oracle node's JSON-RPC interface.
	Addr string `yaml:"addr"`
	// TallyPollingRateMs is the pause between reconciliation passes.
	TallyPollingRateMs uint64 `yaml:"tally_polling_rate_ms"`
	// DrTxUnresolvedTimeoutMs enables the reset-to-New safety net for data
	// requests that keep erroring on the node. 0 disables resets.
	DrTxUnresolvedTimeoutMs uint64 `yaml:"dr_tx_unresolved_timeout_ms"`
	// CallTimeoutMs bounds every individual node call.
	CallTimeoutMs uint64 `yaml:"call_timeout_ms"`
	// CheckpointZeroTimestamp and CheckpointsPeriod are the network's epoch
	// genesis constants; fixed per network, never derived at runtime.
	CheckpointZeroTimestamp int64  `yaml:"checkpoint_zero_timestamp"`
	CheckpointsPeriod       uint16 `yaml:"checkpoints_period"`
}

// DatabaseConfig defines the PostgreSQL connection settings
type DatabaseConfig struct {
	DSN            string `yaml:"dsn"`
	MaxConnections int    `yaml:"max_connections"`
	MinConnections int    `yaml:"min_connections"`
}

// ServerConfig defines the HTTP status server configuration
type ServerConfig struct {
	HTTPPort     int    `yaml:"http_port"`
	ReadTimeout  string `yaml:"read_timeout"`
	WriteTimeout string `yaml:"write_timeout"`
	IdleTimeout  string `yaml:"idle_timeout"`
}

// LoadBridgeConfig loads the bridge configuration from the specified YAML file path
func LoadBridgeConfig(path string) (*BridgeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg BridgeConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config file: %w", err)
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// SetDefaults sets reasonable default values for the bridge configuration
func (c *BridgeConfig) SetDefaults() {
	if c.Witnet.TallyPollingRateMs == 0 {
		// NOTE: This default must match the value in bridge.defaults.yml.
		c.Witnet.TallyPollingRateMs = 30_000
	}
	if c.Witnet.CallTimeoutMs == 0 {
		c.Witnet.CallTimeoutMs = 5_000
	}
	if c.Witnet.CheckpointZeroTimestamp == 0 {
		// Wednesday, 14-Oct-2020, 09:00 UTC
		c.Witnet.CheckpointZeroTimestamp = 1_602_666_000
	}
	if c.Witnet.CheckpointsPeriod == 0 {
		c.Witnet.CheckpointsPeriod = 45
	}

	if c.Database.MaxConnections == 0 {
		c.Database.MaxConnections = 20
	}
	if c.Database.MinConnections == 0 {
		c.Database.MinConnections = 2
	}

	if c.Server.HTTPPort <= 0 {
		c.Server.HTTPPort = 8085
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "30s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "30s"
	}
	if c.Server.IdleTimeout == "" {
		c.Server.IdleTimeout = "120s"
	}
}

// Validate validates the bridge configuration
func (c *BridgeConfig) Validate() error {
	if c.Witnet.Addr == "" {
		return fmt.Errorf("witnet.addr is required")
	}
	if c.Witnet.TallyPollingRateMs == 0 {
		return fmt.Errorf("witnet.tally_polling_rate_ms must be greater than 0")
	}
	if c.Witnet.CallTimeoutMs == 0 {
		return fmt.Errorf("witnet.call_timeout_ms must be greater than 0")
	}
	if c.Witnet.CheckpointsPeriod == 0 {
		return fmt.Errorf("witnet.checkpoints_period must be greater than 0")
	}

	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database.min_connections (%d) exceeds max_connections (%d)",
			c.Database.MinConnections, c.Database.MaxConnections)
	}

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d (must be between 1-65535)", c.Server.HTTPPort)
	}
	if _, err := time.ParseDuration(c.Server.ReadTimeout); err != nil {
		return fmt.Errorf("invalid read_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.Server.WriteTimeout); err != nil {
		return fmt.Errorf("invalid write_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.Server.IdleTimeout); err != nil {
		return fmt.Errorf("invalid idle_timeout: %w", err)
	}

	return nil
}

// LogConfiguration logs the bridge configuration (excluding credentials)
func (c *BridgeConfig) LogConfiguration() {
	fmt.Printf("Bridge Service Configuration:\n")
	fmt.Printf("  Oracle Node Addr: %s\n", c.Witnet.Addr)
	fmt.Printf("  Tally Polling Rate: %dms\n", c.Witnet.TallyPollingRateMs)
	if c.Witnet.DrTxUnresolvedTimeoutMs > 0 {
		fmt.Printf("  Unresolved Timeout: %dms\n", c.Witnet.DrTxUnresolvedTimeoutMs)
	} else {
		fmt.Printf("  Unresolved Timeout: disabled\n")
	}
	fmt.Printf("  Call Timeout: %dms\n", c.Witnet.CallTimeoutMs)
	fmt.Printf("  Checkpoint Zero Timestamp: %d\n", c.Witnet.CheckpointZeroTimestamp)
	fmt.Printf("  Checkpoints Period: %ds\n", c.Witnet.CheckpointsPeriod)
	fmt.Printf("  HTTP Port: %d\n", c.Server.HTTPPort)
	fmt.Printf("  DB Max Connections: %d\n", c.Database.MaxConnections)
}
