// Package config loads this node's configuration the way the teacher's
// internal/config does: viper-driven, defaults first, then a file, then
// environment variables, then Unmarshal into a plain struct. Scope here
// is narrowed to what this module actually needs — mempool capacity,
// JMT node-cache sizing, and storage backend selection — since peer
// management, genesis/validator list loading, and the consensus voting
// knobs the teacher's config carries are all explicit Non-goals here.
package config

import "time"

// MempoolConfig mirrors mempool.Config plus the knobs the service layer
// needs (GC cadence), kept separate from mempool.Config itself so the
// mempool package has no dependency on viper or this package.
type MempoolConfig struct {
	Capacity                 int           `mapstructure:"capacity"`
	CapacityPerUser          int           `mapstructure:"capacity_per_user"`
	SystemTransactionTimeout time.Duration `mapstructure:"system_transaction_timeout"`
	TTLCheckInterval         time.Duration `mapstructure:"ttl_check_interval"`
}

// JMTConfig sizes the in-process node cache sitting in front of the
// persistent node store.
type JMTConfig struct {
	NodeCacheSize int           `mapstructure:"node_cache_size"`
	NodeCacheTTL  time.Duration `mapstructure:"node_cache_ttl"`
}

// StorageConfig selects and configures the node-store backend.
type StorageConfig struct {
	Backend    string `mapstructure:"backend"` // "pebble" or "memory"
	Path       string `mapstructure:"path"`
	Compressor string `mapstructure:"compressor"` // "lz4" or "none"
}

// MetricsConfig controls whether and where Prometheus metrics are
// served.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// Config is this node's complete runtime configuration.
type Config struct {
	Mempool MempoolConfig `mapstructure:"mempool"`
	JMT     JMTConfig     `mapstructure:"jmt"`
	Storage StorageConfig `mapstructure:"storage"`
	Metrics MetricsConfig `mapstructure:"metrics"`

	configPath string
}

// ConfigPath returns the file this Config was loaded from, empty if it
// was built purely from defaults (e.g. in tests).
func (c *Config) ConfigPath() string { return c.configPath }
