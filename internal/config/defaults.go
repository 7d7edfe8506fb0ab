package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults seeds every key LoadConfig unmarshals from, the same
// "defaults first" step the teacher's setDefaults (internal/config/defaults.go)
// performs before any file or environment variable is consulted.
func setDefaults(v *viper.Viper) {
	v.SetDefault("mempool.capacity", 100_000)
	v.SetDefault("mempool.capacity_per_user", 100)
	v.SetDefault("mempool.system_transaction_timeout", 10*time.Minute)
	v.SetDefault("mempool.ttl_check_interval", 30*time.Second)

	v.SetDefault("jmt.node_cache_size", 100_000)
	v.SetDefault("jmt.node_cache_ttl", 10*time.Minute)

	v.SetDefault("storage.backend", "pebble")
	v.SetDefault("storage.path", "./data/nodestore")
	v.SetDefault("storage.compressor", "lz4")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.addr", "127.0.0.1:9100")
}
