package config

import "fmt"

// Validate performs the same kind of per-section validation the
// teacher's ValidateConfig does (internal/config/validation.go), scaled
// down to three of this module's four sections: Mempool, JMT and Storage
// are checked; Metrics is not validated.
func Validate(cfg *Config) error {
	if err := validateMempool(&cfg.Mempool); err != nil {
		return fmt.Errorf("mempool config validation failed: %w", err)
	}
	if err := validateJMT(&cfg.JMT); err != nil {
		return fmt.Errorf("jmt config validation failed: %w", err)
	}
	if err := validateStorage(&cfg.Storage); err != nil {
		return fmt.Errorf("storage config validation failed: %w", err)
	}
	return nil
}

func validateMempool(m *MempoolConfig) error {
	if m.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive, got %d", m.Capacity)
	}
	if m.CapacityPerUser <= 0 {
		return fmt.Errorf("capacity_per_user must be positive, got %d", m.CapacityPerUser)
	}
	if m.CapacityPerUser > m.Capacity {
		return fmt.Errorf("capacity_per_user (%d) cannot exceed capacity (%d)", m.CapacityPerUser, m.Capacity)
	}
	if m.SystemTransactionTimeout <= 0 {
		return fmt.Errorf("system_transaction_timeout must be positive")
	}
	if m.TTLCheckInterval <= 0 {
		return fmt.Errorf("ttl_check_interval must be positive")
	}
	return nil
}

func validateJMT(j *JMTConfig) error {
	if j.NodeCacheSize < 0 {
		return fmt.Errorf("node_cache_size cannot be negative, got %d", j.NodeCacheSize)
	}
	return nil
}

func validateStorage(s *StorageConfig) error {
	switch s.Backend {
	case "pebble", "memory":
	default:
		return fmt.Errorf("unsupported storage backend %q", s.Backend)
	}
	if s.Backend == "pebble" && s.Path == "" {
		return fmt.Errorf("storage.path is required for the pebble backend")
	}
	switch s.Compressor {
	case "lz4", "none", "":
	default:
		return fmt.Errorf("unsupported compressor %q", s.Compressor)
	}
	return nil
}
