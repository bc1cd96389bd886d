package config

import (
	"fmt"
	"strings"
)

// Validate checks the config after defaults are applied. All problems are
// collected so a broken file reports everything at once.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Version == "" {
		errs = append(errs, "version is required")
	}
	if cfg.Engine.IngestWorkers < 1 {
		errs = append(errs, fmt.Sprintf("engine.ingest_workers must be >= 1, got %d", cfg.Engine.IngestWorkers))
	}
	if cfg.Engine.QueueDepth < 1 {
		errs = append(errs, fmt.Sprintf("engine.queue_depth must be >= 1, got %d", cfg.Engine.QueueDepth))
	}
	if cfg.Engine.IngestTimeoutMs < 1 {
		errs = append(errs, "engine.ingest_timeout_ms must be positive")
	}
	if cfg.Engine.CapabilityTimeoutMs < 1 {
		errs = append(errs, "engine.capability_timeout_ms must be positive")
	}
	if cfg.Risk.TemperatureMin >= cfg.Risk.TemperatureMax {
		errs = append(errs, fmt.Sprintf("risk.temperature_min %.1f must be below risk.temperature_max %.1f",
			cfg.Risk.TemperatureMin, cfg.Risk.TemperatureMax))
	}
	if cfg.Risk.HumidityMin >= cfg.Risk.HumidityMax {
		errs = append(errs, fmt.Sprintf("risk.humidity_min %.1f must be below risk.humidity_max %.1f",
			cfg.Risk.HumidityMin, cfg.Risk.HumidityMax))
	}
	if cfg.Risk.ShockMax <= 0 {
		errs = append(errs, "risk.shock_max must be positive")
	}
	if cfg.Ledger.MaxReadingsPerProduct < 0 {
		errs = append(errs, "ledger.max_readings_per_product must not be negative")
	}
	if len(cfg.Events.KafkaBrokers) > 0 && cfg.Events.KafkaTopic == "" {
		errs = append(errs, "events.kafka_topic is required when kafka_brokers is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
