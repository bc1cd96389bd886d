package config

// Config is the top-level YAML structure.
type Config struct {
	Version string      `yaml:"version"`
	Engine  EngineConf  `yaml:"engine"`
	Risk    RiskConf    `yaml:"risk"`
	Ledger  LedgerConf  `yaml:"ledger"`
	Storage StorageConf `yaml:"storage"`
	Events  EventsConf  `yaml:"events"`
}

// EngineConf holds tunable concurrency and timeout settings.
type EngineConf struct {
	IngestWorkers       int `yaml:"ingest_workers"`
	QueueDepth          int `yaml:"queue_depth"`
	IngestTimeoutMs     int `yaml:"ingest_timeout_ms"`
	CapabilityTimeoutMs int `yaml:"capability_timeout_ms"`
}

// RiskConf holds the reading-assessment thresholds. Readings outside the
// open interval (temperature_min, temperature_max), outside (humidity_min,
// humidity_max), or above shock_max contribute risk factors. Hot-reloadable.
type RiskConf struct {
	TemperatureMin float64 `yaml:"temperature_min"`
	TemperatureMax float64 `yaml:"temperature_max"`
	HumidityMin    float64 `yaml:"humidity_min"`
	HumidityMax    float64 `yaml:"humidity_max"`
	ShockMax       float64 `yaml:"shock_max"`
}

// LedgerConf holds retention settings for per-product reading history.
// MaxReadingsPerProduct 0 keeps history unbounded; a positive value keeps
// only the most recent N readings.
type LedgerConf struct {
	MaxReadingsPerProduct int `yaml:"max_readings_per_product"`
}

// StorageConf selects the backing store. An empty DatabaseURL keeps
// readings and alerts in memory. Overridable via the DATABASE_URL env var.
type StorageConf struct {
	DatabaseURL string `yaml:"database_url"`
}

// EventsConf configures the observability event sink. With no brokers the
// sink logs events; with brokers set, events are published to Kafka.
// Brokers are overridable via the KAFKA_BROKERS env var (comma-separated).
type EventsConf struct {
	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`
}
