package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Default open-data endpoints: Ghent drinking-water points and public toilets.
const (
	drinkingWaterURL = "https://data.stad.gent/api/explore/v2.1/catalog/datasets/drinkwaterplekken-gent/exports/geojson"
	sanitationURL    = "https://data.stad.gent/api/explore/v2.1/catalog/datasets/publiek-sanitair-gent/exports/geojson"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Point catalog.
	CatalogURLs            []string
	OpenDataTimeout        time.Duration
	CatalogRefreshInterval time.Duration

	// Report store (PostgreSQL).
	DatabaseURL     string
	DatabaseMigrate bool

	// Deep links and QR stickers.
	PublicBaseURL string
	QRSize        int
	QRCacheSize   int

	// Optional report event stream.
	KafkaEnabled      bool
	KafkaBrokers      []string
	KafkaReportsTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	openDataTimeout, err := parsePositiveDuration("OPENDATA_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	refreshInterval, err := parsePositiveDuration("CATALOG_REFRESH_INTERVAL", "15m")
	if err != nil {
		return nil, err
	}

	qrSize, err := strconv.Atoi(sharedcfg.EnvOrDefault("QR_SIZE", "256"))
	if err != nil || qrSize < 64 || qrSize > 2048 {
		return nil, errors.New("invalid QR_SIZE: must be between 64 and 2048")
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		CatalogURLs:            splitList(sharedcfg.EnvOrDefault("CATALOG_URLS", drinkingWaterURL+","+sanitationURL)),
		OpenDataTimeout:        openDataTimeout,
		CatalogRefreshInterval: refreshInterval,

		DatabaseURL:     sharedcfg.EnvOrDefault("DATABASE_URL", "postgres://localhost:5432/waterpoints?sslmode=disable"),
		DatabaseMigrate: sharedcfg.EnvOrDefault("DATABASE_MIGRATE", "true") == "true",

		PublicBaseURL: strings.TrimRight(sharedcfg.EnvOrDefault("PUBLIC_BASE_URL", "https://agile-skills.vercel.app"), "/"),
		QRSize:        qrSize,
		QRCacheSize:   parseQRCacheSize(),

		KafkaEnabled:      os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:      sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaReportsTopic: sharedcfg.EnvOrDefault("KAFKA_REPORTS_TOPIC", "water-point-reports"),
	}

	if n := len(cfg.CatalogURLs); n < 1 || n > 2 {
		return nil, errors.New("CATALOG_URLS must list 1 or 2 endpoints")
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.PublicBaseURL == "" {
		return nil, errors.New("PUBLIC_BASE_URL is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaReportsTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_REPORTS_TOPIC is empty")
	}

	return cfg, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseQRCacheSize() int {
	if s := os.Getenv("QR_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 500
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
