package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// DefaultFAAURL is the FAA NOTAM API search endpoint.
const DefaultFAAURL = "https://external-api.faa.gov/notamapi/v1/notams"

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// FAA NOTAM API configuration.
	FAAClientID          string
	FAAClientSecret      string
	FAAAPIURL            string
	FAAPageSize          int
	FAATimeout           time.Duration // global fetch deadline
	FAAHTTPTimeout       time.Duration // per request
	FAAMaxBackoff        time.Duration
	FAAConcurrency       int
	FAARequestsPerSecond float64 // 0 means unlimited
	FAACacheSize         int     // 0 disables the cache
	FAACacheTTL          time.Duration

	// Route defaults, in nautical miles.
	RouteGapNM    float64
	RouteRadiusNM float64

	AirportsPath string

	TracingEnabled     bool
	TracingExporter    string
	OTLPEndpoint       string
	TracingSampleRatio float64
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "route-requests"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "route-briefings"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "notam-briefing"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		FAAClientID:     os.Getenv("FAA_CLIENT_ID"),
		FAAClientSecret: os.Getenv("FAA_CLIENT_SECRET"),
		FAAAPIURL:       sharedcfg.EnvOrDefault("FAA_API_URL", DefaultFAAURL),
		AirportsPath:    sharedcfg.EnvOrDefault("AIRPORTS_PATH", "APT_BASE.csv"),

		TracingEnabled:  strings.EqualFold(os.Getenv("TRACING_ENABLED"), "true"),
		TracingExporter: strings.ToLower(sharedcfg.EnvOrDefault("TRACING_EXPORTER", "stdout")),
		OTLPEndpoint:    sharedcfg.EnvOrDefault("OTLP_ENDPOINT", "localhost:4317"),
	}

	if cfg.FAAPageSize, err = parseInt("FAA_PAGE_SIZE", 1000, 1, 1000); err != nil {
		return nil, err
	}
	if cfg.FAAConcurrency, err = parseInt("FAA_CONCURRENCY", 30, 1, 1000); err != nil {
		return nil, err
	}
	if cfg.FAACacheSize, err = parseInt("FAA_CACHE_SIZE", 1000, 0, 1_000_000); err != nil {
		return nil, err
	}
	if cfg.FAATimeout, err = parseDuration("FAA_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.FAAHTTPTimeout, err = parseDuration("FAA_HTTP_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.FAAMaxBackoff, err = parseDuration("FAA_MAX_BACKOFF", "30s"); err != nil {
		return nil, err
	}
	if cfg.FAACacheTTL, err = parseDuration("FAA_CACHE_TTL", "5m"); err != nil {
		return nil, err
	}
	if cfg.FAARequestsPerSecond, err = parseFloat("FAA_REQUESTS_PER_SECOND", 0, 0, 1000); err != nil {
		return nil, err
	}
	if cfg.RouteGapNM, err = parseFloat("ROUTE_GAP_NM", 40, 0, 10000); err != nil || cfg.RouteGapNM == 0 {
		return nil, errors.New("invalid ROUTE_GAP_NM: must be greater than 0")
	}
	if cfg.RouteRadiusNM, err = parseFloat("ROUTE_RADIUS_NM", 30, 0, 100); err != nil || cfg.RouteRadiusNM == 0 {
		return nil, errors.New("invalid ROUTE_RADIUS_NM: must be in (0, 100]")
	}
	if cfg.TracingSampleRatio, err = parseFloat("TRACING_SAMPLE_RATIO", 1, 0, 1); err != nil {
		return nil, err
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.FAAClientID == "" {
		return nil, errors.New("FAA_CLIENT_ID is required")
	}
	if cfg.FAAClientSecret == "" {
		return nil, errors.New("FAA_CLIENT_SECRET is required")
	}
	switch cfg.TracingExporter {
	case "stdout", "otlp", "otlpgrpc":
	default:
		return nil, fmt.Errorf("invalid TRACING_EXPORTER %q: must be stdout or otlp", cfg.TracingExporter)
	}

	return cfg, nil
}

// LoadDotEnv loads variables from a .env file without overriding ones
// already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func parseInt(key string, def, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be an integer in [%d, %d]", key, lo, hi)
	}
	return n, nil
}

func parseFloat(key string, def, lo, hi float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f < lo || f > hi {
		return 0, fmt.Errorf("invalid %s: must be a number in [%g, %g]", key, lo, hi)
	}
	return f, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}
