package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel  string
	LogFormat string

	APIPort               string
	APIMaxConns           int
	APIRateLimitRPS       float64
	APIRateLimitBurst     int
	APIMaxInFlight        int
	APIBackpressureWaitMS int

	BatchMaxBytes         int64
	BatchChunkSize        int
	BatchWorkers          int
	SourceReadConcurrency int

	ScratchPath  string
	ExportFormat string

	NATSURL              string
	NATSRequestSubject   string
	NATSCompletedSubject string

	PublishRetryAttempts      int
	PublishRetryBackoffMS     int
	PublishBreakerOpenSeconds int

	WorkerMetricsPort string
}

// Load reads the configuration from the environment only.
func Load() Config {
	return load(os.LookupEnv)
}

// LoadFile overlays a YAML or TOML file under the environment; an environment
// variable always beats the same key in the file. Keys are matched
// case-insensitively, so batch_max_bytes in a file sets BATCH_MAX_BYTES.
func LoadFile(path string) (Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Load(), nil
	}
	values, err := readFile(path)
	if err != nil {
		return Config{}, err
	}
	return load(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := values[key]
		return v, ok
	}), nil
}

// FromEnvOrFile uses CONFIG_FILE when it is set.
func FromEnvOrFile() (Config, error) {
	return LoadFile(os.Getenv("CONFIG_FILE"))
}

type lookupFunc func(key string) (string, bool)

func load(lookup lookupFunc) Config {
	e := env{lookup: lookup}
	return Config{
		LogLevel:  e.mustEnv("LOG_LEVEL", "info"),
		LogFormat: strings.ToLower(e.mustEnv("LOG_FORMAT", "json")),

		APIPort:               e.mustEnv("API_PORT", "8080"),
		APIMaxConns:           e.mustEnvInt("API_MAX_CONNS", 256),
		APIRateLimitRPS:       e.mustEnvFloat("API_RATE_LIMIT_RPS", 5),
		APIRateLimitBurst:     e.mustEnvInt("API_RATE_LIMIT_BURST", 10),
		APIMaxInFlight:        e.mustEnvInt("API_MAX_IN_FLIGHT", 4),
		APIBackpressureWaitMS: e.mustEnvInt("API_BACKPRESSURE_WAIT_MS", 250),

		BatchMaxBytes:         e.mustEnvInt64("BATCH_MAX_BYTES", 10<<30),
		BatchChunkSize:        e.mustEnvInt("BATCH_CHUNK_SIZE", 10),
		BatchWorkers:          e.mustEnvInt("BATCH_WORKERS", 4),
		SourceReadConcurrency: e.mustEnvInt("SOURCE_READ_CONCURRENCY", 8),

		ScratchPath:  e.mustEnv("SCRATCH_PATH", ""),
		ExportFormat: strings.ToLower(e.mustEnv("EXPORT_FORMAT", "xlsx")),

		NATSURL:              e.mustEnv("NATS_URL", ""),
		NATSRequestSubject:   e.mustEnv("NATS_REQUEST_SUBJECT", "resumes.batch.requested"),
		NATSCompletedSubject: e.mustEnv("NATS_COMPLETED_SUBJECT", "resumes.batch.completed"),

		PublishRetryAttempts:      e.mustEnvInt("PUBLISH_RETRY_ATTEMPTS", 3),
		PublishRetryBackoffMS:     e.mustEnvInt("PUBLISH_RETRY_BACKOFF_MS", 100),
		PublishBreakerOpenSeconds: e.mustEnvInt("PUBLISH_BREAKER_OPEN_SECONDS", 30),

		WorkerMetricsPort: e.mustEnv("WORKER_METRICS_PORT", "9090"),
	}
}

type env struct {
	lookup lookupFunc
}

func (e env) mustEnv(key, fallback string) string {
	v, _ := e.lookup(key)
	if v == "" {
		return fallback
	}
	return v
}

func (e env) mustEnvInt(key string, fallback int) int {
	v, _ := e.lookup(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func (e env) mustEnvInt64(key string, fallback int64) int64 {
	v, _ := e.lookup(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func (e env) mustEnvFloat(key string, fallback float64) float64 {
	v, _ := e.lookup(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	raw := make(map[string]any)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	case ".toml":
		err = toml.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("config file %s: unsupported extension", path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	values := make(map[string]string, len(raw))
	for key, value := range raw {
		switch value.(type) {
		case map[string]any, []any:
			return nil, fmt.Errorf("config file %s: key %q must be a scalar", path, key)
		}
		values[strings.ToUpper(strings.TrimSpace(key))] = fmt.Sprint(value)
	}
	return values, nil
}
