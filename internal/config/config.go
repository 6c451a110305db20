// Package config reads process settings from the environment and an optional
// .env file.
package config

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const ServiceName = "order-service"

type Config struct {
	Host      string
	Port      string
	LogLevel  string
	LogFormat string

	AdminAddr       string
	ShutdownTimeout time.Duration

	StreamInterval       time.Duration
	StreamMaxTransitions int
	SeedDemoData         bool

	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	OTLPEndpoint   string
	OTelSampleRate float64

	ServerAddr string

	// warnings collects malformed values replaced by defaults.
	warnings []string
}

// LoadEnv loads the first .env found in the working directory or up to two
// levels above it. A missing file is not an error.
func LoadEnv() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}

	possiblePaths := []string{
		filepath.Join(wd, ".env"),
		filepath.Join(wd, "..", ".env"),
		filepath.Join(wd, "..", "..", ".env"),
	}
	for _, envPath := range possiblePaths {
		if err := godotenv.Load(envPath); err == nil {
			return envPath
		}
	}
	return ""
}

// Load reads the configuration from the environment. It never fails: bad
// values fall back to defaults and are reported by Display.
func Load() Config {
	c := Config{}
	c.Host = getString("HOST", "0.0.0.0")
	c.Port = getString("PORT", "8080")
	c.LogLevel = getString("LOG_LEVEL", "info")
	c.LogFormat = getString("LOG_FORMAT", "console")
	c.AdminAddr = getStringAllowEmpty("ADMIN_ADDR", ":9090")
	c.ShutdownTimeout = c.getDuration("SHUTDOWN_TIMEOUT", 5*time.Second)
	c.StreamInterval = c.getDuration("STREAM_INTERVAL", 5*time.Second)
	c.StreamMaxTransitions = c.getPositiveInt("STREAM_MAX_TRANSITIONS", 5)
	c.SeedDemoData = c.getBool("SEED_DEMO_DATA", true)
	c.KafkaBrokers = splitList(os.Getenv("KAFKA_BROKERS"))
	c.KafkaTopic = getString("KAFKA_TOPIC", "order_events")
	c.KafkaGroupID = getString("KAFKA_GROUP_ID", "order-events-consumer-group")
	c.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	c.OTelSampleRate = c.getFloat("OTEL_SAMPLE_RATIO", 1.0)
	c.ServerAddr = getString("SERVER_ADDR", "localhost:8080")
	return c
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c Config) Warnings() []string {
	return c.warnings
}

func (c Config) Display(logger *zap.Logger) {
	for _, w := range c.warnings {
		logger.Warn("Invalid configuration value, using default", zap.String("detail", w))
	}
	logger.Info("Configuration loaded",
		zap.String("addr", c.Addr()),
		zap.String("log_level", c.LogLevel),
		zap.String("log_format", c.LogFormat),
		zap.String("admin_addr", c.AdminAddr),
		zap.Duration("shutdown_timeout", c.ShutdownTimeout),
		zap.Duration("stream_interval", c.StreamInterval),
		zap.Int("stream_max_transitions", c.StreamMaxTransitions),
		zap.Bool("seed_demo_data", c.SeedDemoData),
		zap.Strings("kafka_brokers", c.KafkaBrokers),
		zap.String("kafka_topic", c.KafkaTopic),
		zap.String("otlp_endpoint", c.OTLPEndpoint),
		zap.Float64("otel_sample_ratio", c.OTelSampleRate),
	)
}

func getString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// getStringAllowEmpty distinguishes an unset variable from one set to "".
func getStringAllowEmpty(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return def
}

func (c *Config) getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		c.warnings = append(c.warnings, key+"="+v)
		return def
	}
	return d
}

// getPositiveInt rejects zero as well as negative and malformed values.
func (c *Config) getPositiveInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		c.warnings = append(c.warnings, key+"="+v)
		return def
	}
	return n
}

func (c *Config) getBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		c.warnings = append(c.warnings, key+"="+v)
		return def
	}
	return b
}

func (c *Config) getFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || f > 1 {
		c.warnings = append(c.warnings, key+"="+v)
		return def
	}
	return f
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
