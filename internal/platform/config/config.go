// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig
	Locations LocationsConfig
	SMTP      SMTPConfig
	Delivery  DeliveryConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Log       LogConfig
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Location sources.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// LocationsConfig selects and configures the subdivision reference dataset.
type LocationsConfig struct {
	Source      string
	CSVPath     string
	DatabaseURL string
	// States limits a Postgres load to these states. Empty loads all.
	States []string
	// ZonesFile overrides the embedded zone table when set.
	ZonesFile string
}

// SMTPConfig configures the outgoing mail relay.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	ImplicitTLS bool
	Timeout     time.Duration
}

// DeliveryConfig configures the report email queue.
type DeliveryConfig struct {
	Enabled      bool
	Workers      int
	QueueSize    int
	DedupeTTL    time.Duration
	MaxRetries   uint64
	SendTimeout  time.Duration
	DrainTimeout time.Duration
}

// RedisConfig configures the optional Redis client used for delivery
// de-duplication. An empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures calculation event publishing. No brokers means
// events are only logged.
type KafkaConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level  string
	Format string
}

// FromEnv builds a Config from environment variables so main stays lean.
// Malformed numbers and durations fall back to their defaults.
func FromEnv() Config {
	smtpUser := os.Getenv("SMTP_USER")
	return Config{
		Server: ServerConfig{
			Addr:            getEnv("SUBSIDY_ADDR", ":8080"),
			ReadTimeout:     getDuration("SUBSIDY_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDuration("SUBSIDY_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDuration("SUBSIDY_SHUTDOWN_TIMEOUT", 20*time.Second),
		},
		Locations: LocationsConfig{
			Source:      strings.ToLower(getEnv("LOCATIONS_SOURCE", SourceCSV)),
			CSVPath:     getEnv("LOCATIONS_CSV_PATH", "data/subdivisions.csv"),
			DatabaseURL: os.Getenv("DATABASE_URL"),
			States:      getList("LOCATIONS_STATES"),
			ZonesFile:   os.Getenv("ZONES_FILE"),
		},
		SMTP: SMTPConfig{
			Host:        getEnv("SMTP_HOST", "smtp.zoho.in"),
			Port:        getInt("SMTP_PORT", 465),
			Username:    smtpUser,
			Password:    os.Getenv("SMTP_PASS"),
			From:        getEnv("SMTP_FROM", smtpUser),
			ImplicitTLS: getBool("SMTP_IMPLICIT_TLS", true),
			Timeout:     getDuration("SMTP_TIMEOUT", 15*time.Second),
		},
		Delivery: DeliveryConfig{
			Enabled:      getBool("DELIVERY_ENABLED", smtpUser != ""),
			Workers:      getInt("DELIVERY_WORKERS", 2),
			QueueSize:    getInt("DELIVERY_QUEUE_SIZE", 100),
			DedupeTTL:    getDuration("DELIVERY_DEDUPE_TTL", 24*time.Hour),
			MaxRetries:   uint64(getInt("DELIVERY_MAX_RETRIES", 4)),
			SendTimeout:  getDuration("DELIVERY_SEND_TIMEOUT", 2*time.Minute),
			DrainTimeout: getDuration("DELIVERY_DRAIN_TIMEOUT", 30*time.Second),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:  getList("KAFKA_BROKERS"),
			Topic:    getEnv("KAFKA_TOPIC", "subsidy.calculations"),
			ClientID: getEnv("KAFKA_CLIENT_ID", "subsidy"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "json")),
		},
	}
}

// Validate checks combinations FromEnv cannot default its way out of.
func (c Config) Validate() error {
	switch c.Locations.Source {
	case SourceCSV:
		if c.Locations.CSVPath == "" {
			return fmt.Errorf("LOCATIONS_CSV_PATH is required for the csv source")
		}
	case SourcePostgres:
		if c.Locations.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres source")
		}
	default:
		return fmt.Errorf("unknown LOCATIONS_SOURCE %q", c.Locations.Source)
	}
	if c.Delivery.Enabled {
		if c.SMTP.Host == "" || c.SMTP.From == "" {
			return fmt.Errorf("SMTP_HOST and SMTP_USER or SMTP_FROM are required when delivery is enabled")
		}
		if c.Delivery.Workers <= 0 || c.Delivery.QueueSize <= 0 {
			return fmt.Errorf("DELIVERY_WORKERS and DELIVERY_QUEUE_SIZE must be positive")
		}
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
		return n
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key))); err == nil {
		return b
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key))); err == nil {
		return d
	}
	return fallback
}

func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
