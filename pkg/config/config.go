// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Server, Postgres, Kafka, Redis, Dictionary, Search, etc.).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Dictionary sources understood by DictionaryConfig.Source.
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Config is the top-level application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Redis      RedisConfig      `yaml:"redis"`
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Search     SearchConfig     `yaml:"search"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`

	// RequestTimeout bounds handler work. It must stay below WriteTimeout so
	// a timed-out query can still send its error response.
	RequestTimeout time.Duration `yaml:"requestTimeout"`

	// RateLimit is the number of anagram queries a client may make per
	// minute. Zero disables throttling.
	RateLimit int `yaml:"rateLimit"`

	// TrustedProxies lists proxy IPs or CIDRs whose X-Forwarded-For header
	// names the client. Other peers are keyed by their own address.
	TrustedProxies []string `yaml:"trustedProxies"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings. An empty broker list
// disables dictionary reload notifications and query events.
type KafkaConfig struct {
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	DictionaryUpdates string `yaml:"dictionaryUpdates"`
	QueryEvents       string `yaml:"queryEvents"`
}

// Enabled reports whether any broker is configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// RedisConfig holds Redis connection and caching parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`

	// BreakerThreshold consecutive failures stop cache traffic for
	// BreakerCooldown.
	BreakerThreshold int           `yaml:"breakerThreshold"`
	BreakerCooldown  time.Duration `yaml:"breakerCooldown"`
}

// DictionaryConfig selects where the word list comes from.
type DictionaryConfig struct {
	Source string `yaml:"source"`
	// Path is the word file for the file source, one word per line.
	Path string `yaml:"path"`
	// Table is the table holding the words for the postgres source.
	Table string `yaml:"table"`
	// LoadAttempts bounds retries of the initial load.
	LoadAttempts int `yaml:"loadAttempts"`
}

// SearchConfig bounds anagram queries. Zero means unbounded.
type SearchConfig struct {
	MaxPartitions   int `yaml:"maxPartitions"`
	MaxSentences    int `yaml:"maxSentences"`
	MaxWords        int `yaml:"maxWords"`
	Workers         int `yaml:"workers"`
	MaxQueryLetters int `yaml:"maxQueryLetters"`
	DefaultLimit    int `yaml:"defaultLimit"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with defaults for any missing
// values, validated.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("server.requestTimeout %v must not be negative", c.Server.RequestTimeout))
	}
	if c.Server.WriteTimeout > 0 && c.Server.RequestTimeout >= c.Server.WriteTimeout {
		errs = append(errs, fmt.Errorf("server.requestTimeout %v must be below server.writeTimeout %v",
			c.Server.RequestTimeout, c.Server.WriteTimeout))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("server.rateLimit %d must not be negative", c.Server.RateLimit))
	}
	switch c.Dictionary.Source {
	case SourceFile:
		if c.Dictionary.Path == "" {
			errs = append(errs, errors.New("dictionary.path is required for the file source"))
		}
	case SourcePostgres:
		if c.Dictionary.Table == "" {
			errs = append(errs, errors.New("dictionary.table is required for the postgres source"))
		}
	default:
		errs = append(errs, fmt.Errorf("dictionary.source %q is not one of %q, %q", c.Dictionary.Source, SourceFile, SourcePostgres))
	}
	if c.Search.MaxPartitions < 0 || c.Search.MaxSentences < 0 || c.Search.MaxWords < 0 ||
		c.Search.Workers < 0 || c.Search.MaxQueryLetters < 0 || c.Search.DefaultLimit < 0 {
		errs = append(errs, errors.New("search limits must not be negative"))
	}
	if c.Search.MaxSentences > 0 && c.Search.DefaultLimit > c.Search.MaxSentences {
		errs = append(errs, fmt.Errorf("search.defaultLimit %d exceeds search.maxSentences %d", c.Search.DefaultLimit, c.Search.MaxSentences))
	}
	return errors.Join(errs...)
}

// defaultConfig returns a Config with defaults for local development.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RequestTimeout:  25 * time.Second,
			RateLimit:       600,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "anagrams",
			User:            "anagrams",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			ConsumerGroup: "anagrams-group",
			Topics: KafkaTopics{
				DictionaryUpdates: "dictionary-updates",
				QueryEvents:       "anagram-query-events",
			},
		},
		Redis: RedisConfig{
			Addr:             "localhost:6379",
			PoolSize:         10,
			CacheTTL:         10 * time.Minute,
			BreakerThreshold: 5,
			BreakerCooldown:  30 * time.Second,
		},
		Dictionary: DictionaryConfig{
			Source:       SourceFile,
			Path:         "data/words.txt",
			Table:        "dictionary_words",
			LoadAttempts: 5,
		},
		Search: SearchConfig{
			MaxPartitions:   100000,
			MaxSentences:    10000,
			MaxWords:        0,
			Workers:         1,
			MaxQueryLetters: 40,
			DefaultLimit:    1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads AG_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AG_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("AG_SERVER_RATE_LIMIT"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimit = limit
		}
	}
	if v := os.Getenv("AG_SERVER_TRUSTED_PROXIES"); v != "" {
		cfg.Server.TrustedProxies = strings.Split(v, ",")
	}
	if v := os.Getenv("AG_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("AG_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("AG_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("AG_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("AG_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("AG_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("AG_REDIS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Redis.Enabled = enabled
		}
	}
	if v := os.Getenv("AG_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("AG_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("AG_DICTIONARY_SOURCE"); v != "" {
		cfg.Dictionary.Source = v
	}
	if v := os.Getenv("AG_DICTIONARY_PATH"); v != "" {
		cfg.Dictionary.Path = v
	}
	if v := os.Getenv("AG_SEARCH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.Workers = n
		}
	}
	if v := os.Getenv("AG_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("AG_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
