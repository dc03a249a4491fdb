package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// DefaultRequestTimeout bounds API handlers when REQUEST_TIMEOUT is unset.
const DefaultRequestTimeout = 60 * time.Second

// writeSlack leaves room to write the timeout response before the server
// write deadline closes the connection.
const writeSlack = 5 * time.Second

type Config struct {
	AppName string
	Env     string
	Host    string
	Port    int

	RequestTimeout time.Duration

	StoreDriver string
	MongoURI    string
	MongoDB     string

	JWTSecret   string
	RequireAuth bool

	CORSOrigins      []string
	BlastConcurrency int

	RedisURL     string
	RedisChannel string

	LogLevel string
	Debug    bool
}

// Load reads configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and the environment, in increasing order of precedence.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		AppName: v.GetString("app_name"),
		Env:     v.GetString("app_env"),
		Host:    v.GetString("http_host"),
		Port:    v.GetInt("http_port"),

		RequestTimeout: v.GetDuration("request_timeout"),

		StoreDriver: strings.ToLower(v.GetString("store_driver")),
		MongoURI:    v.GetString("mongo_uri"),
		MongoDB:     v.GetString("mongo_db"),

		JWTSecret:   v.GetString("jwt_secret"),
		RequireAuth: v.GetBool("require_auth"),

		BlastConcurrency: v.GetInt("blast_concurrency"),

		RedisURL:     v.GetString("redis_url"),
		RedisChannel: v.GetString("redis_channel"),

		LogLevel: v.GetString("log_level"),
		Debug:    v.GetBool("debug"),
	}

	cors := v.GetString("cors_origins")
	if cors != "" {
		parts := strings.Split(cors, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		cfg.CORSOrigins = parts
	} else {
		cfg.CORSOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "runhub messaging API")
	v.SetDefault("app_env", "development")
	v.SetDefault("http_host", "0.0.0.0")
	v.SetDefault("http_port", 8000)
	v.SetDefault("request_timeout", DefaultRequestTimeout)
	v.SetDefault("store_driver", StoreMongo)
	v.SetDefault("mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("mongo_db", "runhub")
	v.SetDefault("require_auth", false)
	v.SetDefault("blast_concurrency", 8)
	v.SetDefault("redis_channel", "runhub:events")
	v.SetDefault("log_level", "info")
	v.SetDefault("debug", false)
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreMongo, StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.RequireAuth && c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required when REQUIRE_AUTH is set")
	}
	if c.RequestTimeout < time.Second {
		return fmt.Errorf("REQUEST_TIMEOUT must be at least 1s, got %s", c.RequestTimeout)
	}
	if c.BlastConcurrency < 1 {
		return fmt.Errorf("BLAST_CONCURRENCY must be at least 1, got %d", c.BlastConcurrency)
	}
	return nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// WriteTimeout is the server write deadline. It outlasts RequestTimeout so a
// handler that hits its timeout can still report it.
func (c *Config) WriteTimeout() time.Duration {
	return c.RequestTimeout + writeSlack
}
