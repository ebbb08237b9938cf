package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	API           APIConfig          `yaml:"api"`
	Notifications NotificationConfig `yaml:"notifications"`
	RabbitMQ      RabbitMQConfig     `yaml:"rabbitmq"`
	LogLevel      string             `yaml:"log_level" validate:"oneof=debug info warn error"`
}

// APIConfig points the gateway at the BrandPulse backend. BaseURL is the
// server root; the gateway appends /api itself.
type APIConfig struct {
	BaseURL string        `yaml:"base_url" validate:"required,url"`
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
	Retry   RetryConfig   `yaml:"retry"`
	Breaker BreakerConfig `yaml:"breaker"`
}

// RetryConfig applies to idempotent reads only.
type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts" validate:"gte=1"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
}

type BreakerConfig struct {
	Enabled          bool          `yaml:"enabled"`
	MaxRequests      uint32        `yaml:"max_requests"`
	Interval         time.Duration `yaml:"interval"`
	Timeout          time.Duration `yaml:"timeout"`
	FailureThreshold float64       `yaml:"failure_threshold" validate:"gte=0,lte=1"`
	MinRequests      uint32        `yaml:"min_requests"`
}

type NotificationConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	MaxActive     int           `yaml:"max_active" validate:"gte=1"`
	SweepInterval time.Duration `yaml:"sweep_interval" validate:"gt=0"`
}

// RabbitMQConfig enables the notification publisher when URL is set.
type RabbitMQConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	QueueName  string `yaml:"queue_name"`
}

func (r RabbitMQConfig) Enabled() bool {
	return r.URL != ""
}

// Load reads the YAML file at path. A missing file is not an error: the
// defaults plus BRANDPULSE_BACKEND_URL are enough to run.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg.applyEnv()
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("BRANDPULSE_BACKEND_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("BRANDPULSE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) setDefaults() {
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://localhost:8000"
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = 30 * time.Second
	}
	if c.API.Retry.MaxAttempts == 0 {
		c.API.Retry.MaxAttempts = 1
	}
	if c.API.Retry.InitialBackoff == 0 {
		c.API.Retry.InitialBackoff = 500 * time.Millisecond
	}
	if c.API.Retry.MaxBackoff == 0 {
		c.API.Retry.MaxBackoff = 5 * time.Second
	}
	if c.API.Breaker.MaxRequests == 0 {
		c.API.Breaker.MaxRequests = 1
	}
	if c.API.Breaker.Interval == 0 {
		c.API.Breaker.Interval = 30 * time.Second
	}
	if c.API.Breaker.Timeout == 0 {
		c.API.Breaker.Timeout = 60 * time.Second
	}
	if c.API.Breaker.FailureThreshold == 0 {
		c.API.Breaker.FailureThreshold = 0.8
	}
	if c.API.Breaker.MinRequests == 0 {
		c.API.Breaker.MinRequests = 5
	}
	if c.Notifications.TTL == 0 {
		c.Notifications.TTL = 4 * time.Second
	}
	if c.Notifications.MaxActive == 0 {
		c.Notifications.MaxActive = 5
	}
	if c.Notifications.SweepInterval == 0 {
		c.Notifications.SweepInterval = time.Second
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "brandpulse"
	}
	if c.RabbitMQ.RoutingKey == "" {
		c.RabbitMQ.RoutingKey = "notifications"
	}
	if c.RabbitMQ.QueueName == "" {
		c.RabbitMQ.QueueName = "brandpulse_notifications"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

var validate = validator.New()

// Validate checks field constraints and reports every violation at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validate config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.ActualTag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
