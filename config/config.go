package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Provider  ProviderConfig  `yaml:"provider"`
	MockMode  bool            `yaml:"mock_mode"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Web       WebConfig       `yaml:"web"`
	Snapshot  SnapshotConfig  `yaml:"snapshot"`
	Relay     RelayConfig     `yaml:"relay"`
	Messaging MessagingConfig `yaml:"messaging"`
}

type ProviderConfig struct {
	Host      string        `yaml:"host"`
	APIKey    string        `yaml:"api_key"`
	APISecret string        `yaml:"api_secret"`
	Market    string        `yaml:"market"`
	Timeout   time.Duration `yaml:"timeout"`
	// EnrichTimeout bounds the driver-location pull that follows a webhook.
	EnrichTimeout time.Duration `yaml:"enrich_timeout"`
}

type WebhookConfig struct {
	Path            string `yaml:"path"`
	Verify          bool   `yaml:"verify"`
	Secret          string `yaml:"secret"`
	SignatureHeader string `yaml:"signature_header"`
	MaxBodyBytes    int64  `yaml:"max_body_bytes"`
}

type WebConfig struct {
	Host              string `yaml:"host"`
	Port              int    `yaml:"port"`
	SessionSecret     string `yaml:"session_secret"`
	AdminUser         string `yaml:"admin_user"`
	AdminPasswordHash string `yaml:"admin_password_hash"`
}

type SnapshotConfig struct {
	Driver   string         `yaml:"driver"`
	File     FileConfig     `yaml:"file"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
}

type FileConfig struct {
	Path string `yaml:"path"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

type RelayConfig struct {
	SubscriberBuffer  int           `yaml:"subscriber_buffer"`
	KeepaliveInterval time.Duration `yaml:"keepalive_interval"`
}

type MessagingConfig struct {
	Backend     string      `yaml:"backend"`
	Kafka       KafkaConfig `yaml:"kafka"`
	MQTT        MQTTConfig  `yaml:"mqtt"`
	EventsTopic string      `yaml:"events_topic"`
	Source      string      `yaml:"source"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
}

type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Port     int    `yaml:"port"`
	ClientID string `yaml:"client_id"`
}

func Defaults() *Config {
	return &Config{
		Provider: ProviderConfig{
			Host:          "https://rest.sandbox.lalamove.com",
			Market:        "PH",
			Timeout:       20 * time.Second,
			EnrichTimeout: 5 * time.Second,
		},
		Webhook: WebhookConfig{
			Path:            "/webhook/lalamove",
			SignatureHeader: "X-Webhook-Signature",
			MaxBodyBytes:    2 << 20,
		},
		Web: WebConfig{
			Host:          "0.0.0.0",
			Port:          3000,
			SessionSecret: "change-me-in-production",
			AdminUser:     "admin",
		},
		Snapshot: SnapshotConfig{
			Driver: "file",
			File:   FileConfig{Path: "data/orders.json"},
			SQLite: SQLiteConfig{Path: "yelospot.db"},
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "yelospot",
				User:     "yelospot",
				SSLMode:  "disable",
			},
			Redis: RedisConfig{
				Address: "localhost:6379",
				Key:     "yelospot:orders",
			},
		},
		Relay: RelayConfig{
			SubscriberBuffer:  64,
			KeepaliveInterval: 30 * time.Second,
		},
		Messaging: MessagingConfig{
			Backend: "none",
			Kafka: KafkaConfig{
				Brokers: []string{"localhost:9092"},
			},
			MQTT: MQTTConfig{
				Broker:   "localhost",
				Port:     1883,
				ClientID: "yelospot",
			},
			EventsTopic: "yelospot.events",
			Source:      "yelospot",
		},
	}
}

// Load reads a YAML config file on top of Defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays the recognised environment variables.
func (c *Config) ApplyEnv() {
	c.Provider.Host = envOr("LALAMOVE_HOST", c.Provider.Host)
	c.Provider.APIKey = envOr("LALAMOVE_API_KEY", c.Provider.APIKey)
	c.Provider.APISecret = envOr("LALAMOVE_API_SECRET", c.Provider.APISecret)
	c.Provider.Market = envOr("LALAMOVE_MARKET", c.Provider.Market)
	c.Webhook.Path = envOr("WEBHOOK_PATH", c.Webhook.Path)
	c.Webhook.Secret = envOr("WEBHOOK_SECRET", c.Webhook.Secret)
	c.MockMode = envBool("MOCK_MODE", c.MockMode)
	c.Webhook.Verify = envBool("VERIFY_WEBHOOK", c.Webhook.Verify)
	c.Web.Port = envInt("PORT", c.Web.Port)
	c.Snapshot.Driver = envOr("SNAPSHOT_DRIVER", c.Snapshot.Driver)
	c.Snapshot.File.Path = envOr("DATA_PATH", c.Snapshot.File.Path)
	c.Snapshot.Redis.Address = envOr("REDIS_ADDR", c.Snapshot.Redis.Address)
	c.Messaging.Backend = envOr("MESSAGING_BACKEND", c.Messaging.Backend)
}

func (c *Config) Validate() error {
	switch c.Snapshot.Driver {
	case "file", "sqlite", "postgres", "redis":
	default:
		return fmt.Errorf("unsupported snapshot driver: %s", c.Snapshot.Driver)
	}
	switch c.Messaging.Backend {
	case "", "none", "kafka", "mqtt":
	default:
		return fmt.Errorf("unsupported messaging backend: %s", c.Messaging.Backend)
	}
	if !strings.HasPrefix(c.Webhook.Path, "/") {
		return fmt.Errorf("webhook path must start with /: %q", c.Webhook.Path)
	}
	if c.Webhook.Verify && c.WebhookSecret() == "" {
		return fmt.Errorf("webhook verification enabled but no secret configured")
	}
	return nil
}

// WebhookSecret returns the key used to verify inbound webhooks.
func (c *Config) WebhookSecret() string {
	if c.Webhook.Secret != "" {
		return c.Webhook.Secret
	}
	return c.Provider.APISecret
}

func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Web.Host, c.Web.Port)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
