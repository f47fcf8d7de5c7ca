package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Webhook.Path != "/webhook/lalamove" {
		t.Errorf("Webhook.Path = %q, want /webhook/lalamove", cfg.Webhook.Path)
	}
	if cfg.Web.Port != 3000 {
		t.Errorf("Web.Port = %d, want 3000", cfg.Web.Port)
	}
	if cfg.Provider.Timeout != 20*time.Second {
		t.Errorf("Provider.Timeout = %v, want 20s", cfg.Provider.Timeout)
	}
	if cfg.Snapshot.Driver != "file" {
		t.Errorf("Snapshot.Driver = %q, want file", cfg.Snapshot.Driver)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yelospot.yaml")
	data := []byte(`
mock_mode: true
provider:
  market: HK
  timeout: 5s
snapshot:
  driver: sqlite
  sqlite:
    path: /tmp/x.db
messaging:
  backend: kafka
  kafka:
    brokers: ["k1:9092", "k2:9092"]
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.MockMode {
		t.Error("MockMode should be true")
	}
	if cfg.Provider.Market != "HK" {
		t.Errorf("Market = %q, want HK", cfg.Provider.Market)
	}
	if cfg.Provider.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Provider.Timeout)
	}
	// Untouched values keep their defaults.
	if cfg.Provider.Host != "https://rest.sandbox.lalamove.com" {
		t.Errorf("Host = %q", cfg.Provider.Host)
	}
	if cfg.Snapshot.SQLite.Path != "/tmp/x.db" {
		t.Errorf("SQLite.Path = %q", cfg.Snapshot.SQLite.Path)
	}
	if len(cfg.Messaging.Kafka.Brokers) != 2 {
		t.Errorf("Brokers = %v", cfg.Messaging.Kafka.Brokers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("provider: [unclosed"), 0644)
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("LALAMOVE_HOST", "https://rest.lalamove.com")
	t.Setenv("LALAMOVE_API_KEY", "pk_test")
	t.Setenv("LALAMOVE_API_SECRET", "sk_test")
	t.Setenv("LALAMOVE_MARKET", "SG")
	t.Setenv("WEBHOOK_PATH", "/webhook/custom")
	t.Setenv("MOCK_MODE", "1")
	t.Setenv("PORT", "8088")
	t.Setenv("VERIFY_WEBHOOK", "true")

	cfg := Defaults()
	cfg.ApplyEnv()

	if cfg.Provider.Host != "https://rest.lalamove.com" {
		t.Errorf("Host = %q", cfg.Provider.Host)
	}
	if cfg.Provider.APIKey != "pk_test" || cfg.Provider.APISecret != "sk_test" {
		t.Errorf("credentials not applied: %q %q", cfg.Provider.APIKey, cfg.Provider.APISecret)
	}
	if cfg.Provider.Market != "SG" {
		t.Errorf("Market = %q", cfg.Provider.Market)
	}
	if cfg.Webhook.Path != "/webhook/custom" {
		t.Errorf("Webhook.Path = %q", cfg.Webhook.Path)
	}
	if !cfg.MockMode {
		t.Error("MockMode should be true")
	}
	if cfg.Web.Port != 8088 {
		t.Errorf("Port = %d", cfg.Web.Port)
	}
	if !cfg.Webhook.Verify {
		t.Error("Webhook.Verify should be true")
	}
}

func TestApplyEnvIgnoresBadPort(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	cfg := Defaults()
	cfg.ApplyEnv()
	if cfg.Web.Port != 3000 {
		t.Errorf("Port = %d, want default 3000", cfg.Web.Port)
	}
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.Snapshot.Driver = "mongo"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown snapshot driver")
	}

	cfg = Defaults()
	cfg.Messaging.Backend = "nats"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown messaging backend")
	}

	cfg = Defaults()
	cfg.Webhook.Path = "webhook"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for relative webhook path")
	}

	cfg = Defaults()
	cfg.Webhook.Verify = true
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for verification without a secret")
	}
	cfg.Provider.APISecret = "sk"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestWebhookSecretFallsBackToAPISecret(t *testing.T) {
	cfg := Defaults()
	cfg.Provider.APISecret = "sk"
	if got := cfg.WebhookSecret(); got != "sk" {
		t.Errorf("WebhookSecret = %q, want sk", got)
	}
	cfg.Webhook.Secret = "wh"
	if got := cfg.WebhookSecret(); got != "wh" {
		t.Errorf("WebhookSecret = %q, want wh", got)
	}
}
