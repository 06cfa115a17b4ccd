// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// GRPCAddr is the address the gRPC server listens on (e.g. :8080).
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// DevEmail, when set, receives every outgoing email. Must be empty in production.
	DevEmail string `mapstructure:"DEV_EMAIL"`
	// DefaultFromEmail is the sender address for tenants without an SMTP email.
	DefaultFromEmail string `mapstructure:"DEFAULT_FROM_EMAIL"`
	// EmailSender names the transport used when an email config has none ("dummy" or "sendgrid").
	EmailSender string `mapstructure:"EMAIL_SENDER"`
	// SendGridAPIKey enables the SendGrid transport.
	SendGridAPIKey string `mapstructure:"SENDGRID_API_KEY"`
	// SendGridBaseURL overrides the SendGrid mail/send endpoint.
	SendGridBaseURL string `mapstructure:"SENDGRID_BASE_URL"`

	// AppleSharedSecret is the app-specific shared secret for legacy receipt verification.
	AppleSharedSecret string `mapstructure:"APPLE_SHARED_SECRET"`
	// AppleVerifyURL is the verifyReceipt endpoint (production or sandbox).
	AppleVerifyURL string `mapstructure:"APPLE_VERIFY_URL"`
	// AppleIssuerID, AppleKeyID and ApplePrivateKey enable the App Store Server API.
	// ApplePrivateKey is the PEM-encoded .p8 key or a path to it.
	AppleIssuerID   string `mapstructure:"APPLE_ISSUER_ID"`
	AppleKeyID      string `mapstructure:"APPLE_KEY_ID"`
	ApplePrivateKey string `mapstructure:"APPLE_PRIVATE_KEY"`
	AppleBundleID   string `mapstructure:"APPLE_BUNDLE_ID"`
	// AppleServerAPIURL is the App Store Server API base URL.
	AppleServerAPIURL string `mapstructure:"APPLE_SERVER_API_URL"`

	// OTelEndpoint is the OTLP gRPC collector endpoint; empty disables export.
	OTelEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTelInsecure disables TLS towards the collector.
	OTelInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// OTelServiceName is the service.name resource attribute.
	OTelServiceName string `mapstructure:"OTEL_SERVICE_NAME"`

	// KafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	// When empty, post notifications are sent inline by the server.
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// NotificationTopic is the Kafka topic for post notifications.
	NotificationTopic string `mapstructure:"NOTIFICATION_KAFKA_TOPIC"`
	// KafkaGroupID is the consumer group ID for the notification worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
	// NotifyConcurrency bounds the new-post pipelines run at once per post.
	NotifyConcurrency int `mapstructure:"NOTIFY_CONCURRENCY"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("GRPC_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("DEV_EMAIL", "")
	v.SetDefault("DEFAULT_FROM_EMAIL", "noreply@localhost")
	v.SetDefault("EMAIL_SENDER", "dummy")
	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("SENDGRID_BASE_URL", "https://api.sendgrid.com/v3/mail/send")
	v.SetDefault("APPLE_SHARED_SECRET", "")
	v.SetDefault("APPLE_VERIFY_URL", "https://buy.itunes.apple.com/verifyReceipt")
	v.SetDefault("APPLE_ISSUER_ID", "")
	v.SetDefault("APPLE_KEY_ID", "")
	v.SetDefault("APPLE_PRIVATE_KEY", "")
	v.SetDefault("APPLE_BUNDLE_ID", "")
	v.SetDefault("APPLE_SERVER_API_URL", "https://api.storekit.itunes.apple.com")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", true)
	v.SetDefault("OTEL_SERVICE_NAME", "content-commerce-backend")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("NOTIFICATION_KAFKA_TOPIC", "post-notifications")
	v.SetDefault("KAFKA_GROUP_ID", "post-notification-worker")
	v.SetDefault("NOTIFY_CONCURRENCY", 4)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.GRPCAddr == "" {
		return nil, errors.New("config: GRPC_ADDR must be set")
	}

	if cfg.DevEmail != "" && cfg.Env == "production" {
		return nil, errors.New("config: DEV_EMAIL must be empty when APP_ENV=production")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	switch cfg.EmailSender {
	case "dummy":
	case "sendgrid":
		if cfg.SendGridAPIKey == "" {
			return nil, errors.New("config: SENDGRID_API_KEY must be set when EMAIL_SENDER=sendgrid")
		}
	default:
		return nil, errors.New("config: EMAIL_SENDER must be dummy or sendgrid")
	}

	if cfg.NotifyConcurrency <= 0 {
		cfg.NotifyConcurrency = 4
	}

	return &cfg, nil
}

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// An empty list means post notifications are not published to Kafka.
func (c *Config) KafkaBrokersList() []string {
	if c == nil || c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// AppStoreServerAPIEnabled reports whether the App Store Server API credentials are complete.
func (c *Config) AppStoreServerAPIEnabled() bool {
	return c.AppleIssuerID != "" && c.AppleKeyID != "" && c.ApplePrivateKey != "" && c.AppleBundleID != ""
}
