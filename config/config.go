// config/config.go
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// Core
	DatabaseURL    string   `env:"DATABASE_URL,required"`
	Port           int      `env:"PORT" envDefault:"5300"`
	ServiceToken   string   `env:"SERVICE_TOKEN,required"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	// Task economy
	StaleAfter            time.Duration `env:"STALE_AFTER" envDefault:"24h"`
	StaleBatchSize        int           `env:"STALE_BATCH_SIZE" envDefault:"10"`
	StaleDedicatedNetwork string        `env:"STALE_DEDICATED_NETWORK" envDefault:"TWITTER"`
	FollowLookupNetwork   string        `env:"FOLLOW_LOOKUP_NETWORK" envDefault:"TWITTER"`
	TargetLookupURL       string        `env:"TARGET_LOOKUP_URL"`

	// Sweep cadence
	ForcedCompletionInterval time.Duration `env:"FORCED_COMPLETION_INTERVAL" envDefault:"5m"`
	StaleSweepInterval       time.Duration `env:"STALE_SWEEP_INTERVAL" envDefault:"15m"`
	ReportSweepInterval      time.Duration `env:"REPORT_SWEEP_INTERVAL" envDefault:"10m"`
	DuplicateSweepInterval   time.Duration `env:"DUPLICATE_SWEEP_INTERVAL" envDefault:"30m"`
	NotifyBackfillInterval   time.Duration `env:"NOTIFY_BACKFILL_INTERVAL" envDefault:"10m"`

	// Identity provider / profile service
	IdentityURL    string `env:"IDENTITY_URL"`
	IdentityToken  string `env:"IDENTITY_TOKEN"`
	ProfileSyncURL string `env:"PROFILE_SYNC_URL"`

	// Notifications
	NotifyTransport    string        `env:"NOTIFY_TRANSPORT" envDefault:"log"` // log | kafka | ses
	NotifyMaxAttempts  int           `env:"NOTIFY_MAX_ATTEMPTS" envDefault:"3"`
	NotifyPollInterval time.Duration `env:"NOTIFY_POLL_INTERVAL" envDefault:"10s"`
	KafkaBrokers       []string      `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic         string        `env:"KAFKA_TOPIC" envDefault:"upvote-club.notifications"`
	SESFromEmail       string        `env:"SES_FROM_EMAIL"`
	AWSRegion          string        `env:"AWS_REGION" envDefault:"us-east-1"`

	// R2 sweep report archive
	CloudflareAccountID string `env:"CLOUDFLARE_ACCOUNT_ID"`
	R2AccessKeyID       string `env:"R2_ACCESS_KEY_ID"`
	R2AccessKeySecret   string `env:"R2_ACCESS_KEY_SECRET"`
	R2Bucket            string `env:"R2_BUCKET_NAME"`
	CDNBaseURL          string `env:"CDN_BASE_URL"`

	// Telegram operator alerts
	TelegramBotToken  string `env:"TELEGRAM_BOT_TOKEN"`
	AlertChatID       int64  `env:"ALERT_CHAT_ID"`
	AlertTopicSweep   int    `env:"ALERT_TOPIC_SWEEP"`
	AlertTopicNotify  int    `env:"ALERT_TOPIC_NOTIFY"`
	AlertTopicPayment int    `env:"ALERT_TOPIC_PAYMENT"`
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.NotifyTransport {
	case TransportLog, TransportKafka, TransportSES:
	default:
		return fmt.Errorf("NOTIFY_TRANSPORT must be one of log, kafka, ses (got %q)", c.NotifyTransport)
	}
	if c.NotifyTransport == TransportKafka && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when NOTIFY_TRANSPORT=kafka")
	}
	if c.NotifyTransport == TransportSES && c.SESFromEmail == "" {
		return fmt.Errorf("SES_FROM_EMAIL is required when NOTIFY_TRANSPORT=ses")
	}
	if c.StaleBatchSize <= 0 {
		return fmt.Errorf("STALE_BATCH_SIZE must be positive")
	}
	if c.NotifyMaxAttempts <= 0 {
		return fmt.Errorf("NOTIFY_MAX_ATTEMPTS must be positive")
	}
	return nil
}

// AllowedOriginsString joins origins the way fiber's cors config expects.
func (c *Config) AllowedOriginsString() string {
	origins := make([]string, 0, len(c.AllowedOrigins))
	for _, o := range c.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return strings.Join(origins, ",")
}

func (c *Config) R2Enabled() bool {
	return c.CloudflareAccountID != "" && c.R2AccessKeyID != "" && c.R2Bucket != ""
}

func (c *Config) AlertsEnabled() bool {
	return c.TelegramBotToken != "" && c.AlertChatID != 0
}
