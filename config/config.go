package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Addr        string   `env:"PROSPECTOR_ADDR" envDefault:":8081"`
	CORSOrigins []string `env:"PROSPECTOR_CORS_ORIGINS" envDefault:"http://localhost:3000,http://localhost"`

	Database  DatabaseConfig
	Apify     ApifyConfig
	Evolution EvolutionConfig
	Whatsmeow WhatsmeowConfig
	Campaign  CampaignConfig
	S3Config  *S3Config
}

type DatabaseConfig struct {
	Driver string `env:"PROSPECTOR_DB_DRIVER" envDefault:"sqlite"`
	DSN    string `env:"PROSPECTOR_DB_DSN" envDefault:"data/prospector.db"`
}

type ApifyConfig struct {
	BaseURL string        `env:"PROSPECTOR_APIFY_URL" envDefault:"https://api.apify.com/v2"`
	Token   string        `env:"PROSPECTOR_APIFY_TOKEN"`
	ActorID string        `env:"PROSPECTOR_APIFY_ACTOR" envDefault:"compass/crawler-google-places"`
	Timeout time.Duration `env:"PROSPECTOR_APIFY_TIMEOUT" envDefault:"120s"`
}

type EvolutionConfig struct {
	BaseURL  string `env:"PROSPECTOR_EVOLUTION_URL" envDefault:"http://evolution:8080"`
	Instance string `env:"PROSPECTOR_EVOLUTION_INSTANCE" envDefault:"main"`
	APIKey   string `env:"PROSPECTOR_EVOLUTION_KEY"`
}

type WhatsmeowConfig struct {
	SessionFile string `env:"PROSPECTOR_WHATSMEOW_SESSION" envDefault:"data/whatsapp.session.db"`
}

type CampaignConfig struct {
	// Messenger selects the delivery backend: "evolution" or "whatsmeow".
	Messenger string        `env:"PROSPECTOR_MESSENGER" envDefault:"evolution"`
	SendDelay time.Duration `env:"PROSPECTOR_SEND_DELAY" envDefault:"5s"`
	// TypingDelay is passed to the messenger as the "composing" time.
	TypingDelay time.Duration `env:"PROSPECTOR_TYPING_DELAY" envDefault:"2s"`
}

type S3Config struct {
	AccessKey  string `env:"PROSPECTOR_S3_ACCESS_KEY"`
	SecretKey  string `env:"PROSPECTOR_S3_SECRET_KEY"`
	Region     string `env:"PROSPECTOR_S3_REGION" envDefault:"us-east-1"`
	BucketName string `env:"PROSPECTOR_S3_BUCKET"`
	ServiceUrl string `env:"PROSPECTOR_S3_ENDPOINT" envDefault:"https://s3.amazonaws.com"`
	BucketUrl  string `env:"PROSPECTOR_S3_BUCKET_URL"`
}

// Enabled reports whether enough is configured to talk to a bucket.
func (c *S3Config) Enabled() bool {
	return c != nil && c.BucketName != "" && c.AccessKey != "" && c.SecretKey != ""
}

// NewConfig reads the server configuration from the environment.
func NewConfig() (*Config, error) {
	cfg := &Config{S3Config: &S3Config{}}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("error parsing environment: %w", err)
	}
	if cfg.S3Config.BucketUrl == "" && cfg.S3Config.BucketName != "" {
		cfg.S3Config.BucketUrl = fmt.Sprintf("https://%s.s3.amazonaws.com", cfg.S3Config.BucketName)
	}
	switch cfg.Campaign.Messenger {
	case "evolution", "whatsmeow":
	default:
		return nil, fmt.Errorf("unknown messenger %q", cfg.Campaign.Messenger)
	}
	return cfg, nil
}
