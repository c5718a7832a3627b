package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Amadeus  AmadeusConfig  `yaml:"amadeus"`
	Twilio   TwilioConfig   `yaml:"twilio"`
	Postmark PostmarkConfig `yaml:"postmark"`
	Tracking TrackingConfig `yaml:"tracking"`
	Booking  BookingConfig  `yaml:"booking"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type AmadeusConfig struct {
	BaseURL            string `yaml:"base_url"`
	AuthURL            string `yaml:"auth_url"`
	APIKey             string `yaml:"api_key"`
	APISecret          string `yaml:"api_secret"`
	RequestTimeoutSecs int    `yaml:"request_timeout_seconds"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type PostmarkConfig struct {
	ServerToken string `yaml:"server_token"`
	FromAddress string `yaml:"from_address"`
}

type TrackingConfig struct {
	PollIntervalSecs   int `yaml:"poll_interval_seconds"`
	StatusCacheTTLSecs int `yaml:"status_cache_ttl_seconds"`
}

type BookingConfig struct {
	OffersCacheTTLSecs int `yaml:"offers_cache_ttl_seconds"`
	HoldTTLMinutes     int `yaml:"hold_ttl_minutes"`
}

type WorkerConfig struct {
	ExpirationSweepMinutes int `yaml:"expiration_sweep_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Amadeus.BaseURL == "" {
		c.Amadeus.BaseURL = "https://test.api.amadeus.com"
	}
	if c.Amadeus.AuthURL == "" {
		c.Amadeus.AuthURL = c.Amadeus.BaseURL + "/v1/security/oauth2/token"
	}
	if c.Amadeus.RequestTimeoutSecs <= 0 {
		c.Amadeus.RequestTimeoutSecs = 15
	}
	if c.Tracking.PollIntervalSecs <= 0 {
		c.Tracking.PollIntervalSecs = 600
	}
	if c.Tracking.StatusCacheTTLSecs <= 0 {
		c.Tracking.StatusCacheTTLSecs = 30
	}
	if c.Booking.OffersCacheTTLSecs <= 0 {
		c.Booking.OffersCacheTTLSecs = 60
	}
	if c.Booking.HoldTTLMinutes <= 0 {
		c.Booking.HoldTTLMinutes = 15
	}
	if c.Worker.ExpirationSweepMinutes <= 0 {
		c.Worker.ExpirationSweepMinutes = 5
	}
}
