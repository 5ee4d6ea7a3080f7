// Package config loads service configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port    string `env:"STREAMSLOT_PORT" envDefault:"8080"`
	DBPath  string `env:"STREAMSLOT_DB_PATH" envDefault:"streamslot.db"`
	BaseURL string `env:"STREAMSLOT_BASE_URL" envDefault:"http://localhost:8080"`

	LogLevel  string `env:"STREAMSLOT_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"STREAMSLOT_LOG_FORMAT" envDefault:"text"`

	// Google Calendar OAuth client. Sync is disabled per user until they
	// connect; these only need to be set for the connect flow to work.
	GoogleClientID     string `env:"STREAMSLOT_GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"STREAMSLOT_GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"STREAMSLOT_GOOGLE_REDIRECT_URL"`

	// Postmark email delivery.
	PostmarkToken string `env:"STREAMSLOT_POSTMARK_TOKEN"`
	EmailFrom     string `env:"STREAMSLOT_EMAIL_FROM"`

	// Twilio SMS delivery.
	TwilioAccountSID string `env:"STREAMSLOT_TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `env:"STREAMSLOT_TWILIO_AUTH_TOKEN"`
	TwilioFromNumber string `env:"STREAMSLOT_TWILIO_FROM_NUMBER"`

	// Web push VAPID keys. Push is skipped entirely when unset.
	VAPIDPublicKey  string `env:"STREAMSLOT_VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `env:"STREAMSLOT_VAPID_PRIVATE_KEY"`
	VAPIDSubscriber string `env:"STREAMSLOT_VAPID_SUBSCRIBER"`
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
