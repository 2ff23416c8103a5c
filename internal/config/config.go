// Package config loads runtime configuration from the environment, with
// an optional .env file for development.
package config

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting. All fields have defaults except
// the mail settings, which leave notifications disabled when unset.
type Config struct {
	Addr      string `env:"ADDR,default=:8080"`
	DBPath    string `env:"DB_PATH,default=carenshare.sqlite3"`
	UploadDir string `env:"UPLOAD_DIR,default=uploads"`
	LogPath   string `env:"LOG_PATH"`

	// JWTSecret overrides the secret persisted in the database. Leave
	// empty to let the server generate and store one on first run.
	JWTSecret string `env:"JWT_SECRET"`

	// BaseURL is the public URL used in email links.
	BaseURL string `env:"APP_BASE_URL,default=http://localhost:8080"`

	SendGridKey  string `env:"SENDGRID_API_KEY"`
	MailFrom     string `env:"MAIL_FROM"`
	MailFromName string `env:"MAIL_FROM_NAME,default=CareNShare"`

	// AdminEmail is the account auto-created on an empty database.
	AdminEmail string `env:"ADMIN_EMAIL,default=admin@carenshare.local"`

	PasswordResetTTL time.Duration `env:"PASSWORD_RESET_TTL,default=15m"`
}

// Load reads configuration from a .env file (if present) and the
// environment.
func Load() (*Config, error) {
	// A missing .env file is not an error; the environment may carry
	// everything.
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}
