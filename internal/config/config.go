// internal/config/config.go
//
// Process configuration. Values come from the environment, optionally seeded
// from a .env file in the working directory.

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

type Config struct {
	Port     string `env:"PORT,default=5175"`
	LogLevel string `env:"LOG_LEVEL,default=info"`
	DBPath   string `env:"DB_PATH,default=./data/app.db"`

	ClientOrigin   string `env:"CLIENT_ORIGIN,default=http://localhost:5173"`
	JWTSecret      string `env:"JWT_SECRET,default=dev_secret_change_me"`
	JWTExpiresDays int    `env:"JWT_EXPIRES_DAYS,default=14"`
	CookieName     string `env:"COOKIE_NAME,default=solitaire_token"`
	DailySalt      string `env:"DAILY_SALT,default=local_dev_salt"`
	Env            string `env:"NODE_ENV"`

	// Idle live games are dropped from memory after SessionTTL.
	SessionTTL time.Duration `env:"SESSION_TTL,default=2h"`
}

// Load reads env files and decodes the environment into a Config. With no
// files it reads ./.env if there is one; named files must exist.
// Variables already set in the environment win over the files.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	} else if err := godotenv.Load(files...); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	var c Config
	if err := envdecode.StrictDecode(&c); err != nil {
		return nil, fmt.Errorf("decode env: %w", err)
	}
	return &c, nil
}

// Production reports whether cookies should be Secure / SameSite=None.
func (c *Config) Production() bool { return c.Env == "production" }

// Addr is the listen address for Port.
func (c *Config) Addr() string { return ":" + c.Port }

// JWTTTL is the token lifetime.
func (c *Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTExpiresDays) * 24 * time.Hour
}
