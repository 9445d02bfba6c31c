package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config contains server configuration parameters.
type Config struct {
	Addr       string `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	CORSOrigin string `env:"CORS_ORIGIN" envDefault:"*"`
	Database   Database
	Auth       Auth   `envPrefix:"AUTH_"`
	RedisURL   string `env:"REDIS_URL"`
	LLM        LLM    `envPrefix:"LLM_"`

	// DotEnvLoaded reports whether Load found a .env file. Callers log it
	// once the logger is configured.
	DotEnvLoaded bool
}

// Database holds either a full DSN or the discrete Supabase connection
// variables the dashboard hands out.
type Database struct {
	URL      string `env:"DATABASE_URL"`
	User     string `env:"user"`
	Password string `env:"password"`
	Host     string `env:"host"`
	Port     string `env:"port" envDefault:"5432"`
	Name     string `env:"dbname" envDefault:"postgres"`
}

// Auth contains token signing parameters.
type Auth struct {
	JWTSecret  string        `env:"JWT_SECRET"`
	AccessTTL  time.Duration `env:"ACCESS_TTL" envDefault:"1h"`
	RefreshTTL time.Duration `env:"REFRESH_TTL" envDefault:"720h"`
}

// LLM contains the chat-completion upstream parameters.
type LLM struct {
	BaseURL     string  `env:"BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	APIKey      string  `env:"API_KEY"`
	Model       string  `env:"MODEL" envDefault:"mixtral-8x7b-32768"`
	Temperature float64 `env:"TEMPERATURE" envDefault:"0.7"`
	MaxTokens   int     `env:"MAX_TOKENS" envDefault:"1000"`
}

// Load reads an optional .env file and parses the environment into Config.
func Load() (*Config, error) {
	loaded := godotenv.Load() == nil
	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	cfg.DotEnvLoaded = loaded
	return cfg, nil
}

// Parse builds Config from the current environment only.
func Parse() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	// Supabase projects export the signing secret under its own name.
	if cfg.Auth.JWTSecret == "" {
		if secret, err := env.ParseAs[supabaseSecret](); err == nil {
			cfg.Auth.JWTSecret = secret.Value
		}
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("failed to parse config: SUPABASE_JWT_SECRET or AUTH_JWT_SECRET is required")
	}
	return &cfg, nil
}

type supabaseSecret struct {
	Value string `env:"SUPABASE_JWT_SECRET"`
}

// DSN returns DATABASE_URL, or assembles one from the Supabase variables.
func (d Database) DSN() string {
	if strings.TrimSpace(d.URL) != "" {
		return strings.TrimSpace(d.URL)
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(strings.TrimSpace(d.User), strings.TrimSpace(d.Password)),
		Host:     strings.TrimSpace(d.Host) + ":" + strings.TrimSpace(d.Port),
		Path:     "/" + strings.TrimSpace(d.Name),
		RawQuery: "sslmode=require",
	}
	return u.String()
}
