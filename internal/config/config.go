package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	Port              string        `mapstructure:"PORT"`
	Env               string        `mapstructure:"ENV"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	CORSOrigins       []string      `mapstructure:"CORS_ORIGINS"`
	SeedFile          string        `mapstructure:"SEED_FILE"`
	ShiftTimezone     string        `mapstructure:"SHIFT_TIMEZONE"`
	AssistantRandSeed int64         `mapstructure:"ASSISTANT_RAND_SEED"`
	SpeechEnabled     bool          `mapstructure:"SPEECH_ENABLED"`
	SpeechLanguage    string        `mapstructure:"SPEECH_LANGUAGE"`
	ClockTick         time.Duration `mapstructure:"CLOCK_TICK"`
	BodyLimit         string        `mapstructure:"BODY_LIMIT"`
	RequestTimeout    time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	RateLimitRPS      float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst    int           `mapstructure:"RATE_LIMIT_BURST"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL", "CORS_ORIGINS", "SEED_FILE", "SHIFT_TIMEZONE",
	"ASSISTANT_RAND_SEED", "SPEECH_ENABLED", "SPEECH_LANGUAGE", "CLOCK_TICK",
	"BODY_LIMIT", "REQUEST_TIMEOUT", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("SHIFT_TIMEZONE", "Local")
	v.SetDefault("ASSISTANT_RAND_SEED", 0)
	v.SetDefault("SPEECH_ENABLED", false)
	v.SetDefault("SPEECH_LANGUAGE", "en-US")
	v.SetDefault("CLOCK_TICK", "1s")
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(strings.Join(cfg.CORSOrigins, ","))

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Location resolves SHIFT_TIMEZONE. "Local" and "" mean the server's zone.
func (c *Config) Location() (*time.Location, error) {
	if c.ShiftTimezone == "" || c.ShiftTimezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.ShiftTimezone)
	if err != nil {
		return nil, fmt.Errorf("SHIFT_TIMEZONE %q: %w", c.ShiftTimezone, err)
	}
	return loc, nil
}

// Level parses LOG_LEVEL, falling back to info for an empty value.
func (c *Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return lvl, nil
}

// Validate checks that the configuration is usable before anything starts.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.ClockTick <= 0 {
		return fmt.Errorf("CLOCK_TICK must be positive, got %s", c.ClockTick)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.IsProduction() {
		for _, o := range c.CORSOrigins {
			if o == "*" {
				return fmt.Errorf("CORS_ORIGINS must not be \"*\" in production")
			}
		}
	}
	return nil
}
