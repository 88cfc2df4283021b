package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.ShiftTimezone != "Local" {
		t.Errorf("expected Local time zone, got %s", cfg.ShiftTimezone)
	}
	if cfg.ClockTick != time.Second {
		t.Errorf("expected 1s clock tick, got %s", cfg.ClockTick)
	}
	if cfg.SpeechEnabled {
		t.Error("expected speech disabled by default")
	}
	if cfg.AssistantRandSeed != 0 {
		t.Errorf("expected time-seeded assistant, got seed %d", cfg.AssistantRandSeed)
	}
	if cfg.RateLimitRPS != 20 || cfg.RateLimitBurst != 40 {
		t.Errorf("unexpected rate limit defaults %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SHIFT_TIMEZONE", "America/Chicago")
	t.Setenv("CLOCK_TICK", "250ms")
	t.Setenv("SPEECH_ENABLED", "true")
	t.Setenv("ASSISTANT_RAND_SEED", "42")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" || cfg.ClockTick != 250*time.Millisecond || !cfg.SpeechEnabled || cfg.AssistantRandSeed != 42 {
		t.Errorf("env not applied: %+v", cfg)
	}
	if diff := cmp.Diff([]string{"http://a.test", "http://b.test"}, cfg.CORSOrigins); diff != "" {
		t.Errorf("CORS origins (-want +got):\n%s", diff)
	}
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.String() != "America/Chicago" {
		t.Errorf("location = %s", loc)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		Port: "8080", Env: "development", LogLevel: "info", ShiftTimezone: "UTC",
		ClockTick: time.Second, RequestTimeout: time.Second, RateLimitRPS: 1, RateLimitBurst: 1,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing port", func(c *Config) { c.Port = "" }},
		{"unknown zone", func(c *Config) { c.ShiftTimezone = "Mars/Olympus" }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"zero tick", func(c *Config) { c.ClockTick = 0 }},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"zero rate", func(c *Config) { c.RateLimitRPS = 0 }},
		{"wildcard cors in production", func(c *Config) { c.Env = "production"; c.CORSOrigins = []string{"*"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLevel(t *testing.T) {
	c := Config{LogLevel: "DEBUG"}
	lvl, err := c.Level()
	if err != nil || lvl != zerolog.DebugLevel {
		t.Errorf("Level() = %v, %v", lvl, err)
	}
	c.LogLevel = ""
	if lvl, _ := c.Level(); lvl != zerolog.InfoLevel {
		t.Errorf("empty level = %v, want info", lvl)
	}
}

func TestIsDev(t *testing.T) {
	if !(&Config{Env: "development"}).IsDev() {
		t.Error("expected IsDev")
	}
	if !(&Config{Env: "production"}).IsProduction() {
		t.Error("expected IsProduction")
	}
}
