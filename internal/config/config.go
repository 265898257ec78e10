package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"day-planner/internal/service"
)

// Config keeps runtime settings for the bot.
type Config struct {
	TelegramToken       string     `env:"TELEGRAM_TOKEN,required,notEmpty"`
	OwnerID             int64      `env:"TELEGRAM_OWNER_ID,required"`
	DatabaseURL         string     `env:"DATABASE_URL" envDefault:"daily_planner.db"`
	Timezone            string     `env:"PLANNER_TIMEZONE" envDefault:"America/Los_Angeles"`
	DayStartHour        int        `env:"DAY_START_HOUR" envDefault:"4"`
	MorningNudge        string     `env:"MORNING_NUDGE" envDefault:"08:00"`
	ReportIntervalHours int        `env:"REPORT_INTERVAL_HOURS" envDefault:"0"`
	LogLevel            slog.Level `env:"LOG_LEVEL" envDefault:"info"`

	// Derived by Load.
	Location       *time.Location `env:"-"`
	ReportInterval time.Duration  `env:"-"`
}

// Load reads configuration from environment variables and validates it.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	cfg.Timezone = strings.TrimSpace(cfg.Timezone)
	cfg.Location, err = time.LoadLocation(cfg.Timezone)
	if err != nil {
		return cfg, fmt.Errorf("PLANNER_TIMEZONE %q: %w", cfg.Timezone, err)
	}

	if cfg.DayStartHour < 0 || cfg.DayStartHour > 11 {
		return cfg, fmt.Errorf("DAY_START_HOUR must be 0..11, got %d", cfg.DayStartHour)
	}

	cfg.MorningNudge = strings.TrimSpace(cfg.MorningNudge)
	if strings.EqualFold(cfg.MorningNudge, "off") {
		cfg.MorningNudge = ""
	}
	if cfg.MorningNudge != "" {
		if _, _, err := service.ParseClock(cfg.MorningNudge); err != nil {
			return cfg, fmt.Errorf("MORNING_NUDGE: %w", err)
		}
	}

	if cfg.ReportIntervalHours < 0 {
		return cfg, fmt.Errorf("REPORT_INTERVAL_HOURS must not be negative, got %d", cfg.ReportIntervalHours)
	}
	cfg.ReportInterval = time.Duration(cfg.ReportIntervalHours) * time.Hour

	if cfg.OwnerID == 0 {
		return cfg, fmt.Errorf("TELEGRAM_OWNER_ID is required")
	}

	return cfg, nil
}
