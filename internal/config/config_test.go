package config

import (
	"log/slog"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_OWNER_ID", "42")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "123:abc", cfg.TelegramToken)
	assert.Equal(t, int64(42), cfg.OwnerID)
	assert.Equal(t, "daily_planner.db", cfg.DatabaseURL)
	assert.Equal(t, "America/Los_Angeles", cfg.Location.String())
	assert.Equal(t, 4, cfg.DayStartHour)
	assert.Equal(t, "08:00", cfg.MorningNudge)
	assert.Zero(t, cfg.ReportInterval)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_URL", "/data/planner.db")
	t.Setenv("PLANNER_TIMEZONE", "Europe/Berlin")
	t.Setenv("DAY_START_HOUR", "0")
	t.Setenv("MORNING_NUDGE", "off")
	t.Setenv("REPORT_INTERVAL_HOURS", "6")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/data/planner.db", cfg.DatabaseURL)
	assert.Equal(t, "Europe/Berlin", cfg.Location.String())
	assert.Equal(t, 0, cfg.DayStartHour)
	assert.Empty(t, cfg.MorningNudge)
	assert.Equal(t, 6*time.Hour, cfg.ReportInterval)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing token", env: map[string]string{"TELEGRAM_TOKEN": ""}},
		{name: "owner zero", env: map[string]string{"TELEGRAM_OWNER_ID": "0"}},
		{name: "owner not a number", env: map[string]string{"TELEGRAM_OWNER_ID": "me"}},
		{name: "unknown zone", env: map[string]string{"PLANNER_TIMEZONE": "Mars/Olympus"}},
		{name: "start hour too late", env: map[string]string{"DAY_START_HOUR": "12"}},
		{name: "negative start hour", env: map[string]string{"DAY_START_HOUR": "-1"}},
		{name: "bad nudge", env: map[string]string{"MORNING_NUDGE": "8am"}},
		{name: "negative interval", env: map[string]string{"REPORT_INTERVAL_HOURS": "-2"}},
		{name: "bad level", env: map[string]string{"LOG_LEVEL": "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
