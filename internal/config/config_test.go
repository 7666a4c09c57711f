package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8082", cfg.Port)
	assert.Equal(t, "holidaze_booking", cfg.DBConfig.DBName)
	assert.Equal(t, 365, cfg.Availability.MaxSpanDays)
	assert.Equal(t, "UTC", cfg.Availability.Location.String())
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("BOOKING_AVAILABILITY_TIMEZONE", "Europe/Oslo")
	t.Setenv("BOOKING_AVAILABILITY_MAX_SPAN_DAYS", "90")
	t.Setenv("BOOKING_KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Europe/Oslo", cfg.Availability.Location.String())
	assert.Equal(t, 90, cfg.Availability.MaxSpanDays)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaConfig.Brokers)
}

func TestLoad_InvalidTimezone(t *testing.T) {
	t.Setenv("BOOKING_AVAILABILITY_TIMEZONE", "Mars/Olympus")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_NonPositiveSpan(t *testing.T) {
	t.Setenv("BOOKING_AVAILABILITY_MAX_SPAN_DAYS", "0")

	_, err := Load()
	assert.Error(t, err)
}
