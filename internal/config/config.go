package config

import (
	"fmt"
	"time"

	"github.com/holidaze/service-booking/internal/common/config"
	"github.com/holidaze/service-booking/internal/domain/availability"
)

// AvailabilityConfig controls how the availability engine reads calendars.
type AvailabilityConfig struct {
	MaxSpanDays int
	Location    *time.Location
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port               string
	AppEnv             string
	DBConfig           config.DatabaseConfig
	JWTConfig          config.JWTConfig
	KafkaConfig        config.KafkaConfig
	RedisConfig        config.RedisConfig
	Availability       AvailabilityConfig
	RateLimitPerMinute int
}

// Load reads configuration from BOOKING_* environment variables.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("BOOKING")
	if err != nil {
		return nil, err
	}
	v.SetDefault("SERVICE_PORT", "8082")
	v.SetDefault("DB_NAME", "holidaze_booking")
	v.SetDefault("AVAILABILITY_MAX_SPAN_DAYS", availability.DefaultMaxSpanDays)
	v.SetDefault("AVAILABILITY_TIMEZONE", "UTC")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 120)

	tz := v.GetString("AVAILABILITY_TIMEZONE")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid AVAILABILITY_TIMEZONE %q: %w", tz, err)
	}

	maxSpan := v.GetInt("AVAILABILITY_MAX_SPAN_DAYS")
	if maxSpan <= 0 {
		return nil, fmt.Errorf("AVAILABILITY_MAX_SPAN_DAYS must be positive, got %d", maxSpan)
	}

	return &ServiceConfig{
		Port:        config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:      config.GetAppEnv(v),
		DBConfig:    config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:   config.LoadJWTConfig(v),
		KafkaConfig: config.LoadKafkaConfig(v),
		RedisConfig: config.LoadRedisConfig(v),
		Availability: AvailabilityConfig{
			MaxSpanDays: maxSpan,
			Location:    loc,
		},
		RateLimitPerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
	}, nil
}
