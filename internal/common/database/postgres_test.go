package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostgresConfig_Strings(t *testing.T) {
	cfg := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "bookings", SSLMode: "disable"}

	assert.Equal(t, "host=db port=5432 user=u password=p dbname=bookings sslmode=disable", cfg.DSN())
	assert.Equal(t, "postgres://u:p@db:5432/bookings?sslmode=disable", cfg.DatabaseURL())
}
