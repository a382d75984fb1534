package datafeed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseConfigFromEnv(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_PASSWORD", "s3cret")
	t.Setenv("DB_NAME", "")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_SSLMODE", "")

	cfg := DatabaseConfigFromEnv()

	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, "5432", cfg.Port)
	assert.Equal(t, "squeezescope", cfg.DBName)
	assert.Equal(t,
		"host=db.internal port=5432 user=postgres password=s3cret dbname=squeezescope sslmode=disable",
		cfg.DSN())
}

func TestHealthCheck_NilDB(t *testing.T) {
	assert.Error(t, HealthCheck(context.Background(), nil))
}
