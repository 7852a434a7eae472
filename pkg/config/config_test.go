package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/onu-almacen-api/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.DriverMemory, cfg.DB.Driver)
	assert.Equal(t, "AVAILABLE", cfg.Warehouse.InspectionApprovedState)
	assert.Equal(t, 5, cfg.Warehouse.DeletionSampleSize)
	assert.False(t, cfg.Warehouse.ReplacementRequiresInspection)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("REPLACEMENT_REQUIRES_INSPECTION", "true")
	t.Setenv("DELETION_SAMPLE_SIZE", "12")
	t.Setenv("IMPORT_MAX_ROWS", "no-numero")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "/tmp/x.db", cfg.DB.SQLitePath)
	assert.True(t, cfg.Warehouse.ReplacementRequiresInspection)
	assert.Equal(t, 12, cfg.Warehouse.DeletionSampleSize)
	assert.Equal(t, 5000, cfg.Warehouse.ImportMaxRows)
}

func TestLoad_DriverDesconocido(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "onu", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/onu?sslmode=disable", c.DSN())
}
