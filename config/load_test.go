package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/library")

	cfg := Load()
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "postgres://localhost/library", cfg.DatabaseURL)
	require.Equal(t, "assets/books.json", cfg.CatalogPath)
	require.Equal(t, "dev", cfg.Env)
}

func TestLoad_EnvWins(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/library")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("CATALOG_PATH", "/data/books.json")

	cfg := Load()
	require.Equal(t, "9000", cfg.Port)
	require.Equal(t, "/data/books.json", cfg.CatalogPath)
}

func TestLoad_MissingRequiredPanics(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	require.Panics(t, func() { Load() })
}
