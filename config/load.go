package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

func Load() App {
	// .env is optional; real env always wins.
	_ = godotenv.Load()

	cfg := App{
		Port:          getenv("APP_PORT", "8080"),
		DatabaseURL:   must("DATABASE_URL"),
		JWTSecret:     getenv("JWT_SECRET", "local_dev_secret"),
		CatalogPath:   getenv("CATALOG_PATH", "assets/books.json"),
		MediaDir:      getenv("MEDIA_DIR", "assets/uploads"),
		PaymentKey:    os.Getenv("PAYMENT_API_KEY"),
		Env:           getenv("APP_ENV", "dev"),
		AdminName:     getenv("ADMIN_NAME", "Library Admin"),
		AdminPhone:    os.Getenv("ADMIN_PHONE"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		slog.Error("required env missing", "key", k)
		panic("missing env " + k)
	}
	return v
}
