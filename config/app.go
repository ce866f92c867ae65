package config

type App struct {
	Port        string `env:"APP_PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	CatalogPath string `env:"CATALOG_PATH" default:"assets/books.json"`
	MediaDir    string `env:"MEDIA_DIR" default:"assets/uploads"`
	PaymentKey  string `env:"PAYMENT_API_KEY"`
	Env         string `env:"APP_ENV" default:"dev"`

	// Bootstrap librarian identity, provisioned idempotently at startup.
	AdminName     string `env:"ADMIN_NAME" default:"Library Admin"`
	AdminPhone    string `env:"ADMIN_PHONE"`
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}
