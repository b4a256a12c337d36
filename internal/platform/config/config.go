package config

import (
	"os"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	PostgresURL   string
	TemplateDir   string
	JWTSigningKey string
	LogLevel      string
}

// ShutdownTimeout bounds graceful shutdown on SIGINT/SIGTERM.
var ShutdownTimeout = 10 * time.Second

// FromEnv builds a Server config from environment variables so main stays lean.
// An empty CAPELA_POSTGRES_URL selects the in-memory store.
func FromEnv() Server {
	addr := os.Getenv("CAPELA_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	templateDir := os.Getenv("CAPELA_TEMPLATE_DIR")
	if templateDir == "" {
		templateDir = "assets/templates"
	}

	jwtSigningKey := os.Getenv("CAPELA_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:          addr,
		PostgresURL:   os.Getenv("CAPELA_POSTGRES_URL"),
		TemplateDir:   templateDir,
		JWTSigningKey: jwtSigningKey,
		LogLevel:      os.Getenv("CAPELA_LOG_LEVEL"),
	}
}
