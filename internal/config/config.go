package config // package config loads application configuration from environment variables

import (
	"crypto/sha256"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Required values are enforced by must(); the
// rest fall back to defaults that match the behaviour of the browser client
// the portal replaces.
type Config struct {
	Env    string // application environment (e.g. "dev", "prod")
	Port   string // HTTP port to listen on
	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	APIBaseURL string        // base URL of the remote booking API, e.g. http://api:8000/api
	APITimeout time.Duration // per-request timeout for remote calls

	SessionSecret string        // secret the token sealing key is derived from
	SessionCookie string        // name of the browser session cookie
	SessionTTL    time.Duration // lifetime of a portal session
	WizardTTL     time.Duration // idle lifetime of a reservation wizard

	SuccessRedirectPath  string        // where the browser goes after a booking
	SuccessRedirectDelay time.Duration // how long the success message stays visible
	LoginPath            string        // where the browser goes on 401

	Timezone    *time.Location // zone used to compare schedule dates
	CORSOrigins []string       // allowed browser origins
	LogLevel    string         // zap level name
	RabbitMQURL string         // empty disables reservation events
}

// Load reads an optional .env file and then the environment.  Missing
// required variables cause the program to exit with a fatal log message.
func Load() Config {
	// .env is a convenience for local runs; absence is not an error.
	_ = godotenv.Load()

	tz, err := time.LoadLocation(getenv("APP_TIMEZONE", "UTC"))
	if err != nil {
		log.Fatalf("invalid APP_TIMEZONE: %v", err)
	}

	return Config{
		Env:    must("APP_ENV"),
		Port:   must("APP_PORT"),
		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"), // empty allowed
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		APIBaseURL: strings.TrimRight(must("API_BASE_URL"), "/"),
		APITimeout: parseDur(getenv("API_TIMEOUT", "10s")),

		SessionSecret: must("SESSION_SECRET"),
		SessionCookie: getenv("SESSION_COOKIE", "portal_session"),
		SessionTTL:    parseDur(getenv("SESSION_TTL", "168h")),
		WizardTTL:     parseDur(getenv("WIZARD_TTL", "30m")),

		SuccessRedirectPath:  getenv("SUCCESS_REDIRECT_PATH", "/dashboard"),
		SuccessRedirectDelay: parseDur(getenv("SUCCESS_REDIRECT_DELAY", "2s")),
		LoginPath:            getenv("LOGIN_PATH", "/login"),

		Timezone:    tz,
		CORSOrigins: splitList(getenv("CORS_ORIGINS", "http://localhost:3000")),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		RabbitMQURL: os.Getenv("RABBITMQ_URL"),
	}
}

// SealingKey derives the 32-byte secretbox key from SessionSecret.
func (c Config) SealingKey() [32]byte {
	return sha256.Sum256([]byte(c.SessionSecret))
}

// IsProduction reports whether the portal runs with APP_ENV=prod.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "prod") || strings.EqualFold(c.Env, "production")
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
