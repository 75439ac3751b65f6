// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). Framework-level settings such
// as ports, TLS and log level live in WAFFLE's CoreConfig instead.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: mealhub-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// Issue sessions from an email alone (POST /session). Meant for local
	// development and trusted networks; leave off in production.
	TrustLogin bool

	// Sign-in attempts allowed per client IP per minute. Zero disables it.
	LoginRateLimit int

	// Audit logging: "all", "db", "log" or "off" per category
	AuditLogActivity string
	AuditLogSecurity string

	// Category stamped on items of generated grocery lists
	GroceryDefaultCategory string

	// Meal-plan generations and grocery list builds allowed per caller per
	// minute. Zero disables throttling.
	GenerateRateLimit int

	// Expose /metrics for Prometheus scraping
	MetricsEnabled bool
}
