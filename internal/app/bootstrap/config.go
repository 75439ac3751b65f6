// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for mealhub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: MEALHUB_MONGO_URI, MEALHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "mealhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "mealhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session cookie lifetime (e.g., 24h, 720h)"},
	{Name: "trust_login", Default: false, Desc: "Allow POST /session to sign in by email alone (development only)"},
	{Name: "login_rate_limit", Default: 10, Desc: "Sign-in attempts per client IP per minute (0 disables)"},

	// Audit logging settings
	{Name: "audit_log_activity", Default: "all", Desc: "Content event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_security", Default: "all", Desc: "Access denial logging: 'all' (db+log), 'db', 'log', or 'off'"},

	{Name: "grocery_default_category", Default: "Other", Desc: "Category stamped on items of generated grocery lists"},
	{Name: "generate_rate_limit", Default: 10, Desc: "Generations and grocery builds per caller per minute (0 disables)"},
	{Name: "metrics_enabled", Default: true, Desc: "Serve Prometheus metrics at /metrics"},
}

// auditModes are the accepted values for the audit_log_* keys.
var auditModes = map[string]bool{"all": true, "db": true, "log": true, "off": true}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// MEALHUB_* environment variables and flags with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "MEALHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:     appValues.String("session_key"),
		SessionName:    appValues.String("session_name"),
		SessionDomain:  appValues.String("session_domain"),
		SessionMaxAge:  appValues.Duration("session_max_age", 30*24*time.Hour),
		TrustLogin:     appValues.Bool("trust_login"),
		LoginRateLimit: appValues.Int("login_rate_limit"),

		AuditLogActivity: appValues.String("audit_log_activity"),
		AuditLogSecurity: appValues.String("audit_log_security"),

		GroceryDefaultCategory: appValues.String("grocery_default_category"),
		GenerateRateLimit:      appValues.Int("generate_rate_limit"),
		MetricsEnabled:         appValues.Bool("metrics_enabled"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// The MongoDB URI is checked here so a typo fails fast instead of at the
// first connection attempt.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database must not be empty")
	}
	if appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize {
		return fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)",
			appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize)
	}
	if !auditModes[appCfg.AuditLogActivity] {
		return fmt.Errorf("audit_log_activity must be one of all, db, log, off (got %q)", appCfg.AuditLogActivity)
	}
	if !auditModes[appCfg.AuditLogSecurity] {
		return fmt.Errorf("audit_log_security must be one of all, db, log, off (got %q)", appCfg.AuditLogSecurity)
	}
	if appCfg.GenerateRateLimit < 0 {
		return fmt.Errorf("generate_rate_limit must not be negative")
	}
	if appCfg.LoginRateLimit < 0 {
		return fmt.Errorf("login_rate_limit must not be negative")
	}
	if appCfg.SessionMaxAge <= 0 {
		return fmt.Errorf("session_max_age must be positive")
	}
	if appCfg.TrustLogin && coreCfg != nil && coreCfg.Env == "prod" {
		logger.Warn("trust_login is enabled in prod; anyone who knows an email can sign in")
	}
	return nil
}
