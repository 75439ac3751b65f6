// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	auditlogfeature "github.com/dalemusser/mealhub/internal/app/features/auditlog"
	calendarsfeature "github.com/dalemusser/mealhub/internal/app/features/calendars"
	collectionsfeature "github.com/dalemusser/mealhub/internal/app/features/collections"
	errorsfeature "github.com/dalemusser/mealhub/internal/app/features/errors"
	grocerylistsfeature "github.com/dalemusser/mealhub/internal/app/features/grocerylists"
	groupsfeature "github.com/dalemusser/mealhub/internal/app/features/groups"
	healthfeature "github.com/dalemusser/mealhub/internal/app/features/health"
	mefeature "github.com/dalemusser/mealhub/internal/app/features/me"
	recipesfeature "github.com/dalemusser/mealhub/internal/app/features/recipes"
	sessionfeature "github.com/dalemusser/mealhub/internal/app/features/session"
	"github.com/dalemusser/mealhub/internal/app/services/grocery"
	"github.com/dalemusser/mealhub/internal/app/services/mealplan"
	"github.com/dalemusser/mealhub/internal/app/store/audit"
	"github.com/dalemusser/mealhub/internal/app/system/auditlog"
	"github.com/dalemusser/mealhub/internal/app/system/auth"
	"github.com/dalemusser/mealhub/internal/app/system/metrics"
	"github.com/dalemusser/mealhub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. The session middleware runs on every
// request so handlers can resolve the caller with auth.CurrentUser(r).
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase
	m := metrics.New()
	auditLogger := auditlog.New(audit.New(db), logger, auditlog.Config{
		Activity: appCfg.AuditLogActivity,
		Security: appCfg.AuditLogSecurity,
	})
	errLog := errorsfeature.NewErrorLogger(logger, auditLogger, m)

	engine := mealplan.NewEngine(db, logger, m)
	grocerySvc := grocery.NewService(db, logger, m)

	r := chi.NewRouter()
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	if appCfg.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler())
	}

	sessionHandler := sessionfeature.NewHandler(db, sessionMgr, appCfg.TrustLogin, errLog, auditLogger, logger)
	if appCfg.LoginRateLimit > 0 {
		sessionHandler.Limiter = ratelimit.New(appCfg.LoginRateLimit, time.Minute)
	}
	r.Mount("/session", sessionfeature.Routes(sessionHandler, sessionMgr))

	meHandler := mefeature.NewHandler(db, errLog, auditLogger, logger)
	r.Mount("/me", mefeature.Routes(meHandler, sessionMgr))

	groupsHandler := groupsfeature.NewHandler(db, errLog, auditLogger, logger)
	r.Mount("/groups", groupsfeature.Routes(groupsHandler, sessionMgr))

	recipesHandler := recipesfeature.NewHandler(db, errLog, auditLogger, logger)
	r.Mount("/recipes", recipesfeature.Routes(recipesHandler, sessionMgr))

	var genLimiter, buildLimiter *ratelimit.Limiter
	if appCfg.GenerateRateLimit > 0 {
		genLimiter = ratelimit.New(appCfg.GenerateRateLimit, time.Minute)
		buildLimiter = ratelimit.New(appCfg.GenerateRateLimit, time.Minute)
	}

	calendarsHandler := calendarsfeature.NewHandler(db, engine, errLog, auditLogger, logger)
	calendarsHandler.Limiter = genLimiter
	r.Mount("/calendars", calendarsfeature.Routes(calendarsHandler, sessionMgr))

	groceryHandler := grocerylistsfeature.NewHandler(db, grocerySvc, appCfg.GroceryDefaultCategory, errLog, auditLogger, logger)
	groceryHandler.Limiter = buildLimiter
	r.Mount("/grocery-lists", grocerylistsfeature.Routes(groceryHandler, sessionMgr))

	collectionsHandler := collectionsfeature.NewHandler(db, errLog, logger)
	r.Mount("/collections", collectionsfeature.Routes(collectionsHandler, sessionMgr))

	// Audit trail (admin only)
	auditHandler := auditlogfeature.NewHandler(db, errLog, logger)
	r.Mount("/audit", auditlogfeature.Routes(auditHandler, sessionMgr))

	return r, nil
}
