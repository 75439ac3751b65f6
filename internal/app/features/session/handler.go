// internal/app/features/session/handler.go
package session

import (
	"net/http"

	uierrors "github.com/dalemusser/mealhub/internal/app/features/errors"
	"github.com/dalemusser/mealhub/internal/app/system/auditlog"
	"github.com/dalemusser/mealhub/internal/app/system/auth"
	"github.com/dalemusser/mealhub/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB         *mongo.Database
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	Audit      *auditlog.Logger

	// TrustLogin enables sign-in by email alone. When false POST /session
	// answers 404 as if the route did not exist.
	TrustLogin bool

	// Limiter throttles sign-in attempts per client IP. Nil disables it.
	Limiter *ratelimit.Limiter
}

func NewHandler(db *mongo.Database, sm *auth.SessionManager, trustLogin bool, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		SessionMgr: sm,
		Log:        logger,
		ErrLog:     errLog,
		Audit:      audit,
		TrustLogin: trustLogin,
	}
}

func (h *Handler) throttle(next http.Handler) http.Handler {
	if h.Limiter == nil {
		return next
	}
	return h.Limiter.Middleware(loginKey)(next)
}

func loginKey(r *http.Request) string {
	return "login:" + ratelimit.ClientIP(r)
}
