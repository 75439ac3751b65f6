// internal/app/features/calendars/handler.go
package calendars

import (
	"net/http"

	uierrors "github.com/dalemusser/mealhub/internal/app/features/errors"
	"github.com/dalemusser/mealhub/internal/app/services/mealplan"
	"github.com/dalemusser/mealhub/internal/app/system/auditlog"
	"github.com/dalemusser/mealhub/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const kind = "calendar"

type Handler struct {
	DB     *mongo.Database
	Engine *mealplan.Engine
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
	Audit  *auditlog.Logger

	// Limiter throttles the expensive write path per caller. Nil disables it.
	Limiter *ratelimit.Limiter
}

// NewHandler constructs a Calendars feature handler. engine generates meal
// plans; audit may be nil.
func NewHandler(db *mongo.Database, engine *mealplan.Engine, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Engine: engine,
		Log:    logger,
		ErrLog: errLog,
		Audit:  audit,
	}
}

func (h *Handler) throttle(next http.Handler) http.Handler {
	if h.Limiter == nil {
		return next
	}
	return h.Limiter.Middleware(ratelimit.UserOrIP)(next)
}
