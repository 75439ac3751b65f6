// internal/app/features/grocerylists/handler.go
package grocerylists

import (
	"net/http"

	uierrors "github.com/dalemusser/mealhub/internal/app/features/errors"
	"github.com/dalemusser/mealhub/internal/app/services/grocery"
	"github.com/dalemusser/mealhub/internal/app/system/auditlog"
	"github.com/dalemusser/mealhub/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const kind = "grocery_list"

type Handler struct {
	DB      *mongo.Database
	Service *grocery.Service
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger
	Audit   *auditlog.Logger

	// Limiter throttles list builds per caller. Nil disables it.
	Limiter *ratelimit.Limiter

	// DefaultCategory is stamped on every item of a generated list.
	DefaultCategory string
}

// NewHandler constructs a Grocery Lists feature handler.
func NewHandler(db *mongo.Database, svc *grocery.Service, defaultCategory string, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:              db,
		Service:         svc,
		Log:             logger,
		ErrLog:          errLog,
		Audit:           audit,
		DefaultCategory: defaultCategory,
	}
}

func (h *Handler) throttle(next http.Handler) http.Handler {
	if h.Limiter == nil {
		return next
	}
	return h.Limiter.Middleware(ratelimit.UserOrIP)(next)
}
