// internal/app/features/groups/handler.go
package groups

import (
	uierrors "github.com/dalemusser/mealhub/internal/app/features/errors"
	"github.com/dalemusser/mealhub/internal/app/policy/accesspolicy"
	"github.com/dalemusser/mealhub/internal/app/system/auditlog"
	"github.com/dalemusser/mealhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const kind = "group"

type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
	Audit  *auditlog.Logger
}

// NewHandler constructs a Groups feature handler. audit may be nil.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Log:    logger,
		ErrLog: errLog,
		Audit:  audit,
	}
}

// canManage reports whether p may change the group's membership: site
// admins, the owner and group admins.
func canManage(p *accesspolicy.Principal, g models.Group) bool {
	if p == nil {
		return false
	}
	if p.IsAdmin || p.ID == g.OwnerID {
		return true
	}
	role, ok := p.GroupRole(g.ID)
	return ok && role == models.GroupRoleAdmin
}

// canSee reports whether p may list the group's members.
func canSee(p *accesspolicy.Principal, g models.Group) bool {
	if canManage(p, g) {
		return true
	}
	_, ok := p.GroupRole(g.ID)
	return ok
}
