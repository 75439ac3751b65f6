// internal/app/features/groups/members.go
package groups

import (
	"context"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/mealhub/internal/app/features/errors"
	"github.com/dalemusser/mealhub/internal/app/features/shared/params"
	"github.com/dalemusser/mealhub/internal/app/policy/accesspolicy"
	groupstore "github.com/dalemusser/mealhub/internal/app/store/groups"
	membershipstore "github.com/dalemusser/mealhub/internal/app/store/memberships"
	userstore "github.com/dalemusser/mealhub/internal/app/store/users"
	"github.com/dalemusser/mealhub/internal/app/system/authz"
	"github.com/dalemusser/mealhub/internal/app/system/timeouts"
	"github.com/dalemusser/mealhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// load resolves the caller and the group named by the {id} URL param.
func (h *Handler) load(ctx context.Context, r *http.Request) (*accesspolicy.Principal, models.Group, error) {
	id, err := params.ObjectID(r, "id")
	if err != nil {
		return nil, models.Group{}, err
	}
	p, err := authz.Principal(ctx, h.DB, r)
	if err != nil {
		return nil, models.Group{}, err
	}
	g, err := groupstore.New(h.DB).GetByID(ctx, id)
	if err != nil {
		return nil, models.Group{}, err
	}
	return p, g, nil
}

type memberItem struct {
	UserID   string    `json:"user_id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

type membersResponse struct {
	OwnerID string       `json:"owner_id"`
	Members []memberItem `json:"members"`
}

// ServeMembers handles GET /groups/{id}/members. Any member may list the group.
func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "group members")
	defer cancel()

	p, g, err := h.load(ctx, r)
	target := uierrors.Target{Kind: kind, ID: g.ID, Action: "view"}
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	if !canSee(p, g) {
		h.ErrLog.Write(w, r, accesspolicy.ErrForbidden, target)
		return
	}

	memberships, err := membershipstore.New(h.DB).ListByGroup(ctx, g.ID)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}

	ids := make([]primitive.ObjectID, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.UserID)
	}
	users, err := userstore.New(h.DB).GetByIDs(ctx, ids)
	if err != nil {
		h.Log.Warn("failed to fetch user names for group members", zap.Error(err))
	}
	byID := make(map[primitive.ObjectID]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	items := make([]memberItem, 0, len(memberships))
	for _, m := range memberships {
		u := byID[m.UserID]
		items = append(items, memberItem{
			UserID:   m.UserID.Hex(),
			FullName: u.FullName,
			Email:    u.Email,
			Role:     m.Role,
			JoinedAt: m.CreatedAt,
		})
	}
	uierrors.WriteJSON(w, http.StatusOK, membersResponse{OwnerID: g.OwnerID.Hex(), Members: items})
}

type addMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// HandleAddMember handles POST /groups/{id}/members. The new member is found
// by email; role defaults to member.
func (h *Handler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "group add member")
	defer cancel()

	var req addMemberRequest
	if err := uierrors.Decode(r, &req); err != nil {
		h.ErrLog.Write(w, r, err, uierrors.Target{Kind: kind, Action: "edit"})
		return
	}
	p, g, err := h.load(ctx, r)
	target := uierrors.Target{Kind: kind, ID: g.ID, Action: "edit"}
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	if !canManage(p, g) {
		h.ErrLog.Write(w, r, accesspolicy.ErrForbidden, target)
		return
	}

	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = models.GroupRoleMember
	}
	u, err := userstore.New(h.DB).GetByEmail(ctx, req.Email)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	if u.ID == g.OwnerID {
		h.ErrLog.Write(w, r, uierrors.BadRequest("the owner is already a group admin"), target)
		return
	}

	if err := membershipstore.New(h.DB).Add(ctx, g.ID, u.ID, role); err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	h.Audit.MemberAdded(ctx, r, p.ID, g.ID, u.ID, role)
	uierrors.WriteJSON(w, http.StatusCreated, memberItem{
		UserID:   u.ID.Hex(),
		FullName: u.FullName,
		Email:    u.Email,
		Role:     role,
		JoinedAt: time.Now().UTC(),
	})
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// HandleSetRole handles PUT /groups/{id}/members/{userID}.
func (h *Handler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "group set role")
	defer cancel()

	var req setRoleRequest
	if err := uierrors.Decode(r, &req); err != nil {
		h.ErrLog.Write(w, r, err, uierrors.Target{Kind: kind, Action: "edit"})
		return
	}
	p, g, err := h.load(ctx, r)
	target := uierrors.Target{Kind: kind, ID: g.ID, Action: "edit"}
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	userID, err := params.ObjectID(r, "userID")
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	if !canManage(p, g) {
		h.ErrLog.Write(w, r, accesspolicy.ErrForbidden, target)
		return
	}

	role := strings.ToLower(strings.TrimSpace(req.Role))
	if err := membershipstore.New(h.DB).SetRole(ctx, g.ID, userID, role); err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	h.Audit.MemberRoleChanged(ctx, r, p.ID, g.ID, userID, role)
	w.WriteHeader(http.StatusNoContent)
}

// HandleRemoveMember handles DELETE /groups/{id}/members/{userID}. Group
// managers may remove anyone; members may remove themselves.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "group remove member")
	defer cancel()

	p, g, err := h.load(ctx, r)
	target := uierrors.Target{Kind: kind, ID: g.ID, Action: "edit"}
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	userID, err := params.ObjectID(r, "userID")
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	self := p != nil && p.ID == userID
	if !self && !canManage(p, g) {
		h.ErrLog.Write(w, r, accesspolicy.ErrForbidden, target)
		return
	}

	members := membershipstore.New(h.DB)
	ok, err := members.Exists(ctx, g.ID, userID)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	if !ok {
		h.ErrLog.Write(w, r, mongo.ErrNoDocuments, target)
		return
	}
	if err := members.Remove(ctx, g.ID, userID); err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	h.Audit.MemberRemoved(ctx, r, p.ID, g.ID, userID)
	w.WriteHeader(http.StatusNoContent)
}
