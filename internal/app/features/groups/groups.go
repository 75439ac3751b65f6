// internal/app/features/groups/groups.go
package groups

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/mealhub/internal/app/features/errors"
	"github.com/dalemusser/mealhub/internal/app/features/shared/params"
	"github.com/dalemusser/mealhub/internal/app/policy/accesspolicy"
	groupstore "github.com/dalemusser/mealhub/internal/app/store/groups"
	membershipstore "github.com/dalemusser/mealhub/internal/app/store/memberships"
	"github.com/dalemusser/mealhub/internal/app/system/authz"
	"github.com/dalemusser/mealhub/internal/app/system/timeouts"
	"github.com/dalemusser/mealhub/internal/app/system/txn"
	"github.com/dalemusser/mealhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

type groupItem struct {
	models.Group
	Role string `json:"role"`
}

type listResponse struct {
	Groups []groupItem `json:"groups"`
}

// ServeList handles GET /groups: every group the caller owns or belongs to,
// with the caller's role in each.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "group list")
	defer cancel()
	target := uierrors.Target{Kind: kind, Action: "list"}

	p, err := authz.Principal(ctx, h.DB, r)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	if p == nil {
		h.ErrLog.Write(w, r, accesspolicy.ErrForbidden, target)
		return
	}

	groups, err := groupstore.New(h.DB).GetByIDs(ctx, p.GroupIDs())
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	items := make([]groupItem, 0, len(groups))
	for _, g := range groups {
		role, _ := p.GroupRole(g.ID)
		items = append(items, groupItem{Group: g, Role: role})
	}
	uierrors.WriteJSON(w, http.StatusOK, listResponse{Groups: items})
}

type createRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HandleCreate handles POST /groups. The caller becomes the owner, which
// makes them a group admin without a membership row.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "group create")
	defer cancel()
	target := uierrors.Target{Kind: kind, Action: "create"}

	var req createRequest
	if err := uierrors.Decode(r, &req); err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Write(w, r, accesspolicy.ErrForbidden, target)
		return
	}

	g, err := groupstore.New(h.DB).Create(ctx, models.Group{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     uid,
	})
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	h.Audit.GroupCreated(ctx, r, uid, g.ID, g.Name)
	uierrors.WriteJSON(w, http.StatusCreated, g)
}

type deleteResponse struct {
	MembersRemoved int64 `json:"members_removed"`
}

// HandleDelete handles DELETE /groups/{id}. Only the owner or a site admin
// may delete a group; its memberships go with it. Resources shared with the
// group stay with their owners.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "group delete")
	defer cancel()

	id, err := params.ObjectID(r, "id")
	target := uierrors.Target{Kind: kind, ID: id, Action: "delete"}
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}

	p, err := authz.Principal(ctx, h.DB, r)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}

	groups := groupstore.New(h.DB)
	g, err := groups.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	if p == nil || (!p.IsAdmin && p.ID != g.OwnerID) {
		h.ErrLog.Write(w, r, accesspolicy.ErrForbidden, target)
		return
	}

	var removed int64
	err = txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		n, err := membershipstore.New(h.DB).DeleteByGroup(ctx, id)
		if err != nil {
			return err
		}
		removed = n
		deleted, err := groups.Delete(ctx, id)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return mongo.ErrNoDocuments
		}
		return nil
	})
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	h.Audit.GroupDeleted(ctx, r, p.ID, id, removed)
	uierrors.WriteJSON(w, http.StatusOK, deleteResponse{MembersRemoved: removed})
}
