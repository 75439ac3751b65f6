// internal/app/features/recipes/visibility.go
package recipes

import (
	"net/http"

	uierrors "github.com/dalemusser/mealhub/internal/app/features/errors"
	"github.com/dalemusser/mealhub/internal/app/features/shared/params"
	"github.com/dalemusser/mealhub/internal/app/policy/accesspolicy"
	recipestore "github.com/dalemusser/mealhub/internal/app/store/recipes"
	"github.com/dalemusser/mealhub/internal/app/system/authz"
	"github.com/dalemusser/mealhub/internal/app/system/timeouts"
	"github.com/dalemusser/mealhub/internal/domain/models"
)

type visibilityRequest struct {
	Visibility models.Visibility `json:"visibility"`
	GroupID    string            `json:"group_id"`
}

// HandleVisibility handles PUT /recipes/{id}/visibility.
//
// Changing who can see a recipe is reserved to its owner and admins;
// group admins can edit group recipes but not re-share them.
func (h *Handler) HandleVisibility(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "recipe visibility")
	defer cancel()

	id, err := params.ObjectID(r, "id")
	target := uierrors.Target{Kind: kind, ID: id, Action: "share"}
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}

	var req visibilityRequest
	if err := uierrors.Decode(r, &req); err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	groupID, err := params.OptionalObjectID("group_id", req.GroupID)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}

	p, err := authz.Principal(ctx, h.DB, r)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}

	store := recipestore.New(h.DB)
	rec, err := store.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	if !accesspolicy.CanDelete(p, rec) || !canShareWith(p, groupID) {
		h.ErrLog.Write(w, r, accesspolicy.ErrForbidden, target)
		return
	}

	if err := store.SetVisibility(ctx, id, req.Visibility, groupID); err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	h.Audit.RecipeVisibilityChanged(ctx, r, p.ID, id, string(req.Visibility))

	rec, err = store.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, rec)
}
