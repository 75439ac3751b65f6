// internal/app/features/recipes/delete.go
package recipes

import (
	"net/http"

	uierrors "github.com/dalemusser/mealhub/internal/app/features/errors"
	"github.com/dalemusser/mealhub/internal/app/features/shared/params"
	"github.com/dalemusser/mealhub/internal/app/policy/accesspolicy"
	recipestore "github.com/dalemusser/mealhub/internal/app/store/recipes"
	"github.com/dalemusser/mealhub/internal/app/system/authz"
	"github.com/dalemusser/mealhub/internal/app/system/timeouts"
)

// HandleDelete handles DELETE /recipes/{id}. The recipe is soft-deleted:
// existing calendar rows keep their recipe_id but the recipe disappears from
// every listing, lookup and candidate pool.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "recipe delete")
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

	store := recipestore.New(h.DB)
	rec, err := store.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	if !accesspolicy.CanDelete(p, rec) {
		h.ErrLog.Write(w, r, accesspolicy.ErrForbidden, target)
		return
	}

	if err := store.SoftDelete(ctx, id); err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	h.Audit.RecipeDeleted(ctx, r, p.ID, id)
	w.WriteHeader(http.StatusNoContent)
}
