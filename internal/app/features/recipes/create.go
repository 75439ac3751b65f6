// internal/app/features/recipes/create.go
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
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type createRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Category    string              `json:"category"`
	Ingredients []models.Ingredient `json:"ingredients"`
	Tags        []string            `json:"tags"`
	Visibility  models.Visibility   `json:"visibility"`
	GroupID     string              `json:"group_id"`
}

// HandleCreate handles POST /recipes. The caller becomes the owner.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "recipe create")
	defer cancel()
	target := uierrors.Target{Kind: kind, Action: "create"}

	var req createRequest
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
	if p == nil {
		h.ErrLog.Write(w, r, accesspolicy.ErrForbidden, target)
		return
	}
	if !canShareWith(p, groupID) {
		h.ErrLog.Write(w, r, accesspolicy.ErrForbidden, target)
		return
	}

	rec, err := recipestore.New(h.DB).Create(ctx, models.Recipe{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Ingredients: req.Ingredients,
		Tags:        req.Tags,
		OwnerID:     p.ID,
		Visibility:  req.Visibility,
		GroupID:     groupID,
	})
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	uierrors.WriteJSON(w, http.StatusCreated, rec)
}

// canShareWith reports whether p may share a resource with groupID.
// Only members of a group (or admins) can share into it.
func canShareWith(p *accesspolicy.Principal, groupID *primitive.ObjectID) bool {
	if groupID == nil {
		return true
	}
	if p.IsAdmin {
		return true
	}
	_, member := p.GroupRole(*groupID)
	return member
}
