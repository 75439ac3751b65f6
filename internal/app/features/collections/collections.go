// internal/app/features/collections/collections.go
package collections

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/mealhub/internal/app/features/errors"
	"github.com/dalemusser/mealhub/internal/app/features/shared/params"
	"github.com/dalemusser/mealhub/internal/app/policy/accesspolicy"
	collectionstore "github.com/dalemusser/mealhub/internal/app/store/collections"
	recipestore "github.com/dalemusser/mealhub/internal/app/store/recipes"
	"github.com/dalemusser/mealhub/internal/app/system/authz"
	"github.com/dalemusser/mealhub/internal/app/system/timeouts"
	"github.com/dalemusser/mealhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type listResponse struct {
	Collections []models.RecipeCollection `json:"collections"`
}

// ServeList handles GET /collections.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "collection list")
	defer cancel()
	target := uierrors.Target{Kind: kind, Action: "list"}

	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Write(w, r, accesspolicy.ErrForbidden, target)
		return
	}
	list, err := collectionstore.New(h.DB).ListByUser(ctx, uid)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	if list == nil {
		list = []models.RecipeCollection{}
	}
	uierrors.WriteJSON(w, http.StatusOK, listResponse{Collections: list})
}

type createRequest struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

// HandleCreate handles POST /collections. Every item must be a recipe the
// caller can see.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "collection create")
	defer cancel()
	target := uierrors.Target{Kind: kind, Action: "create"}

	var req createRequest
	if err := uierrors.Decode(r, &req); err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	items := make([]primitive.ObjectID, 0, len(req.Items))
	for _, raw := range req.Items {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			h.ErrLog.Write(w, r, uierrors.BadRequest("invalid item %q", raw), target)
			return
		}
		items = append(items, id)
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

	recipes, err := recipestore.New(h.DB).GetMany(ctx, items)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	for _, id := range items {
		rec, ok := recipes[id]
		if !ok {
			h.ErrLog.Write(w, r, uierrors.BadRequest("unknown recipe %s", id.Hex()), target)
			return
		}
		if !accesspolicy.CanView(p, rec) {
			h.ErrLog.Write(w, r, accesspolicy.ErrForbidden, uierrors.Target{Kind: "recipe", ID: id, Action: "view"})
			return
		}
	}

	c, err := collectionstore.New(h.DB).Create(ctx, models.RecipeCollection{
		UserID: p.ID,
		Name:   req.Name,
		Items:  items,
	})
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	uierrors.WriteJSON(w, http.StatusCreated, c)
}

// owned loads collection id and reports mongo.ErrNoDocuments unless the
// caller owns it.
func (h *Handler) owned(ctx context.Context, r *http.Request, id primitive.ObjectID) (*accesspolicy.Principal, error) {
	p, err := authz.Principal(ctx, h.DB, r)
	if err != nil {
		return nil, err
	}
	c, err := collectionstore.New(h.DB).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || c.UserID != p.ID {
		return nil, mongo.ErrNoDocuments
	}
	return p, nil
}

type addItemRequest struct {
	RecipeID string `json:"recipe_id"`
}

// HandleAddItem handles POST /collections/{id}/items.
func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "collection add item")
	defer cancel()

	id, err := params.ObjectID(r, "id")
	target := uierrors.Target{Kind: kind, ID: id, Action: "edit"}
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	var req addItemRequest
	if err := uierrors.Decode(r, &req); err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	recipeID, err := primitive.ObjectIDFromHex(req.RecipeID)
	if err != nil {
		h.ErrLog.Write(w, r, uierrors.BadRequest("invalid recipe_id %q", req.RecipeID), target)
		return
	}

	p, err := h.owned(ctx, r, id)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	rec, err := recipestore.New(h.DB).GetByID(ctx, recipeID)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	if !accesspolicy.CanView(p, rec) {
		h.ErrLog.Write(w, r, accesspolicy.ErrForbidden, uierrors.Target{Kind: "recipe", ID: recipeID, Action: "view"})
		return
	}

	if err := collectionstore.New(h.DB).AddItem(ctx, id, recipeID); err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRemoveItem handles DELETE /collections/{id}/items/{recipeID}.
func (h *Handler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "collection remove item")
	defer cancel()

	id, err := params.ObjectID(r, "id")
	target := uierrors.Target{Kind: kind, ID: id, Action: "edit"}
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	recipeID, err := params.ObjectID(r, "recipeID")
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}

	if _, err := h.owned(ctx, r, id); err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	if err := collectionstore.New(h.DB).RemoveItem(ctx, id, recipeID); err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
