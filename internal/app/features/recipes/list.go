// internal/app/features/recipes/list.go
package recipes

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/mealhub/internal/app/features/errors"
	"github.com/dalemusser/mealhub/internal/app/features/shared/params"
	"github.com/dalemusser/mealhub/internal/app/policy/accesspolicy"
	collectionstore "github.com/dalemusser/mealhub/internal/app/store/collections"
	recipestore "github.com/dalemusser/mealhub/internal/app/store/recipes"
	"github.com/dalemusser/mealhub/internal/app/system/authz"
	"github.com/dalemusser/mealhub/internal/app/system/normalize"
	"github.com/dalemusser/mealhub/internal/app/system/paging"
	"github.com/dalemusser/mealhub/internal/app/system/timeouts"
	"github.com/dalemusser/mealhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

type listResponse struct {
	Recipes []models.Recipe `json:"recipes"`
	paging.Page
}

// ServeList handles GET /recipes?category=&tag=&collection=&after=&before=.
//
// The result is exactly the candidate set the generator would draw from:
// the caller's own recipes, public recipes and recipes shared with the
// caller's groups, optionally narrowed to one of the caller's collections.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "recipe list")
	defer cancel()
	target := uierrors.Target{Kind: kind, Action: "list"}

	p, err := authz.Principal(ctx, h.DB, r)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}

	q := r.URL.Query()
	category := normalize.Category(q.Get("category"))
	if category != "" && !models.ValidCategory(category) {
		h.ErrLog.Write(w, r, uierrors.BadRequest("unknown category %q", category), target)
		return
	}

	var coll *models.RecipeCollection
	collID, err := params.OptionalObjectID("collection", q.Get("collection"))
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	if collID != nil {
		c, err := collectionstore.New(h.DB).GetByID(ctx, *collID)
		if errors.Is(err, mongo.ErrNoDocuments) || (err == nil && (p == nil || c.UserID != p.ID)) {
			h.ErrLog.Write(w, r, mongo.ErrNoDocuments, target)
			return
		}
		if err != nil {
			h.ErrLog.Write(w, r, err, target)
			return
		}
		coll = &c
	}

	list, page, err := recipestore.New(h.DB).ListPage(ctx, recipestore.Query{
		Access:   accesspolicy.CandidateFilter(p, accesspolicy.KindRecipe, coll),
		Category: category,
		AnyTags:  normalize.Tags(q["tag"]),
	}, paging.FromRequest(r, "title_ci", paging.DefaultSize))
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, listResponse{Recipes: list, Page: page})
}
