// internal/app/features/collections/routes.go
package collections

import (
	"github.com/dalemusser/mealhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the recipe collection endpoints (typically under "/collections").
// Collections are private: every route acts on the caller's own collections.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)
		pr.Post("/{id}/items", h.HandleAddItem)
		pr.Delete("/{id}/items/{recipeID}", h.HandleRemoveItem)
	})

	return r
}
