// internal/app/features/recipes/routes.go
package recipes

import (
	"github.com/dalemusser/mealhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the recipe endpoints (typically under "/recipes").
//
// Reads are open to visitors, who only ever see public recipes.
// Writes require a signed-in user.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeView)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}/visibility", h.HandleVisibility)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
