// internal/app/features/grocerylists/routes.go
package grocerylists

import (
	"github.com/dalemusser/mealhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the grocery list endpoints (typically under "/grocery-lists").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.With(h.throttle).Post("/", h.HandleBuild)
		pr.Get("/{id}", h.ServeView)
		pr.Post("/{id}/items", h.HandleAddItem)
		pr.Put("/{id}/items/{itemID}/checked", h.HandleCheck)
	})

	return r
}
