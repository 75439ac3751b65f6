// internal/app/features/groups/routes.go
package groups

import (
	"github.com/dalemusser/mealhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the group endpoints (typically under "/groups").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)
		pr.Delete("/{id}", h.HandleDelete)

		pr.Get("/{id}/members", h.ServeMembers)
		pr.Post("/{id}/members", h.HandleAddMember)
		pr.Put("/{id}/members/{userID}", h.HandleSetRole)
		pr.Delete("/{id}/members/{userID}", h.HandleRemoveMember)
	})

	return r
}
