// internal/app/features/calendars/routes.go
package calendars

import (
	"github.com/dalemusser/mealhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the calendar endpoints (typically under "/calendars").
// Every calendar route requires a signed-in user.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Post("/", h.HandleCreate)
		pr.Get("/{id}", h.ServeView)
		pr.Delete("/{id}", h.HandleDelete)
		pr.Get("/{id}/meals", h.ServeMeals)
		pr.Post("/{id}/meals", h.HandleAddMeal)
		pr.Delete("/{id}/meals/{mealID}", h.HandleDeleteMeal)
		pr.With(h.throttle).Post("/{id}/generate", h.HandleGenerate)
	})

	return r
}
