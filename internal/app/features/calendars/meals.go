// internal/app/features/calendars/meals.go
package calendars

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/mealhub/internal/app/features/errors"
	"github.com/dalemusser/mealhub/internal/app/features/shared/params"
	"github.com/dalemusser/mealhub/internal/app/policy/accesspolicy"
	calendarstore "github.com/dalemusser/mealhub/internal/app/store/calendars"
	recipestore "github.com/dalemusser/mealhub/internal/app/store/recipes"
	"github.com/dalemusser/mealhub/internal/app/system/authz"
	"github.com/dalemusser/mealhub/internal/app/system/normalize"
	"github.com/dalemusser/mealhub/internal/app/system/timeouts"
	"github.com/dalemusser/mealhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mealsResponse struct {
	Meals []models.CalendarMeal `json:"meals"`
}

// loadFor resolves the principal and the calendar, then applies allowed.
func (h *Handler) loadFor(ctx context.Context, r *http.Request, id primitive.ObjectID, allowed func(*accesspolicy.Principal, accesspolicy.Shareable) bool) (*accesspolicy.Principal, models.Calendar, error) {
	p, err := authz.Principal(ctx, h.DB, r)
	if err != nil {
		return nil, models.Calendar{}, err
	}
	cal, err := calendarstore.New(h.DB).GetByID(ctx, id)
	if err != nil {
		return nil, models.Calendar{}, err
	}
	if !allowed(p, cal) {
		return nil, models.Calendar{}, accesspolicy.ErrForbidden
	}
	return p, cal, nil
}

// ServeMeals handles GET /calendars/{id}/meals?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h *Handler) ServeMeals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "calendar meals")
	defer cancel()

	id, err := params.ObjectID(r, "id")
	target := uierrors.Target{Kind: kind, ID: id, Action: "view"}
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	from, err := params.Date("from", r.URL.Query().Get("from"))
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	to, err := params.Date("to", r.URL.Query().Get("to"))
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	if to.Before(from) {
		h.ErrLog.Write(w, r, uierrors.BadRequest("from must not be after to"), target)
		return
	}

	if _, _, err := h.loadFor(ctx, r, id, accesspolicy.CanView); err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}

	meals, err := calendarstore.New(h.DB).ListMeals(ctx, id, from, to)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	if meals == nil {
		meals = []models.CalendarMeal{}
	}
	uierrors.WriteJSON(w, http.StatusOK, mealsResponse{Meals: meals})
}

type addMealRequest struct {
	RecipeID string `json:"recipe_id"`
	MealDate string `json:"meal_date"`
	MealType string `json:"meal_type"`
}

// HandleAddMeal handles POST /calendars/{id}/meals. The recipe must be one
// the caller can see.
func (h *Handler) HandleAddMeal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "calendar add meal")
	defer cancel()

	id, err := params.ObjectID(r, "id")
	target := uierrors.Target{Kind: kind, ID: id, Action: "edit"}
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}

	var req addMealRequest
	if err := uierrors.Decode(r, &req); err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	recipeID, err := params.OptionalObjectID("recipe_id", req.RecipeID)
	if err == nil && recipeID == nil {
		err = uierrors.BadRequest("recipe_id is required")
	}
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	day, err := params.Date("meal_date", req.MealDate)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}

	p, cal, err := h.loadFor(ctx, r, id, accesspolicy.CanEdit)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}

	rec, err := recipestore.New(h.DB).GetByID(ctx, *recipeID)
	if err != nil {
		h.ErrLog.Write(w, r, err, uierrors.Target{Kind: "recipe", ID: *recipeID, Action: "view"})
		return
	}
	if !accesspolicy.CanView(p, rec) {
		h.ErrLog.Write(w, r, accesspolicy.ErrForbidden, uierrors.Target{Kind: "recipe", ID: rec.ID, Action: "view"})
		return
	}

	meal, err := calendarstore.New(h.DB).AddMeal(ctx, models.CalendarMeal{
		CalendarID: cal.ID,
		RecipeID:   rec.ID,
		MealDate:   day,
		MealType:   normalize.Category(req.MealType),
	})
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	uierrors.WriteJSON(w, http.StatusCreated, meal)
}

// HandleDeleteMeal handles DELETE /calendars/{id}/meals/{mealID}.
func (h *Handler) HandleDeleteMeal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "calendar delete meal")
	defer cancel()

	id, err := params.ObjectID(r, "id")
	target := uierrors.Target{Kind: kind, ID: id, Action: "edit"}
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	mealID, err := params.ObjectID(r, "mealID")
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}

	if _, _, err := h.loadFor(ctx, r, id, accesspolicy.CanEdit); err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	if err := calendarstore.New(h.DB).DeleteMeal(ctx, id, mealID); err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
