// internal/app/features/calendars/generate.go
package calendars

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/mealhub/internal/app/features/errors"
	"github.com/dalemusser/mealhub/internal/app/features/shared/params"
	"github.com/dalemusser/mealhub/internal/app/policy/accesspolicy"
	"github.com/dalemusser/mealhub/internal/app/services/mealplan"
	"github.com/dalemusser/mealhub/internal/app/system/authz"
	"github.com/dalemusser/mealhub/internal/app/system/normalize"
	"github.com/dalemusser/mealhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type generateRequest struct {
	StartDate             string   `json:"start_date"`
	Period                string   `json:"period"`
	MealTypes             []string `json:"meal_types"`
	SnacksPerDay          int      `json:"snacks_per_day"`
	DessertsPerDay        int      `json:"desserts_per_day"`
	UseDietaryPreferences bool     `json:"use_dietary_preferences"`
	AvoidDuplicates       bool     `json:"avoid_duplicates"`
	CollectionID          string   `json:"collection_id"`
}

type generateResponse struct {
	MealsCreated int    `json:"meals_created"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
}

// HandleGenerate handles POST /calendars/{id}/generate.
//
// Either every meal of the window is written or none is; on failure the
// calendar is left exactly as it was.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Generate(), h.Log, "meal plan generate")
	defer cancel()

	id, err := params.ObjectID(r, "id")
	target := uierrors.Target{Kind: kind, ID: id, Action: "generate"}
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}

	var body generateRequest
	if err := uierrors.Decode(r, &body); err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	start, err := params.Date("start_date", body.StartDate)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	collID, err := params.OptionalObjectID("collection_id", body.CollectionID)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	period := normalize.Category(body.Period)
	if _, _, err := mealplan.Window(start, period); err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	mealTypes := make([]string, 0, len(body.MealTypes))
	for _, mt := range body.MealTypes {
		mealTypes = append(mealTypes, normalize.Category(mt))
	}

	p, err := authz.Principal(ctx, h.DB, r)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}

	res, err := h.Engine.Generate(ctx, p, mealplan.Request{
		CalendarID:            id,
		StartDate:             start,
		Period:                period,
		MealTypes:             mealTypes,
		SnacksPerDay:          body.SnacksPerDay,
		DessertsPerDay:        body.DessertsPerDay,
		UseDietaryPreferences: body.UseDietaryPreferences,
		AvoidDuplicates:       body.AvoidDuplicates,
		CollectionID:          collID,
	})
	if err != nil {
		if p != nil && !errors.Is(err, accesspolicy.ErrForbidden) {
			h.Audit.MealPlanFailed(ctx, r, p.ID, id, err.Error())
		}
		h.ErrLog.Write(w, r, err, target)
		return
	}

	actor := primitive.NilObjectID
	if p != nil {
		actor = p.ID
	}
	h.Audit.MealPlanGenerated(ctx, r, actor, id, res.MealsCreated, res.StartDate, res.EndDate)
	uierrors.WriteJSON(w, http.StatusCreated, generateResponse{
		MealsCreated: res.MealsCreated,
		StartDate:    res.StartDate.Format(params.DateLayout),
		EndDate:      res.EndDate.Format(params.DateLayout),
	})
}
