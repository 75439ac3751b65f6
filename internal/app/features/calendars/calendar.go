// internal/app/features/calendars/calendar.go
package calendars

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/mealhub/internal/app/features/errors"
	"github.com/dalemusser/mealhub/internal/app/features/shared/params"
	"github.com/dalemusser/mealhub/internal/app/policy/accesspolicy"
	calendarstore "github.com/dalemusser/mealhub/internal/app/store/calendars"
	"github.com/dalemusser/mealhub/internal/app/system/authz"
	"github.com/dalemusser/mealhub/internal/app/system/timeouts"
	"github.com/dalemusser/mealhub/internal/app/system/txn"
	"github.com/dalemusser/mealhub/internal/domain/models"
)

type createRequest struct {
	Name       string            `json:"name"`
	Visibility models.Visibility `json:"visibility"`
	GroupID    string            `json:"group_id"`
}

// HandleCreate handles POST /calendars. The caller becomes the owner.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "calendar create")
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
	if groupID != nil && !p.IsAdmin {
		if _, member := p.GroupRole(*groupID); !member {
			h.ErrLog.Write(w, r, accesspolicy.ErrForbidden, target)
			return
		}
	}

	cal, err := calendarstore.New(h.DB).Create(ctx, models.Calendar{
		Name:       req.Name,
		UserID:     p.ID,
		Visibility: req.Visibility,
		GroupID:    groupID,
	})
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	h.Audit.CalendarCreated(ctx, r, p.ID, cal.ID)
	uierrors.WriteJSON(w, http.StatusCreated, cal)
}

type viewResponse struct {
	models.Calendar
	MealCount int64 `json:"meal_count"`
}

// ServeView handles GET /calendars/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "calendar view")
	defer cancel()

	id, err := params.ObjectID(r, "id")
	target := uierrors.Target{Kind: kind, ID: id, Action: "view"}
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	_, cal, err := h.loadFor(ctx, r, id, accesspolicy.CanView)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	n, err := calendarstore.New(h.DB).CountMeals(ctx, id)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, viewResponse{Calendar: cal, MealCount: n})
}

type deleteResponse struct {
	MealsRemoved int64 `json:"meals_removed"`
}

// HandleDelete handles DELETE /calendars/{id}. The calendar and all of its
// meal rows are removed together.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "calendar delete")
	defer cancel()

	id, err := params.ObjectID(r, "id")
	target := uierrors.Target{Kind: kind, ID: id, Action: "delete"}
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}

	p, err := authz.Principal(ctx, h.DB, r)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}

	store := calendarstore.New(h.DB)
	cal, err := store.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	if !accesspolicy.CanDelete(p, cal) {
		h.ErrLog.Write(w, r, accesspolicy.ErrForbidden, target)
		return
	}

	var removed int64
	err = txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		n, err := store.Delete(ctx, id)
		removed = n
		return err
	})
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	h.Audit.CalendarDeleted(ctx, r, p.ID, id, removed)
	uierrors.WriteJSON(w, http.StatusOK, deleteResponse{MealsRemoved: removed})
}
