// internal/app/features/grocerylists/build.go
package grocerylists

import (
	"net/http"

	uierrors "github.com/dalemusser/mealhub/internal/app/features/errors"
	"github.com/dalemusser/mealhub/internal/app/features/shared/params"
	"github.com/dalemusser/mealhub/internal/app/services/grocery"
	"github.com/dalemusser/mealhub/internal/app/system/authz"
	"github.com/dalemusser/mealhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type buildRequest struct {
	CalendarID string `json:"calendar_id"`
	From       string `json:"from"`
	To         string `json:"to"`
	Name       string `json:"name"`
}

// HandleBuild handles POST /grocery-lists. It consolidates every meal on
// the calendar between from and to (inclusive) into a new private list.
func (h *Handler) HandleBuild(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "grocery list build")
	defer cancel()

	var req buildRequest
	if err := uierrors.Decode(r, &req); err != nil {
		h.ErrLog.Write(w, r, err, uierrors.Target{Kind: kind, Action: "create"})
		return
	}
	calID, err := primitive.ObjectIDFromHex(req.CalendarID)
	target := uierrors.Target{Kind: "calendar", ID: calID, Action: "view"}
	if err != nil {
		h.ErrLog.Write(w, r, uierrors.BadRequest("invalid calendar_id %q", req.CalendarID), target)
		return
	}
	from, err := params.Date("from", req.From)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	to, err := params.Date("to", req.To)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}

	p, err := authz.Principal(ctx, h.DB, r)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}

	list, err := h.Service.BuildFromCalendar(ctx, p, grocery.BuildRequest{
		CalendarID:      calID,
		From:            from,
		To:              to,
		Name:            req.Name,
		DefaultCategory: h.DefaultCategory,
	})
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	h.Audit.GroceryListCreated(ctx, r, p.ID, list.ID, calID, len(list.Items))
	uierrors.WriteJSON(w, http.StatusCreated, list)
}
