// internal/app/features/grocerylists/items.go
package grocerylists

import (
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/mealhub/internal/app/features/errors"
	"github.com/dalemusser/mealhub/internal/app/features/shared/params"
	"github.com/dalemusser/mealhub/internal/app/system/authz"
	"github.com/dalemusser/mealhub/internal/app/system/timeouts"
	"github.com/dalemusser/mealhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// ServeView handles GET /grocery-lists/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "grocery list view")
	defer cancel()

	id, err := params.ObjectID(r, "id")
	target := uierrors.Target{Kind: kind, ID: id, Action: "view"}
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	p, err := authz.Principal(ctx, h.DB, r)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}

	list, err := h.Service.GetList(ctx, p, id)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, list)
}

type addItemRequest struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Category string  `json:"category"`
}

// HandleAddItem handles POST /grocery-lists/{id}/items.
func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "grocery add item")
	defer cancel()

	id, err := params.ObjectID(r, "id")
	target := uierrors.Target{Kind: kind, ID: id, Action: "edit"}
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	var req addItemRequest
	if err := uierrors.Decode(r, &req); err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	p, err := authz.Principal(ctx, h.DB, r)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}

	item, err := h.Service.AddItem(ctx, p, id, models.GroceryItem{
		Name:     req.Name,
		Quantity: req.Quantity,
		Unit:     req.Unit,
		Category: req.Category,
	})
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	uierrors.WriteJSON(w, http.StatusCreated, item)
}

type checkRequest struct {
	Checked bool `json:"checked"`
}

// HandleCheck handles PUT /grocery-lists/{id}/items/{itemID}/checked.
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "grocery check item")
	defer cancel()

	id, err := params.ObjectID(r, "id")
	target := uierrors.Target{Kind: kind, ID: id, Action: "edit"}
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	itemID := strings.TrimSpace(chi.URLParam(r, "itemID"))
	if itemID == "" {
		h.ErrLog.Write(w, r, uierrors.BadRequest("itemID is required"), target)
		return
	}
	var req checkRequest
	if err := uierrors.Decode(r, &req); err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	p, err := authz.Principal(ctx, h.DB, r)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}

	if err := h.Service.SetItemChecked(ctx, p, id, itemID, req.Checked); err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
