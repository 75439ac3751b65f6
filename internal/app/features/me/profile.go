// internal/app/features/me/profile.go
package me

import (
	"net/http"
	"strconv"
	"time"

	uierrors "github.com/dalemusser/mealhub/internal/app/features/errors"
	"github.com/dalemusser/mealhub/internal/app/policy/accesspolicy"
	"github.com/dalemusser/mealhub/internal/app/store/audit"
	userstore "github.com/dalemusser/mealhub/internal/app/store/users"
	"github.com/dalemusser/mealhub/internal/app/system/authz"
	"github.com/dalemusser/mealhub/internal/app/system/normalize"
	"github.com/dalemusser/mealhub/internal/app/system/timeouts"
)

const (
	kind             = "user"
	defaultActivity  = 20
	maxActivityLimit = 100
)

type profileResponse struct {
	ID                 string            `json:"id"`
	FullName           string            `json:"full_name"`
	Email              string            `json:"email"`
	Role               string            `json:"role"`
	DietaryPreferences []string          `json:"dietary_preferences"`
	Groups             map[string]string `json:"groups"` // group id -> role
}

// ServeProfile handles GET /me.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "profile view")
	defer cancel()
	target := uierrors.Target{Kind: kind, Action: "view"}

	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Write(w, r, accesspolicy.ErrForbidden, target)
		return
	}
	target.ID = uid

	u, err := userstore.New(h.DB).GetByID(ctx, uid)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	p, err := authz.Principal(ctx, h.DB, r)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}

	groups := make(map[string]string)
	for _, gid := range p.GroupIDs() {
		role, _ := p.GroupRole(gid)
		groups[gid.Hex()] = role
	}
	prefs := u.DietaryPreferences
	if prefs == nil {
		prefs = []string{}
	}
	uierrors.WriteJSON(w, http.StatusOK, profileResponse{
		ID:                 u.ID.Hex(),
		FullName:           u.FullName,
		Email:              u.Email,
		Role:               u.Role,
		DietaryPreferences: prefs,
		Groups:             groups,
	})
}

type preferencesRequest struct {
	DietaryPreferences []string `json:"dietary_preferences"`
}

type preferencesResponse struct {
	DietaryPreferences []string `json:"dietary_preferences"`
}

// HandlePreferences handles PUT /me/preferences. The list replaces the
// stored one; tags are folded and deduplicated.
func (h *Handler) HandlePreferences(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "profile preferences")
	defer cancel()
	target := uierrors.Target{Kind: kind, Action: "edit"}

	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Write(w, r, accesspolicy.ErrForbidden, target)
		return
	}
	target.ID = uid

	var req preferencesRequest
	if err := uierrors.Decode(r, &req); err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	prefs := normalize.Tags(req.DietaryPreferences)
	if prefs == nil {
		prefs = []string{}
	}

	if err := userstore.New(h.DB).SetDietaryPreferences(ctx, uid, prefs); err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	h.Audit.PreferencesChanged(ctx, r, uid, prefs)
	uierrors.WriteJSON(w, http.StatusOK, preferencesResponse{DietaryPreferences: prefs})
}

type activityItem struct {
	Timestamp    time.Time         `json:"timestamp"`
	EventType    string            `json:"event_type"`
	ResourceKind string            `json:"resource_kind,omitempty"`
	ResourceID   string            `json:"resource_id,omitempty"`
	Success      bool              `json:"success"`
	Details      map[string]string `json:"details,omitempty"`
}

type activityResponse struct {
	Items []activityItem `json:"items"`
}

// ServeActivity handles GET /me/activity?limit=: the caller's own recent
// audit events, newest first.
func (h *Handler) ServeActivity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "profile activity")
	defer cancel()
	target := uierrors.Target{Kind: kind, Action: "view"}

	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Write(w, r, accesspolicy.ErrForbidden, target)
		return
	}

	limit := defaultActivity
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		limit = min(n, maxActivityLimit)
	}

	events, err := audit.New(h.DB).GetByActor(ctx, uid, int64(limit))
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	items := make([]activityItem, 0, len(events))
	for _, e := range events {
		item := activityItem{
			Timestamp:    e.Timestamp,
			EventType:    e.EventType,
			ResourceKind: e.ResourceKind,
			Success:      e.Success,
			Details:      e.Details,
		}
		if e.ResourceID != nil {
			item.ResourceID = e.ResourceID.Hex()
		}
		items = append(items, item)
	}
	uierrors.WriteJSON(w, http.StatusOK, activityResponse{Items: items})
}
