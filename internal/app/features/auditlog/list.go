// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	uierrors "github.com/dalemusser/mealhub/internal/app/features/errors"
	"github.com/dalemusser/mealhub/internal/app/features/shared/params"
	"github.com/dalemusser/mealhub/internal/app/store/audit"
	userstore "github.com/dalemusser/mealhub/internal/app/store/users"
	"github.com/dalemusser/mealhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const pageSize = 50

// listItem is one audit event as returned by the API.
type listItem struct {
	ID           string            `json:"id"`
	Timestamp    time.Time         `json:"timestamp"`
	Category     string            `json:"category"`
	EventType    string            `json:"event_type"`
	ActorID      string            `json:"actor_id,omitempty"`
	ActorName    string            `json:"actor_name,omitempty"` // resolved from ActorID
	ResourceKind string            `json:"resource_kind,omitempty"`
	ResourceID   string            `json:"resource_id,omitempty"`
	IP           string            `json:"ip,omitempty"`
	Success      bool              `json:"success"`
	Reason       string            `json:"failure_reason,omitempty"`
	Details      map[string]string `json:"details,omitempty"`
}

type listResponse struct {
	Items      []listItem `json:"items"`
	Page       int        `json:"page"`
	TotalPages int        `json:"total_pages"`
	Total      int64      `json:"total"`
}

// ServeList handles GET /audit?category=&event_type=&actor=&resource=&start_date=&end_date=&page=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()
	target := uierrors.Target{Kind: "audit", Action: "list"}

	q := r.URL.Query()
	page := 1
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		page = p
	}

	filter := audit.QueryFilter{
		Category:  strings.TrimSpace(q.Get("category")),
		EventType: strings.TrimSpace(q.Get("event_type")),
		Limit:     pageSize,
		Offset:    int64((page - 1) * pageSize),
	}

	actor, err := params.OptionalObjectID("actor", q.Get("actor"))
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	filter.ActorID = actor
	resource, err := params.OptionalObjectID("resource", q.Get("resource"))
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	filter.ResourceID = resource

	if s := q.Get("start_date"); s != "" {
		t, err := params.Date("start_date", s)
		if err != nil {
			h.ErrLog.Write(w, r, err, target)
			return
		}
		filter.StartTime = &t
	}
	if s := q.Get("end_date"); s != "" {
		t, err := params.Date("end_date", s)
		if err != nil {
			h.ErrLog.Write(w, r, err, target)
			return
		}
		// End of day
		endOfDay := t.Add(24*time.Hour - time.Nanosecond)
		filter.EndTime = &endOfDay
	}

	store := audit.New(h.DB)
	events, err := store.Query(ctx, filter)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	total, err := store.CountByFilter(ctx, filter)
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}

	// Batch fetch actor names
	names := make(map[primitive.ObjectID]string)
	var ids []primitive.ObjectID
	for _, e := range events {
		if e.ActorID != nil {
			if _, ok := names[*e.ActorID]; !ok {
				names[*e.ActorID] = ""
				ids = append(ids, *e.ActorID)
			}
		}
	}
	if len(ids) > 0 {
		users, err := userstore.New(h.DB).GetByIDs(ctx, ids)
		if err != nil {
			h.Log.Warn("failed to fetch user names for audit log", zap.Error(err))
		}
		for _, u := range users {
			names[u.ID] = u.FullName
		}
	}

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		item := listItem{
			ID:           e.ID.Hex(),
			Timestamp:    e.Timestamp,
			Category:     e.Category,
			EventType:    e.EventType,
			ResourceKind: e.ResourceKind,
			IP:           e.IP,
			Success:      e.Success,
			Reason:       e.FailureReason,
			Details:      e.Details,
		}
		if e.ActorID != nil {
			item.ActorID = e.ActorID.Hex()
			item.ActorName = names[*e.ActorID]
		}
		if e.ResourceID != nil {
			item.ResourceID = e.ResourceID.Hex()
		}
		items = append(items, item)
	}

	totalPages := int((total + pageSize - 1) / pageSize)
	if totalPages < 1 {
		totalPages = 1
	}
	uierrors.WriteJSON(w, http.StatusOK, listResponse{
		Items:      items,
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
	})
}
