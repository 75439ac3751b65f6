package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/mealhub/internal/app/store/audit"
	"github.com/dalemusser/mealhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Log(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := primitive.NewObjectID()
	cal := primitive.NewObjectID()
	err := store.Log(ctx, audit.Event{
		Category:     audit.CategoryActivity,
		EventType:    audit.EventMealPlanGenerated,
		ActorID:      &actor,
		ResourceKind: "calendar",
		ResourceID:   &cal,
		Success:      true,
		Details:      map[string]string{"meals_created": "21"},
	})
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.GetByActor(ctx, actor, 10)
	if err != nil {
		t.Fatalf("GetByActor failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ID.IsZero() {
		t.Error("expected ID to be auto-generated")
	}
	if events[0].Details["meals_created"] != "21" {
		t.Errorf("unexpected details: %v", events[0].Details)
	}
}

func TestStore_Log_AutoSetsTimestamp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	before := time.Now().Add(-time.Second)
	if err := store.Log(ctx, audit.Event{Category: audit.CategorySecurity, EventType: audit.EventAccessDenied}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	after := time.Now().Add(time.Second)

	events, err := store.Query(ctx, audit.QueryFilter{Limit: 10})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ts := events[0].Timestamp
	if ts.Before(before) || ts.After(after) {
		t.Errorf("timestamp %v not within [%v, %v]", ts, before, after)
	}
}

func TestStore_QueryFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	res := primitive.NewObjectID()
	events := []audit.Event{
		{Category: audit.CategoryActivity, EventType: audit.EventMealPlanGenerated, ResourceID: &res, Success: true},
		{Category: audit.CategoryActivity, EventType: audit.EventGroceryListCreated, Success: true},
		{Category: audit.CategorySecurity, EventType: audit.EventAccessDenied, ResourceID: &res},
	}
	for _, e := range events {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter audit.QueryFilter
		want   int64
	}{
		{"all", audit.QueryFilter{}, 3},
		{"by category", audit.QueryFilter{Category: audit.CategoryActivity}, 2},
		{"by event type", audit.QueryFilter{EventType: audit.EventAccessDenied}, 1},
		{"by resource", audit.QueryFilter{ResourceID: &res}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := store.CountByFilter(ctx, tt.filter)
			if err != nil {
				t.Fatalf("CountByFilter failed: %v", err)
			}
			if n != tt.want {
				t.Errorf("expected %d, got %d", tt.want, n)
			}
		})
	}
}
