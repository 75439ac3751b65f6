package auditlog_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/mealhub/internal/app/store/audit"
	"github.com/dalemusser/mealhub/internal/app/system/auditlog"
	"github.com/dalemusser/mealhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_NilLogger(t *testing.T) {
	// nil logger should be a no-op (not panic)
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("GET", "/", nil)

	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.RecipeDeleted(ctx, req, primitive.NewObjectID(), primitive.NewObjectID())
	logger.AccessDenied(ctx, nil, nil, "recipe", primitive.NewObjectID(), "view")
}

func TestLogger_Log_ConfigOff(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Activity: "off", Security: "off"})

	actor := primitive.NewObjectID()
	logger.MealPlanGenerated(ctx, nil, actor, primitive.NewObjectID(), 7, time.Now(), time.Now())

	events, err := store.GetByActor(ctx, actor, 10)
	if err != nil {
		t.Fatalf("GetByActor failed: %v", err)
	}
	if len(events) != 0 {
		t.Error("expected no events when config is 'off'")
	}
}

func TestLogger_Log_ConfigDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	core, logs := observer.New(zap.InfoLevel)
	logger := auditlog.New(store, zap.New(core), auditlog.Config{Activity: "db", Security: "db"})

	actor := primitive.NewObjectID()
	req := httptest.NewRequest("POST", "/calendars/x/generate", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	logger.MealPlanGenerated(ctx, req, actor, primitive.NewObjectID(), 21, time.Now(), time.Now().AddDate(0, 0, 6))

	events, err := store.GetByActor(ctx, actor, 10)
	if err != nil {
		t.Fatalf("GetByActor failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].IP != "10.0.0.1" {
		t.Errorf("expected forwarded IP, got %q", events[0].IP)
	}
	if events[0].Details["meals_created"] != "21" {
		t.Errorf("unexpected details: %v", events[0].Details)
	}
	if logs.Len() != 0 {
		t.Errorf("expected no zap output for 'db', got %d entries", logs.Len())
	}
}

func TestLogger_Log_ConfigLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Activity: "log", Security: "log"})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := primitive.NewObjectID()
	logger.AccessDenied(ctx, nil, &actor, "calendar", primitive.NewObjectID(), "edit")

	entries := logs.FilterMessage("audit event").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 zap entry, got %d", len(entries))
	}
	if entries[0].Level != zap.WarnLevel {
		t.Errorf("denials should log at warn, got %v", entries[0].Level)
	}
	fields := entries[0].ContextMap()
	if fields["event_type"] != audit.EventAccessDenied {
		t.Errorf("unexpected event_type: %v", fields["event_type"])
	}
	if fields["detail_action"] != "edit" {
		t.Errorf("unexpected detail_action: %v", fields["detail_action"])
	}
}
