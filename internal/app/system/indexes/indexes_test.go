package indexes_test

import (
	"testing"
	"time"

	"github.com/dalemusser/mealhub/internal/app/system/indexes"
	"github.com/dalemusser/mealhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func indexNames(t *testing.T, db *mongo.Database, coll string) map[string]bool {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cur, err := db.Collection(coll).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, nil); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	tests := []struct {
		collection string
		want       []string
	}{
		{"users", []string{"uniq_users_email", "idx_users_role_fullnameci__id"}},
		{"groups", []string{"uniq_groups_owner_nameci"}},
		{"group_memberships", []string{"uniq_gm_user_group", "idx_gm_group_role"}},
		{"recipes", []string{"idx_recipes_category_visibility_owner", "idx_recipes_group_category", "idx_recipes_owner_titleci__id", "idx_recipes_tags"}},
		{"calendars", []string{"idx_calendars_user_name", "idx_calendars_group"}},
		{"calendar_meals", []string{"idx_meals_calendar_date_created", "idx_meals_recipe"}},
		{"recipe_collections", []string{"idx_collections_user_name"}},
		{"grocery_lists", []string{"idx_grocery_user_created", "idx_grocery_calendar"}},
		{"audit_events", []string{"idx_audit_timestamp", "idx_audit_actor_timestamp"}},
	}
	for _, tt := range tests {
		t.Run(tt.collection, func(t *testing.T) {
			names := indexNames(t, db, tt.collection)
			for _, n := range tt.want {
				if !names[n] {
					t.Errorf("expected index %q on %s", n, tt.collection)
				}
			}
		})
	}
}

func TestEnsureAll_RenamesExistingIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// same keys, legacy name
	_, err := db.Collection("grocery_lists").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "calendar_id", Value: 1}},
		Options: options.Index().SetName("legacy_calendar"),
	})
	if err != nil {
		t.Fatalf("create legacy index: %v", err)
	}

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names := indexNames(t, db, "grocery_lists")
	if names["legacy_calendar"] {
		t.Error("expected legacy index to be replaced")
	}
	if !names["idx_grocery_calendar"] {
		t.Error("expected idx_grocery_calendar to exist")
	}
}

func TestEnsureAll_UniqueFailsOnDuplicates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now()
	for i := 0; i < 2; i++ {
		if _, err := db.Collection("users").InsertOne(ctx, bson.M{"email": "dup@example.com", "created_at": now}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err == nil {
		t.Fatal("expected EnsureAll to fail with duplicate emails present")
	}
}
