package collectionstore_test

import (
	"testing"

	collectionstore "github.com/dalemusser/mealhub/internal/app/store/collections"
	"github.com/dalemusser/mealhub/internal/domain/models"
	"github.com/dalemusser/mealhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_CreateDedupesItems(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := collectionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	c, err := store.Create(ctx, models.RecipeCollection{
		Name:   "Weeknight",
		UserID: primitive.NewObjectID(),
		Items:  []primitive.ObjectID{a, b, a},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(c.Items) != 2 {
		t.Errorf("expected 2 unique items, got %d", len(c.Items))
	}

	if _, err := store.Create(ctx, models.RecipeCollection{Name: " ", UserID: primitive.NewObjectID()}); err == nil {
		t.Error("expected error for empty name")
	}
}

func TestStore_AddRemoveItem(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := collectionstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := primitive.NewObjectID()
	coll := fixtures.CreateCollection(ctx, "Faves", user)
	r := primitive.NewObjectID()

	for i := 0; i < 2; i++ {
		if err := store.AddItem(ctx, coll.ID, r); err != nil {
			t.Fatalf("AddItem failed: %v", err)
		}
	}
	got, err := store.GetByID(ctx, coll.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.Items) != 1 {
		t.Fatalf("expected 1 item after duplicate add, got %d", len(got.Items))
	}

	if err := store.RemoveItem(ctx, coll.ID, r); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	got, _ = store.GetByID(ctx, coll.ID)
	if len(got.Items) != 0 {
		t.Errorf("expected empty collection, got %d items", len(got.Items))
	}

	if err := store.AddItem(ctx, primitive.NewObjectID(), r); err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}

	list, err := store.ListByUser(ctx, user)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 collection, got %d", len(list))
	}
}
