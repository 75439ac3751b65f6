package grocerystore_test

import (
	"errors"
	"testing"

	grocerystore "github.com/dalemusser/mealhub/internal/app/store/grocerylists"
	"github.com/dalemusser/mealhub/internal/domain/models"
	"github.com/dalemusser/mealhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_CreateAndEdit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := grocerystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	list, err := store.Create(ctx, models.GroceryList{
		Name:   "Week 1",
		UserID: primitive.NewObjectID(),
		Items: []models.GroceryItem{
			{ID: "a", Name: "sugar", Quantity: 3, Unit: "cup"},
		},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if list.Visibility != models.VisibilityPrivate {
		t.Errorf("expected private visibility, got %q", list.Visibility)
	}

	if err := store.AddItem(ctx, list.ID, models.GroceryItem{ID: "b", Name: "milk", Quantity: 1, Unit: "l"}); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if err := store.SetItemChecked(ctx, list.ID, "b", true); err != nil {
		t.Fatalf("SetItemChecked failed: %v", err)
	}

	got, err := store.GetByID(ctx, list.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got.Items))
	}
	if got.Items[0].Checked {
		t.Error("item a should not be checked")
	}
	if !got.Items[1].Checked {
		t.Error("item b should be checked")
	}
}

func TestStore_SetItemChecked_Missing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := grocerystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	list, err := store.Create(ctx, models.GroceryList{Name: "Empty", UserID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.SetItemChecked(ctx, list.ID, "nope", true); !errors.Is(err, grocerystore.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
	if err := store.SetItemChecked(ctx, primitive.NewObjectID(), "nope", true); err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}
