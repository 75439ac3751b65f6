// internal/app/store/grocerylists/grocerystore.go
package grocerystore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/mealhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrItemNotFound is returned when an item id is not on the list.
var ErrItemNotFound = errors.New("grocery item not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("grocery_lists")}
}

// Create inserts a new grocery list.
func (s *Store) Create(ctx context.Context, g models.GroceryList) (models.GroceryList, error) {
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	if g.Visibility == "" {
		g.Visibility = models.VisibilityPrivate
	}
	if g.Items == nil {
		g.Items = []models.GroceryItem{}
	}
	g.CreatedAt = now
	g.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		return models.GroceryList{}, err
	}
	return g, nil
}

// GetByID loads a grocery list. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.GroceryList, error) {
	var g models.GroceryList
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return models.GroceryList{}, err
	}
	return g, nil
}

// AddItem appends an item to a list.
func (s *Store) AddItem(ctx context.Context, listID primitive.ObjectID, item models.GroceryItem) error {
	res, err := s.c.UpdateByID(ctx, listID, bson.M{
		"$push": bson.M{"items": item},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetItemChecked toggles the checked flag of one item. A missing list yields
// mongo.ErrNoDocuments; a missing item yields ErrItemNotFound.
func (s *Store) SetItemChecked(ctx context.Context, listID primitive.ObjectID, itemID string, checked bool) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": listID, "items.id": itemID},
		bson.M{"$set": bson.M{
			"items.$.checked": checked,
			"updated_at":      time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": listID})
	if err != nil {
		return err
	}
	if n == 0 {
		return mongo.ErrNoDocuments
	}
	return ErrItemNotFound
}

// Delete removes a grocery list.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
