// internal/app/store/collections/collectionstore.go
package collectionstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/mealhub/internal/app/system/normalize"
	"github.com/dalemusser/mealhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrEmptyName = errors.New("collection name is required")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("recipe_collections")}
}

// Create inserts a new collection. Items are stored as a set.
func (s *Store) Create(ctx context.Context, c models.RecipeCollection) (models.RecipeCollection, error) {
	c.Name = normalize.Name(c.Name)
	if c.Name == "" {
		return models.RecipeCollection{}, ErrEmptyName
	}
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.Items = dedupe(c.Items)
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.RecipeCollection{}, err
	}
	return c, nil
}

// GetByID loads a collection. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.RecipeCollection, error) {
	var c models.RecipeCollection
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return models.RecipeCollection{}, err
	}
	return c, nil
}

// ListByUser returns a user's collections sorted by name.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.RecipeCollection, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.RecipeCollection
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddItem puts a recipe into a collection; adding an existing item is a no-op.
func (s *Store) AddItem(ctx context.Context, id, recipeID primitive.ObjectID) error {
	return s.update(ctx, id, bson.M{
		"$addToSet": bson.M{"items": recipeID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
}

// RemoveItem takes a recipe out of a collection.
func (s *Store) RemoveItem(ctx context.Context, id, recipeID primitive.ObjectID) error {
	return s.update(ctx, id, bson.M{
		"$pull": bson.M{"items": recipeID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

func (s *Store) update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := s.c.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func dedupe(ids []primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
