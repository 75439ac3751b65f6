// internal/app/store/recipes/recipestore.go
package recipestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/mealhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/mealhub/internal/app/system/normalize"
	"github.com/dalemusser/mealhub/internal/app/system/paging"
	"github.com/dalemusser/mealhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrInvalidVisibility = errors.New("visibility must be private, public, or group with a group id")
	ErrInvalidCategory   = errors.New("unknown recipe category")
	ErrEmptyTitle        = errors.New("recipe title is required")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("recipes")}
}

// checkVisibility enforces: group_id set iff visibility == group.
func checkVisibility(vis models.Visibility, groupID *primitive.ObjectID) error {
	if !vis.Valid() {
		return ErrInvalidVisibility
	}
	if (vis == models.VisibilityGroup) != (groupID != nil) {
		return ErrInvalidVisibility
	}
	return nil
}

// Create inserts a new recipe after normalizing and validating fields.
func (s *Store) Create(ctx context.Context, r models.Recipe) (models.Recipe, error) {
	r.Title = normalize.Name(htmlsanitize.PlainText(r.Title))
	r.Description = htmlsanitize.Sanitize(strings.TrimSpace(r.Description))
	if r.Title == "" {
		return models.Recipe{}, ErrEmptyTitle
	}
	r.Category = normalize.Category(r.Category)
	if !models.ValidCategory(r.Category) {
		return models.Recipe{}, ErrInvalidCategory
	}
	if r.Visibility == "" {
		r.Visibility = models.VisibilityPrivate
	}
	if err := checkVisibility(r.Visibility, r.GroupID); err != nil {
		return models.Recipe{}, err
	}
	for i := range r.Ingredients {
		r.Ingredients[i].Name = htmlsanitize.PlainText(r.Ingredients[i].Name)
		r.Ingredients[i].Unit = strings.TrimSpace(r.Ingredients[i].Unit)
	}

	now := time.Now().UTC()
	r.ID = primitive.NewObjectID()
	r.TitleCI = text.Fold(r.Title)
	r.Tags = normalize.Tags(r.Tags)
	r.CreatedAt = now
	r.UpdatedAt = now
	r.DeletedAt = nil

	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.Recipe{}, err
	}
	return r, nil
}

// GetByID loads a live recipe. Soft-deleted recipes are reported as
// mongo.ErrNoDocuments.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Recipe, error) {
	var r models.Recipe
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "deleted_at": nil}).Decode(&r); err != nil {
		return models.Recipe{}, err
	}
	return r, nil
}

// GetMany loads the live recipes among ids, keyed by ID. Missing ids are absent from the map.
func (s *Store) GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Recipe, error) {
	out := make(map[primitive.ObjectID]models.Recipe, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}, "deleted_at": nil})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var r models.Recipe
		if err := cur.Decode(&r); err != nil {
			return nil, err
		}
		out[r.ID] = r
	}
	return out, cur.Err()
}

// ListPage returns one keyset page of the recipes matching q, ordered by
// title_ci then id.
func (s *Store) ListPage(ctx context.Context, q Query, k paging.Keyset) ([]models.Recipe, paging.Page, error) {
	k.Field = "title_ci"
	cur, err := s.c.Find(ctx, k.Filter(q.BSON()), k.FindOptions())
	if err != nil {
		return nil, paging.Page{}, err
	}
	defer cur.Close(ctx)

	out := []models.Recipe{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, paging.Page{}, err
	}
	page := paging.Finish(k, &out,
		func(r models.Recipe) string { return r.TitleCI },
		func(r models.Recipe) primitive.ObjectID { return r.ID })
	return out, page, nil
}

// ListRecipes returns every recipe matching q, sorted by title then id so
// results are stable across calls.
func (s *Store) ListRecipes(ctx context.Context, q Query) ([]models.Recipe, error) {
	opts := options.Find().SetSort(bson.D{{Key: "title_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, q.BSON(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Recipe
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetVisibility changes a recipe's sharing level. groupID must be non-nil
// exactly when vis is group; otherwise ErrInvalidVisibility.
func (s *Store) SetVisibility(ctx context.Context, id primitive.ObjectID, vis models.Visibility, groupID *primitive.ObjectID) error {
	if err := checkVisibility(vis, groupID); err != nil {
		return err
	}
	update := bson.M{
		"$set": bson.M{"visibility": vis, "updated_at": time.Now().UTC()},
	}
	if groupID != nil {
		update["$set"].(bson.M)["group_id"] = *groupID
	} else {
		update["$unset"] = bson.M{"group_id": ""}
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "deleted_at": nil}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SoftDelete stamps deleted_at on a live recipe.
func (s *Store) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "deleted_at": nil},
		bson.M{"$set": bson.M{"deleted_at": now, "updated_at": now}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
