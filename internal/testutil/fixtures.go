package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/mealhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given role.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		Role:       role,
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateAdmin creates a test admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleAdmin)
}

// CreateGroup creates a test group owned by ownerID.
func (f *Fixtures) CreateGroup(ctx context.Context, name string, ownerID primitive.ObjectID) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	group := models.Group{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Description: "Test group description",
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := f.db.Collection("groups").InsertOne(ctx, group); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return group
}

// CreateGroupMembership creates a membership record linking a user to a group.
func (f *Fixtures) CreateGroupMembership(ctx context.Context, userID, groupID primitive.ObjectID, role string) models.GroupMembership {
	f.t.Helper()

	membership := models.GroupMembership{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		GroupID:   groupID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := f.db.Collection("group_memberships").InsertOne(ctx, membership); err != nil {
		f.t.Fatalf("failed to create test group membership: %v", err)
	}
	return membership
}

// CreateRecipe creates a test recipe. groupID is stored only for group visibility.
func (f *Fixtures) CreateRecipe(ctx context.Context, title, category string, ownerID primitive.ObjectID, vis models.Visibility, groupID *primitive.ObjectID, tags ...string) models.Recipe {
	f.t.Helper()

	now := time.Now().UTC()
	r := models.Recipe{
		ID:       primitive.NewObjectID(),
		Title:    title,
		TitleCI:  text.Fold(title),
		Category: category,
		Ingredients: []models.Ingredient{
			{Name: "Salt", Quantity: 1, Unit: "tsp"},
		},
		Tags:       tags,
		OwnerID:    ownerID,
		Visibility: vis,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if vis == models.VisibilityGroup {
		r.GroupID = groupID
	}

	if _, err := f.db.Collection("recipes").InsertOne(ctx, r); err != nil {
		f.t.Fatalf("failed to create test recipe: %v", err)
	}
	return r
}

// CreateCalendar creates a private test calendar owned by userID.
func (f *Fixtures) CreateCalendar(ctx context.Context, name string, userID primitive.ObjectID) models.Calendar {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.Calendar{
		ID:         primitive.NewObjectID(),
		Name:       name,
		UserID:     userID,
		Visibility: models.VisibilityPrivate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("calendars").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test calendar: %v", err)
	}
	return c
}

// CreateCollection creates a recipe collection owned by userID.
func (f *Fixtures) CreateCollection(ctx context.Context, name string, userID primitive.ObjectID, items ...primitive.ObjectID) models.RecipeCollection {
	f.t.Helper()

	now := time.Now().UTC()
	if items == nil {
		items = []primitive.ObjectID{}
	}
	c := models.RecipeCollection{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Name:      name,
		Items:     items,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("recipe_collections").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test collection: %v", err)
	}
	return c
}
