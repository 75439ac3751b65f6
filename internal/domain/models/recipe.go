// internal/domain/models/recipe.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Recipe categories. Meal types are the subset that can occupy a calendar slot.
const (
	CategoryBreakfast = "breakfast"
	CategoryLunch     = "lunch"
	CategoryDinner    = "dinner"
	CategorySnack     = "snack"
	CategoryDessert   = "dessert"
	CategoryStaple    = "staple"
	CategoryFrozen    = "frozen"
)

// RecipeCategories lists every valid recipe category.
var RecipeCategories = []string{
	CategoryBreakfast, CategoryLunch, CategoryDinner, CategorySnack,
	CategoryDessert, CategoryStaple, CategoryFrozen,
}

// ValidCategory reports whether c is a known recipe category.
func ValidCategory(c string) bool {
	for _, v := range RecipeCategories {
		if v == c {
			return true
		}
	}
	return false
}

// Ingredient is one line of a recipe's ingredient list.
type Ingredient struct {
	Name     string  `bson:"name" json:"name"`
	Quantity float64 `bson:"quantity" json:"quantity"`
	Unit     string  `bson:"unit" json:"unit"`
}

// Recipe is a shareable resource owned by a single user.
// A non-nil DeletedAt marks the recipe as soft-deleted.
type Recipe struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	TitleCI     string             `bson:"title_ci" json:"title_ci"` // lowercase, diacritics-stripped
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Category    string             `bson:"category" json:"category"`
	Ingredients []Ingredient       `bson:"ingredients" json:"ingredients"`
	Tags        []string           `bson:"tags,omitempty" json:"tags,omitempty"`

	OwnerID    primitive.ObjectID  `bson:"owner_id" json:"owner_id"`
	Visibility Visibility          `bson:"visibility" json:"visibility"`
	GroupID    *primitive.ObjectID `bson:"group_id,omitempty" json:"group_id,omitempty"` // set iff visibility == group

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`
}

func (r Recipe) ResourceID() primitive.ObjectID     { return r.ID }
func (r Recipe) ResourceOwner() primitive.ObjectID  { return r.OwnerID }
func (r Recipe) ResourceVisibility() Visibility     { return r.Visibility }
func (r Recipe) ResourceGroup() *primitive.ObjectID { return r.GroupID }

// IsDeleted reports whether the recipe has been soft-deleted.
func (r Recipe) IsDeleted() bool { return r.DeletedAt != nil }

// HasAnyTag reports whether the recipe carries at least one of the given tags.
func (r Recipe) HasAnyTag(tags []string) bool {
	for _, have := range r.Tags {
		for _, want := range tags {
			if have == want {
				return true
			}
		}
	}
	return false
}
