// internal/domain/models/calendar.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Meal types: the slots a calendar day can hold.
const (
	MealBreakfast = CategoryBreakfast
	MealLunch     = CategoryLunch
	MealDinner    = CategoryDinner
	MealSnack     = CategorySnack
)

// MealTypes lists the slots in their canonical per-day order.
var MealTypes = []string{MealBreakfast, MealLunch, MealDinner, MealSnack}

// ValidMealType reports whether t is a known meal slot.
func ValidMealType(t string) bool {
	for _, v := range MealTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Calendar is a shareable container of planned meals. The owner is stored as user_id.
type Calendar struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name   string             `bson:"name" json:"name"`
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`

	Visibility Visibility          `bson:"visibility" json:"visibility"`
	GroupID    *primitive.ObjectID `bson:"group_id,omitempty" json:"group_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

func (c Calendar) ResourceID() primitive.ObjectID     { return c.ID }
func (c Calendar) ResourceOwner() primitive.ObjectID  { return c.UserID }
func (c Calendar) ResourceVisibility() Visibility     { return c.Visibility }
func (c Calendar) ResourceGroup() *primitive.ObjectID { return c.GroupID }

// CalendarMeal places one recipe in one slot on one day of a calendar.
// Rows are owned through their calendar; there is no uniqueness per slot.
type CalendarMeal struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CalendarID primitive.ObjectID `bson:"calendar_id" json:"calendar_id"`
	RecipeID   primitive.ObjectID `bson:"recipe_id" json:"recipe_id"`
	MealDate   time.Time          `bson:"meal_date" json:"meal_date"` // UTC midnight
	MealType   string             `bson:"meal_type" json:"meal_type"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}
