// internal/domain/models/grocerylist.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroceryItem is one line of a grocery list.
type GroceryItem struct {
	ID       string  `bson:"id" json:"id"`
	Name     string  `bson:"name" json:"name"`
	Quantity float64 `bson:"quantity" json:"quantity"`
	Unit     string  `bson:"unit" json:"unit"`
	Category string  `bson:"category,omitempty" json:"category,omitempty"`
	Checked  bool    `bson:"checked" json:"checked"`
}

// GroceryList is a shareable shopping list. Once created it is plain user
// state; it is not re-derived from the calendar it was built from.
type GroceryList struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name   string             `bson:"name" json:"name"`
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`
	Items  []GroceryItem      `bson:"items" json:"items"`

	Visibility Visibility          `bson:"visibility" json:"visibility"`
	GroupID    *primitive.ObjectID `bson:"group_id,omitempty" json:"group_id,omitempty"`

	// Source window, informational only.
	CalendarID *primitive.ObjectID `bson:"calendar_id,omitempty" json:"calendar_id,omitempty"`
	DateFrom   *time.Time          `bson:"date_from,omitempty" json:"date_from,omitempty"`
	DateTo     *time.Time          `bson:"date_to,omitempty" json:"date_to,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

func (g GroceryList) ResourceID() primitive.ObjectID     { return g.ID }
func (g GroceryList) ResourceOwner() primitive.ObjectID  { return g.UserID }
func (g GroceryList) ResourceVisibility() Visibility     { return g.Visibility }
func (g GroceryList) ResourceGroup() *primitive.ObjectID { return g.GroupID }
