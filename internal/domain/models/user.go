// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles. Admins bypass ownership and visibility checks.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is an account that owns recipes, calendars, collections and grocery lists.
//
// NOTE:
//   - Group membership is not embedded on User.
//     Use the group_memberships collection to discover a user's groups.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Email      string             `bson:"email" json:"email"`
	Role       string             `bson:"role" json:"role"` // admin | user
	Status     string             `bson:"status,omitempty" json:"status,omitempty"`

	// DietaryPreferences are tag names used to narrow meal-plan generation
	// when the caller asks for it (e.g. "vegetarian", "gluten-free").
	DietaryPreferences []string `bson:"dietary_preferences,omitempty" json:"dietary_preferences,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
