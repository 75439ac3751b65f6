// internal/domain/models/groupmembership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group roles. Admins may edit the group's shared resources; members may only view and use them.
const (
	GroupRoleMember = "member"
	GroupRoleAdmin  = "admin"
)

// GroupMembership is the authoritative join between users and groups.
// Exactly one document per (user_id, group_id); role is a scalar ("admin"|"member").
type GroupMembership struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupID   primitive.ObjectID `bson:"group_id" json:"group_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role      string             `bson:"role" json:"role"` // "admin" | "member"
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
