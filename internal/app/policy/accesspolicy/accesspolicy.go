// Package accesspolicy decides who may view, edit, or delete a shareable
// resource (recipe, calendar, grocery list).
//
// Authorization rules:
//   - public resources are viewable by everyone, including signed-out visitors
//   - admins may view, edit, and delete anything
//   - owners may view, edit, and delete their own resources
//   - group resources are viewable by any member of the group and editable
//     by group admins (the group owner counts as an admin)
//   - only admins and owners may delete
//   - soft-deleted resources fail every check
//
// The checks are pure functions over a Principal and a Shareable. Callers
// translate a false result into ErrForbidden (or a not-found response when
// the resource should not be revealed).
package accesspolicy

import (
	"errors"
	"sort"

	"github.com/dalemusser/mealhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrForbidden is returned by services when a policy check fails.
var ErrForbidden = errors.New("access denied")

// Principal is the acting user as seen by the policy.
//
// GroupRoles maps every group the user belongs to onto their role in it.
// Groups the user owns are recorded as models.GroupRoleAdmin.
type Principal struct {
	ID                 primitive.ObjectID
	IsAdmin            bool
	GroupRoles         map[primitive.ObjectID]string
	DietaryPreferences []string
}

// GroupRole returns the principal's role in the group and whether they belong to it.
func (p *Principal) GroupRole(groupID primitive.ObjectID) (string, bool) {
	if p == nil || p.GroupRoles == nil {
		return "", false
	}
	role, ok := p.GroupRoles[groupID]
	return role, ok
}

// GroupIDs returns the ids of every group the principal belongs to, in a stable order.
func (p *Principal) GroupIDs() []primitive.ObjectID {
	if p == nil || len(p.GroupRoles) == 0 {
		return nil
	}
	ids := make([]primitive.ObjectID, 0, len(p.GroupRoles))
	for id := range p.GroupRoles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Hex() < ids[j].Hex() })
	return ids
}

// Shareable is the capability set shared by recipes, calendars and grocery lists.
type Shareable interface {
	ResourceID() primitive.ObjectID
	ResourceOwner() primitive.ObjectID
	ResourceVisibility() models.Visibility
	ResourceGroup() *primitive.ObjectID
}

// softDeletable is implemented by resources that support soft deletion.
type softDeletable interface {
	IsDeleted() bool
}

func isDeleted(r Shareable) bool {
	if sd, ok := r.(softDeletable); ok {
		return sd.IsDeleted()
	}
	return false
}

// sharedGroup returns the group a resource is shared with, or nil when the
// resource is not group-visible. private and public resources ignore group_id.
func sharedGroup(r Shareable) *primitive.ObjectID {
	if r.ResourceVisibility() != models.VisibilityGroup {
		return nil
	}
	return r.ResourceGroup()
}

func isOwner(p *Principal, r Shareable) bool {
	return p != nil && !p.ID.IsZero() && p.ID == r.ResourceOwner()
}

// CanView reports whether p may read r. A nil principal is a signed-out visitor.
func CanView(p *Principal, r Shareable) bool {
	if r == nil || isDeleted(r) {
		return false
	}
	if r.ResourceVisibility() == models.VisibilityPublic {
		return true
	}
	if p == nil {
		return false
	}
	if p.IsAdmin || isOwner(p, r) {
		return true
	}
	if gid := sharedGroup(r); gid != nil {
		_, member := p.GroupRole(*gid)
		return member
	}
	return false
}

// CanEdit reports whether p may modify r. Public visibility grants no edit rights.
func CanEdit(p *Principal, r Shareable) bool {
	if r == nil || p == nil || isDeleted(r) {
		return false
	}
	if p.IsAdmin || isOwner(p, r) {
		return true
	}
	if gid := sharedGroup(r); gid != nil {
		role, _ := p.GroupRole(*gid)
		return role == models.GroupRoleAdmin
	}
	return false
}

// CanDelete reports whether p may delete r. Group admins may edit but never delete.
func CanDelete(p *Principal, r Shareable) bool {
	if r == nil || p == nil || isDeleted(r) {
		return false
	}
	return p.IsAdmin || isOwner(p, r)
}
