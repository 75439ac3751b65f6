// internal/domain/models/visibility.go
package models

// Visibility controls who can read a shareable resource.
//
//   - private: owner (and admins) only
//   - group:   owner, admins, and members of GroupID
//   - public:  everyone, including signed-out visitors
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityGroup   Visibility = "group"
	VisibilityPublic  Visibility = "public"
)

// Valid reports whether v is one of the known visibility levels.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPrivate, VisibilityGroup, VisibilityPublic:
		return true
	}
	return false
}
