package accesspolicy

import (
	"github.com/dalemusser/mealhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind describes where a resource kind keeps its access fields.
type Kind struct {
	Name       string
	OwnerField string // "owner_id" for recipes, "user_id" for calendars and grocery lists
	SoftDelete bool   // rows carry deleted_at
}

var (
	KindRecipe      = Kind{Name: "recipe", OwnerField: "owner_id", SoftDelete: true}
	KindCalendar    = Kind{Name: "calendar", OwnerField: "user_id"}
	KindGroceryList = Kind{Name: "grocery_list", OwnerField: "user_id"}
)

// Filter selects the resources of one kind a principal may see in bulk:
//
//	owner == principal OR visibility == public OR (visibility == group AND group_id IN principal's groups)
//
// optionally intersected with a collection's items, and always excluding
// soft-deleted rows. Allows and BSON express the same predicate; stores use
// BSON, in-process callers use Allows.
type Filter struct {
	kind        Kind
	principalID primitive.ObjectID
	signedIn    bool
	groupIDs    []primitive.ObjectID

	scoped bool
	items  []primitive.ObjectID
	inSet  map[primitive.ObjectID]struct{}
}

// CandidateFilter builds the bulk visibility filter for p. A nil principal
// only sees public rows. When collection is non-nil the result is limited to
// its items; the caller is responsible for checking that p owns it.
func CandidateFilter(p *Principal, kind Kind, collection *models.RecipeCollection) Filter {
	f := Filter{kind: kind}
	if p != nil && !p.ID.IsZero() {
		f.signedIn = true
		f.principalID = p.ID
		f.groupIDs = p.GroupIDs()
	}
	if collection != nil {
		f.scoped = true
		f.items = append([]primitive.ObjectID{}, collection.Items...)
		f.inSet = make(map[primitive.ObjectID]struct{}, len(collection.Items))
		for _, id := range collection.Items {
			f.inSet[id] = struct{}{}
		}
	}
	return f
}

// Kind returns the resource kind the filter was built for.
func (f Filter) Kind() Kind { return f.kind }

// Allows reports whether r passes the filter.
func (f Filter) Allows(r Shareable) bool {
	if r == nil {
		return false
	}
	if f.kind.SoftDelete && isDeleted(r) {
		return false
	}
	if f.scoped {
		if _, ok := f.inSet[r.ResourceID()]; !ok {
			return false
		}
	}
	if r.ResourceVisibility() == models.VisibilityPublic {
		return true
	}
	if !f.signedIn {
		return false
	}
	if r.ResourceOwner() == f.principalID {
		return true
	}
	if r.ResourceVisibility() == models.VisibilityGroup && r.ResourceGroup() != nil {
		for _, gid := range f.groupIDs {
			if gid == *r.ResourceGroup() {
				return true
			}
		}
	}
	return false
}

// BSON renders the filter as a Mongo query document.
func (f Filter) BSON() bson.M {
	or := bson.A{}
	if f.signedIn {
		or = append(or, bson.M{f.kind.OwnerField: f.principalID})
	}
	or = append(or, bson.M{"visibility": models.VisibilityPublic})
	if f.signedIn && len(f.groupIDs) > 0 {
		or = append(or, bson.M{
			"visibility": models.VisibilityGroup,
			"group_id":   bson.M{"$in": f.groupIDs},
		})
	}

	m := bson.M{"$or": or}
	if f.kind.SoftDelete {
		// matches both a null value and a missing field
		m["deleted_at"] = nil
	}
	if f.scoped {
		m["_id"] = bson.M{"$in": f.items}
	}
	return m
}
