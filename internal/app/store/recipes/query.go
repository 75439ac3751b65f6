package recipestore

import (
	"github.com/dalemusser/mealhub/internal/app/policy/accesspolicy"
	"github.com/dalemusser/mealhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
)

// Query narrows a recipe listing. Access is required and always applied;
// Category and AnyTags are optional.
type Query struct {
	Access   accesspolicy.Filter
	Category string
	AnyTags  []string
}

// BSON renders the query as a Mongo filter document.
func (q Query) BSON() bson.M {
	m := q.Access.BSON()
	if q.Category != "" {
		m["category"] = q.Category
	}
	if len(q.AnyTags) > 0 {
		m["tags"] = bson.M{"$in": q.AnyTags}
	}
	return m
}

// Matches evaluates the same predicate as BSON against an in-memory recipe.
func (q Query) Matches(r models.Recipe) bool {
	if !q.Access.Allows(r) {
		return false
	}
	if q.Category != "" && r.Category != q.Category {
		return false
	}
	if len(q.AnyTags) > 0 && !r.HasAnyTag(q.AnyTags) {
		return false
	}
	return true
}
