// internal/app/system/authz/authz.go
package authz

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/mealhub/internal/app/policy/accesspolicy"
	"github.com/dalemusser/mealhub/internal/app/policy/grouppolicy"
	"github.com/dalemusser/mealhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "visitor", "", NilObjectID, false, so ok=true always comes with a valid ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session; fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// Principal resolves the access principal for the request. A visitor, or a
// session whose user no longer exists, yields a nil principal which only
// ever sees public resources.
func Principal(ctx context.Context, db *mongo.Database, r *http.Request) (*accesspolicy.Principal, error) {
	_, _, uid, ok := UserCtx(r)
	if !ok {
		return nil, nil
	}
	p, err := grouppolicy.LoadPrincipal(ctx, db, uid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
