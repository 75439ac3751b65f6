// internal/app/policy/grouppolicy/grouppolicy.go
package grouppolicy

import (
	"context"

	"github.com/dalemusser/mealhub/internal/app/policy/accesspolicy"
	groupstore "github.com/dalemusser/mealhub/internal/app/store/groups"
	membershipstore "github.com/dalemusser/mealhub/internal/app/store/memberships"
	userstore "github.com/dalemusser/mealhub/internal/app/store/users"
	"github.com/dalemusser/mealhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// LoadPrincipal builds the access principal for userID: the admin flag and
// dietary preferences from the user record, plus a role for every group the
// user belongs to. Groups the user owns are recorded as admin.
// Returns mongo.ErrNoDocuments if the user does not exist.
func LoadPrincipal(ctx context.Context, db *mongo.Database, userID primitive.ObjectID) (*accesspolicy.Principal, error) {
	u, err := userstore.New(db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	roles, err := membershipstore.New(db).RolesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	owned, err := groupstore.New(db).ListOwnedBy(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, g := range owned {
		roles[g.ID] = models.GroupRoleAdmin
	}

	return &accesspolicy.Principal{
		ID:                 u.ID,
		IsAdmin:            u.IsAdmin(),
		GroupRoles:         roles,
		DietaryPreferences: u.DietaryPreferences,
	}, nil
}
