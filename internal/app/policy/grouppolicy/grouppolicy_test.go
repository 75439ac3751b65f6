package grouppolicy_test

import (
	"testing"

	"github.com/dalemusser/mealhub/internal/app/policy/accesspolicy"
	"github.com/dalemusser/mealhub/internal/app/policy/grouppolicy"
	"github.com/dalemusser/mealhub/internal/domain/models"
	"github.com/dalemusser/mealhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestLoadPrincipal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com", models.RoleUser)
	member := fixtures.CreateUser(ctx, "Member", "member@example.com", models.RoleUser)
	admin := fixtures.CreateAdmin(ctx, "Admin", "admin@example.com")

	owned := fixtures.CreateGroup(ctx, "Owned", owner.ID)
	joined := fixtures.CreateGroup(ctx, "Joined", member.ID)
	fixtures.CreateGroupMembership(ctx, owner.ID, joined.ID, models.GroupRoleMember)
	fixtures.CreateGroupMembership(ctx, member.ID, owned.ID, models.GroupRoleMember)

	p, err := grouppolicy.LoadPrincipal(ctx, db, owner.ID)
	if err != nil {
		t.Fatalf("LoadPrincipal failed: %v", err)
	}
	if p.IsAdmin {
		t.Error("owner should not be a system admin")
	}
	if role, _ := p.GroupRole(owned.ID); role != models.GroupRoleAdmin {
		t.Errorf("owned group: expected admin, got %q", role)
	}
	if role, _ := p.GroupRole(joined.ID); role != models.GroupRoleMember {
		t.Errorf("joined group: expected member, got %q", role)
	}

	ap, err := grouppolicy.LoadPrincipal(ctx, db, admin.ID)
	if err != nil {
		t.Fatalf("LoadPrincipal(admin) failed: %v", err)
	}
	if !ap.IsAdmin {
		t.Error("expected admin principal")
	}
	if len(ap.GroupIDs()) != 0 {
		t.Errorf("admin should have no groups, got %d", len(ap.GroupIDs()))
	}

	if _, err := grouppolicy.LoadPrincipal(ctx, db, primitive.NewObjectID()); err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments for missing user, got %v", err)
	}
}

func TestLoadPrincipal_GroupEditRights(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com", models.RoleUser)
	gadmin := fixtures.CreateUser(ctx, "Group Admin", "gadmin@example.com", models.RoleUser)
	member := fixtures.CreateUser(ctx, "Member", "member@example.com", models.RoleUser)
	g := fixtures.CreateGroup(ctx, "Family", owner.ID)
	fixtures.CreateGroupMembership(ctx, gadmin.ID, g.ID, models.GroupRoleAdmin)
	fixtures.CreateGroupMembership(ctx, member.ID, g.ID, models.GroupRoleMember)

	r := fixtures.CreateRecipe(ctx, "Shared Stew", models.CategoryDinner, owner.ID, models.VisibilityGroup, &g.ID)

	tests := []struct {
		name     string
		userID   primitive.ObjectID
		wantView bool
		wantEdit bool
	}{
		{"group admin edits", gadmin.ID, true, true},
		{"member views only", member.ID, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := grouppolicy.LoadPrincipal(ctx, db, tt.userID)
			if err != nil {
				t.Fatalf("LoadPrincipal failed: %v", err)
			}
			if got := accesspolicy.CanView(p, r); got != tt.wantView {
				t.Errorf("CanView = %v, want %v", got, tt.wantView)
			}
			if got := accesspolicy.CanEdit(p, r); got != tt.wantEdit {
				t.Errorf("CanEdit = %v, want %v", got, tt.wantEdit)
			}
		})
	}
}
