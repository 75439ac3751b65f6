// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/mealhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll, logger); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema, logger); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				logger.Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("groups", groupsSchema())
	ensure("group_memberships", groupMembershipsSchema())

	ensure("recipes", recipesSchema())
	ensure("calendars", calendarsSchema())
	ensure("calendar_meals", calendarMealsSchema())
	ensure("recipe_collections", collectionsSchema())
	ensure("grocery_lists", groceryListsSchema())

	ensure("audit_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string, logger *zap.Logger) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		logger.Debug("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return false, nil
		}
		logger.Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	logger.Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M, logger *zap.Logger) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	logger.Debug("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func enumOf(values []string) bson.A {
	out := bson.A{}
	for _, v := range values {
		out = append(out, v)
	}
	return out
}

// sharingRule encodes "group_id is present exactly when visibility is group".
func sharingRule() bson.A {
	return bson.A{
		bson.M{
			"properties": bson.M{"visibility": bson.M{"enum": bson.A{string(models.VisibilityGroup)}}},
			"required":   bson.A{"group_id"},
		},
		bson.M{
			"properties": bson.M{"visibility": bson.M{"enum": bson.A{string(models.VisibilityPrivate), string(models.VisibilityPublic)}}},
			"not":        bson.M{"required": bson.A{"group_id"}},
		},
	}
}

var visibilityEnum = bson.M{"enum": bson.A{
	string(models.VisibilityPrivate), string(models.VisibilityGroup), string(models.VisibilityPublic),
}}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"full_name", "email", "role"},
			"properties": bson.M{
				"full_name":           nonBlank,
				"full_name_ci":        bson.M{"bsonType": "string"},
				"email":               nonBlank,
				"role":                bson.M{"enum": bson.A{"admin", "user"}},
				"dietary_preferences": bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
			},
		},
	}
}

func groupsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "name_ci", "owner_id"},
			"properties": bson.M{
				"name":     nonBlank,
				"name_ci":  nonBlank,
				"owner_id": bson.M{"bsonType": "objectId"},
			},
		},
	}
}

func groupMembershipsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "group_id", "role"},
			"properties": bson.M{
				"user_id":    bson.M{"bsonType": "objectId"},
				"group_id":   bson.M{"bsonType": "objectId"},
				"role":       bson.M{"enum": bson.A{models.GroupRoleAdmin, models.GroupRoleMember}},
				"created_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func recipesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "category", "owner_id", "visibility"},
			"properties": bson.M{
				"title":      nonBlank,
				"title_ci":   bson.M{"bsonType": "string"},
				"category":   bson.M{"enum": enumOf(models.RecipeCategories)},
				"owner_id":   bson.M{"bsonType": "objectId"},
				"visibility": visibilityEnum,
				"group_id":   bson.M{"bsonType": "objectId"},
				"tags":       bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
				"ingredients": bson.M{
					"bsonType": bson.A{"array", "null"},
					"items": bson.M{
						"bsonType": "object",
						"required": bson.A{"name", "quantity"},
						"properties": bson.M{
							"name":     bson.M{"bsonType": "string"},
							"quantity": bson.M{"bsonType": bson.A{"double", "int", "long"}},
							"unit":     bson.M{"bsonType": "string"},
						},
					},
				},
				"deleted_at": bson.M{"bsonType": bson.A{"date", "null"}},
			},
			"oneOf": sharingRule(),
		},
	}
}

func calendarsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "user_id", "visibility"},
			"properties": bson.M{
				"name":       nonBlank,
				"user_id":    bson.M{"bsonType": "objectId"},
				"visibility": visibilityEnum,
				"group_id":   bson.M{"bsonType": "objectId"},
			},
			"oneOf": sharingRule(),
		},
	}
}

func calendarMealsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"calendar_id", "recipe_id", "meal_date", "meal_type"},
			"properties": bson.M{
				"calendar_id": bson.M{"bsonType": "objectId"},
				"recipe_id":   bson.M{"bsonType": "objectId"},
				"meal_date":   bson.M{"bsonType": "date"},
				"meal_type":   bson.M{"enum": enumOf(models.MealTypes)},
			},
		},
	}
}

func collectionsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "name"},
			"properties": bson.M{
				"user_id": bson.M{"bsonType": "objectId"},
				"name":    nonBlank,
				"items":   bson.M{"bsonType": bson.A{"array", "null"}, "items": bson.M{"bsonType": "objectId"}},
			},
		},
	}
}

func groceryListsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "user_id", "visibility"},
			"properties": bson.M{
				"name":       bson.M{"bsonType": "string"},
				"user_id":    bson.M{"bsonType": "objectId"},
				"visibility": visibilityEnum,
				"items": bson.M{
					"bsonType": bson.A{"array", "null"},
					"items": bson.M{
						"bsonType": "object",
						"required": bson.A{"id", "name"},
						"properties": bson.M{
							"id":      bson.M{"bsonType": "string"},
							"name":    bson.M{"bsonType": "string"},
							"checked": bson.M{"bsonType": "bool"},
						},
					},
				},
			},
		},
	}
}
