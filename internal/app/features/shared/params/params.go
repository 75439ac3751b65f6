// Package params parses path and query parameters for the JSON features.
package params

import (
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/mealhub/internal/app/features/errors"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// ObjectID parses the chi URL parameter name as a hex ObjectID.
func ObjectID(r *http.Request, name string) (primitive.ObjectID, error) {
	raw := chi.URLParam(r, name)
	oid, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, uierrors.BadRequest("invalid %s %q", name, raw)
	}
	return oid, nil
}

// OptionalObjectID parses a hex id, returning nil for an empty string.
func OptionalObjectID(field, raw string) (*primitive.ObjectID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	oid, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, uierrors.BadRequest("invalid %s %q", field, raw)
	}
	return &oid, nil
}

// Date parses a YYYY-MM-DD value as UTC midnight.
func Date(field, raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, uierrors.BadRequest("%s must be YYYY-MM-DD", field)
	}
	return t.UTC(), nil
}
