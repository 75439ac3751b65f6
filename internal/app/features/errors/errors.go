// internal/app/features/errors/errors.go
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dalemusser/mealhub/internal/app/policy/accesspolicy"
	"github.com/dalemusser/mealhub/internal/app/services/grocery"
	"github.com/dalemusser/mealhub/internal/app/services/mealplan"
	calendarstore "github.com/dalemusser/mealhub/internal/app/store/calendars"
	collectionstore "github.com/dalemusser/mealhub/internal/app/store/collections"
	groupstore "github.com/dalemusser/mealhub/internal/app/store/groups"
	membershipstore "github.com/dalemusser/mealhub/internal/app/store/memberships"
	recipestore "github.com/dalemusser/mealhub/internal/app/store/recipes"
	"github.com/dalemusser/mealhub/internal/app/system/auditlog"
	"github.com/dalemusser/mealhub/internal/app/system/authz"
	"github.com/dalemusser/mealhub/internal/app/system/limits"
	"github.com/dalemusser/mealhub/internal/app/system/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ErrBadRequest marks malformed input detected by a handler itself.
var ErrBadRequest = errors.New("bad request")

// BadRequest wraps a handler-level validation message.
func BadRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, fmt.Sprintf(format, args...))
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

// Target names the resource and action an error response is about.
// It feeds access-denied auditing.
type Target struct {
	Kind   string
	ID     primitive.ObjectID
	Action string
}

// ErrorLogger writes JSON error responses. Server errors are logged;
// access denials are audited and counted.
type ErrorLogger struct {
	Log     *zap.Logger
	Audit   *auditlog.Logger
	Metrics *metrics.Metrics
}

// NewErrorLogger builds an ErrorLogger. audit and m may be nil.
func NewErrorLogger(logger *zap.Logger, audit *auditlog.Logger, m *metrics.Metrics) *ErrorLogger {
	return &ErrorLogger{Log: logger, Audit: audit, Metrics: m}
}

// Status maps a service or store error onto an HTTP status code.
func Status(err error) int {
	var empty *mealplan.EmptyPoolError
	switch {
	case errors.Is(err, accesspolicy.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, mongo.ErrNoDocuments),
		errors.Is(err, mealplan.ErrCalendarNotFound),
		errors.Is(err, grocery.ErrCalendarNotFound),
		errors.Is(err, grocery.ErrListNotFound),
		errors.Is(err, grocery.ErrItemNotFound):
		return http.StatusNotFound
	case errors.As(err, &empty),
		errors.Is(err, ErrBadRequest),
		errors.Is(err, mealplan.ErrInvalidPeriod),
		errors.Is(err, mealplan.ErrInvalidMealTypes),
		errors.Is(err, mealplan.ErrInvalidQuota),
		errors.Is(err, mealplan.ErrCollectionNotFound),
		errors.Is(err, grocery.ErrInvalidRange),
		errors.Is(err, grocery.ErrInvalidItem),
		errors.Is(err, recipestore.ErrInvalidVisibility),
		errors.Is(err, recipestore.ErrInvalidCategory),
		errors.Is(err, recipestore.ErrEmptyTitle),
		errors.Is(err, calendarstore.ErrInvalidVisibility),
		errors.Is(err, calendarstore.ErrInvalidMealType),
		errors.Is(err, calendarstore.ErrEmptyName),
		errors.Is(err, collectionstore.ErrEmptyName),
		errors.Is(err, groupstore.ErrEmptyName),
		errors.Is(err, membershipstore.ErrBadRole):
		return http.StatusBadRequest
	case errors.Is(err, groupstore.ErrDuplicateGroupName),
		errors.Is(err, membershipstore.ErrDuplicateMembership):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Write answers r with the status Status(err) picks.
func (e *ErrorLogger) Write(w http.ResponseWriter, r *http.Request, err error, t Target) {
	status := Status(err)
	msg := err.Error()

	switch status {
	case http.StatusForbidden:
		e.denied(r.Context(), r, t)
		msg = "forbidden"
	case http.StatusNotFound:
		msg = "not found"
	case http.StatusInternalServerError:
		e.logger().Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("kind", t.Kind),
			zap.String("action", t.Action),
			zap.Error(err))
		msg = "internal error"
	}
	WriteJSON(w, status, errorBody{Error: msg})
}

func (e *ErrorLogger) denied(ctx context.Context, r *http.Request, t Target) {
	var actor *primitive.ObjectID
	if _, _, uid, ok := authz.UserCtx(r); ok {
		actor = &uid
	}
	e.Audit.AccessDenied(ctx, r, actor, t.Kind, t.ID, t.Action)
	e.Metrics.RecordDenied(t.Kind, t.Action)
}

func (e *ErrorLogger) logger() *zap.Logger {
	if e == nil || e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Decode reads a JSON body into v, rejecting unknown fields.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, limits.MaxJSONBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return BadRequest("invalid JSON body: %v", err)
	}
	return nil
}
