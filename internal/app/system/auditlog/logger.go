// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/mealhub/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Activity controls logging for content events (generation, grocery lists, recipe sharing changes).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Activity string
	// Security controls logging for access denials and sign-in/sign-out.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Security string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// getClientIP extracts the client IP from the request. r may be nil for
// events raised outside a request.
func getClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func userAgent(r *http.Request) string {
	if r == nil {
		return ""
	}
	return r.UserAgent()
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.ResourceID != nil {
		fields = append(fields,
			zap.String("resource_kind", event.ResourceKind),
			zap.String("resource_id", event.ResourceID.Hex()),
		)
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
// Logging destination is controlled by config: "all", "db", "log", or "off".
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryActivity:
		setting = l.config.Activity
	case audit.CategorySecurity:
		setting = l.config.Security
	default:
		setting = "all"
	}

	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func (l *Logger) activity(ctx context.Context, r *http.Request, eventType string, actorID primitive.ObjectID, kind string, resourceID primitive.ObjectID, details map[string]string) {
	l.Log(ctx, audit.Event{
		Category:     audit.CategoryActivity,
		EventType:    eventType,
		ActorID:      &actorID,
		ResourceKind: kind,
		ResourceID:   &resourceID,
		IP:           getClientIP(r),
		UserAgent:    userAgent(r),
		Success:      true,
		Details:      details,
	})
}

// --- Activity Events ---

// MealPlanGenerated logs a successful generation run.
func (l *Logger) MealPlanGenerated(ctx context.Context, r *http.Request, actorID, calendarID primitive.ObjectID, mealsCreated int, start, end time.Time) {
	l.activity(ctx, r, audit.EventMealPlanGenerated, actorID, "calendar", calendarID, map[string]string{
		"meals_created": strconv.Itoa(mealsCreated),
		"start_date":    start.Format("2006-01-02"),
		"end_date":      end.Format("2006-01-02"),
	})
}

// MealPlanFailed logs a generation run that wrote nothing.
func (l *Logger) MealPlanFailed(ctx context.Context, r *http.Request, actorID, calendarID primitive.ObjectID, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryActivity,
		EventType:     audit.EventMealPlanFailed,
		ActorID:       &actorID,
		ResourceKind:  "calendar",
		ResourceID:    &calendarID,
		IP:            getClientIP(r),
		UserAgent:     userAgent(r),
		Success:       false,
		FailureReason: reason,
	})
}

// CalendarCreated logs a new calendar.
func (l *Logger) CalendarCreated(ctx context.Context, r *http.Request, actorID, calendarID primitive.ObjectID) {
	l.activity(ctx, r, audit.EventCalendarCreated, actorID, "calendar", calendarID, nil)
}

// CalendarDeleted logs a calendar removal along with how many meal rows went with it.
func (l *Logger) CalendarDeleted(ctx context.Context, r *http.Request, actorID, calendarID primitive.ObjectID, mealsRemoved int64) {
	l.activity(ctx, r, audit.EventCalendarDeleted, actorID, "calendar", calendarID, map[string]string{
		"meals_removed": strconv.FormatInt(mealsRemoved, 10),
	})
}

// GroceryListCreated logs a grocery list built from a calendar window.
func (l *Logger) GroceryListCreated(ctx context.Context, r *http.Request, actorID, listID, calendarID primitive.ObjectID, itemCount int) {
	l.activity(ctx, r, audit.EventGroceryListCreated, actorID, "grocery_list", listID, map[string]string{
		"calendar_id": calendarID.Hex(),
		"item_count":  strconv.Itoa(itemCount),
	})
}

// RecipeDeleted logs a recipe soft delete.
func (l *Logger) RecipeDeleted(ctx context.Context, r *http.Request, actorID, recipeID primitive.ObjectID) {
	l.activity(ctx, r, audit.EventRecipeDeleted, actorID, "recipe", recipeID, nil)
}

// RecipeVisibilityChanged logs a sharing change on a recipe.
func (l *Logger) RecipeVisibilityChanged(ctx context.Context, r *http.Request, actorID, recipeID primitive.ObjectID, visibility string) {
	l.activity(ctx, r, audit.EventRecipeVisibilityChanged, actorID, "recipe", recipeID, map[string]string{
		"visibility": visibility,
	})
}

// GroupCreated logs a new group.
func (l *Logger) GroupCreated(ctx context.Context, r *http.Request, actorID, groupID primitive.ObjectID, name string) {
	l.activity(ctx, r, audit.EventGroupCreated, actorID, "group", groupID, map[string]string{
		"group_name": name,
	})
}

// GroupDeleted logs a group removal along with how many memberships went with it.
func (l *Logger) GroupDeleted(ctx context.Context, r *http.Request, actorID, groupID primitive.ObjectID, membersRemoved int64) {
	l.activity(ctx, r, audit.EventGroupDeleted, actorID, "group", groupID, map[string]string{
		"members_removed": strconv.FormatInt(membersRemoved, 10),
	})
}

// MemberAdded logs a user joining a group.
func (l *Logger) MemberAdded(ctx context.Context, r *http.Request, actorID, groupID, userID primitive.ObjectID, role string) {
	l.activity(ctx, r, audit.EventMemberAdded, actorID, "group", groupID, map[string]string{
		"user_id": userID.Hex(),
		"role":    role,
	})
}

// MemberRemoved logs a user leaving or being removed from a group.
func (l *Logger) MemberRemoved(ctx context.Context, r *http.Request, actorID, groupID, userID primitive.ObjectID) {
	l.activity(ctx, r, audit.EventMemberRemoved, actorID, "group", groupID, map[string]string{
		"user_id": userID.Hex(),
	})
}

// MemberRoleChanged logs a promotion or demotion inside a group.
func (l *Logger) MemberRoleChanged(ctx context.Context, r *http.Request, actorID, groupID, userID primitive.ObjectID, role string) {
	l.activity(ctx, r, audit.EventMemberRoleChanged, actorID, "group", groupID, map[string]string{
		"user_id": userID.Hex(),
		"role":    role,
	})
}

// PreferencesChanged logs a user replacing their dietary preferences.
func (l *Logger) PreferencesChanged(ctx context.Context, r *http.Request, userID primitive.ObjectID, prefs []string) {
	l.activity(ctx, r, audit.EventPreferencesChanged, userID, "user", userID, map[string]string{
		"dietary_preferences": strings.Join(prefs, ","),
	})
}

// --- Security Events ---

// LoginSuccess logs a session being issued.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:     audit.CategorySecurity,
		EventType:    audit.EventLoginSuccess,
		ActorID:      &userID,
		ResourceKind: "user",
		ResourceID:   &userID,
		IP:           getClientIP(r),
		UserAgent:    userAgent(r),
		Success:      true,
	})
}

// LoginFailed logs a refused sign-in. The attempted email is kept for review.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, email, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategorySecurity,
		EventType:     audit.EventLoginFailed,
		IP:            getClientIP(r),
		UserAgent:     userAgent(r),
		Success:       false,
		FailureReason: reason,
		Details:       map[string]string{"attempted_email": email},
	})
}

// Logout logs a session being ended.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:     audit.CategorySecurity,
		EventType:    audit.EventLogout,
		ActorID:      &userID,
		ResourceKind: "user",
		ResourceID:   &userID,
		IP:           getClientIP(r),
		UserAgent:    userAgent(r),
		Success:      true,
	})
}

// AccessDenied logs a refused read or write. actorID is nil for anonymous callers.
func (l *Logger) AccessDenied(ctx context.Context, r *http.Request, actorID *primitive.ObjectID, kind string, resourceID primitive.ObjectID, action string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategorySecurity,
		EventType:     audit.EventAccessDenied,
		ActorID:       actorID,
		ResourceKind:  kind,
		ResourceID:    &resourceID,
		IP:            getClientIP(r),
		UserAgent:     userAgent(r),
		Success:       false,
		FailureReason: "not permitted to " + action,
		Details:       map[string]string{"action": action},
	})
}
