package grocery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/mealhub/internal/app/policy/accesspolicy"
	calendarstore "github.com/dalemusser/mealhub/internal/app/store/calendars"
	grocerystore "github.com/dalemusser/mealhub/internal/app/store/grocerylists"
	recipestore "github.com/dalemusser/mealhub/internal/app/store/recipes"
	"github.com/dalemusser/mealhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/mealhub/internal/app/system/metrics"
	"github.com/dalemusser/mealhub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	ErrCalendarNotFound = errors.New("calendar not found")
	ErrListNotFound     = errors.New("grocery list not found")
	ErrItemNotFound     = errors.New("grocery item not found")
	ErrInvalidRange     = errors.New("from must not be after to")
	ErrInvalidItem      = errors.New("item needs a name and a non-negative quantity")
)

// CalendarReader loads a calendar and its meal rows.
type CalendarReader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Calendar, error)
	ListMeals(ctx context.Context, calendarID primitive.ObjectID, from, to time.Time) ([]models.CalendarMeal, error)
}

// RecipeReader resolves live recipes by id.
type RecipeReader interface {
	GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Recipe, error)
}

// ListStore persists grocery lists.
type ListStore interface {
	Create(ctx context.Context, g models.GroceryList) (models.GroceryList, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.GroceryList, error)
	AddItem(ctx context.Context, listID primitive.ObjectID, item models.GroceryItem) error
	SetItemChecked(ctx context.Context, listID primitive.ObjectID, itemID string, checked bool) error
}

// Service builds and edits grocery lists.
type Service struct {
	Calendars CalendarReader
	Recipes   RecipeReader
	Lists     ListStore
	Log       *zap.Logger
	Metrics   *metrics.Metrics
}

// NewService wires a Service to the Mongo stores.
func NewService(db *mongo.Database, logger *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{
		Calendars: calendarstore.New(db),
		Recipes:   recipestore.New(db),
		Lists:     grocerystore.New(db),
		Log:       logger,
		Metrics:   m,
	}
}

// BuildRequest selects the calendar window a list is built from.
type BuildRequest struct {
	CalendarID primitive.ObjectID
	From       time.Time
	To         time.Time
	Name       string
	// DefaultCategory is applied to every consolidated item.
	DefaultCategory string
}

// BuildFromCalendar consolidates the ingredients of every meal in the
// window into a new private list owned by p. Meals whose recipe has been
// deleted or is not visible to p are skipped.
func (s *Service) BuildFromCalendar(ctx context.Context, p *accesspolicy.Principal, req BuildRequest) (models.GroceryList, error) {
	if p == nil || p.ID.IsZero() {
		return models.GroceryList{}, accesspolicy.ErrForbidden
	}
	from, to := calendarstore.Day(req.From), calendarstore.Day(req.To)
	if from.After(to) {
		return models.GroceryList{}, ErrInvalidRange
	}

	cal, err := s.Calendars.GetByID(ctx, req.CalendarID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.GroceryList{}, ErrCalendarNotFound
		}
		return models.GroceryList{}, fmt.Errorf("load calendar: %w", err)
	}
	if !accesspolicy.CanView(p, cal) {
		return models.GroceryList{}, accesspolicy.ErrForbidden
	}

	meals, err := s.Calendars.ListMeals(ctx, cal.ID, from, to)
	if err != nil {
		return models.GroceryList{}, fmt.Errorf("list meals: %w", err)
	}

	ids := make([]primitive.ObjectID, 0, len(meals))
	seen := make(map[primitive.ObjectID]bool, len(meals))
	for _, m := range meals {
		if !seen[m.RecipeID] {
			seen[m.RecipeID] = true
			ids = append(ids, m.RecipeID)
		}
	}
	byID, err := s.Recipes.GetMany(ctx, ids)
	if err != nil {
		return models.GroceryList{}, fmt.Errorf("load recipes: %w", err)
	}

	recipes := make([]models.Recipe, 0, len(meals))
	skipped := 0
	for _, m := range meals {
		r, ok := byID[m.RecipeID]
		if !ok || !accesspolicy.CanView(p, r) {
			skipped++
			continue
		}
		recipes = append(recipes, r)
	}

	items := Consolidate(recipes)
	for i := range items {
		items[i].ID = uuid.NewString()
		items[i].Name = htmlsanitize.PlainText(items[i].Name)
		items[i].Category = req.DefaultCategory
	}

	name := htmlsanitize.PlainText(req.Name)
	if name == "" {
		name = fmt.Sprintf("Groceries %s to %s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	}
	calID := cal.ID
	list, err := s.Lists.Create(ctx, models.GroceryList{
		Name:       name,
		UserID:     p.ID,
		Items:      items,
		Visibility: models.VisibilityPrivate,
		CalendarID: &calID,
		DateFrom:   &from,
		DateTo:     &to,
	})
	if err != nil {
		return models.GroceryList{}, fmt.Errorf("create grocery list: %w", err)
	}

	s.Metrics.RecordGroceryList(len(items))
	s.logger().Info("grocery list built",
		zap.String("list_id", list.ID.Hex()),
		zap.String("calendar_id", cal.ID.Hex()),
		zap.Int("meals", len(meals)),
		zap.Int("meals_skipped", skipped),
		zap.Int("items", len(items)),
	)
	return list, nil
}

// GetList returns a list p may view.
func (s *Service) GetList(ctx context.Context, p *accesspolicy.Principal, id primitive.ObjectID) (models.GroceryList, error) {
	list, err := s.load(ctx, id)
	if err != nil {
		return models.GroceryList{}, err
	}
	if !accesspolicy.CanView(p, list) {
		return models.GroceryList{}, accesspolicy.ErrForbidden
	}
	return list, nil
}

// AddItem appends a manually entered item to a list p may edit.
func (s *Service) AddItem(ctx context.Context, p *accesspolicy.Principal, listID primitive.ObjectID, item models.GroceryItem) (models.GroceryItem, error) {
	item.Name = htmlsanitize.PlainText(item.Name)
	item.Unit = htmlsanitize.PlainText(item.Unit)
	item.Category = htmlsanitize.PlainText(item.Category)
	if item.Name == "" || item.Quantity < 0 {
		return models.GroceryItem{}, ErrInvalidItem
	}

	list, err := s.load(ctx, listID)
	if err != nil {
		return models.GroceryItem{}, err
	}
	if !accesspolicy.CanEdit(p, list) {
		return models.GroceryItem{}, accesspolicy.ErrForbidden
	}

	item.ID = uuid.NewString()
	item.Checked = false
	if err := s.Lists.AddItem(ctx, listID, item); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.GroceryItem{}, ErrListNotFound
		}
		return models.GroceryItem{}, err
	}
	return item, nil
}

// SetItemChecked marks one item on a list p may edit.
func (s *Service) SetItemChecked(ctx context.Context, p *accesspolicy.Principal, listID primitive.ObjectID, itemID string, checked bool) error {
	list, err := s.load(ctx, listID)
	if err != nil {
		return err
	}
	if !accesspolicy.CanEdit(p, list) {
		return accesspolicy.ErrForbidden
	}
	err = s.Lists.SetItemChecked(ctx, listID, itemID, checked)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, grocerystore.ErrItemNotFound):
		return ErrItemNotFound
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrListNotFound
	default:
		return err
	}
}

func (s *Service) load(ctx context.Context, id primitive.ObjectID) (models.GroceryList, error) {
	list, err := s.Lists.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.GroceryList{}, ErrListNotFound
		}
		return models.GroceryList{}, err
	}
	return list, nil
}

func (s *Service) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
