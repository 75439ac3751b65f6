// internal/app/store/calendars/calendarstore.go
package calendarstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/mealhub/internal/app/system/normalize"
	"github.com/dalemusser/mealhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrInvalidVisibility = errors.New("visibility must be private, public, or group with a group id")
	ErrInvalidMealType   = errors.New("meal type must be breakfast, lunch, dinner or snack")
	ErrEmptyName         = errors.New("calendar name is required")
)

type Store struct {
	c     *mongo.Collection
	meals *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:     db.Collection("calendars"),
		meals: db.Collection("calendar_meals"),
	}
}

// Day truncates t to midnight UTC, the form meal_date is stored in.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Create inserts a new calendar.
func (s *Store) Create(ctx context.Context, c models.Calendar) (models.Calendar, error) {
	c.Name = normalize.Name(c.Name)
	if c.Name == "" {
		return models.Calendar{}, ErrEmptyName
	}
	if c.Visibility == "" {
		c.Visibility = models.VisibilityPrivate
	}
	if !c.Visibility.Valid() || (c.Visibility == models.VisibilityGroup) != (c.GroupID != nil) {
		return models.Calendar{}, ErrInvalidVisibility
	}
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Calendar{}, err
	}
	return c, nil
}

// GetByID loads a calendar. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Calendar, error) {
	var c models.Calendar
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return models.Calendar{}, err
	}
	return c, nil
}

// Delete removes a calendar and all of its meal rows. Callers wanting both
// deletes to be atomic run this inside txn.Run. Returns the number of meal
// rows removed.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.meals.DeleteMany(ctx, bson.M{"calendar_id": id})
	if err != nil {
		return 0, err
	}
	cres, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	if cres.DeletedCount == 0 {
		return 0, mongo.ErrNoDocuments
	}
	return res.DeletedCount, nil
}

func prepareMeal(m *models.CalendarMeal, now time.Time) error {
	if !models.ValidMealType(m.MealType) {
		return ErrInvalidMealType
	}
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	m.MealDate = Day(m.MealDate)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	return nil
}

// InsertMeals batch-inserts meal rows and returns how many were written.
// Either every row is valid and the batch is sent, or nothing is written.
func (s *Store) InsertMeals(ctx context.Context, meals []models.CalendarMeal) (int, error) {
	if len(meals) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(meals))
	for i := range meals {
		if err := prepareMeal(&meals[i], now); err != nil {
			return 0, err
		}
		docs = append(docs, meals[i])
	}
	res, err := s.meals.InsertMany(ctx, docs)
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}

// AddMeal inserts a single meal row.
func (s *Store) AddMeal(ctx context.Context, m models.CalendarMeal) (models.CalendarMeal, error) {
	if err := prepareMeal(&m, time.Now().UTC()); err != nil {
		return models.CalendarMeal{}, err
	}
	if _, err := s.meals.InsertOne(ctx, m); err != nil {
		return models.CalendarMeal{}, err
	}
	return m, nil
}

// DeleteMeal removes one meal row from a calendar.
func (s *Store) DeleteMeal(ctx context.Context, calendarID, mealID primitive.ObjectID) error {
	res, err := s.meals.DeleteOne(ctx, bson.M{"_id": mealID, "calendar_id": calendarID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListMeals returns the calendar's meal rows with meal_date in [from, to]
// (both inclusive, compared by day), ordered by date then insertion.
func (s *Store) ListMeals(ctx context.Context, calendarID primitive.ObjectID, from, to time.Time) ([]models.CalendarMeal, error) {
	filter := bson.M{
		"calendar_id": calendarID,
		"meal_date":   bson.M{"$gte": Day(from), "$lte": Day(to)},
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "meal_date", Value: 1},
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})
	cur, err := s.meals.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.CalendarMeal
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountMeals returns the total number of meal rows on a calendar.
func (s *Store) CountMeals(ctx context.Context, calendarID primitive.ObjectID) (int64, error) {
	return s.meals.CountDocuments(ctx, bson.M{"calendar_id": calendarID})
}
