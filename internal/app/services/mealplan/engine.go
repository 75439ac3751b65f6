// Package mealplan fills a calendar with recipes over a date range.
//
// A run validates the request, checks that the caller may edit the
// calendar, builds one selection pool per required category from the
// caller's candidate set, then picks recipes day by day. All rows are
// written together at the end; any failure leaves the calendar untouched.
package mealplan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/mealhub/internal/app/policy/accesspolicy"
	calendarstore "github.com/dalemusser/mealhub/internal/app/store/calendars"
	collectionstore "github.com/dalemusser/mealhub/internal/app/store/collections"
	recipestore "github.com/dalemusser/mealhub/internal/app/store/recipes"
	"github.com/dalemusser/mealhub/internal/app/system/metrics"
	"github.com/dalemusser/mealhub/internal/app/system/txn"
	"github.com/dalemusser/mealhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// RecipeLister returns the recipes matching a query.
type RecipeLister interface {
	ListRecipes(ctx context.Context, q recipestore.Query) ([]models.Recipe, error)
}

// CalendarGetter loads a calendar; a miss returns mongo.ErrNoDocuments.
type CalendarGetter interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Calendar, error)
}

// CollectionGetter loads a recipe collection; a miss returns mongo.ErrNoDocuments.
type CollectionGetter interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.RecipeCollection, error)
}

// MealWriter batch-inserts calendar meal rows.
type MealWriter interface {
	InsertMeals(ctx context.Context, meals []models.CalendarMeal) (int, error)
}

// TxRunner runs fn atomically.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Request describes one generation run.
type Request struct {
	CalendarID            primitive.ObjectID
	StartDate             time.Time
	Period                string
	MealTypes             []string
	SnacksPerDay          int
	DessertsPerDay        int
	UseDietaryPreferences bool
	AvoidDuplicates       bool
	CollectionID          *primitive.ObjectID
}

// Result reports what a successful run wrote.
type Result struct {
	MealsCreated int       `json:"meals_created"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
}

// Engine generates meal plans. Rand, Log and Metrics may be left nil.
type Engine struct {
	Recipes     RecipeLister
	Calendars   CalendarGetter
	Collections CollectionGetter
	Meals       MealWriter
	RunInTx     TxRunner
	Rand        Rand
	Log         *zap.Logger
	Metrics     *metrics.Metrics
}

// NewEngine wires an Engine to the Mongo stores with transactional writes.
func NewEngine(db *mongo.Database, logger *zap.Logger, m *metrics.Metrics) *Engine {
	cals := calendarstore.New(db)
	return &Engine{
		Recipes:     recipestore.New(db),
		Calendars:   cals,
		Collections: collectionstore.New(db),
		Meals:       cals,
		RunInTx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return txn.Run(ctx, db, logger, fn)
		},
		Rand:    globalRand{},
		Log:     logger,
		Metrics: m,
	}
}

// slot is one meal to place on each day: the pool it draws from and the
// meal type the row is stored under.
type slot struct {
	category string
	mealType string
}

// plan expands the request into its per-day slots and the categories whose
// pools are needed, both in canonical order.
func plan(req Request) ([]slot, []string, error) {
	if len(req.MealTypes) == 0 {
		return nil, nil, ErrInvalidMealTypes
	}
	want := make(map[string]bool, len(req.MealTypes))
	for _, t := range req.MealTypes {
		if !models.ValidMealType(t) {
			return nil, nil, ErrInvalidMealTypes
		}
		want[t] = true
	}
	if req.SnacksPerDay < 0 || req.DessertsPerDay < 0 {
		return nil, nil, ErrInvalidQuota
	}

	var slots []slot
	for _, t := range models.MealTypes {
		if want[t] {
			slots = append(slots, slot{category: t, mealType: t})
		}
	}
	for i := 0; i < req.SnacksPerDay; i++ {
		slots = append(slots, slot{category: models.CategorySnack, mealType: models.MealSnack})
	}
	// Desserts have no slot of their own and are stored as snacks.
	for i := 0; i < req.DessertsPerDay; i++ {
		slots = append(slots, slot{category: models.CategoryDessert, mealType: models.MealSnack})
	}

	var categories []string
	seen := make(map[string]bool)
	for _, s := range slots {
		if !seen[s.category] {
			seen[s.category] = true
			categories = append(categories, s.category)
		}
	}
	return slots, categories, nil
}

// Generate fills the calendar for the requested window.
func (e *Engine) Generate(ctx context.Context, p *accesspolicy.Principal, req Request) (Result, error) {
	start := time.Now()
	res, err := e.generate(ctx, p, req)
	e.Metrics.RecordGeneration(resultLabel(err), res.MealsCreated, time.Since(start).Seconds())

	log := e.logger().With(zap.String("calendar_id", req.CalendarID.Hex()))
	if err != nil {
		log.Info("meal plan not generated", zap.Error(err))
		return Result{}, err
	}
	log.Info("meal plan generated",
		zap.Int("meals_created", res.MealsCreated),
		zap.Time("start_date", res.StartDate),
		zap.Time("end_date", res.EndDate),
	)
	return res, nil
}

func (e *Engine) generate(ctx context.Context, p *accesspolicy.Principal, req Request) (Result, error) {
	first, last, err := Window(req.StartDate, req.Period)
	if err != nil {
		return Result{}, err
	}
	slots, categories, err := plan(req)
	if err != nil {
		return Result{}, err
	}

	cal, err := e.Calendars.GetByID(ctx, req.CalendarID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Result{}, ErrCalendarNotFound
		}
		return Result{}, fmt.Errorf("load calendar: %w", err)
	}
	if !accesspolicy.CanEdit(p, cal) {
		return Result{}, accesspolicy.ErrForbidden
	}

	var scope *models.RecipeCollection
	if req.CollectionID != nil {
		coll, err := e.Collections.GetByID(ctx, *req.CollectionID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return Result{}, ErrCollectionNotFound
			}
			return Result{}, fmt.Errorf("load collection: %w", err)
		}
		if coll.UserID != p.ID {
			return Result{}, ErrCollectionNotFound
		}
		scope = &coll
	}

	access := accesspolicy.CandidateFilter(p, accesspolicy.KindRecipe, scope)
	var tags []string
	if req.UseDietaryPreferences && len(p.DietaryPreferences) > 0 {
		tags = p.DietaryPreferences
	}

	pools := make(map[string][]models.Recipe, len(categories))
	for _, c := range categories {
		pool, err := e.Recipes.ListRecipes(ctx, recipestore.Query{Access: access, Category: c, AnyTags: tags})
		if err != nil {
			return Result{}, fmt.Errorf("load %s pool: %w", c, err)
		}
		if len(pool) == 0 {
			return Result{}, &EmptyPoolError{Category: c}
		}
		pools[c] = pool
	}

	pk := newPicker(e.rand(), req.AvoidDuplicates)
	now := time.Now().UTC()
	var rows []models.CalendarMeal
	for _, d := range days(first, last) {
		for _, s := range slots {
			r := pk.pick(pools[s.category])
			rows = append(rows, models.CalendarMeal{
				ID:         primitive.NewObjectID(),
				CalendarID: cal.ID,
				RecipeID:   r.ID,
				MealDate:   d,
				MealType:   s.mealType,
				CreatedAt:  now,
			})
		}
	}

	var created int
	err = e.runInTx(ctx, func(ctx context.Context) error {
		n, err := e.Meals.InsertMeals(ctx, rows)
		if err != nil {
			return err
		}
		created = n
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("insert meals: %w", err)
	}

	return Result{MealsCreated: created, StartDate: first, EndDate: last}, nil
}

func (e *Engine) runInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if e.RunInTx == nil {
		return fn(ctx)
	}
	return e.RunInTx(ctx, fn)
}

func (e *Engine) rand() Rand {
	if e.Rand == nil {
		return globalRand{}
	}
	return e.Rand
}

func (e *Engine) logger() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrEmptyPool):
		return "empty_pool"
	case errors.Is(err, accesspolicy.ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrInvalidPeriod), errors.Is(err, ErrInvalidMealTypes),
		errors.Is(err, ErrInvalidQuota), errors.Is(err, ErrCalendarNotFound),
		errors.Is(err, ErrCollectionNotFound):
		return "invalid"
	default:
		return "error"
	}
}
