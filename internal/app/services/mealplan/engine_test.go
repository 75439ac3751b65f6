package mealplan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/mealhub/internal/app/policy/accesspolicy"
	recipestore "github.com/dalemusser/mealhub/internal/app/store/recipes"
	"github.com/dalemusser/mealhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// --- fakes ---

type fakeRecipes struct {
	all   []models.Recipe
	calls int
}

func (f *fakeRecipes) ListRecipes(_ context.Context, q recipestore.Query) ([]models.Recipe, error) {
	f.calls++
	var out []models.Recipe
	for _, r := range f.all {
		if q.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeCalendars struct {
	byID  map[primitive.ObjectID]models.Calendar
	calls int
}

func (f *fakeCalendars) GetByID(_ context.Context, id primitive.ObjectID) (models.Calendar, error) {
	f.calls++
	c, ok := f.byID[id]
	if !ok {
		return models.Calendar{}, mongo.ErrNoDocuments
	}
	return c, nil
}

type fakeCollections struct {
	byID map[primitive.ObjectID]models.RecipeCollection
}

func (f *fakeCollections) GetByID(_ context.Context, id primitive.ObjectID) (models.RecipeCollection, error) {
	c, ok := f.byID[id]
	if !ok {
		return models.RecipeCollection{}, mongo.ErrNoDocuments
	}
	return c, nil
}

type fakeMeals struct {
	rows  []models.CalendarMeal
	calls int
	err   error
}

func (f *fakeMeals) InsertMeals(_ context.Context, meals []models.CalendarMeal) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	f.rows = append(f.rows, meals...)
	return len(meals), nil
}

// seqRand returns the given values in turn (modulo n), repeating the last one.
type seqRand struct {
	vals []int
	i    int
}

func (s *seqRand) Intn(n int) int {
	if len(s.vals) == 0 {
		return 0
	}
	v := s.vals[s.i]
	if s.i < len(s.vals)-1 {
		s.i++
	}
	return v % n
}

// --- fixtures ---

type env struct {
	engine      *Engine
	recipes     *fakeRecipes
	calendars   *fakeCalendars
	collections *fakeCollections
	meals       *fakeMeals
	txCalls     int

	owner    *accesspolicy.Principal
	calendar models.Calendar
}

func newEnv(t *testing.T) *env {
	t.Helper()
	owner := &accesspolicy.Principal{ID: primitive.NewObjectID()}
	cal := models.Calendar{
		ID:         primitive.NewObjectID(),
		Name:       "Plan",
		UserID:     owner.ID,
		Visibility: models.VisibilityPrivate,
	}
	e := &env{
		recipes:     &fakeRecipes{},
		calendars:   &fakeCalendars{byID: map[primitive.ObjectID]models.Calendar{cal.ID: cal}},
		collections: &fakeCollections{byID: map[primitive.ObjectID]models.RecipeCollection{}},
		meals:       &fakeMeals{},
		owner:       owner,
		calendar:    cal,
	}
	e.engine = &Engine{
		Recipes:     e.recipes,
		Calendars:   e.calendars,
		Collections: e.collections,
		Meals:       e.meals,
		RunInTx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			e.txCalls++
			return fn(ctx)
		},
		Rand: &seqRand{},
	}
	return e
}

func (e *env) addRecipe(title, category string, vis models.Visibility, tags ...string) models.Recipe {
	r := models.Recipe{
		ID:         primitive.NewObjectID(),
		Title:      title,
		Category:   category,
		OwnerID:    e.owner.ID,
		Visibility: vis,
		Tags:       tags,
	}
	e.recipes.all = append(e.recipes.all, r)
	return r
}

func (e *env) stockAll() {
	for _, c := range models.RecipeCategories {
		e.addRecipe(c+" one", c, models.VisibilityPublic)
		e.addRecipe(c+" two", c, models.VisibilityPublic)
	}
}

var monday = time.Date(2024, 5, 6, 15, 30, 0, 0, time.UTC)

// --- tests ---

func TestWindow(t *testing.T) {
	tests := []struct {
		period   string
		wantDays int
		wantErr  bool
	}{
		{PeriodDay, 0, false},
		{PeriodWeek, 6, false},
		{PeriodMonth, 29, false},
		{"fortnight", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			first, last, err := Window(monday, tt.period)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPeriod) {
					t.Fatalf("expected ErrInvalidPeriod, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Window failed: %v", err)
			}
			if !first.Equal(time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)) {
				t.Errorf("first = %v, want midnight of start", first)
			}
			if got := int(last.Sub(first).Hours() / 24); got != tt.wantDays {
				t.Errorf("end - start = %d days, want %d", got, tt.wantDays)
			}
		})
	}
}

func TestGenerate_WeekThreeMeals(t *testing.T) {
	e := newEnv(t)
	e.stockAll()

	res, err := e.engine.Generate(context.Background(), e.owner, Request{
		CalendarID: e.calendar.ID,
		StartDate:  monday,
		Period:     PeriodWeek,
		MealTypes:  []string{models.MealDinner, models.MealBreakfast, models.MealLunch},
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if res.MealsCreated != 21 {
		t.Fatalf("expected 21 meals, got %d", res.MealsCreated)
	}
	if len(e.meals.rows) != 21 {
		t.Fatalf("expected 21 rows written, got %d", len(e.meals.rows))
	}
	if e.txCalls != 1 || e.meals.calls != 1 {
		t.Errorf("expected one transactional batch insert, got tx=%d inserts=%d", e.txCalls, e.meals.calls)
	}
	if !res.EndDate.Equal(res.StartDate.AddDate(0, 0, 6)) {
		t.Errorf("expected end = start + 6 days, got %v .. %v", res.StartDate, res.EndDate)
	}

	wantOrder := []string{models.MealBreakfast, models.MealLunch, models.MealDinner}
	for i, row := range e.meals.rows {
		day := i / 3
		wantDate := res.StartDate.AddDate(0, 0, day)
		if !row.MealDate.Equal(wantDate) {
			t.Errorf("row %d: date %v, want %v", i, row.MealDate, wantDate)
		}
		if row.MealType != wantOrder[i%3] {
			t.Errorf("row %d: type %q, want %q", i, row.MealType, wantOrder[i%3])
		}
		if row.CalendarID != e.calendar.ID {
			t.Errorf("row %d: wrong calendar", i)
		}
	}
}

func TestGenerate_DayWithSnacksAndDessert(t *testing.T) {
	e := newEnv(t)
	e.stockAll()

	res, err := e.engine.Generate(context.Background(), e.owner, Request{
		CalendarID:     e.calendar.ID,
		StartDate:      monday,
		Period:         PeriodDay,
		MealTypes:      []string{models.MealBreakfast},
		SnacksPerDay:   2,
		DessertsPerDay: 1,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if res.MealsCreated != 4 {
		t.Fatalf("expected 4 meals, got %d", res.MealsCreated)
	}

	byID := make(map[primitive.ObjectID]models.Recipe)
	for _, r := range e.recipes.all {
		byID[r.ID] = r
	}

	wantTypes := []string{models.MealBreakfast, models.MealSnack, models.MealSnack, models.MealSnack}
	wantCats := []string{models.CategoryBreakfast, models.CategorySnack, models.CategorySnack, models.CategoryDessert}
	for i, row := range e.meals.rows {
		if row.MealType != wantTypes[i] {
			t.Errorf("row %d: type %q, want %q", i, row.MealType, wantTypes[i])
		}
		if got := byID[row.RecipeID].Category; got != wantCats[i] {
			t.Errorf("row %d: recipe category %q, want %q", i, got, wantCats[i])
		}
	}
}

func TestGenerate_EmptyPoolWritesNothing(t *testing.T) {
	e := newEnv(t)
	e.addRecipe("Toast", models.CategoryBreakfast, models.VisibilityPrivate)

	_, err := e.engine.Generate(context.Background(), e.owner, Request{
		CalendarID:     e.calendar.ID,
		StartDate:      monday,
		Period:         PeriodWeek,
		MealTypes:      []string{models.MealBreakfast},
		DessertsPerDay: 1,
	})
	if !errors.Is(err, ErrEmptyPool) {
		t.Fatalf("expected ErrEmptyPool, got %v", err)
	}
	var pe *EmptyPoolError
	if !errors.As(err, &pe) || pe.Category != models.CategoryDessert {
		t.Fatalf("expected EmptyPoolError for dessert, got %v", err)
	}
	if e.meals.calls != 0 || len(e.meals.rows) != 0 {
		t.Errorf("expected no writes, got %d calls and %d rows", e.meals.calls, len(e.meals.rows))
	}
}

func TestGenerate_ValidationBeforeStoreAccess(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{"unknown period", Request{Period: "year", MealTypes: []string{models.MealLunch}}, ErrInvalidPeriod},
		{"no meal types", Request{Period: PeriodDay}, ErrInvalidMealTypes},
		{"dessert is not a meal type", Request{Period: PeriodDay, MealTypes: []string{models.CategoryDessert}}, ErrInvalidMealTypes},
		{"negative snacks", Request{Period: PeriodDay, MealTypes: []string{models.MealLunch}, SnacksPerDay: -1}, ErrInvalidQuota},
		{"negative desserts", Request{Period: PeriodDay, MealTypes: []string{models.MealLunch}, DessertsPerDay: -2}, ErrInvalidQuota},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			e.stockAll()
			tt.req.CalendarID = e.calendar.ID
			tt.req.StartDate = monday

			_, err := e.engine.Generate(context.Background(), e.owner, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if e.calendars.calls != 0 || e.recipes.calls != 0 || e.meals.calls != 0 {
				t.Errorf("expected no store access, got calendars=%d recipes=%d meals=%d",
					e.calendars.calls, e.recipes.calls, e.meals.calls)
			}
		})
	}
}

func TestGenerate_CalendarAccess(t *testing.T) {
	e := newEnv(t)
	e.stockAll()

	gid := primitive.NewObjectID()
	shared := models.Calendar{
		ID:         primitive.NewObjectID(),
		UserID:     e.owner.ID,
		Visibility: models.VisibilityGroup,
		GroupID:    &gid,
	}
	e.calendars.byID[shared.ID] = shared

	member := &accesspolicy.Principal{ID: primitive.NewObjectID(), GroupRoles: map[primitive.ObjectID]string{gid: models.GroupRoleMember}}
	gadmin := &accesspolicy.Principal{ID: primitive.NewObjectID(), GroupRoles: map[primitive.ObjectID]string{gid: models.GroupRoleAdmin}}
	sysAdmin := &accesspolicy.Principal{ID: primitive.NewObjectID(), IsAdmin: true}

	tests := []struct {
		name       string
		principal  *accesspolicy.Principal
		calendarID primitive.ObjectID
		wantErr    error
	}{
		{"missing calendar", e.owner, primitive.NewObjectID(), ErrCalendarNotFound},
		{"anonymous", nil, shared.ID, accesspolicy.ErrForbidden},
		{"group member cannot edit", member, shared.ID, accesspolicy.ErrForbidden},
		{"group admin can edit", gadmin, shared.ID, nil},
		{"system admin can edit", sysAdmin, e.calendar.ID, nil},
		{"stranger on private", member, e.calendar.ID, accesspolicy.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.engine.Generate(context.Background(), tt.principal, Request{
				CalendarID: tt.calendarID,
				StartDate:  monday,
				Period:     PeriodDay,
				MealTypes:  []string{models.MealDinner},
			})
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Generate failed: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGenerate_GroupAdminDrawsFromOwnCandidates(t *testing.T) {
	e := newEnv(t)
	gid := primitive.NewObjectID()
	gadmin := &accesspolicy.Principal{ID: primitive.NewObjectID(), GroupRoles: map[primitive.ObjectID]string{gid: models.GroupRoleAdmin}}
	shared := models.Calendar{ID: primitive.NewObjectID(), UserID: e.owner.ID, Visibility: models.VisibilityGroup, GroupID: &gid}
	e.calendars.byID[shared.ID] = shared

	// owner's private dinner is not in the group admin's candidate set
	e.addRecipe("Owner Private", models.CategoryDinner, models.VisibilityPrivate)
	_, err := e.engine.Generate(context.Background(), gadmin, Request{
		CalendarID: shared.ID,
		StartDate:  monday,
		Period:     PeriodDay,
		MealTypes:  []string{models.MealDinner},
	})
	var pe *EmptyPoolError
	if !errors.As(err, &pe) || pe.Category != models.CategoryDinner {
		t.Fatalf("expected empty dinner pool, got %v", err)
	}
}

func TestGenerate_Collection(t *testing.T) {
	e := newEnv(t)
	in := e.addRecipe("In Collection", models.CategoryLunch, models.VisibilityPrivate)
	e.addRecipe("Not In Collection", models.CategoryLunch, models.VisibilityPrivate)

	mine := models.RecipeCollection{ID: primitive.NewObjectID(), UserID: e.owner.ID, Items: []primitive.ObjectID{in.ID}}
	theirs := models.RecipeCollection{ID: primitive.NewObjectID(), UserID: primitive.NewObjectID(), Items: []primitive.ObjectID{in.ID}}
	e.collections.byID[mine.ID] = mine
	e.collections.byID[theirs.ID] = theirs
	missing := primitive.NewObjectID()

	t.Run("missing collection", func(t *testing.T) {
		_, err := e.engine.Generate(context.Background(), e.owner, Request{
			CalendarID: e.calendar.ID, StartDate: monday, Period: PeriodDay,
			MealTypes: []string{models.MealLunch}, CollectionID: &missing,
		})
		if !errors.Is(err, ErrCollectionNotFound) {
			t.Fatalf("expected ErrCollectionNotFound, got %v", err)
		}
	})

	t.Run("someone else's collection", func(t *testing.T) {
		_, err := e.engine.Generate(context.Background(), e.owner, Request{
			CalendarID: e.calendar.ID, StartDate: monday, Period: PeriodDay,
			MealTypes: []string{models.MealLunch}, CollectionID: &theirs.ID,
		})
		if !errors.Is(err, ErrCollectionNotFound) {
			t.Fatalf("expected ErrCollectionNotFound, got %v", err)
		}
	})

	t.Run("scoped to items", func(t *testing.T) {
		e.meals.rows = nil
		e.engine.Rand = &seqRand{vals: []int{1, 1, 1, 1, 1, 1, 1}}
		res, err := e.engine.Generate(context.Background(), e.owner, Request{
			CalendarID: e.calendar.ID, StartDate: monday, Period: PeriodWeek,
			MealTypes: []string{models.MealLunch}, CollectionID: &mine.ID,
		})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if res.MealsCreated != 7 {
			t.Fatalf("expected 7 meals, got %d", res.MealsCreated)
		}
		for i, row := range e.meals.rows {
			if row.RecipeID != in.ID {
				t.Errorf("row %d: picked recipe outside the collection", i)
			}
		}
	})
}

func TestGenerate_AvoidDuplicates(t *testing.T) {
	e := newEnv(t)
	a := e.addRecipe("A", models.CategoryLunch, models.VisibilityPrivate)
	b := e.addRecipe("B", models.CategoryLunch, models.VisibilityPrivate)
	c := e.addRecipe("C", models.CategoryLunch, models.VisibilityPrivate)

	_, err := e.engine.Generate(context.Background(), e.owner, Request{
		CalendarID:      e.calendar.ID,
		StartDate:       monday,
		Period:          PeriodWeek,
		MealTypes:       []string{models.MealLunch},
		AvoidDuplicates: true,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(e.meals.rows) != 7 {
		t.Fatalf("expected 7 rows, got %d", len(e.meals.rows))
	}

	// the first three picks exhaust the pool without repeats
	seen := map[primitive.ObjectID]bool{}
	for _, row := range e.meals.rows[:3] {
		if seen[row.RecipeID] {
			t.Fatalf("duplicate before pool was exhausted: %v", row.RecipeID)
		}
		seen[row.RecipeID] = true
	}
	for _, id := range []primitive.ObjectID{a.ID, b.ID, c.ID} {
		if !seen[id] {
			t.Errorf("expected recipe %s among first three picks", id.Hex())
		}
	}
	// afterwards the whole pool is eligible again
	for i, row := range e.meals.rows[3:] {
		if row.RecipeID != a.ID {
			t.Errorf("row %d: expected fallback to whole pool (first recipe), got %s", i+3, row.RecipeID.Hex())
		}
	}
}

func TestGenerate_AvoidDuplicatesSpansCategories(t *testing.T) {
	e := newEnv(t)
	e.addRecipe("Snack A", models.CategorySnack, models.VisibilityPrivate)
	e.addRecipe("Snack B", models.CategorySnack, models.VisibilityPrivate)

	_, err := e.engine.Generate(context.Background(), e.owner, Request{
		CalendarID:      e.calendar.ID,
		StartDate:       monday,
		Period:          PeriodDay,
		MealTypes:       []string{models.MealSnack},
		SnacksPerDay:    1,
		AvoidDuplicates: true,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(e.meals.rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(e.meals.rows))
	}
	if e.meals.rows[0].RecipeID == e.meals.rows[1].RecipeID {
		t.Error("expected the extra snack to avoid the snack slot's pick")
	}
}

func TestGenerate_WithoutAvoidDuplicates(t *testing.T) {
	e := newEnv(t)
	first := e.addRecipe("A", models.CategoryDinner, models.VisibilityPrivate)
	e.addRecipe("B", models.CategoryDinner, models.VisibilityPrivate)

	_, err := e.engine.Generate(context.Background(), e.owner, Request{
		CalendarID: e.calendar.ID,
		StartDate:  monday,
		Period:     PeriodWeek,
		MealTypes:  []string{models.MealDinner},
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for i, row := range e.meals.rows {
		if row.RecipeID != first.ID {
			t.Errorf("row %d: expected repeated pick of first recipe", i)
		}
	}
}

func TestGenerate_DietaryPreferences(t *testing.T) {
	e := newEnv(t)
	e.owner.DietaryPreferences = []string{"vegan"}
	e.addRecipe("Steak", models.CategoryDinner, models.VisibilityPrivate)
	vegan := e.addRecipe("Tofu Bowl", models.CategoryDinner, models.VisibilityPrivate, "vegan")

	t.Run("applied when requested", func(t *testing.T) {
		e.meals.rows = nil
		_, err := e.engine.Generate(context.Background(), e.owner, Request{
			CalendarID: e.calendar.ID, StartDate: monday, Period: PeriodWeek,
			MealTypes: []string{models.MealDinner}, UseDietaryPreferences: true,
		})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		for i, row := range e.meals.rows {
			if row.RecipeID != vegan.ID {
				t.Errorf("row %d: expected vegan recipe", i)
			}
		}
	})

	t.Run("ignored when not requested", func(t *testing.T) {
		e.meals.rows = nil
		e.engine.Rand = &seqRand{vals: []int{0}}
		_, err := e.engine.Generate(context.Background(), e.owner, Request{
			CalendarID: e.calendar.ID, StartDate: monday, Period: PeriodDay,
			MealTypes: []string{models.MealDinner},
		})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if e.meals.rows[0].RecipeID == vegan.ID {
			t.Error("expected the unfiltered pool's first recipe")
		}
	})
}

func TestGenerate_SoftDeletedNeverPicked(t *testing.T) {
	e := newEnv(t)
	gone := e.addRecipe("Gone", models.CategoryDinner, models.VisibilityPublic)
	now := time.Now()
	e.recipes.all[0].DeletedAt = &now
	live := e.addRecipe("Live", models.CategoryDinner, models.VisibilityPrivate)

	_, err := e.engine.Generate(context.Background(), e.owner, Request{
		CalendarID: e.calendar.ID, StartDate: monday, Period: PeriodMonth,
		MealTypes: []string{models.MealDinner},
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(e.meals.rows) != 30 {
		t.Fatalf("expected 30 rows, got %d", len(e.meals.rows))
	}
	for i, row := range e.meals.rows {
		if row.RecipeID == gone.ID || row.RecipeID != live.ID {
			t.Errorf("row %d: picked soft-deleted recipe", i)
		}
	}
}

func TestGenerate_InsertFailure(t *testing.T) {
	e := newEnv(t)
	e.stockAll()
	boom := errors.New("write failed")
	e.meals.err = boom

	res, err := e.engine.Generate(context.Background(), e.owner, Request{
		CalendarID: e.calendar.ID, StartDate: monday, Period: PeriodDay,
		MealTypes: []string{models.MealLunch},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected write error, got %v", err)
	}
	if res.MealsCreated != 0 {
		t.Errorf("expected zero result, got %+v", res)
	}
}
