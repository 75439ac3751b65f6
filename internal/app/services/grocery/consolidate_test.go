package grocery

import (
	"testing"

	"github.com/dalemusser/mealhub/internal/domain/models"
)

func recipeWith(ings ...models.Ingredient) models.Recipe {
	return models.Recipe{Ingredients: ings}
}

func TestConsolidate(t *testing.T) {
	tests := []struct {
		name    string
		recipes []models.Recipe
		want    []models.GroceryItem
	}{
		{
			name:    "no recipes",
			recipes: nil,
			want:    nil,
		},
		{
			name: "same unit sums",
			recipes: []models.Recipe{
				recipeWith(models.Ingredient{Name: "sugar", Quantity: 1, Unit: "cup"}),
				recipeWith(models.Ingredient{Name: "Sugar", Quantity: 2, Unit: "cup"}),
			},
			want: []models.GroceryItem{
				{Name: "sugar", Quantity: 3, Unit: "cup"},
			},
		},
		{
			name: "mixed case merges under lower-cased name",
			recipes: []models.Recipe{
				recipeWith(models.Ingredient{Name: "Sugar", Quantity: 1, Unit: "cup"}),
				recipeWith(models.Ingredient{Name: "sugar", Quantity: 2, Unit: "cup"}),
			},
			want: []models.GroceryItem{
				{Name: "sugar", Quantity: 3, Unit: "cup"},
			},
		},
		{
			name: "mixed case with different units",
			recipes: []models.Recipe{
				recipeWith(models.Ingredient{Name: "Tomato", Quantity: 1, Unit: "cup"}),
				recipeWith(models.Ingredient{Name: "tomato", Quantity: 1, Unit: "lb"}),
				recipeWith(models.Ingredient{Name: "TOMATO", Quantity: 2, Unit: "lb"}),
			},
			want: []models.GroceryItem{
				{Name: "tomato", Quantity: 1, Unit: "cup"},
				{Name: "tomato", Quantity: 3, Unit: "lb"},
			},
		},
		{
			name: "different unit kept separate",
			recipes: []models.Recipe{
				recipeWith(models.Ingredient{Name: "tomato", Quantity: 2, Unit: "pcs"}),
				recipeWith(models.Ingredient{Name: "tomato", Quantity: 200, Unit: "g"}),
			},
			want: []models.GroceryItem{
				{Name: "tomato", Quantity: 2, Unit: "pcs"},
				{Name: "tomato", Quantity: 200, Unit: "g"},
			},
		},
		{
			name: "secondary unit accumulates",
			recipes: []models.Recipe{
				recipeWith(models.Ingredient{Name: "tomato", Quantity: 2, Unit: "pcs"}),
				recipeWith(models.Ingredient{Name: "tomato", Quantity: 200, Unit: "g"}),
				recipeWith(models.Ingredient{Name: "Tomato", Quantity: 100, Unit: "g"}),
				recipeWith(models.Ingredient{Name: "tomato", Quantity: 1, Unit: "pcs"}),
			},
			want: []models.GroceryItem{
				{Name: "tomato", Quantity: 3, Unit: "pcs"},
				{Name: "tomato", Quantity: 300, Unit: "g"},
			},
		},
		{
			name: "repeated recipe counts each time",
			recipes: []models.Recipe{
				recipeWith(models.Ingredient{Name: "egg", Quantity: 2, Unit: ""}),
				recipeWith(models.Ingredient{Name: "egg", Quantity: 2, Unit: ""}),
			},
			want: []models.GroceryItem{
				{Name: "egg", Quantity: 4, Unit: ""},
			},
		},
		{
			name: "first-seen order and blank names skipped",
			recipes: []models.Recipe{
				recipeWith(
					models.Ingredient{Name: "flour", Quantity: 500, Unit: "g"},
					models.Ingredient{Name: "  ", Quantity: 1, Unit: "g"},
					models.Ingredient{Name: "milk", Quantity: 1, Unit: "l"},
				),
				recipeWith(models.Ingredient{Name: "butter", Quantity: 50, Unit: "g"}),
			},
			want: []models.GroceryItem{
				{Name: "flour", Quantity: 500, Unit: "g"},
				{Name: "milk", Quantity: 1, Unit: "l"},
				{Name: "butter", Quantity: 50, Unit: "g"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Consolidate(tt.recipes)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d items, got %d: %+v", len(tt.want), len(got), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("[%d] got %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestConsolidate_DoesNotMutateInput(t *testing.T) {
	recipes := []models.Recipe{
		recipeWith(models.Ingredient{Name: "rice", Quantity: 1, Unit: "cup"}),
		recipeWith(models.Ingredient{Name: "rice", Quantity: 1, Unit: "cup"}),
	}
	first := Consolidate(recipes)
	second := Consolidate(recipes)
	if first[0].Quantity != 2 || second[0].Quantity != 2 {
		t.Errorf("expected identical results, got %v and %v", first[0].Quantity, second[0].Quantity)
	}
	if recipes[0].Ingredients[0].Quantity != 1 {
		t.Error("input ingredients were modified")
	}
}
