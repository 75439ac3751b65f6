// Package grocery turns planned meals into a shopping list.
package grocery

import (
	"strings"

	"github.com/dalemusser/mealhub/internal/domain/models"
)

// Consolidate merges the ingredients of recipes into grocery items.
//
// Ingredients are matched by lower-cased name, and items carry that
// lower-cased name. A repeat with the same unit
// adds to the existing quantity; a repeat with a different unit is tracked
// under a secondary "name_unit" key and accumulates there. Units are never
// converted, so "2 cup" and "16 tbsp" of the same thing stay separate.
// Items come out in first-seen order with an empty category and unchecked.
// Recipes appearing more than once contribute once per appearance.
func Consolidate(recipes []models.Recipe) []models.GroceryItem {
	var items []models.GroceryItem
	index := make(map[string]int)

	for _, r := range recipes {
		for _, ing := range r.Ingredients {
			name := strings.ToLower(strings.TrimSpace(ing.Name))
			if name == "" {
				continue
			}
			key := name
			if i, ok := index[key]; ok && items[i].Unit == ing.Unit {
				items[i].Quantity += ing.Quantity
				continue
			} else if ok {
				key = name + "_" + ing.Unit
				if j, ok := index[key]; ok {
					items[j].Quantity += ing.Quantity
					continue
				}
			}
			index[key] = len(items)
			items = append(items, models.GroceryItem{
				Name:     name,
				Quantity: ing.Quantity,
				Unit:     ing.Unit,
			})
		}
	}
	return items
}
