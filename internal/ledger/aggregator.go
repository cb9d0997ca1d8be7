// Package ledger holds the client's current-day view of persisted meals and
// the macro totals derived from it.
package ledger

import (
	"paytak/internal/domain/models"
	"paytak/internal/httputil"
)

// Aggregate recomputes macro totals over a meal list. It is a pure function:
// every call walks the full list, there is no incremental path.
//
// Meal records come from several endpoints with different shapes, so each
// macro resolves through the direct field first, then the nested food detail,
// then zero, and is scaled by quantity (default 1).
func Aggregate(meals []models.Meal) models.MacroTotals {
	var t models.MacroTotals
	for _, m := range meals {
		qty := m.Quantity.Float64()
		if qty <= 0 {
			qty = 1
		}
		t.Carb += macroValue(m.Carbs, m, func(d *models.FoodDetail) httputil.FlexFloat { return d.Carbs }) * qty
		t.Protein += macroValue(m.Protein, m, func(d *models.FoodDetail) httputil.FlexFloat { return d.Protein }) * qty
		t.Fat += macroValue(m.Fat, m, func(d *models.FoodDetail) httputil.FlexFloat { return d.Fat }) * qty
	}
	t.Total = t.Carb + t.Protein + t.Fat
	return t
}

// CalorieSum totals the direct calorie field across meals, the way the day
// header reports it. Calories are stored per logged entry, so no quantity
// scaling applies here.
func CalorieSum(meals []models.Meal) float64 {
	var sum float64
	for _, m := range meals {
		if m.Calories != nil {
			sum += m.Calories.Float64()
		}
	}
	return sum
}

func macroValue(direct *httputil.FlexFloat, m models.Meal, pick func(*models.FoodDetail) httputil.FlexFloat) float64 {
	if direct != nil {
		return direct.Float64()
	}
	if m.FoodDetails != nil {
		return pick(m.FoodDetails).Float64()
	}
	if m.Food != nil {
		return pick(m.Food).Float64()
	}
	return 0
}
