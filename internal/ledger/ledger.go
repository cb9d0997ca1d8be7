package ledger

import (
	"sync"

	"paytak/internal/domain/models"
)

// Ledger is the view-local aggregate of the selected day's meals. It is
// rebuilt from server responses on demand and never persisted client-side.
// Totals are a pure function of the meal list: SetMeals is the only mutation
// path and recomputes them synchronously.
type Ledger struct {
	mu     sync.Mutex
	meals  []models.Meal
	totals models.MacroTotals
	calSum float64
	weekly []models.WeeklyDay
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// SetMeals replaces the day's meal list and recomputes totals.
func (l *Ledger) SetMeals(meals []models.Meal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.meals = meals
	l.totals = Aggregate(meals)
	l.calSum = CalorieSum(meals)
}

// SetWeekly replaces the weekly report. Independent of the day view: a failed
// weekly refresh never touches the meal list or its totals.
func (l *Ledger) SetWeekly(days []models.WeeklyDay) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.weekly = days
}

// Meals returns the current meal list.
func (l *Ledger) Meals() []models.Meal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.meals
}

// Totals returns the current macro totals.
func (l *Ledger) Totals() models.MacroTotals {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totals
}

// CalorieSum returns the day's calorie total.
func (l *Ledger) CalorieSum() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calSum
}

// Weekly returns the weekly report days.
func (l *Ledger) Weekly() []models.WeeklyDay {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.weekly
}
