package models

import (
	"paytak/internal/httputil"
)

// MealTime is the meal slot a logged entry belongs to.
type MealTime string

const (
	MealTimeBreakfast MealTime = "breakfast"
	MealTimeLunch     MealTime = "lunch"
	MealTimeDinner    MealTime = "dinner"
	MealTimeSnack     MealTime = "snack"
)

// Valid reports whether mt is one of the four known meal slots.
func (mt MealTime) Valid() bool {
	switch mt {
	case MealTimeBreakfast, MealTimeLunch, MealTimeDinner, MealTimeSnack:
		return true
	}
	return false
}

// MealCandidate is a proposed food-log entry extracted from an assistant
// message, awaiting user confirmation. It is consumed exactly once by the
// commit pipeline and discarded afterwards.
type MealCandidate struct {
	FoodName string  `json:"food_name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	// MealTime is optional; when empty the commit pipeline derives it from
	// the wall clock at commit time.
	MealTime MealTime `json:"meal_time,omitempty"`
	Quantity float64  `json:"quantity"`
}

// FoodDetail is the nested food sub-record some meal endpoints return
// instead of (or in addition to) macro fields on the meal itself.
type FoodDetail struct {
	Name     string             `json:"name"`
	Calories httputil.FlexFloat `json:"calories"`
	Protein  httputil.FlexFloat `json:"protein"`
	Carbs    httputil.FlexFloat `json:"carbs"`
	Fat      httputil.FlexFloat `json:"fat"`
}

// Meal is one persisted entry in the day's ledger. Records originate from
// several endpoints (manual add, AI add, OCR add) with different shapes:
// macro fields may sit directly on the record or under a nested food detail.
// Pointers distinguish "absent" from an explicit zero so the aggregator can
// fall through correctly.
type Meal struct {
	ID          int                 `json:"id"`
	FoodName    string              `json:"food_name"`
	MealTime    MealTime            `json:"meal_time"`
	Calories    *httputil.FlexFloat `json:"calories"`
	Protein     *httputil.FlexFloat `json:"protein"`
	Carbs       *httputil.FlexFloat `json:"carbs"`
	Fat         *httputil.FlexFloat `json:"fat"`
	Quantity    httputil.FlexFloat  `json:"quantity"`
	FoodDetails *FoodDetail         `json:"food_details"`
	Food        *FoodDetail         `json:"food"`
}

// MacroTotals is the aggregate over a day's meals. Total is the sum of the
// three macro sums, not calories.
type MacroTotals struct {
	Carb    float64 `json:"carb"`
	Protein float64 `json:"protein"`
	Fat     float64 `json:"fat"`
	Total   float64 `json:"total"`
}

// WeeklyDay is one day in the weekly report.
type WeeklyDay struct {
	Date     string             `json:"date"`
	Calories httputil.FlexFloat `json:"calories"`
	Protein  httputil.FlexFloat `json:"protein"`
	Carbs    httputil.FlexFloat `json:"carbs"`
	Fat      httputil.FlexFloat `json:"fat"`
}

// Food is a food-database record returned by the search endpoint.
type Food struct {
	ID       int                `json:"id"`
	Name     string             `json:"name"`
	Calories httputil.FlexFloat `json:"calories"`
	Protein  httputil.FlexFloat `json:"protein"`
	Carbs    httputil.FlexFloat `json:"carbs"`
	Fat      httputil.FlexFloat `json:"fat"`
}

// ScanResult is the outcome of a food-label image analysis.
type ScanResult struct {
	FoodName string             `json:"food_name"`
	Calories httputil.FlexFloat `json:"calories"`
	Protein  httputil.FlexFloat `json:"protein"`
	Carbs    httputil.FlexFloat `json:"carbs"`
	Fat      httputil.FlexFloat `json:"fat"`
}

// DashboardStats is the headline view returned by the dashboard endpoint.
type DashboardStats struct {
	TodayCalories httputil.FlexFloat `json:"today_calories"`
	DailyNeed     httputil.FlexFloat `json:"daily_need"`
	BMI           httputil.FlexFloat `json:"bmi"`
	Goal          string             `json:"goal"`
}
