package models

import "paytak/internal/httputil"

// UserProfile is the physical/activity profile the backend keeps per user.
type UserProfile struct {
	Username         string             `json:"username"`
	Email            string             `json:"email"`
	Age              int                `json:"age"`
	Height           httputil.FlexFloat `json:"height"`
	Weight           httputil.FlexFloat `json:"weight"`
	BMI              httputil.FlexFloat `json:"bmi"`
	Goal             string             `json:"goal"`
	DailyCalorieNeed httputil.FlexFloat `json:"daily_calorie_need"`
}
