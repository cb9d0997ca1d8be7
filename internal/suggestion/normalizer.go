// Package suggestion turns decoded envelope payloads into canonical meal
// candidates ready to be offered for confirmation.
package suggestion

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"paytak/internal/domain"
	"paytak/internal/domain/models"
	"paytak/internal/envelope"
)

// Normalize converts raw payload entries into meal candidates. Order is
// preserved exactly; nothing is deduplicated or filtered. Macro values are
// already coerced to floats by the envelope decoder (missing or non-numeric
// fields arrive as 0); a non-positive quantity defaults to 1 and an unknown
// meal_time string is treated as unset so the commit pipeline derives it.
//
// A candidate with an empty food name is kept, not dropped: the commit
// pipeline rejects it visibly (see ValidateCandidate), which is where that
// error condition surfaces to the user.
func Normalize(raw []envelope.RawMeal) []models.MealCandidate {
	candidates := make([]models.MealCandidate, 0, len(raw))
	for _, r := range raw {
		c := models.MealCandidate{
			FoodName: strings.TrimSpace(r.FoodName),
			Calories: nonNegative(r.Calories.Float64()),
			Protein:  nonNegative(r.Protein.Float64()),
			Carbs:    nonNegative(r.Carbs.Float64()),
			Fat:      nonNegative(r.Fat.Float64()),
			Quantity: r.Quantity.Float64(),
		}
		if c.Quantity <= 0 {
			c.Quantity = 1
		}
		if mt := models.MealTime(r.MealTime); mt.Valid() {
			c.MealTime = mt
		}
		candidates = append(candidates, c)
	}
	return candidates
}

// ValidateCandidate checks that a candidate is committable. The server is not
// trusted to validate the food name, so the check happens client-side before
// any network call.
func ValidateCandidate(c models.MealCandidate) error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.FoodName, validation.Required.Error("food name is required")),
		validation.Field(&c.Quantity, validation.Required, validation.Min(0.0).Exclusive()),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
