package suggestion

import (
	"errors"
	"testing"

	"paytak/internal/domain"
	"paytak/internal/domain/models"
	"paytak/internal/envelope"
)

func TestNormalizePreservesOrderAndLength(t *testing.T) {
	raw := []envelope.RawMeal{
		{FoodName: "Oats", Calories: 380},
		{FoodName: "Banana", Calories: 90},
		{FoodName: "Oats", Calories: 380}, // duplicates are kept
	}

	got := Normalize(raw)

	if len(got) != 3 {
		t.Fatalf("Normalize() len = %d, want 3", len(got))
	}
	for i, want := range []string{"Oats", "Banana", "Oats"} {
		if got[i].FoodName != want {
			t.Errorf("candidate[%d].FoodName = %q, want %q", i, got[i].FoodName, want)
		}
	}
}

func TestNormalizeSingleEntry(t *testing.T) {
	got := Normalize([]envelope.RawMeal{{FoodName: "Egg", Calories: 70}})
	if len(got) != 1 {
		t.Fatalf("Normalize() len = %d, want 1", len(got))
	}
}

func TestNormalizeDefaults(t *testing.T) {
	tests := []struct {
		name string
		raw  envelope.RawMeal
		want models.MealCandidate
	}{
		{
			name: "missing macros become zero",
			raw:  envelope.RawMeal{FoodName: "Tea"},
			want: models.MealCandidate{FoodName: "Tea", Quantity: 1},
		},
		{
			name: "negative macros clamp to zero",
			raw:  envelope.RawMeal{FoodName: "Weird", Calories: -200, Protein: -1},
			want: models.MealCandidate{FoodName: "Weird", Quantity: 1},
		},
		{
			name: "zero quantity defaults to one",
			raw:  envelope.RawMeal{FoodName: "Rice", Quantity: 0},
			want: models.MealCandidate{FoodName: "Rice", Quantity: 1},
		},
		{
			name: "explicit quantity kept",
			raw:  envelope.RawMeal{FoodName: "Rice", Quantity: 2.5},
			want: models.MealCandidate{FoodName: "Rice", Quantity: 2.5},
		},
		{
			name: "valid meal_time kept",
			raw:  envelope.RawMeal{FoodName: "Toast", MealTime: "breakfast"},
			want: models.MealCandidate{FoodName: "Toast", MealTime: models.MealTimeBreakfast, Quantity: 1},
		},
		{
			name: "unknown meal_time treated as unset",
			raw:  envelope.RawMeal{FoodName: "Toast", MealTime: "brunch"},
			want: models.MealCandidate{FoodName: "Toast", Quantity: 1},
		},
		{
			name: "food name trimmed",
			raw:  envelope.RawMeal{FoodName: "  Soup  "},
			want: models.MealCandidate{FoodName: "Soup", Quantity: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize([]envelope.RawMeal{tt.raw})
			if len(got) != 1 {
				t.Fatalf("Normalize() len = %d, want 1", len(got))
			}
			if got[0] != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got[0], tt.want)
			}
		})
	}
}

func TestNormalizeKeepsEmptyName(t *testing.T) {
	// Empty names are not silently dropped; rejection happens at commit.
	got := Normalize([]envelope.RawMeal{{Calories: 100}})
	if len(got) != 1 {
		t.Fatalf("Normalize() len = %d, want 1", len(got))
	}
	if err := ValidateCandidate(got[0]); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("ValidateCandidate() = %v, want ErrValidation", err)
	}
}

func TestValidateCandidate(t *testing.T) {
	tests := []struct {
		name    string
		cand    models.MealCandidate
		wantErr bool
	}{
		{"valid", models.MealCandidate{FoodName: "Egg", Quantity: 1}, false},
		{"empty name", models.MealCandidate{Quantity: 1}, true},
		{"zero quantity", models.MealCandidate{FoodName: "Egg"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCandidate(tt.cand)
			if tt.wantErr && !errors.Is(err, domain.ErrValidation) {
				t.Errorf("ValidateCandidate() = %v, want ErrValidation", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateCandidate() unexpected error: %v", err)
			}
		})
	}
}
