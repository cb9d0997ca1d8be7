package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"paytak/internal/domain"
	"paytak/internal/domain/models"
	"paytak/internal/httputil"
)

func flex(v float64) *httputil.FlexFloat {
	f := httputil.FlexFloat(v)
	return &f
}

func TestCommitSuggestionSuccess(t *testing.T) {
	api := &stubAPI{
		meals: []models.Meal{
			{FoodName: "Salad", Carbs: flex(10), Protein: flex(5), Fat: flex(2), Quantity: 1, Calories: flex(150)},
		},
		weekly: []models.WeeklyDay{{Date: "2025-11-29", Calories: 150}},
	}
	s, led := newTestSession(api, clockAt(12, 30))

	cand := models.MealCandidate{FoodName: "Salad", Calories: 150, Carbs: 10, Protein: 5, Fat: 2, Quantity: 1}
	if err := s.CommitSuggestion(context.Background(), cand); err != nil {
		t.Fatalf("CommitSuggestion() error: %v", err)
	}

	if len(api.added) != 1 {
		t.Fatalf("server writes = %d, want 1", len(api.added))
	}
	if api.addedDates[0] != "2025-11-29" {
		t.Errorf("committed date = %q, want local date %q", api.addedDates[0], "2025-11-29")
	}
	// No explicit meal time: derived at 12:30 -> lunch.
	if api.added[0].MealTime != models.MealTimeLunch {
		t.Errorf("committed meal time = %v, want lunch", api.added[0].MealTime)
	}

	transcript := s.Transcript()
	last := transcript[len(transcript)-1]
	if last.Sender != models.SenderAssistant || last.Text != "✅ Salad added!" {
		t.Errorf("last message = %+v, want confirmation", last)
	}
	if len(last.Suggestions) != 0 {
		t.Error("confirmation message must carry no suggestions")
	}

	if got := led.Totals(); got.Total != 17 {
		t.Errorf("ledger totals = %+v, want refreshed totals", got)
	}
	if got := led.Weekly(); len(got) != 1 {
		t.Errorf("ledger weekly = %+v, want refreshed report", got)
	}
}

func TestCommitSuggestionExplicitMealTimeWins(t *testing.T) {
	api := &stubAPI{}
	s, _ := newTestSession(api, clockAt(12, 30))

	cand := models.MealCandidate{FoodName: "Eggs", MealTime: models.MealTimeBreakfast, Quantity: 1}
	if err := s.CommitSuggestion(context.Background(), cand); err != nil {
		t.Fatalf("CommitSuggestion() error: %v", err)
	}

	if api.added[0].MealTime != models.MealTimeBreakfast {
		t.Errorf("meal time = %v, want the explicit breakfast", api.added[0].MealTime)
	}
}

func TestCommitSuggestionDerivationBands(t *testing.T) {
	tests := []struct {
		hour int
		want models.MealTime
	}{
		{6, models.MealTimeBreakfast},
		{12, models.MealTimeLunch},
		{21, models.MealTimeSnack},
	}

	for _, tt := range tests {
		api := &stubAPI{}
		s, _ := newTestSession(api, clockAt(tt.hour, 0))

		cand := models.MealCandidate{FoodName: "Meal", Quantity: 1}
		if err := s.CommitSuggestion(context.Background(), cand); err != nil {
			t.Fatalf("CommitSuggestion() at %02d:00 error: %v", tt.hour, err)
		}
		if api.added[0].MealTime != tt.want {
			t.Errorf("at %02d:00 meal time = %v, want %v", tt.hour, api.added[0].MealTime, tt.want)
		}
	}
}

func TestCommitSuggestionFailureLeavesLedgerUntouched(t *testing.T) {
	api := &stubAPI{addErr: &domain.APIError{Status: 500}}
	s, led := newTestSession(api, clockAt(12, 30))

	// Ledger already carries the day's state.
	led.SetMeals([]models.Meal{{FoodName: "Oats", Carbs: flex(30), Protein: flex(10), Fat: flex(5), Quantity: 1}})
	before := led.Totals()

	cand := models.MealCandidate{FoodName: "Salad", Quantity: 1}
	err := s.CommitSuggestion(context.Background(), cand)
	if err == nil {
		t.Fatal("CommitSuggestion() should return the failure")
	}

	if got := led.Totals(); got != before {
		t.Errorf("ledger totals changed on failed commit: %+v -> %+v", before, got)
	}
	if len(led.Meals()) != 1 {
		t.Errorf("ledger meals changed on failed commit")
	}

	transcript := s.Transcript()
	last := transcript[len(transcript)-1]
	if last.Sender != models.SenderAssistant || last.Text != commitFailedText {
		t.Errorf("last message = %+v, want failure text", last)
	}
}

func TestCommitSuggestionWeeklyFailureKeepsMealRefresh(t *testing.T) {
	api := &stubAPI{
		meals:     []models.Meal{{FoodName: "Salad", Carbs: flex(10), Quantity: 1}},
		weeklyErr: domain.ErrTransport,
	}
	s, led := newTestSession(api, clockAt(12, 30))

	cand := models.MealCandidate{FoodName: "Salad", Quantity: 1}
	if err := s.CommitSuggestion(context.Background(), cand); err != nil {
		t.Fatalf("CommitSuggestion() error: %v", err)
	}

	// The meal-list refresh stands even though the weekly refresh failed,
	// and so does the confirmation message.
	if len(led.Meals()) != 1 {
		t.Error("meal refresh was undone by the weekly failure")
	}
	transcript := s.Transcript()
	if !strings.Contains(transcript[len(transcript)-1].Text, "added") {
		t.Errorf("confirmation missing, last = %+v", transcript[len(transcript)-1])
	}
}

func TestCommitSuggestionMissingNameRejectedLocally(t *testing.T) {
	api := &stubAPI{}
	s, _ := newTestSession(api, clockAt(12, 30))

	err := s.CommitSuggestion(context.Background(), models.MealCandidate{Quantity: 1})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("CommitSuggestion() = %v, want ErrValidation", err)
	}

	if len(api.added) != 0 {
		t.Error("candidate without a name must never reach the server")
	}
	transcript := s.Transcript()
	last := transcript[len(transcript)-1]
	if last.Text != missingNameText {
		t.Errorf("last message = %q, want missing-name text", last.Text)
	}
}

func TestCommitSuggestionUnauthorizedPropagatesWithoutMessage(t *testing.T) {
	api := &stubAPI{addErr: &domain.APIError{Status: 401}}
	s, _ := newTestSession(api, clockAt(12, 30))

	err := s.CommitSuggestion(context.Background(), models.MealCandidate{FoodName: "Salad", Quantity: 1})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("CommitSuggestion() = %v, want ErrUnauthorized", err)
	}

	// Session expiry is handled globally, not as a transcript message.
	transcript := s.Transcript()
	if transcript[len(transcript)-1].Text == commitFailedText {
		t.Error("401 should not append the generic failure message")
	}
}

func TestCommitSuggestionNoDeduplication(t *testing.T) {
	api := &stubAPI{}
	s, _ := newTestSession(api, clockAt(12, 30))

	cand := models.MealCandidate{FoodName: "Salad", Quantity: 1}
	for i := 0; i < 2; i++ {
		if err := s.CommitSuggestion(context.Background(), cand); err != nil {
			t.Fatalf("CommitSuggestion() #%d error: %v", i+1, err)
		}
	}

	// One server write per confirmation; guarding double-clicks is the
	// caller's job.
	if len(api.added) != 2 {
		t.Errorf("server writes = %d, want 2", len(api.added))
	}
}
