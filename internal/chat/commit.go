package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"paytak/internal/api"
	"paytak/internal/domain"
	"paytak/internal/domain/models"
	"paytak/internal/suggestion"
)

// DeriveMealTime maps a wall-clock instant to a meal slot:
// [06:00,11:00) breakfast, [11:00,15:00) lunch, [15:00,20:00) dinner,
// everything else snack.
func DeriveMealTime(t time.Time) models.MealTime {
	switch hour := t.Hour(); {
	case hour >= 6 && hour < 11:
		return models.MealTimeBreakfast
	case hour >= 11 && hour < 15:
		return models.MealTimeLunch
	case hour >= 15 && hour < 20:
		return models.MealTimeDinner
	default:
		return models.MealTimeSnack
	}
}

// CommitSuggestion persists a confirmed meal candidate and reconciles local
// state. Each call is one server write: the pipeline does not deduplicate
// repeated confirmations, callers must guard against double-clicks.
//
// A candidate without an explicit meal time gets one derived from the clock
// here, at commit time - not when the suggestion was rendered - so a
// suggestion shown at 10:59 and confirmed at 11:01 is logged as lunch.
//
// On success a confirmation message joins the transcript and the day's meal
// list and the weekly report are refreshed as independent calls; a weekly
// failure never undoes the meal refresh. On failure a distinct failure
// message joins the transcript and nothing is retried or rolled back.
func (s *Session) CommitSuggestion(ctx context.Context, cand models.MealCandidate) error {
	if err := suggestion.ValidateCandidate(cand); err != nil {
		// Rejected before any network call; the server is not trusted to
		// validate the name.
		s.appendAssistantText(missingNameText)
		return err
	}

	now := s.clock()
	if !cand.MealTime.Valid() {
		cand.MealTime = DeriveMealTime(now)
	}
	if cand.Quantity <= 0 {
		cand.Quantity = 1
	}
	date := api.LocalDate(now)

	if err := s.api.AddSuggestedMeal(ctx, cand, date); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return err
		}
		s.appendAssistantText(commitFailedText)
		s.logger.Warn("meal commit failed",
			"food_name", cand.FoodName,
			"meal_time", cand.MealTime,
			"error", err,
		)
		return err
	}

	s.appendAssistantText(fmt.Sprintf("✅ %s added!", cand.FoodName))
	s.logger.Info("meal committed",
		"food_name", cand.FoodName,
		"meal_time", cand.MealTime,
		"date", date,
	)

	// Two independent refreshes; the second failing must not undo the first.
	if meals, err := s.api.Meals(ctx, date); err != nil {
		s.logger.Warn("meal list refresh failed", "date", date, "error", err)
	} else {
		s.ledger.SetMeals(meals)
	}
	if weekly, err := s.api.WeeklyReport(ctx); err != nil {
		s.logger.Warn("weekly report refresh failed", "error", err)
	} else {
		s.ledger.SetWeekly(weekly)
	}
	return nil
}

// appendAssistantText appends a synthetic assistant message (no suggestions)
// to the transcript.
func (s *Session) appendAssistantText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, models.ChatMessage{
		ID:     uuid.NewString(),
		Sender: models.SenderAssistant,
		Text:   text,
		Time:   s.displayTime(),
	})
}
