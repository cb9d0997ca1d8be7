// Package chat manages the conversation transcript, the history side list,
// and the active-session identity, and runs confirmed meal suggestions
// through the commit pipeline.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"paytak/internal/domain"
	"paytak/internal/domain/models"
	"paytak/internal/envelope"
	"paytak/internal/ledger"
	"paytak/internal/suggestion"
)

// Greeting is the assistant's standing first message in a fresh transcript.
const Greeting = "Hi! 👋 I'm Paytak AI. Ask me anything about your diet, your meals, or your calorie goals."

const (
	sendFailedText    = "Sorry, something went wrong."
	unreachableText   = "Couldn't reach the server."
	commitFailedText  = "❌ Something went wrong, the meal was not added."
	missingNameText   = "⚠️ That suggestion is missing a food name, so it can't be added."
	emptyResponseText = "No response received."
)

// API is the slice of the backend the session needs.
type API interface {
	SendChat(ctx context.Context, message string) (string, error)
	ChatHistory(ctx context.Context) ([]models.ChatSummary, error)
	ChatMessages(ctx context.Context, chatID string) ([]models.Interaction, error)
	AddSuggestedMeal(ctx context.Context, cand models.MealCandidate, date string) error
	Meals(ctx context.Context, date string) ([]models.Meal, error)
	WeeklyReport(ctx context.Context) ([]models.WeeklyDay, error)
}

// Session is the chat state machine. It is in one of two states for its
// whole life: composing a new, unsaved session (no id) or viewing a stored
// one (id set). There is no terminal state.
type Session struct {
	api    API
	ledger *ledger.Ledger
	logger *slog.Logger
	clock  func() time.Time

	mu         sync.Mutex
	id         string // "" = composing a new session
	transcript []models.ChatMessage
	history    []models.ChatSummary
	composing  bool // assistant reply in flight
	// gen is the transcript generation. Every transcript replacement bumps
	// it; responses born under an older generation are discarded, so the
	// last *requested* selection wins rather than the last to resolve.
	gen uint64
}

// NewSession creates a session in the composing state with a greeting-only
// transcript. clock may be nil to use wall time.
func NewSession(api API, led *ledger.Ledger, logger *slog.Logger, clock func() time.Time) *Session {
	if clock == nil {
		clock = time.Now
	}
	s := &Session{api: api, ledger: led, logger: logger, clock: clock}
	s.transcript = []models.ChatMessage{s.greeting()}
	return s
}

// Start resets to a new, unsaved session: id cleared, transcript reduced to
// the single greeting message.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.id = ""
	s.composing = false
	s.transcript = []models.ChatMessage{s.greeting()}
	s.logger.Debug("chat session reset")
}

// SelectHistoryEntry loads the stored transcript for id, replacing the
// in-memory transcript entirely - never merging. A fetch that yields zero
// messages resets to the greeting and clears the id, treating a truly empty
// session the same as a new chat.
func (s *Session) SelectHistoryEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.id = id
	s.mu.Unlock()

	interactions, err := s.api.ChatMessages(ctx, id)
	if err != nil {
		s.logger.Warn("failed to load chat session", "chat_id", id, "error", err)
		return err
	}

	transcript := make([]models.ChatMessage, 0, len(interactions)*2)
	for _, in := range interactions {
		when := displayTimeFrom(in.CreatedAt, s.clock)
		transcript = append(transcript, models.ChatMessage{
			ID:     "user-" + uuid.NewString(),
			Sender: models.SenderUser,
			Text:   in.Message,
			Time:   when,
		})
		transcript = append(transcript, s.assistantMessage(in.Response, when))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		// A newer Start or selection already replaced the transcript.
		s.logger.Debug("discarding stale session load", "chat_id", id)
		return nil
	}
	if len(transcript) == 0 {
		s.id = ""
		s.transcript = []models.ChatMessage{s.greeting()}
		return nil
	}
	s.transcript = transcript
	return nil
}

// Send appends the user message optimistically, raises the composing flag,
// and asks the backend for a reply. The machine's state does not change:
// sending while composing a new chat stays composing, so the date-keyed
// server history cannot be re-fetched over the just-rendered exchange. Only
// the history side list is refreshed afterwards.
//
// A transport or server failure surfaces as a visible assistant message;
// only an expired session propagates as an error.
func (s *Session) Send(ctx context.Context, text string) error {
	s.mu.Lock()
	gen := s.gen
	s.composing = true
	s.transcript = append(s.transcript, models.ChatMessage{
		ID:     uuid.NewString(),
		Sender: models.SenderUser,
		Text:   text,
		Time:   s.displayTime(),
	})
	s.mu.Unlock()

	reply, err := s.api.SendChat(ctx, text)

	s.mu.Lock()
	s.composing = false
	if s.gen != gen {
		// The transcript was replaced while the send was in flight. The
		// server kept the exchange; the local append is dropped.
		s.mu.Unlock()
		s.logger.Debug("discarding reply for replaced transcript")
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		s.mu.Unlock()
		return err
	case err != nil:
		s.transcript = append(s.transcript, s.failureMessage(err))
		s.mu.Unlock()
		s.logger.Warn("chat send failed", "error", err)
		return nil
	}
	if reply == "" {
		reply = emptyResponseText
	}
	s.transcript = append(s.transcript, s.assistantMessage(reply, s.displayTime()))
	s.mu.Unlock()

	if err := s.RefreshHistory(ctx); err != nil {
		s.logger.Warn("history refresh after send failed", "error", err)
	}
	return nil
}

// RefreshHistory reloads the side list. Independent of the live transcript:
// neither refresh touches the other.
func (s *Session) RefreshHistory(ctx context.Context) error {
	chats, err := s.api.ChatHistory(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.history = chats
	s.mu.Unlock()
	return nil
}

// ID returns the active session id and whether one is set.
func (s *Session) ID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, s.id != ""
}

// Composing reports whether an assistant reply is in flight.
func (s *Session) Composing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.composing
}

// Transcript returns a snapshot of the conversation in display order.
func (s *Session) Transcript() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// History returns a snapshot of the side list.
func (s *Session) History() []models.ChatSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatSummary, len(s.history))
	copy(out, s.history)
	return out
}

// assistantMessage runs raw assistant text through the envelope parser and
// attaches any normalized suggestions.
func (s *Session) assistantMessage(raw, when string) models.ChatMessage {
	parsed := envelope.Parse(raw)
	msg := models.ChatMessage{
		ID:     uuid.NewString(),
		Sender: models.SenderAssistant,
		Text:   parsed.DisplayText,
		Time:   when,
	}
	if parsed.Kind == envelope.KindTextWithMeals {
		msg.Suggestions = suggestion.Normalize(parsed.Meals)
	}
	return msg
}

func (s *Session) failureMessage(err error) models.ChatMessage {
	text := sendFailedText
	if errors.Is(err, domain.ErrTransport) {
		text = unreachableText
	}
	return models.ChatMessage{
		ID:     uuid.NewString(),
		Sender: models.SenderAssistant,
		Text:   text,
		Time:   s.displayTime(),
	}
}

func (s *Session) greeting() models.ChatMessage {
	return models.ChatMessage{
		ID:     uuid.NewString(),
		Sender: models.SenderAssistant,
		Text:   Greeting,
		Time:   s.displayTime(),
	}
}

func (s *Session) displayTime() string {
	return s.clock().Format("15:04")
}

// displayTimeFrom renders a stored RFC 3339 timestamp for display, falling
// back to the current time if it does not parse.
func displayTimeFrom(created string, clock func() time.Time) string {
	if t, err := time.Parse(time.RFC3339, created); err == nil {
		return t.Local().Format("15:04")
	}
	return clock().Format("15:04")
}
