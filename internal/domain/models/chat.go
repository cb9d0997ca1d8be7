package models

// Sender identifies who produced a chat message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// ChatMessage is a single entry in the conversation transcript.
// Messages are immutable after creation; insertion order is the canonical
// display order.
type ChatMessage struct {
	ID          string          `json:"id"`
	Sender      Sender          `json:"sender"`
	Text        string          `json:"text"`
	Time        string          `json:"time"` // display-formatted, e.g. "14:05"
	Suggestions []MealCandidate `json:"suggestions,omitempty"`
}

// ChatSummary is one entry in the history side list. Summaries are refreshed
// independently of the live transcript and never feed it directly.
type ChatSummary struct {
	ID           string `json:"id"` // backend keys chats by date, e.g. "2025-11-29"
	Title        string `json:"title"`
	Date         string `json:"date"`
	MessageCount int    `json:"message_count"`
	LastUpdated  string `json:"last_updated"`
}

// Interaction is one stored exchange in a chat session as returned by the
// history detail endpoint: the user's message and the assistant's raw
// response (which may still carry an embedded meal payload).
type Interaction struct {
	ID        int    `json:"id"`
	Message   string `json:"message"`
	Response  string `json:"response"`
	CreatedAt string `json:"created_at"`
}
