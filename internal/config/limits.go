package config

import "time"

const (
	// MaxChatMessageLength caps outgoing chat messages. The backend trims
	// history context to a few hundred characters per turn anyway; longer
	// input is almost certainly a paste mistake.
	MaxChatMessageLength = 2000

	// HistoryTitleLength is how many characters of the first message the
	// backend uses as a chat title. Kept here so the client can render
	// provisional titles the same way.
	HistoryTitleLength = 50

	// SearchDebounce is the idle delay before a food search fires. Typing
	// again within the window cancels the pending request.
	SearchDebounce = 300 * time.Millisecond
)
