package assistant

import "time"

// Author identifies who wrote a turn.
type Author string

const (
	AuthorUser      Author = "user"
	AuthorAssistant Author = "assistant"
)

// Tag is the presentation label attached to assistant turns.
type Tag string

const (
	TagNone    Tag = ""
	TagWarning Tag = "warning"
	TagSuccess Tag = "success"
	TagInfo    Tag = "info"
)

// Turn is one authored message in a conversation.
type Turn struct {
	ID        int64
	Author    Author
	Text      string
	CreatedAt time.Time
	Tag       Tag
}

// IsAssistant reports whether the assistant wrote the turn.
func (t Turn) IsAssistant() bool { return t.Author == AuthorAssistant }
