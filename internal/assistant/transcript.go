package assistant

import (
	"sync"
	"time"
)

// Transcript is the ordered, append-only list of turns for one conversation.
// Turns are never edited or removed. Reads may run concurrently with appends.
type Transcript struct {
	mu     sync.RWMutex
	turns  []Turn
	nextID int64
	now    func() time.Time
}

// NewTranscript seeds the transcript with the assistant greeting tagged Info.
func NewTranscript(greeting string, now func() time.Time) *Transcript {
	if now == nil {
		now = time.Now
	}
	t := &Transcript{nextID: 1, now: now}
	t.Append(Turn{Author: AuthorAssistant, Text: greeting, Tag: TagInfo})
	return t
}

// Append assigns the next id and creation time, adds the turn to the end and
// returns the new snapshot. User turns never carry a tag.
func (t *Transcript) Append(turn Turn) []Turn {
	t.mu.Lock()
	defer t.mu.Unlock()

	turn.ID = t.nextID
	t.nextID++
	turn.CreatedAt = t.now()
	if turn.Author != AuthorAssistant {
		turn.Tag = TagNone
	}
	t.turns = append(t.turns, turn)
	return t.snapshotLocked()
}

// Snapshot returns a copy of all turns in order.
func (t *Transcript) Snapshot() []Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshotLocked()
}

// Len returns the number of turns.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.turns)
}

// Last returns the newest turn.
func (t *Transcript) Last() Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.turns[len(t.turns)-1]
}

// LastAssistant returns the newest assistant turn; the greeting guarantees one.
func (t *Transcript) LastAssistant() Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := len(t.turns) - 1; i >= 0; i-- {
		if t.turns[i].IsAssistant() {
			return t.turns[i]
		}
	}
	return Turn{}
}

func (t *Transcript) snapshotLocked() []Turn {
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}
