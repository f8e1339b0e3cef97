package voice

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// DefaultLocale is the language tag used for recognition and speech output.
const DefaultLocale = "en-IN"

// State is the capture state of one conversation.
type State int

const (
	Idle State = iota
	Listening
)

func (s State) String() string {
	if s == Listening {
		return "listening"
	}
	return "idle"
}

// Recognizer captures a single utterance and returns its transcript. It must
// return promptly once ctx is cancelled.
type Recognizer interface {
	Recognize(ctx context.Context, locale string) (string, error)
}

// Capture is the Idle/Listening state machine around a Recognizer. Recognized
// text is delivered on Results; stops and errors deliver nothing.
type Capture struct {
	rec    Recognizer
	locale string
	log    zerolog.Logger

	mu      sync.Mutex
	state   State
	session uint64
	cancel  context.CancelFunc
	results chan string
}

// NewCapture returns an idle capture. An empty locale means DefaultLocale.
func NewCapture(rec Recognizer, locale string, log zerolog.Logger) *Capture {
	if strings.TrimSpace(locale) == "" {
		locale = DefaultLocale
	}
	return &Capture{
		rec:     rec,
		locale:  locale,
		log:     log.With().Str("component", "capture").Logger(),
		results: make(chan string, 1),
	}
}

// Start moves Idle to Listening and begins capturing one utterance. It is a
// no-op returning false while already Listening.
func (c *Capture) Start(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Listening {
		return false
	}
	sessCtx, cancel := context.WithCancel(ctx)
	c.session++
	c.state = Listening
	c.cancel = cancel
	go c.run(sessCtx, c.session)
	return true
}

// Stop forces Listening to Idle and discards whatever is in flight.
func (c *Capture) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Listening {
		return
	}
	c.resetLocked()
}

// State returns the current capture state.
func (c *Capture) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Listening is shorthand for State() == Listening.
func (c *Capture) Listening() bool {
	return c.State() == Listening
}

// Results yields recognized utterances, at most one per session.
func (c *Capture) Results() <-chan string {
	return c.results
}

func (c *Capture) run(ctx context.Context, session uint64) {
	text, err := c.rec.Recognize(ctx, c.locale)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != session || c.state != Listening {
		// stopped or superseded
		return
	}
	c.resetLocked()
	if err != nil {
		c.log.Debug().Err(err).Msg("capture failed")
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	c.deliverLocked(text)
}

func (c *Capture) resetLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state = Idle
}

// deliverLocked replaces an unread result rather than blocking.
func (c *Capture) deliverLocked(text string) {
	select {
	case <-c.results:
	default:
	}
	c.results <- text
}
