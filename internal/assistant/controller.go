package assistant

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/jask/safeflow/internal/llm"
)

// Rejection reasons for submissions that are dropped without a turn.
const (
	RejectEmpty     = "empty"
	RejectBusy      = "busy"
	RejectListening = "listening"
)

// TurnEvent describes one completed turn. It never carries turn text.
type TurnEvent struct {
	ConversationID string
	Profile        string
	Outcome        llm.Outcome
	StatusCode     int
	Tag            Tag
	Latency        time.Duration
	At             time.Time
}

// Observer is notified after every completed turn and every rejected
// submission. Observers run on the submitting goroutine and must not block.
type Observer interface {
	TurnCompleted(ev TurnEvent)
	SubmissionRejected(conversationID, reason string)
}

// Controller runs one turn at a time against a transcript. The busy flag is
// the only concurrency control: a submit while a call is outstanding is
// dropped, not queued.
type Controller struct {
	id         string
	profile    Profile
	transcript *Transcript
	completer  llm.Completer
	classifier Classifier
	observers  []Observer
	log        zerolog.Logger
	now        func() time.Time

	busy atomic.Bool
}

// Submit runs a full turn for rawInput. It returns false, appending nothing,
// when the trimmed input is empty or a call is already outstanding.
// Otherwise it appends the user turn, waits for the completion and appends
// exactly one assistant turn. There is no retry and no timeout beyond what
// ctx carries.
func (c *Controller) Submit(ctx context.Context, rawInput string) bool {
	if strings.TrimSpace(rawInput) == "" {
		c.reject(RejectEmpty)
		return false
	}
	if !c.busy.CompareAndSwap(false, true) {
		c.reject(RejectBusy)
		return false
	}
	reply, res, latency := c.complete(ctx, rawInput)

	c.log.Debug().
		Str("outcome", res.Outcome.String()).
		Str("tag", string(reply.Tag)).
		Dur("latency", latency).
		Msg("turn completed")

	ev := TurnEvent{
		ConversationID: c.id,
		Profile:        c.profile.Name,
		Outcome:        res.Outcome,
		StatusCode:     res.StatusCode,
		Tag:            reply.Tag,
		Latency:        latency,
		At:             c.now(),
	}
	for _, o := range c.observers {
		o.TurnCompleted(ev)
	}
	return true
}

// complete appends the user turn and the reply while holding the busy flag.
// The flag is released before observers run.
func (c *Controller) complete(ctx context.Context, rawInput string) (Turn, llm.Result, time.Duration) {
	defer c.busy.Store(false)

	c.transcript.Append(Turn{Author: AuthorUser, Text: rawInput})

	started := c.now()
	res := c.completer.Complete(ctx, rawInput)
	latency := c.now().Sub(started)

	var reply Turn
	if res.Succeeded() {
		reply = Turn{Author: AuthorAssistant, Text: res.Text, Tag: c.classifier.Classify(res.Text)}
	} else {
		reply = Turn{Author: AuthorAssistant, Text: c.profile.FailureReply, Tag: TagWarning}
	}
	c.transcript.Append(reply)
	return reply, res, latency
}

// Busy reports whether a completion call is outstanding.
func (c *Controller) Busy() bool {
	return c.busy.Load()
}

func (c *Controller) reject(reason string) {
	c.log.Debug().Str("reason", reason).Msg("submission ignored")
	for _, o := range c.observers {
		o.SubmissionRejected(c.id, reason)
	}
}
