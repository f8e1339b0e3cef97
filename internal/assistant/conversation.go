package assistant

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jask/safeflow/internal/llm"
	"github.com/jask/safeflow/internal/voice"
)

// Options configures a Conversation. Recognizer and Synthesizer are optional;
// without them the conversation has no voice input or output.
type Options struct {
	Profile     Profile
	Completer   llm.Completer
	Recognizer  voice.Recognizer
	Synthesizer voice.Synthesizer
	Voice       voice.Settings
	Observers   []Observer
	Logger      zerolog.Logger
	Now         func() time.Time
}

// Conversation owns everything one assistant session needs: its transcript,
// its busy flag and its capture state. Two conversations share none of them.
type Conversation struct {
	id         string
	profile    Profile
	transcript *Transcript
	controller *Controller
	capture    *voice.Capture
	playback   *voice.Playback
	observers  []Observer
	log        zerolog.Logger
}

// NewConversation seeds a transcript with the profile greeting and wires the
// controller and optional voice adapters.
func NewConversation(opts Options) (*Conversation, error) {
	if opts.Completer == nil {
		return nil, errors.New("assistant: completer is required")
	}
	profile := opts.Profile.withDefaults()
	if profile.Name == "" {
		profile.Name = ProfileWidget
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	id := uuid.NewString()
	log := opts.Logger.With().Str("conversation_id", id).Str("profile", profile.Name).Logger()

	transcript := NewTranscript(profile.Greeting, now)
	conv := &Conversation{
		id:         id,
		profile:    profile,
		transcript: transcript,
		observers:  opts.Observers,
		log:        log,
		controller: &Controller{
			id:         id,
			profile:    profile,
			transcript: transcript,
			completer:  opts.Completer,
			classifier: profile.Classifier(),
			observers:  opts.Observers,
			log:        log,
			now:        now,
		},
	}
	if opts.Recognizer != nil {
		conv.capture = voice.NewCapture(opts.Recognizer, opts.Voice.Locale, log)
	}
	if opts.Synthesizer != nil {
		conv.playback = voice.NewPlayback(opts.Synthesizer, opts.Voice, log)
	}
	return conv, nil
}

// ID is the random correlation id used in logs, metrics and the usage ledger.
func (c *Conversation) ID() string { return c.id }

// Profile returns the persona this conversation runs with.
func (c *Conversation) Profile() Profile { return c.profile }

// Transcript returns the conversation's transcript for rendering.
func (c *Conversation) Transcript() *Transcript { return c.transcript }

// Busy reports whether a completion call is outstanding.
func (c *Conversation) Busy() bool { return c.controller.Busy() }

// InputLocked reports whether typed submissions are currently refused.
func (c *Conversation) InputLocked() bool {
	return c.Busy() || c.Listening()
}

// Submit runs one turn for typed input. While voice capture is listening
// typed input is refused so spoken and typed text never race.
func (c *Conversation) Submit(ctx context.Context, input string) bool {
	if c.Listening() {
		c.log.Debug().Msg("typed submission ignored while listening")
		for _, o := range c.observers {
			o.SubmissionRejected(c.id, RejectListening)
		}
		return false
	}
	return c.controller.Submit(ctx, input)
}

// Reject records a submission the caller refused on its own, without
// touching the transcript or the busy flag.
func (c *Conversation) Reject(reason string) {
	c.controller.reject(reason)
}

// VoiceInput reports whether a recognizer is configured.
func (c *Conversation) VoiceInput() bool { return c.capture != nil }

// VoiceOutput reports whether a synthesizer is configured.
func (c *Conversation) VoiceOutput() bool { return c.playback != nil }

// Listening reports whether voice capture is active.
func (c *Conversation) Listening() bool {
	return c.capture != nil && c.capture.Listening()
}

// CaptureState returns Idle when no recognizer is configured.
func (c *Conversation) CaptureState() voice.State {
	if c.capture == nil {
		return voice.Idle
	}
	return c.capture.State()
}

// StartListening begins capturing one utterance. It returns false when voice
// input is unavailable or already listening.
func (c *Conversation) StartListening(ctx context.Context) bool {
	if c.capture == nil {
		return false
	}
	return c.capture.Start(ctx)
}

// StopListening abandons the current capture without delivering text.
func (c *Conversation) StopListening() {
	if c.capture != nil {
		c.capture.Stop()
	}
}

// Utterances yields recognized text destined for the input buffer. It is nil
// when voice input is unavailable.
func (c *Conversation) Utterances() <-chan string {
	if c.capture == nil {
		return nil
	}
	return c.capture.Results()
}

// Speak reads an assistant turn aloud without waiting. It returns false when
// voice output is unavailable or the id does not name an assistant turn.
func (c *Conversation) Speak(turnID int64) bool {
	if c.playback == nil {
		return false
	}
	for _, t := range c.transcript.Snapshot() {
		if t.ID == turnID && t.IsAssistant() {
			c.playback.Speak(t.Text)
			return true
		}
	}
	return false
}
