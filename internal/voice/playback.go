package voice

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultRate is the normal speaking rate.
const DefaultRate = 1.0

// Settings fixes the voice used for every utterance.
type Settings struct {
	Locale string
	Rate   float64
}

// Synthesizer speaks text through a platform speech-output facility.
type Synthesizer interface {
	Speak(ctx context.Context, text string, s Settings) error
}

// Playback triggers speech without waiting for it. Overlapping calls are not
// ordered or cancelled relative to each other.
type Playback struct {
	synth    Synthesizer
	settings Settings
	log      zerolog.Logger
}

// NewPlayback fills blank settings with DefaultLocale and DefaultRate.
func NewPlayback(synth Synthesizer, s Settings, log zerolog.Logger) *Playback {
	if strings.TrimSpace(s.Locale) == "" {
		s.Locale = DefaultLocale
	}
	if s.Rate <= 0 {
		s.Rate = DefaultRate
	}
	return &Playback{synth: synth, settings: s, log: log.With().Str("component", "playback").Logger()}
}

// Speak starts speaking text and returns immediately.
func (p *Playback) Speak(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	go func() {
		if err := p.synth.Speak(context.Background(), text, p.settings); err != nil {
			p.log.Debug().Err(err).Msg("speech output failed")
		}
	}()
}

// Settings returns the fixed voice settings.
func (p *Playback) Settings() Settings {
	return p.settings
}
