package voice

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// baseWordsPerMinute is what Rate 1.0 maps to for command-line speakers.
const baseWordsPerMinute = 175

// CommandRecognizer runs an external speech-to-text program for one
// utterance and reads the transcript from its stdout. "{locale}" in Args is
// replaced with the locale tag.
type CommandRecognizer struct {
	Command string
	Args    []string
}

func (r CommandRecognizer) Recognize(ctx context.Context, locale string) (string, error) {
	if strings.TrimSpace(r.Command) == "" {
		return "", errors.New("voice: no recognizer command configured")
	}
	args := expandArgs(r.Args, map[string]string{"{locale}": locale})
	cmd := exec.CommandContext(ctx, r.Command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", errors.Errorf("voice: recognizer %s failed: %s", r.Command, msg)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// CommandSynthesizer runs an external text-to-speech program such as
// espeak-ng. Args may use "{locale}", "{rate}", "{wpm}" and "{text}"; when no
// argument mentions "{text}" the text is written to stdin.
type CommandSynthesizer struct {
	Command string
	Args    []string
}

// DefaultSpeaker is espeak-ng reading from stdin.
func DefaultSpeaker() CommandSynthesizer {
	return CommandSynthesizer{
		Command: "espeak-ng",
		Args:    []string{"-v", "{locale}", "-s", "{wpm}", "--stdin"},
	}
}

func (s CommandSynthesizer) Speak(ctx context.Context, text string, set Settings) error {
	if strings.TrimSpace(s.Command) == "" {
		return errors.New("voice: no speaker command configured")
	}
	wpm := int(baseWordsPerMinute * set.Rate)
	vars := map[string]string{
		"{locale}": strings.ToLower(set.Locale),
		"{rate}":   strconv.FormatFloat(set.Rate, 'f', -1, 64),
		"{wpm}":    strconv.Itoa(wpm),
		"{text}":   text,
	}
	args := expandArgs(s.Args, vars)
	cmd := exec.CommandContext(ctx, s.Command, args...)
	if !mentions(s.Args, "{text}") {
		cmd.Stdin = strings.NewReader(text)
	}
	if out, err := cmd.CombinedOutput(); err != nil {
		return errors.Wrapf(err, "voice: speaker %s: %s", s.Command, strings.TrimSpace(string(out)))
	}
	return nil
}

func expandArgs(args []string, vars map[string]string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		for k, v := range vars {
			a = strings.ReplaceAll(a, k, v)
		}
		out[i] = a
	}
	return out
}

func mentions(args []string, placeholder string) bool {
	for _, a := range args {
		if strings.Contains(a, placeholder) {
			return true
		}
	}
	return false
}
