package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jask/safeflow/internal/assistant"
	"github.com/jask/safeflow/internal/llm"
	"github.com/jask/safeflow/internal/voice"
)

var askSpeak bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask one question and print the reply",
	Long: `Run a single turn against the assistant and print the tagged reply.

The command exits non-zero when the completion call failed; the printed
reply is then the profile's fallback text.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askSpeak, "speak", false, "Read the reply aloud with the configured speaker")
}

// lastTurn remembers the outcome of the most recent turn.
type lastTurn struct {
	ev assistant.TurnEvent
}

func (l *lastTurn) TurnCompleted(ev assistant.TurnEvent) { l.ev = ev }
func (l *lastTurn) SubmissionRejected(string, string)    {}

func runAsk(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(os.Stderr)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.openUsage(); err != nil {
		e.log.Warn().Err(err).Msg("usage ledger unavailable")
	}
	last := &lastTurn{}
	conv, err := e.conversation(last)
	if err != nil {
		return explainSetupError(err, e.cfg.LLM.APIKeyEnv)
	}
	var speaker voice.Synthesizer
	if askSpeak {
		if _, speaker = voiceAdapters(e.cfg.Voice); speaker == nil {
			return errors.New("--speak needs voice.speaker_command")
		}
	}
	question := strings.Join(args, " ")
	settings := voice.Settings{Locale: e.cfg.Voice.Locale, Rate: e.cfg.Voice.Rate}
	return ask(cmd.Context(), conv, last, question, cmd.OutOrStdout(), speaker, settings)
}

// ask runs one turn and prints the reply. With a speaker the reply is read
// aloud before returning.
func ask(ctx context.Context, conv *assistant.Conversation, last *lastTurn, question string, out io.Writer, speaker voice.Synthesizer, set voice.Settings) error {
	if !conv.Submit(ctx, question) {
		return errors.New("question is empty")
	}
	reply := conv.Transcript().LastAssistant()
	fmt.Fprintln(out, formatReply(reply))

	if speaker != nil {
		if err := speaker.Speak(ctx, reply.Text, set); err != nil {
			return err
		}
	}
	if last.ev.Outcome == llm.OutcomeFailed {
		return errors.Errorf("completion failed (status %d)", last.ev.StatusCode)
	}
	return nil
}

func formatReply(t assistant.Turn) string {
	switch t.Tag {
	case assistant.TagWarning:
		return "[warning] " + t.Text
	case assistant.TagSuccess:
		return "[safe] " + t.Text
	default:
		return t.Text
	}
}
