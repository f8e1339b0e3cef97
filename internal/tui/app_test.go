package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jask/safeflow/internal/assistant"
	"github.com/jask/safeflow/internal/database/repository"
	"github.com/jask/safeflow/internal/llm"
	"github.com/jask/safeflow/internal/voice"
)

type fixedCompleter struct{ res llm.Result }

func (f fixedCompleter) Complete(context.Context, string) llm.Result { return f.res }

// gatedCompleter holds each call open until release receives a result.
type gatedCompleter struct {
	started chan string
	release chan llm.Result
}

func (g gatedCompleter) Complete(_ context.Context, text string) llm.Result {
	g.started <- text
	return <-g.release
}

type countingObserver struct{ rejected chan string }

func (countingObserver) TurnCompleted(assistant.TurnEvent) {}

func (c countingObserver) SubmissionRejected(_, reason string) { c.rejected <- reason }

type chanRecognizer struct{ text chan string }

func (c chanRecognizer) Recognize(ctx context.Context, _ string) (string, error) {
	select {
	case t := <-c.text:
		return t, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

type chanSynth struct{ got chan string }

func (c chanSynth) Speak(_ context.Context, text string, _ voice.Settings) error {
	c.got <- text
	return nil
}

type stubUsage struct {
	sum []repository.UsageSummary
	err error
}

func (s stubUsage) Summary(context.Context, time.Duration) ([]repository.UsageSummary, error) {
	return s.sum, s.err
}

func newApp(t *testing.T, profile string, opts assistant.Options, usage UsageSummarizer) *App {
	t.Helper()
	p, ok := assistant.BuiltinProfile(profile)
	require.True(t, ok)
	opts.Profile = p
	if opts.Completer == nil {
		opts.Completer = fixedCompleter{res: llm.Result{Text: "✅ That merchant is verified and safe.", Outcome: llm.OutcomeOK}}
	}
	opts.Logger = zerolog.Nop()
	conv, err := assistant.NewConversation(opts)
	require.NoError(t, err)
	a := New(context.Background(), conv, usage)
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return a
}

func typeText(a *App, s string) {
	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// drain runs cmd and any batched commands, skipping blocking waiters.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func feed(a *App, msgs []tea.Msg) {
	for _, m := range msgs {
		if m != nil {
			a.Update(m)
		}
	}
}

func TestSubmitAppendsTurnsAndClearsInput(t *testing.T) {
	t.Parallel()

	a := newApp(t, assistant.ProfileWidget, assistant.Options{}, nil)
	typeText(a, "is this merchant ok?")
	require.Equal(t, "is this merchant ok?", a.input.Value())

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Empty(t, a.input.Value())
	require.True(t, a.waiting)

	feed(a, drain(cmd))
	require.False(t, a.waiting)

	turns := a.conv.Transcript().Snapshot()
	require.Len(t, turns, 3)
	require.Equal(t, assistant.TagSuccess, turns[2].Tag)

	view := ansi.Strip(a.View())
	require.Contains(t, view, "is this merchant ok?")
	require.Contains(t, view, "verified and safe")
}

func TestBlankSubmitKeepsTranscript(t *testing.T) {
	t.Parallel()

	a := newApp(t, assistant.ProfileWidget, assistant.Options{}, nil)
	typeText(a, "   ")
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, cmd)
	require.False(t, a.waiting)
	require.Equal(t, 1, a.conv.Transcript().Len())
	require.Equal(t, "   ", a.input.Value())
}

func TestFailureShowsWarningTurn(t *testing.T) {
	t.Parallel()

	a := newApp(t, assistant.ProfileWidget, assistant.Options{
		Completer: fixedCompleter{res: llm.Result{Outcome: llm.OutcomeFailed, StatusCode: 500}},
	}, nil)
	typeText(a, "hello")
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	feed(a, drain(cmd))

	last := a.conv.Transcript().Last()
	require.Equal(t, assistant.TagWarning, last.Tag)
	require.Contains(t, ansi.Strip(a.View()), "trouble connecting")
}

func TestSlashCommands(t *testing.T) {
	t.Parallel()

	a := newApp(t, assistant.ProfileWidget, assistant.Options{}, stubUsage{sum: []repository.UsageSummary{
		{Profile: "widget", Outcome: "ok", Calls: 4, AvgLatency: 1200 * time.Millisecond},
	}})

	typeText(a, "/usage")
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	feed(a, drain(cmd))
	require.Contains(t, a.status, "widget ok 4 (avg 1.2s)")
	require.Equal(t, 1, a.conv.Transcript().Len())

	typeText(a, "/lisen")
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, a.statusErr)
	require.Equal(t, "unknown command /lisen, did you mean /listen?", a.status)

	typeText(a, "/speak")
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, "voice output is not configured", a.status)

	typeText(a, "/quit")
	_, cmd = a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestUsageCommandReportsErrors(t *testing.T) {
	t.Parallel()

	a := newApp(t, assistant.ProfileWidget, assistant.Options{}, stubUsage{err: errors.New("db gone")})
	typeText(a, "/usage")
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	feed(a, drain(cmd))
	require.True(t, a.statusErr)
	require.Contains(t, a.status, "db gone")

	b := newApp(t, assistant.ProfileWidget, assistant.Options{}, nil)
	typeText(b, "/usage")
	b.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, "usage ledger is disabled", b.status)
}

func TestParseCommand(t *testing.T) {
	t.Parallel()

	name, _, ok := parseCommand("hello there")
	require.False(t, ok)
	require.Empty(t, name)

	name, _, ok = parseCommand("  /SPEAK ")
	require.True(t, ok)
	require.Equal(t, cmdSpeak, name)

	name, suggestion, ok := parseCommand("/usgae")
	require.True(t, ok)
	require.Empty(t, name)
	require.Equal(t, cmdUsage, suggestion)

	_, suggestion, _ = parseCommand("/zzzzzzzz")
	require.Empty(t, suggestion)
}

func TestQuickPromptFillsInput(t *testing.T) {
	t.Parallel()

	a := newApp(t, assistant.ProfileFraudAlert, assistant.Options{}, nil)
	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}, Alt: true})
	require.Equal(t, "How can I stay safe from UPI fraud?", a.input.Value())
	require.Contains(t, ansi.Strip(a.renderFooter()), "quick prompt")
}

func TestListeningLocksInputAndFillsUtterance(t *testing.T) {
	t.Parallel()

	rec := chanRecognizer{text: make(chan string)}
	a := newApp(t, assistant.ProfileFraudAlert, assistant.Options{Recognizer: rec}, nil)

	a.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	require.True(t, a.conv.Listening())
	require.True(t, a.listening)

	typeText(a, "typed")
	require.Empty(t, a.input.Value())

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	feed(a, drain(cmd))
	require.Equal(t, 1, a.conv.Transcript().Len())
	require.Contains(t, a.status, "stop listening")

	rec.text <- "check upi id fraud@bank"
	msg := a.waitUtterance()()
	require.Equal(t, utteranceMsg("check upi id fraud@bank"), msg)
	a.Update(msg)
	require.Equal(t, "check upi id fraud@bank", a.input.Value())
	require.Eventually(t, func() bool { return !a.conv.Listening() }, time.Second, 5*time.Millisecond)
}

func TestSubmitWhileBusyIsNotQueued(t *testing.T) {
	t.Parallel()

	gate := gatedCompleter{started: make(chan string, 2), release: make(chan llm.Result)}
	rec := chanRecognizer{text: make(chan string)}
	obs := countingObserver{rejected: make(chan string, 4)}
	a := newApp(t, assistant.ProfileWidget, assistant.Options{
		Completer:  gate,
		Recognizer: rec,
		Observers:  []assistant.Observer{obs},
	}, nil)

	typeText(a, "first")
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	done := make(chan []tea.Msg, 1)
	go func() { done <- drain(cmd) }()
	require.Equal(t, "first", <-gate.started)

	a.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	rec.text <- "second"
	a.Update(a.waitUtterance()())
	require.Equal(t, "second", a.input.Value())
	require.Eventually(t, func() bool { return !a.conv.Listening() }, time.Second, 5*time.Millisecond)

	_, cmd = a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, cmd)
	require.Equal(t, "still waiting for the last reply", a.status)
	require.Equal(t, assistant.RejectBusy, <-obs.rejected)

	gate.release <- llm.Result{Text: "done", Outcome: llm.OutcomeOK}
	feed(a, <-done)
	require.False(t, a.waiting)
	require.Equal(t, 3, a.conv.Transcript().Len())
	require.Equal(t, "second", a.input.Value())
	select {
	case text := <-gate.started:
		t.Fatalf("rejected input %q reached the completer", text)
	default:
	}

	_, cmd = a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	go func() { done <- drain(cmd) }()
	require.Equal(t, "second", <-gate.started)
	gate.release <- llm.Result{Text: "done", Outcome: llm.OutcomeOK}
	feed(a, <-done)
	require.Equal(t, 5, a.conv.Transcript().Len())
	require.Empty(t, a.input.Value())
}

func TestListenToggleStops(t *testing.T) {
	t.Parallel()

	rec := chanRecognizer{text: make(chan string)}
	a := newApp(t, assistant.ProfileWidget, assistant.Options{Recognizer: rec}, nil)
	a.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	require.True(t, a.conv.Listening())
	a.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	require.False(t, a.conv.Listening())
	require.Equal(t, "stopped listening", a.status)

	b := newApp(t, assistant.ProfileWidget, assistant.Options{}, nil)
	b.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	require.Equal(t, "voice input is not configured", b.status)
}

func TestSpeakSelectedTurn(t *testing.T) {
	t.Parallel()

	synth := chanSynth{got: make(chan string, 4)}
	a := newApp(t, assistant.ProfileWidget, assistant.Options{Synthesizer: synth}, nil)
	typeText(a, "hi")
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	feed(a, drain(cmd))

	a.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	select {
	case got := <-synth.got:
		require.Contains(t, got, "verified and safe")
	case <-time.After(time.Second):
		t.Fatal("latest reply not spoken")
	}

	a.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	require.Equal(t, int64(1), a.selected)
	require.True(t, strings.Contains(a.renderTranscript(), selectedMarker))
	a.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	select {
	case got := <-synth.got:
		require.True(t, strings.HasPrefix(got, "Hi! I'm SafeFlow's AI assistant."))
	case <-time.After(time.Second):
		t.Fatal("greeting not spoken")
	}

	a.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	a.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	require.Zero(t, a.selected)
}

func TestFitLine(t *testing.T) {
	t.Parallel()

	require.Equal(t, "ab…", fitLine("abcdef", 3))
	require.Equal(t, "a b", fitLine("a\nb", 10))
}
