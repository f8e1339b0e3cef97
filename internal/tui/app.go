package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/safeflow/internal/assistant"
	"github.com/jask/safeflow/internal/database/repository"
)

// UsageSummarizer reports recent usage for the /usage command.
type UsageSummarizer interface {
	Summary(ctx context.Context, window time.Duration) ([]repository.UsageSummary, error)
}

const usageWindow = 24 * time.Hour

// App is the chat screen for one conversation.
type App struct {
	ctx   context.Context
	conv  *assistant.Conversation
	usage UsageSummarizer
	keys  keyMap

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	width  int
	height int

	// selected is the assistant turn chosen for playback; 0 follows the latest.
	selected  int64
	waiting   bool
	listening bool
	status    string
	statusErr bool
}

type submitDoneMsg struct{ accepted bool }

type utteranceMsg string

type usageMsg []repository.UsageSummary

type errMsg struct{ error }

// New builds the chat screen. usage may be nil when the ledger is disabled.
func New(ctx context.Context, conv *assistant.Conversation, usage UsageSummarizer) *App {
	profile := conv.Profile()

	in := textinput.New()
	in.Prompt = "› "
	in.Placeholder = profile.Placeholder
	in.CharLimit = 1000
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorAccent)

	a := &App{
		ctx:      ctx,
		conv:     conv,
		usage:    usage,
		keys:     defaultKeys(len(profile.QuickPrompts)),
		input:    in,
		viewport: viewport.New(80, 20),
		spinner:  sp,
		width:    80,
		height:   24,
	}
	a.refresh()
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.waitUtterance())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.layout()
		a.refresh()
		return a, nil
	case tea.KeyMsg:
		return a.handleKey(m)
	case spinner.TickMsg:
		a.listening = a.conv.Listening()
		if !a.waiting && !a.listening {
			a.refresh()
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(m)
		a.refresh()
		return a, cmd
	case submitDoneMsg:
		a.waiting = false
		if !m.accepted {
			a.setStatus("message was not sent", true)
		}
		a.refresh()
		a.viewport.GotoBottom()
		return a, nil
	case utteranceMsg:
		a.listening = false
		a.input.SetValue(string(m))
		a.input.CursorEnd()
		a.setStatus("heard: "+string(m), false)
		return a, a.waitUtterance()
	case usageMsg:
		a.setStatus(formatUsage(m), false)
		return a, nil
	case errMsg:
		a.setStatus("error: "+m.Error(), true)
		return a, nil
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Quit):
		a.conv.StopListening()
		return a, tea.Quit
	case key.Matches(m, a.keys.Submit):
		return a.submit()
	case key.Matches(m, a.keys.Listen):
		return a, a.toggleListen()
	case key.Matches(m, a.keys.Speak):
		a.speak()
		return a, nil
	case key.Matches(m, a.keys.PrevTurn):
		a.moveSelection(-1)
		return a, nil
	case key.Matches(m, a.keys.NextTurn):
		a.moveSelection(1)
		return a, nil
	case key.Matches(m, a.keys.ScrollUp, a.keys.ScrollDown):
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(m)
		return a, cmd
	}
	for i, b := range a.keys.Quick {
		if key.Matches(m, b) && !a.inputLocked() {
			a.input.SetValue(a.conv.Profile().QuickPrompts[i])
			a.input.CursorEnd()
			return a, nil
		}
	}
	if a.inputLocked() {
		return a, nil
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(m)
	return a, cmd
}

// submit sends the input line. A locked or blank line is counted as a
// rejection right away and the input is kept.
func (a *App) submit() (tea.Model, tea.Cmd) {
	text := a.input.Value()
	if name, suggestion, ok := parseCommand(text); ok {
		a.input.Reset()
		return a, a.runCommand(name, suggestion, text)
	}
	switch {
	case a.conv.Listening():
		a.setStatus("stop listening (ctrl+l) before sending", false)
		a.conv.Reject(assistant.RejectListening)
		return a, nil
	case a.conv.Busy() || a.waiting:
		a.setStatus("still waiting for the last reply", false)
		a.conv.Reject(assistant.RejectBusy)
		return a, nil
	case strings.TrimSpace(text) == "":
		a.conv.Reject(assistant.RejectEmpty)
		return a, nil
	}
	a.input.Reset()
	a.waiting = true
	a.selected = 0
	a.setStatus("", false)
	return a, tea.Batch(a.submitCmd(text), a.spinner.Tick)
}

func (a *App) submitCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return submitDoneMsg{accepted: a.conv.Submit(a.ctx, text)}
	}
}

func (a *App) runCommand(name, suggestion, raw string) tea.Cmd {
	switch name {
	case cmdSpeak:
		a.speak()
	case cmdListen:
		return a.toggleListen()
	case cmdUsage:
		return a.usageCmd()
	case cmdHelp:
		a.setStatus("commands: "+strings.Join(slashCommands, " "), false)
	case cmdQuit:
		a.conv.StopListening()
		return tea.Quit
	default:
		word := strings.Fields(raw)[0]
		if suggestion != "" {
			a.setStatus(fmt.Sprintf("unknown command %s, did you mean %s?", word, suggestion), true)
		} else {
			a.setStatus("unknown command "+word, true)
		}
	}
	return nil
}

func (a *App) toggleListen() tea.Cmd {
	if !a.conv.VoiceInput() {
		a.setStatus("voice input is not configured", true)
		return nil
	}
	if a.conv.Listening() {
		a.conv.StopListening()
		a.listening = false
		a.setStatus("stopped listening", false)
		return nil
	}
	if !a.conv.StartListening(a.ctx) {
		return nil
	}
	a.listening = true
	a.setStatus("listening...", false)
	return a.spinner.Tick
}

// waitUtterance blocks on the capture results channel. One waiter is kept
// armed for the life of the screen.
func (a *App) waitUtterance() tea.Cmd {
	ch := a.conv.Utterances()
	if ch == nil {
		return nil
	}
	ctx := a.ctx
	return func() tea.Msg {
		select {
		case text := <-ch:
			return utteranceMsg(text)
		case <-ctx.Done():
			return nil
		}
	}
}

func (a *App) usageCmd() tea.Cmd {
	if a.usage == nil {
		a.setStatus("usage ledger is disabled", true)
		return nil
	}
	return func() tea.Msg {
		sum, err := a.usage.Summary(a.ctx, usageWindow)
		if err != nil {
			return errMsg{err}
		}
		return usageMsg(sum)
	}
}

func (a *App) speak() {
	if !a.conv.VoiceOutput() {
		a.setStatus("voice output is not configured", true)
		return
	}
	id := a.selected
	if id == 0 {
		id = a.conv.Transcript().LastAssistant().ID
	}
	if a.conv.Speak(id) {
		a.setStatus("speaking...", false)
	}
}

// moveSelection steps through assistant turns; stepping past the newest
// returns to following the latest reply.
func (a *App) moveSelection(delta int) {
	var ids []int64
	for _, t := range a.conv.Transcript().Snapshot() {
		if t.IsAssistant() {
			ids = append(ids, t.ID)
		}
	}
	if len(ids) == 0 {
		return
	}
	pos := len(ids) - 1
	if a.selected != 0 {
		for i, id := range ids {
			if id == a.selected {
				pos = i
			}
		}
	}
	pos += delta
	switch {
	case pos < 0:
		pos = 0
	case pos >= len(ids):
		a.selected = 0
		a.refresh()
		return
	}
	a.selected = ids[pos]
	a.refresh()
}

func (a *App) inputLocked() bool {
	return a.conv.InputLocked()
}

func (a *App) setStatus(s string, isErr bool) {
	a.status = s
	a.statusErr = isErr
}

func (a *App) layout() {
	// title, input (with border), status and footer lines
	chrome := 1 + 2 + 1 + 1
	a.viewport.Width = max(20, a.width)
	a.viewport.Height = max(3, a.height-chrome)
	a.input.Width = max(10, a.width-4)
}

// refresh re-renders the transcript into the viewport.
func (a *App) refresh() {
	atBottom := a.viewport.AtBottom()
	a.viewport.SetContent(a.renderTranscript())
	if atBottom || a.waiting {
		a.viewport.GotoBottom()
	}
}

func formatUsage(sum []repository.UsageSummary) string {
	if len(sum) == 0 {
		return "no completions in the last 24h"
	}
	parts := make([]string, 0, len(sum))
	for _, s := range sum {
		parts = append(parts, fmt.Sprintf("%s %s %d (avg %s)", s.Profile, s.Outcome, s.Calls, s.AvgLatency.Round(10*time.Millisecond)))
	}
	return "24h: " + strings.Join(parts, " · ")
}

func (a *App) View() string {
	title := titleStyle.Render(a.conv.Profile().Title)
	if a.listening {
		title += mutedStyle.Render("  " + a.spinner.View() + " listening")
	}
	input := a.input.View()
	if a.inputLocked() {
		input = mutedStyle.Render(ansi.Strip(input))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		a.viewport.View(),
		inputStyle.Width(max(1, a.width)).Render(input),
		a.renderStatus(),
		a.renderFooter(),
	)
}
