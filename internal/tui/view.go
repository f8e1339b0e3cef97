package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/safeflow/internal/assistant"
)

func (a *App) renderTranscript() string {
	width := max(20, a.viewport.Width)
	bubbleWidth := max(10, width-4)
	selected := a.selected
	if selected == 0 && a.conv.VoiceOutput() {
		selected = a.conv.Transcript().LastAssistant().ID
	}

	var b strings.Builder
	for i, t := range a.conv.Transcript().Snapshot() {
		if i > 0 {
			b.WriteString("\n")
		}
		if !t.IsAssistant() {
			b.WriteString(authorStyle.Render("You") + mutedStyle.Render("  "+t.CreatedAt.Local().Format("15:04")) + "\n")
			b.WriteString(userTextStyle.Width(bubbleWidth).Render(t.Text) + "\n")
			continue
		}
		marker := "  "
		if t.ID == selected {
			marker = selectedMarker
		}
		b.WriteString(marker + authorStyle.Render(a.conv.Profile().Title) + " " + tagLabel(t.Tag) + "\n")
		b.WriteString(bubbleStyle(t.Tag).Width(bubbleWidth).Render(t.Text) + "\n")
	}
	if a.waiting {
		b.WriteString("\n" + a.spinner.View() + mutedStyle.Render(" thinking..."))
	}
	return b.String()
}

func bubbleStyle(tag assistant.Tag) lipgloss.Style {
	switch tag {
	case assistant.TagWarning:
		return warningBubble
	case assistant.TagSuccess:
		return successBubble
	default:
		return infoBubble
	}
}

func tagLabel(tag assistant.Tag) string {
	switch tag {
	case assistant.TagWarning:
		return lipgloss.NewStyle().Foreground(colorError).Render(assistant.WarningEmoji + " warning")
	case assistant.TagSuccess:
		return lipgloss.NewStyle().Foreground(colorSuccess).Render(assistant.SuccessEmoji + " safe")
	default:
		return ""
	}
}

func (a *App) renderStatus() string {
	msg := strings.TrimSpace(a.status)
	if msg == "" {
		switch {
		case a.waiting:
			msg = "waiting for reply"
		case a.listening:
			msg = "listening"
		default:
			msg = "Ready"
		}
	}
	style := statusBarStyle
	if a.statusErr {
		style = statusErrStyle
	}
	return style.Render(fitLine(msg, a.width))
}

func (a *App) renderFooter() string {
	bindings := a.keys.help(a.conv.VoiceInput(), a.conv.VoiceOutput())
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		if h.Key == "" && h.Desc == "" {
			continue
		}
		parts = append(parts, footerKeyStyle.Render(h.Key)+footerSpaceStyle.Render(" ")+footerDescStyle.Render(h.Desc))
	}
	line := strings.Join(parts, footerSpaceStyle.Render("  "))
	return ansi.Truncate(line, max(1, a.width), "")
}

// fitLine flattens text to one line no wider than width.
func fitLine(text string, width int) string {
	line := strings.ReplaceAll(text, "\n", " ")
	return ansi.Truncate(line, max(1, width), "…")
}
