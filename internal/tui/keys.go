package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Submit     key.Binding
	Listen     key.Binding
	Speak      key.Binding
	PrevTurn   key.Binding
	NextTurn   key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Quick      []key.Binding
	Quit       key.Binding
}

func defaultKeys(quickPrompts int) keyMap {
	km := keyMap{
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Listen:     key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "listen")),
		Speak:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "speak")),
		PrevTurn:   key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p/n", "select reply")),
		NextTurn:   key.NewBinding(key.WithKeys("ctrl+n")),
		ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup/pgdn", "scroll")),
		ScrollDown: key.NewBinding(key.WithKeys("pgdown")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
	}
	for i := 0; i < quickPrompts && i < 9; i++ {
		k := "alt+" + string(rune('1'+i))
		km.Quick = append(km.Quick, key.NewBinding(key.WithKeys(k), key.WithHelp(k, "prompt")))
	}
	return km
}

// help lists the bindings shown in the footer.
func (k keyMap) help(voiceIn, voiceOut bool) []key.Binding {
	out := []key.Binding{k.Submit}
	if voiceIn {
		out = append(out, k.Listen)
	}
	if voiceOut {
		out = append(out, k.Speak, k.PrevTurn)
	}
	if len(k.Quick) > 0 {
		first := k.Quick[0].Help().Key
		last := k.Quick[len(k.Quick)-1].Help().Key
		label := first
		if first != last {
			label = first + ".." + last[len(last)-1:]
		}
		out = append(out, key.NewBinding(key.WithKeys(first), key.WithHelp(label, "quick prompt")))
	}
	return append(out, k.ScrollUp, k.Quit)
}
