package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every binding of the browser. "n" is shared by next page and no: they never
// apply to the same view.
type keyMap struct {
	move    key.Binding
	enter   key.Binding
	back    key.Binding
	next    key.Binding
	prev    key.Binding
	export  key.Binding
	yes     key.Binding
	no      key.Binding
	restart key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	bind := func(help, desc string, keys ...string) key.Binding {
		return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
	}
	return keyMap{
		move:    bind("↑/↓", "move", "up", "down", "k", "j"),
		enter:   bind("enter", "open", "enter"),
		back:    bind("esc", "back", "esc"),
		next:    bind("n", "next page", "n"),
		prev:    bind("p", "prev page", "p"),
		export:  bind("e", "export", "e"),
		yes:     bind("y", "export", "y"),
		no:      bind("n", "cancel", "n"),
		restart: bind("r", "reload", "r"),
		quit:    bind("q", "quit", "q", "ctrl+c"),
	}
}

// forView returns the bindings shown in the help line of v.
func (k keyMap) forView(v ViewState) []key.Binding {
	switch v {
	case PlaylistListView:
		return []key.Binding{k.move, k.enter, k.next, k.prev, k.restart, k.quit}
	case LoadingView:
		return []key.Binding{k.quit}
	case TrackListView:
		return []key.Binding{k.move, k.export, k.back, k.quit}
	case ConfirmView:
		return []key.Binding{k.yes, k.no, k.quit}
	case ResultView:
		return []key.Binding{k.restart, k.quit}
	}
	return nil
}
