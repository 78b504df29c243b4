package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the key bindings of the lookup screen
type KeyMap struct {
	SelectPrev key.Binding
	SelectNext key.Binding
	Submit     key.Binding
	Dismiss    key.Binding
	Quit       key.Binding
}

// DefaultKeyMap uses the arrow keys to move through suggestions, enter to pick one,
// esc to close the list and ctrl+c to quit.
var DefaultKeyMap = KeyMap{
	SelectPrev: key.NewBinding(key.WithKeys("up", "ctrl+p")),
	SelectNext: key.NewBinding(key.WithKeys("down", "ctrl+n")),
	Submit:     key.NewBinding(key.WithKeys("enter")),
	Dismiss:    key.NewBinding(key.WithKeys("esc")),
	Quit:       key.NewBinding(key.WithKeys("ctrl+c")),
}
