package main

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle   key.Binding
	Graceful key.Binding
	Language key.Binding
	Clear    key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Toggle:   key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "start/stop")),
		Graceful: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "finish utterance")),
		Language: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "language")),
		Clear:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Language, k.Clear, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Graceful},
		{k.Language, k.Clear},
		{k.Help, k.Quit},
	}
}
