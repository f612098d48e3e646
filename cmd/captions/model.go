package main

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	captioning "github.com/koscakluka/ema-captions/core"
	"github.com/koscakluka/ema-captions/core/captions"
	"github.com/koscakluka/ema-captions/core/notices"
	"github.com/koscakluka/ema-captions/core/recognition"
)

// controller is the part of the captioning controller driven by the view.
type controller interface {
	Toggle(ctx context.Context) error
	StopGracefully() error
	SetLanguage(language recognition.Language) error
	Clear()
	Language() recognition.Language
	Languages() recognition.Languages
}

type (
	captionsMsg captions.Log
	stateMsg    captioning.State
	noticeMsg   notices.Notice
	errMsg      struct{ err error }
)

// bridge carries controller callbacks into the bubbletea loop. Sends never
// block once the program has exited.
type bridge struct {
	updates chan tea.Msg
	done    chan struct{}
}

func newBridge() *bridge {
	return &bridge{updates: make(chan tea.Msg, 64), done: make(chan struct{})}
}

func (b *bridge) send(msg tea.Msg) {
	select {
	case b.updates <- msg:
	case <-b.done:
	}
}

func (b *bridge) close() { close(b.done) }

func (b *bridge) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.updates:
			return msg
		case <-b.done:
			return nil
		}
	}
}

type model struct {
	ctx        context.Context
	controller controller
	bridge     *bridge

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	width   int

	log      captions.Log
	state    captioning.State
	language recognition.Language
	notice   notices.Notice
	err      error
}

func newModel(ctx context.Context, c controller, b *bridge, capacity int) model {
	return model{
		ctx:        ctx,
		controller: c,
		bridge:     b,
		keys:       newKeyMap(),
		help:       help.New(),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(listeningStyle)),
		log:        captions.NewLog(captions.WithCapacity(capacity)),
		state:      captioning.StateIdle,
		language:   c.Language(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.bridge.wait(), m.spinner.Tick)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case captionsMsg:
		m.log = captions.Log(msg)
		return m, m.bridge.wait()

	case stateMsg:
		m.state = captioning.State(msg)
		return m, m.bridge.wait()

	case noticeMsg:
		m.notice = notices.Notice(msg)
		return m, m.bridge.wait()

	case errMsg:
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// Controller calls run as commands so callbacks can reach the program while
// Update is not running.
func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		m.err = nil
		return m, run(func() error { return m.controller.Toggle(m.ctx) })

	case key.Matches(msg, m.keys.Graceful):
		return m, run(m.controller.StopGracefully)

	case key.Matches(msg, m.keys.Language):
		next := m.controller.Languages().Next(m.language)
		m.language = next
		return m, run(func() error { return m.controller.SetLanguage(next) })

	case key.Matches(msg, m.keys.Clear):
		return m, run(func() error {
			m.controller.Clear()
			return nil
		})
	}

	return m, nil
}

func run(action func() error) tea.Cmd {
	return func() tea.Msg {
		if err := action(); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}
